package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-bizdash/pkg/scenarios"
)

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML scenario file to import."`
	DB   string `required:"" name:"db" type:"path" help:"SQLite scenario database to write to."`
}

func (cmd *importCmd) Run(ctx context.Context, out io.Writer) error {
	file, err := scenarios.ReadFile(cmd.File)
	if err != nil {
		return err
	}
	store, err := scenarios.OpenSQLite(cmd.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	imported, err := file.Import(ctx, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d of %d scenarios into %s\n", imported, len(file.Scenarios), cmd.DB)
	return nil
}
