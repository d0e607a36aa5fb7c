package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	core "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	"github.com/goliatone/go-bizdash/pkg/scenarios"
)

// scenarioFlags selects where named scenarios are read from.
type scenarioFlags struct {
	ScenarioFile string `name:"scenario-file" type:"existingfile" xor:"source" help:"YAML scenario file."`
	DB           string `name:"db" type:"path" xor:"source" help:"SQLite scenario database."`
	Scenario     string `default:"baseline" help:"Scenario name."`
}

// open returns the scenario store and, when a YAML file was given, the
// decoded file. The returned func releases the store.
func (f scenarioFlags) open(ctx context.Context) (core.ScenarioStore, *scenarios.File, func(), error) {
	switch {
	case f.DB != "":
		store, err := scenarios.OpenSQLite(f.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, func() { _ = store.Close() }, nil
	case f.ScenarioFile != "":
		file, err := scenarios.ReadFile(f.ScenarioFile)
		if err != nil {
			return nil, nil, nil, err
		}
		store := core.NewInMemoryScenarioStore()
		if _, err := file.Import(ctx, store); err != nil {
			return nil, nil, nil, err
		}
		return store, file, func() {}, nil
	default:
		return core.NewInMemoryScenarioStore(), nil, func() {}, nil
	}
}

type sweepCmd struct {
	scenarioFlags `embed:""`

	UsersMin    *int64   `name:"users-min" help:"Override the first user count."`
	UsersMax    *int64   `name:"users-max" help:"Override the last user count."`
	Step        *int64   `help:"Override the user step."`
	ARPUCurrent *float64 `name:"arpu-current" help:"Override the current-tier ARPU."`
	ARPUSuper   *float64 `name:"arpu-super" help:"Override the super-tier ARPU."`
	LowMin      *float64 `name:"low-min" help:"Override the low band minimum multiple."`
	LowMax      *float64 `name:"low-max" help:"Override the low band maximum multiple."`
	HighMin     *float64 `name:"high-min" help:"Override the high band minimum multiple."`
	HighMax     *float64 `name:"high-max" help:"Override the high band maximum multiple."`

	Format string `enum:"table,json,csv" default:"table" help:"Output format (table, json, csv)."`
}

func (cmd *sweepCmd) overrides() core.SweepOverrides {
	o := core.SweepOverrides{
		UsersMin:    cmd.UsersMin,
		UsersMax:    cmd.UsersMax,
		Step:        cmd.Step,
		ARPUCurrent: cmd.ARPUCurrent,
		ARPUSuper:   cmd.ARPUSuper,
	}
	if cmd.LowMin != nil || cmd.LowMax != nil {
		o.LowBand = &core.BandOverride{Min: cmd.LowMin, Max: cmd.LowMax}
	}
	if cmd.HighMin != nil || cmd.HighMax != nil {
		o.HighBand = &core.BandOverride{Min: cmd.HighMin, Max: cmd.HighMax}
	}
	return o
}

func (cmd *sweepCmd) Run(ctx context.Context, out io.Writer) error {
	store, _, release, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer release()

	source := core.NewSweepSource(store, nil)
	name := core.NormalizeScenarioName(cmd.Scenario)
	dataset, params, err := source.Resolve(ctx, name, cmd.overrides())
	if err != nil {
		return fmt.Errorf("sweep %s: %w", name, err)
	}

	switch cmd.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"scenario":   name,
			"parameters": params,
			"dataset":    dataset,
		})
	case "csv":
		return projection.WriteCSV(out, dataset)
	default:
		return writeSweepTable(out, dataset)
	}
}

func writeSweepTable(out io.Writer, dataset projection.Dataset) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "users\tARR current\tvaluation current\tARR super\tvaluation super\t")
	for _, point := range dataset {
		current, super := point.Current(), point.Super()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			point.Users,
			money(current.ARR),
			valuationSpan(current.LowBand.Low, current.HighBand.High),
			money(super.ARR),
			valuationSpan(super.LowBand.Low, super.HighBand.High),
		)
	}
	return tw.Flush()
}

func valuationSpan(low, high float64) string {
	return money(low) + " - " + money(high)
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 0, 64)
}
