package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Serve    serveCmd    `cmd:"" help:"Run the dashboard HTTP server."`
	Sweep    sweepCmd    `cmd:"" help:"Print the ARR and valuation sweep for a scenario."`
	KPI      kpiCmd      `cmd:"" name:"kpi" help:"Print burn, runway and breakdowns for a scenario."`
	Import   importCmd   `cmd:"" help:"Import scenarios from a YAML file into the scenario database."`
	Scaffold scaffoldCmd `cmd:"" help:"Scaffold a widget definition, provider stub, and manifest entry."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parser := kong.Parse(&cli{},
		kong.Name("bizdash"),
		kong.Description("Financial projection dashboard: ARR sweeps, valuation bands, burn and runway."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	err := parser.Run()
	parser.FatalIfErrorf(err)
}
