package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	core "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	"github.com/goliatone/go-bizdash/pkg/scenarios"
)

type kpiCmd struct {
	ScenarioFile string `name:"scenario-file" type:"existingfile" help:"YAML scenario file with revenue, expenses and cash. Demo data is used when omitted."`
	Scenario     string `default:"baseline" help:"Scenario name."`
	Format       string `enum:"table,json" default:"table" help:"Output format (table, json)."`
}

type kpiReport struct {
	Scenario          string                 `json:"scenario"`
	KPIs              projection.KPISnapshot `json:"kpis"`
	ExpenseCategories []projection.Breakdown `json:"expenseCategories"`
	RevenueSegments   []projection.Breakdown `json:"revenueSegments"`
}

func (cmd *kpiCmd) Run(ctx context.Context, out io.Writer) error {
	repo := core.NewStaticFinanceRepository(core.DemoFinanceSnapshot())
	if cmd.ScenarioFile != "" {
		file, err := scenarios.ReadFile(cmd.ScenarioFile)
		if err != nil {
			return err
		}
		repo = scenarios.NewFinanceRepository(file)
	}
	name := core.NormalizeScenarioName(cmd.Scenario)
	snapshot, err := repo.FetchFinance(ctx, core.FinanceQuery{Scenario: name})
	if err != nil {
		return fmt.Errorf("kpi %s: %w", name, err)
	}
	kpis, err := snapshot.KPIs()
	if err != nil {
		return fmt.Errorf("kpi %s: %w", name, err)
	}
	report := kpiReport{
		Scenario:          name,
		KPIs:              kpis,
		ExpenseCategories: projection.ExpensesByCategory(snapshot.Expenses),
		RevenueSegments:   projection.RevenueBySegment(snapshot.Revenue),
	}
	if cmd.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeKPITable(out, report)
}

func writeKPITable(out io.Writer, report kpiReport) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "scenario\t%s\n", report.Scenario)
	fmt.Fprintf(tw, "monthly revenue\t%s\n", money(report.KPIs.MonthlyRevenue))
	fmt.Fprintf(tw, "monthly expenses\t%s\n", money(report.KPIs.MonthlyExpenses))
	fmt.Fprintf(tw, "monthly burn\t%s\n", money(report.KPIs.MonthlyBurn))
	fmt.Fprintf(tw, "cash balance\t%s\n", money(report.KPIs.CashBalance))
	fmt.Fprintf(tw, "runway\t%s\n", report.KPIs.Runway)
	for _, row := range report.ExpenseCategories {
		fmt.Fprintf(tw, "expenses: %s\t%s\n", row.Label, money(row.Total))
	}
	for _, row := range report.RevenueSegments {
		fmt.Fprintf(tw, "revenue: %s\t%s\n", row.Label, money(row.Total))
	}
	return tw.Flush()
}
