package projection

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// RevenueItem is a recurring revenue line.
type RevenueItem struct {
	Name    string  `json:"name" yaml:"name"`
	Segment string  `json:"segment,omitempty" yaml:"segment,omitempty"`
	MRR     float64 `json:"mrr" yaml:"mrr"`
}

// ExpenseItem is a monthly cost line.
type ExpenseItem struct {
	Name        string  `json:"name" yaml:"name"`
	Category    string  `json:"category,omitempty" yaml:"category,omitempty"`
	MonthlyCost float64 `json:"monthlyCost" yaml:"monthly_cost"`
}

// RunwayState tags how a Runway should be read.
type RunwayState int

const (
	// RunwayFinite carries a month count.
	RunwayFinite RunwayState = iota
	// RunwayUnbounded means revenue covers expenses; there is no runway limit.
	RunwayUnbounded
	// RunwayDepleted means the company is burning with no cash left.
	RunwayDepleted
)

func (s RunwayState) String() string {
	switch s {
	case RunwayFinite:
		return "finite"
	case RunwayUnbounded:
		return "profitable"
	case RunwayDepleted:
		return "depleted"
	default:
		return fmt.Sprintf("RunwayState(%d)", int(s))
	}
}

// Runway is either a finite month count or one of the sentinel states. Months
// is only meaningful for RunwayFinite.
type Runway struct {
	State  RunwayState
	Months float64
}

// Bounded reports whether the runway has a numeric value.
func (r Runway) Bounded() bool {
	return r.State == RunwayFinite
}

// Profitable reports the "no burn" sentinel.
func (r Runway) Profitable() bool {
	return r.State == RunwayUnbounded
}

func (r Runway) String() string {
	switch r.State {
	case RunwayFinite:
		return fmt.Sprintf("%.1f months", r.Months)
	case RunwayUnbounded:
		return "Profitable"
	case RunwayDepleted:
		return "Depleted"
	default:
		return r.State.String()
	}
}

// MarshalJSON renders finite runways as numbers and sentinels as strings.
func (r Runway) MarshalJSON() ([]byte, error) {
	if r.State == RunwayFinite {
		return json.Marshal(r.Months)
	}
	return json.Marshal(r.State.String())
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (r *Runway) UnmarshalJSON(data []byte) error {
	var months float64
	if err := json.Unmarshal(data, &months); err == nil {
		*r = Runway{State: RunwayFinite, Months: months}
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("projection: runway must be a number or state label: %w", err)
	}
	switch label {
	case "profitable":
		*r = Runway{State: RunwayUnbounded}
	case "depleted":
		*r = Runway{State: RunwayDepleted}
	default:
		return fmt.Errorf("projection: unknown runway state %q", label)
	}
	return nil
}

// KPISnapshot holds the single-point KPIs shown on the finance dashboard.
type KPISnapshot struct {
	MonthlyRevenue  float64 `json:"monthlyRevenue"`
	MonthlyExpenses float64 `json:"monthlyExpenses"`
	MonthlyBurn     float64 `json:"monthlyBurn"`
	NetIncome       float64 `json:"netIncome"`
	CashBalance     float64 `json:"cashBalance"`
	Runway          Runway  `json:"runwayMonths"`
}

// ProjectKPIs reduces the line items into burn, runway and net income.
func ProjectKPIs(revenue []RevenueItem, expenses []ExpenseItem, cashBalance float64) (KPISnapshot, error) {
	if !isFinite(cashBalance) {
		return KPISnapshot{}, invalidParameter("cashBalance", "must be a finite number")
	}
	var monthlyRevenue, monthlyExpenses float64
	for i, item := range revenue {
		if !isFinite(item.MRR) {
			return KPISnapshot{}, invalidParameter(fmt.Sprintf("revenue[%d].mrr", i), "must be a finite number")
		}
		monthlyRevenue += item.MRR
	}
	for i, item := range expenses {
		if !isFinite(item.MonthlyCost) {
			return KPISnapshot{}, invalidParameter(fmt.Sprintf("expenses[%d].monthlyCost", i), "must be a finite number")
		}
		monthlyExpenses += item.MonthlyCost
	}
	burn := monthlyExpenses - monthlyRevenue
	switch {
	case !isFinite(monthlyRevenue):
		return KPISnapshot{}, invalidParameter("revenue", "total overflows")
	case !isFinite(monthlyExpenses):
		return KPISnapshot{}, invalidParameter("expenses", "total overflows")
	case !isFinite(burn):
		return KPISnapshot{}, invalidParameter("burn", "result overflows")
	}
	return KPISnapshot{
		MonthlyRevenue:  monthlyRevenue,
		MonthlyExpenses: monthlyExpenses,
		MonthlyBurn:     burn,
		NetIncome:       monthlyRevenue - monthlyExpenses,
		CashBalance:     cashBalance,
		Runway:          runwayFor(cashBalance, burn),
	}, nil
}

func runwayFor(cash, burn float64) Runway {
	switch {
	case burn <= 0:
		return Runway{State: RunwayUnbounded}
	case cash <= 0:
		return Runway{State: RunwayDepleted}
	default:
		return Runway{State: RunwayFinite, Months: cash / burn}
	}
}

// Breakdown is a labeled total used by the breakdown charts.
type Breakdown struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// ExpensesByCategory totals expenses per category, largest first. Items
// without a category are grouped under "Other".
func ExpensesByCategory(expenses []ExpenseItem) []Breakdown {
	totals := map[string]float64{}
	for _, item := range expenses {
		totals[labelOr(item.Category)] += item.MonthlyCost
	}
	return sortedBreakdown(totals)
}

// RevenueBySegment totals MRR per segment, largest first.
func RevenueBySegment(revenue []RevenueItem) []Breakdown {
	totals := map[string]float64{}
	for _, item := range revenue {
		totals[labelOr(item.Segment)] += item.MRR
	}
	return sortedBreakdown(totals)
}

func labelOr(label string) string {
	if label == "" {
		return "Other"
	}
	return label
}

func sortedBreakdown(totals map[string]float64) []Breakdown {
	out := make([]Breakdown, 0, len(totals))
	for label, total := range totals {
		out = append(out, Breakdown{Label: label, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Label < out[j].Label
		}
		return out[i].Total > out[j].Total
	})
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
