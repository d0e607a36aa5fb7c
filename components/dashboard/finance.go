package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-bizdash/components/projection"
)

// DefaultScenarioName is the scenario sweep widgets fall back to.
const DefaultScenarioName = "baseline"

// ErrScenarioNotFound is returned by scenario stores for unknown names.
var ErrScenarioNotFound = errors.New("dashboard: scenario not found")

// FinanceQuery scopes a finance lookup.
type FinanceQuery struct {
	Scenario string
	Viewer   ViewerContext
}

// FinanceSnapshot groups the line items and cash position KPIs are derived from.
type FinanceSnapshot struct {
	Revenue     []projection.RevenueItem `json:"revenue" yaml:"revenue"`
	Expenses    []projection.ExpenseItem `json:"expenses" yaml:"expenses"`
	CashBalance float64                  `json:"cashBalance" yaml:"cash_balance"`
}

// KPIs projects the snapshot through projection.ProjectKPIs.
func (s FinanceSnapshot) KPIs() (projection.KPISnapshot, error) {
	return projection.ProjectKPIs(s.Revenue, s.Expenses, s.CashBalance)
}

// FinanceRepository fetches the data KPI and breakdown widgets render.
type FinanceRepository interface {
	FetchFinance(ctx context.Context, query FinanceQuery) (FinanceSnapshot, error)
}

// FinanceRepositoryFunc adapts a function into a FinanceRepository.
type FinanceRepositoryFunc func(ctx context.Context, query FinanceQuery) (FinanceSnapshot, error)

// FetchFinance calls f.
func (f FinanceRepositoryFunc) FetchFinance(ctx context.Context, query FinanceQuery) (FinanceSnapshot, error) {
	return f(ctx, query)
}

// NewStaticFinanceRepository returns a repository that always serves snapshot.
func NewStaticFinanceRepository(snapshot FinanceSnapshot) FinanceRepository {
	return staticFinanceRepository{snapshot: snapshot}
}

type staticFinanceRepository struct {
	snapshot FinanceSnapshot
}

func (s staticFinanceRepository) FetchFinance(context.Context, FinanceQuery) (FinanceSnapshot, error) {
	return cloneFinanceSnapshot(s.snapshot), nil
}

func cloneFinanceSnapshot(s FinanceSnapshot) FinanceSnapshot {
	out := FinanceSnapshot{CashBalance: s.CashBalance}
	out.Revenue = append([]projection.RevenueItem(nil), s.Revenue...)
	out.Expenses = append([]projection.ExpenseItem(nil), s.Expenses...)
	return out
}

// DemoFinanceSnapshot is the mock company used when no ledger is configured.
func DemoFinanceSnapshot() FinanceSnapshot {
	return FinanceSnapshot{
		Revenue: []projection.RevenueItem{
			{Name: "Starter plans", Segment: "Self-serve", MRR: 18400},
			{Name: "Team plans", Segment: "Self-serve", MRR: 26250},
			{Name: "Enterprise contracts", Segment: "Enterprise", MRR: 41000},
			{Name: "Onboarding services", Segment: "Services", MRR: 6200},
		},
		Expenses: []projection.ExpenseItem{
			{Name: "Engineering payroll", Category: "Payroll", MonthlyCost: 68000},
			{Name: "Go-to-market payroll", Category: "Payroll", MonthlyCost: 31000},
			{Name: "Cloud hosting", Category: "Infrastructure", MonthlyCost: 9400},
			{Name: "Observability", Category: "Infrastructure", MonthlyCost: 1800},
			{Name: "Paid acquisition", Category: "Marketing", MonthlyCost: 12500},
			{Name: "Office lease", Category: "Facilities", MonthlyCost: 7200},
			{Name: "SaaS tooling", Category: "Software", MonthlyCost: 2600},
		},
		CashBalance: 1_250_000,
	}
}

// Scenario is a named set of sweep parameters.
type Scenario struct {
	Name       string                     `json:"name" yaml:"name"`
	Parameters projection.SweepParameters `json:"parameters" yaml:"parameters"`
	UpdatedAt  time.Time                  `json:"updated_at" yaml:"updated_at,omitempty"`
}

// ScenarioStore persists named sweep scenarios.
type ScenarioStore interface {
	SaveScenario(ctx context.Context, scenario Scenario) error
	LoadScenario(ctx context.Context, name string) (Scenario, error)
	ListScenarios(ctx context.Context) ([]Scenario, error)
	DeleteScenario(ctx context.Context, name string) error
}

// InMemoryScenarioStore keeps scenarios in a map.
type InMemoryScenarioStore struct {
	mu   sync.RWMutex
	data map[string]Scenario
	now  func() time.Time
}

// NewInMemoryScenarioStore creates an empty store.
func NewInMemoryScenarioStore() *InMemoryScenarioStore {
	return &InMemoryScenarioStore{
		data: make(map[string]Scenario),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SaveScenario validates and stores the scenario, replacing any previous entry.
func (s *InMemoryScenarioStore) SaveScenario(_ context.Context, scenario Scenario) error {
	name, err := normalizeScenarioName(scenario.Name)
	if err != nil {
		return err
	}
	if err := scenario.Parameters.Validate(); err != nil {
		return err
	}
	scenario.Name = name
	scenario.UpdatedAt = s.now()
	s.mu.Lock()
	s.data[name] = scenario
	s.mu.Unlock()
	return nil
}

// LoadScenario returns the named scenario or ErrScenarioNotFound.
func (s *InMemoryScenarioStore) LoadScenario(_ context.Context, name string) (Scenario, error) {
	name, err := normalizeScenarioName(name)
	if err != nil {
		return Scenario{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	scenario, ok := s.data[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	return scenario, nil
}

// ListScenarios returns all scenarios sorted by name.
func (s *InMemoryScenarioStore) ListScenarios(context.Context) ([]Scenario, error) {
	s.mu.RLock()
	out := make([]Scenario, 0, len(s.data))
	for _, scenario := range s.data {
		out = append(out, scenario)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteScenario removes the named scenario.
func (s *InMemoryScenarioStore) DeleteScenario(_ context.Context, name string) error {
	name, err := normalizeScenarioName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[name]; !ok {
		return fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	delete(s.data, name)
	return nil
}

func normalizeScenarioName(name string) (string, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return "", errors.New("dashboard: scenario name is required")
	}
	return name, nil
}

// NormalizeScenarioName lowercases and trims a scenario name, defaulting to
// DefaultScenarioName when empty.
func NormalizeScenarioName(name string) string {
	if normalized, err := normalizeScenarioName(name); err == nil {
		return normalized
	}
	return DefaultScenarioName
}

// SweepSource resolves scenario parameters and serves datasets through a
// shared memo so widgets on the same scenario reuse one computation.
type SweepSource struct {
	scenarios ScenarioStore
	memo      *projection.SweepMemo
}

// NewSweepSource wires a scenario store and memo. Nil arguments get in-memory defaults.
func NewSweepSource(store ScenarioStore, memo *projection.SweepMemo) *SweepSource {
	if store == nil {
		store = NewInMemoryScenarioStore()
	}
	if memo == nil {
		memo = projection.NewSweepMemo(projection.WithMemoSlots(projection.DefaultMemoSlots))
	}
	return &SweepSource{scenarios: store, memo: memo}
}

// Scenarios exposes the backing store.
func (s *SweepSource) Scenarios() ScenarioStore {
	return s.scenarios
}

// Memo exposes the dataset memo.
func (s *SweepSource) Memo() *projection.SweepMemo {
	return s.memo
}

// Parameters returns the stored parameters for name. The default scenario
// resolves to projection.DefaultSweepParameters until one is saved.
func (s *SweepSource) Parameters(ctx context.Context, name string) (projection.SweepParameters, error) {
	name = NormalizeScenarioName(name)
	scenario, err := s.scenarios.LoadScenario(ctx, name)
	if err == nil {
		return scenario.Parameters, nil
	}
	if errors.Is(err, ErrScenarioNotFound) && name == DefaultScenarioName {
		return projection.DefaultSweepParameters(), nil
	}
	return projection.SweepParameters{}, err
}

// Dataset generates (or reuses) the sweep for params.
func (s *SweepSource) Dataset(params projection.SweepParameters) (projection.Dataset, error) {
	return s.memo.Get(params)
}

// Resolve loads the scenario, applies overrides and returns the dataset with
// the effective parameters.
func (s *SweepSource) Resolve(ctx context.Context, scenario string, overrides SweepOverrides) (projection.Dataset, projection.SweepParameters, error) {
	params, err := s.Parameters(ctx, scenario)
	if err != nil {
		return nil, projection.SweepParameters{}, err
	}
	params = overrides.Apply(params)
	dataset, err := s.Dataset(params)
	if err != nil {
		return nil, params, err
	}
	return dataset, params, nil
}
