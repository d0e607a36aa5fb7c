package scenarios

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	"gopkg.in/yaml.v3"
)

const fileVersionV1 = "1"

// File is a YAML document describing one or more planning scenarios. Each
// entry may carry sweep parameters, a finance snapshot, or both.
type File struct {
	Version   string  `yaml:"version"`
	Scenarios []Entry `yaml:"scenarios"`
	Source    string  `yaml:"-"`
}

// Entry is a single named scenario inside a File.
type Entry struct {
	Name        string                      `yaml:"name"`
	Description string                      `yaml:"description,omitempty"`
	Sweep       *projection.SweepParameters `yaml:"sweep,omitempty"`
	Revenue     []projection.RevenueItem    `yaml:"revenue,omitempty"`
	Expenses    []projection.ExpenseItem    `yaml:"expenses,omitempty"`
	CashBalance float64                     `yaml:"cash_balance,omitempty"`
}

// Finance returns the entry's ledger data as a dashboard snapshot.
func (e Entry) Finance() dashboard.FinanceSnapshot {
	return dashboard.FinanceSnapshot{
		Revenue:     append([]projection.RevenueItem(nil), e.Revenue...),
		Expenses:    append([]projection.ExpenseItem(nil), e.Expenses...),
		CashBalance: e.CashBalance,
	}
}

// ReadFile loads and validates a scenario file from disk.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("scenarios: open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scenarios: decode %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// Decode reads a scenario file from any reader. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc File
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenarios: file is empty")
		}
		return nil, fmt.Errorf("scenarios: parse: %w", err)
	}
	if doc.Version == "" {
		doc.Version = fileVersionV1
	}
	for i := range doc.Scenarios {
		doc.Scenarios[i].Name = dashboard.NormalizeScenarioName(doc.Scenarios[i].Name)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks versions, unique names and sweep parameters.
func (f *File) Validate() error {
	if f.Version != fileVersionV1 {
		return fmt.Errorf("scenarios: unsupported file version %q", f.Version)
	}
	seen := make(map[string]struct{}, len(f.Scenarios))
	for _, entry := range f.Scenarios {
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("scenarios: duplicate scenario %s", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		if entry.Sweep != nil {
			if err := entry.Sweep.Validate(); err != nil {
				return fmt.Errorf("scenarios: %s: %w", entry.Name, err)
			}
		}
		for _, line := range entry.Expenses {
			if line.MonthlyCost < 0 {
				return fmt.Errorf("scenarios: %s: expense %q has a negative cost", entry.Name, line.Name)
			}
		}
	}
	return nil
}

// Lookup returns the entry for name. The default scenario falls back to the
// first entry when the file does not name one explicitly.
func (f *File) Lookup(name string) (Entry, bool) {
	name = dashboard.NormalizeScenarioName(name)
	for _, entry := range f.Scenarios {
		if entry.Name == name {
			return entry, true
		}
	}
	if name == dashboard.DefaultScenarioName && len(f.Scenarios) > 0 {
		return f.Scenarios[0], true
	}
	return Entry{}, false
}

// Import saves every entry that carries sweep parameters into store and
// returns how many were written.
func (f *File) Import(ctx context.Context, store dashboard.ScenarioStore) (int, error) {
	if store == nil {
		return 0, errors.New("scenarios: store is nil")
	}
	count := 0
	for _, entry := range f.Scenarios {
		if entry.Sweep == nil {
			continue
		}
		err := store.SaveScenario(ctx, dashboard.Scenario{Name: entry.Name, Parameters: *entry.Sweep})
		if err != nil {
			return count, fmt.Errorf("scenarios: import %s: %w", entry.Name, err)
		}
		count++
	}
	return count, nil
}

// FinanceRepository serves finance snapshots from a scenario file.
type FinanceRepository struct {
	file *File
}

// NewFinanceRepository wraps file as a dashboard.FinanceRepository.
func NewFinanceRepository(file *File) *FinanceRepository {
	if file == nil {
		file = &File{Version: fileVersionV1}
	}
	return &FinanceRepository{file: file}
}

// FetchFinance returns the snapshot for the query's scenario.
func (r *FinanceRepository) FetchFinance(_ context.Context, query dashboard.FinanceQuery) (dashboard.FinanceSnapshot, error) {
	entry, ok := r.file.Lookup(query.Scenario)
	if !ok {
		return dashboard.FinanceSnapshot{}, fmt.Errorf("%w: %s", dashboard.ErrScenarioNotFound, dashboard.NormalizeScenarioName(query.Scenario))
	}
	return entry.Finance(), nil
}

var _ dashboard.FinanceRepository = (*FinanceRepository)(nil)
