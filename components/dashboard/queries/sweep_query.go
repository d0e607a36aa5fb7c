package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	gocommand "github.com/goliatone/go-command"
)

// SweepInput selects a scenario and optional parameter overrides.
type SweepInput struct {
	Scenario  string                   `json:"scenario"`
	Overrides dashboard.SweepOverrides `json:"overrides"`
}

// SweepResult is the dataset with the parameters that produced it.
type SweepResult struct {
	Scenario   string                     `json:"scenario"`
	Parameters projection.SweepParameters `json:"parameters"`
	Dataset    projection.Dataset         `json:"dataset"`
}

type sweepResolver interface {
	Resolve(ctx context.Context, scenario string, overrides dashboard.SweepOverrides) (projection.Dataset, projection.SweepParameters, error)
}

// SweepQuery generates the valuation sweep for a scenario.
type SweepQuery struct {
	source sweepResolver
}

// NewSweepQuery builds the query.
func NewSweepQuery(source sweepResolver) *SweepQuery {
	return &SweepQuery{source: source}
}

var _ gocommand.Querier[SweepInput, SweepResult] = (*SweepQuery)(nil)

// Query resolves the scenario and returns its dataset.
func (q *SweepQuery) Query(ctx context.Context, input SweepInput) (SweepResult, error) {
	if q.source == nil {
		return SweepResult{}, errors.New("sweep query requires sweep source")
	}
	name := dashboard.NormalizeScenarioName(input.Scenario)
	dataset, params, err := q.source.Resolve(ctx, name, input.Overrides)
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{Scenario: name, Parameters: params, Dataset: dataset}, nil
}

// ScenarioListQuery lists stored scenarios.
type ScenarioListQuery struct {
	store dashboard.ScenarioStore
}

// NewScenarioListQuery builds the query.
func NewScenarioListQuery(store dashboard.ScenarioStore) *ScenarioListQuery {
	return &ScenarioListQuery{store: store}
}

// ScenarioListInput is empty; the query lists every scenario.
type ScenarioListInput struct{}

var _ gocommand.Querier[ScenarioListInput, []dashboard.Scenario] = (*ScenarioListQuery)(nil)

// Query returns the scenarios sorted by name.
func (q *ScenarioListQuery) Query(ctx context.Context, _ ScenarioListInput) ([]dashboard.Scenario, error) {
	if q.store == nil {
		return nil, errors.New("scenario query requires scenario store")
	}
	return q.store.ListScenarios(ctx)
}
