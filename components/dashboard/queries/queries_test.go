package queries

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
)

type stubWidgetReader struct {
	widgetCalls int
	areaCalls   int
	lastViewer  dashboard.ViewerContext
	lastArea    string
}

func (s *stubWidgetReader) GetWidget(_ context.Context, viewer dashboard.ViewerContext, id string) (dashboard.WidgetInstance, error) {
	s.widgetCalls++
	s.lastViewer = viewer
	if id == "missing" {
		return dashboard.WidgetInstance{}, dashboard.ErrWidgetNotFound
	}
	return dashboard.WidgetInstance{ID: id}, nil
}

func (s *stubWidgetReader) ResolveArea(_ context.Context, viewer dashboard.ViewerContext, area string) (dashboard.ResolvedArea, error) {
	s.areaCalls++
	s.lastViewer = viewer
	s.lastArea = area
	return dashboard.ResolvedArea{AreaCode: area}, nil
}

func TestWidgetQuery(t *testing.T) {
	reader := &stubWidgetReader{}
	query := NewWidgetQuery(reader)
	widget, err := query.Query(context.Background(), WidgetInput{Viewer: dashboard.ViewerContext{UserID: "cfo"}, WidgetID: "w1"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if widget.ID != "w1" || reader.lastViewer.UserID != "cfo" {
		t.Fatalf("unexpected widget %+v for viewer %+v", widget, reader.lastViewer)
	}
	if _, err := query.Query(context.Background(), WidgetInput{WidgetID: "missing"}); !errors.Is(err, dashboard.ErrWidgetNotFound) {
		t.Fatalf("expected ErrWidgetNotFound, got %v", err)
	}
	if _, err := NewWidgetQuery(nil).Query(context.Background(), WidgetInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestAreaQuery(t *testing.T) {
	reader := &stubWidgetReader{}
	area, err := NewAreaQuery(reader).Query(context.Background(), AreaInput{AreaCode: dashboard.AreaMain})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if area.AreaCode != dashboard.AreaMain || reader.areaCalls != 1 {
		t.Fatalf("unexpected area %+v after %d calls", area, reader.areaCalls)
	}
}

func TestAreaQueryAgainstService(t *testing.T) {
	ctx := context.Background()
	service := dashboard.NewService(dashboard.Options{WidgetStore: dashboard.NewInMemoryWidgetStore()})
	if _, err := service.AddWidget(ctx, dashboard.AddWidgetRequest{DefinitionID: dashboard.WidgetKPISummary, AreaCode: dashboard.AreaSidebar}); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	area, err := NewAreaQuery(service).Query(ctx, AreaInput{AreaCode: dashboard.AreaSidebar})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(area.Widgets) != 1 {
		t.Fatalf("expected one widget, got %d", len(area.Widgets))
	}
	if _, ok := area.Widgets[0].Metadata["data"]; !ok {
		t.Fatalf("expected provider data on area widgets, got %#v", area.Widgets[0].Metadata)
	}
}

func TestSweepQueryDefaultsToBaseline(t *testing.T) {
	query := NewSweepQuery(dashboard.NewSweepSource(nil, nil))
	result, err := query.Query(context.Background(), SweepInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if result.Scenario != dashboard.DefaultScenarioName {
		t.Fatalf("expected baseline scenario, got %q", result.Scenario)
	}
	if len(result.Dataset) != 11 {
		t.Fatalf("expected 11 points, got %d", len(result.Dataset))
	}
	last := result.Dataset[len(result.Dataset)-1]
	if last.Users != 100_000 || last.ARRCurrent != 1_000_000 {
		t.Fatalf("unexpected last point %+v", last)
	}
}

func TestSweepQueryAppliesOverrides(t *testing.T) {
	query := NewSweepQuery(dashboard.NewSweepSource(nil, nil))
	usersMax := int64(20_000)
	result, err := query.Query(context.Background(), SweepInput{Overrides: dashboard.SweepOverrides{UsersMax: &usersMax}})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(result.Dataset) != 3 || result.Parameters.UsersMax != 20_000 {
		t.Fatalf("unexpected result %+v", result)
	}

	usersMin := int64(50_000)
	_, err = query.Query(context.Background(), SweepInput{Overrides: dashboard.SweepOverrides{UsersMin: &usersMin, UsersMax: &usersMax}})
	if !errors.Is(err, projection.ErrDegenerateRange) {
		t.Fatalf("expected ErrDegenerateRange, got %v", err)
	}
}

func TestSweepQueryUnknownScenario(t *testing.T) {
	query := NewSweepQuery(dashboard.NewSweepSource(nil, nil))
	_, err := query.Query(context.Background(), SweepInput{Scenario: "missing"})
	if !errors.Is(err, dashboard.ErrScenarioNotFound) {
		t.Fatalf("expected ErrScenarioNotFound, got %v", err)
	}
}

func TestScenarioListQuery(t *testing.T) {
	store := dashboard.NewInMemoryScenarioStore()
	if _, err := dashboard.SeedScenario(context.Background(), store); err != nil {
		t.Fatalf("SeedScenario: %v", err)
	}
	list, err := NewScenarioListQuery(store).Query(context.Background(), ScenarioListInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(list) != 1 || list[0].Name != dashboard.DefaultScenarioName {
		t.Fatalf("unexpected scenarios %+v", list)
	}
}

func TestKPIQuery(t *testing.T) {
	query := NewKPIQuery(dashboard.NewStaticFinanceRepository(dashboard.DemoFinanceSnapshot()))
	result, err := query.Query(context.Background(), KPIInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if result.KPIs.MonthlyBurn != 40650 {
		t.Fatalf("expected burn 40650, got %v", result.KPIs.MonthlyBurn)
	}
	if result.KPIs.Runway.State != projection.RunwayFinite {
		t.Fatalf("expected finite runway, got %v", result.KPIs.Runway.State)
	}
	if len(result.ExpenseCategories) != 5 || result.ExpenseCategories[0].Label != "Payroll" {
		t.Fatalf("unexpected expense categories %+v", result.ExpenseCategories)
	}
	if len(result.RevenueSegments) != 3 {
		t.Fatalf("unexpected revenue segments %+v", result.RevenueSegments)
	}
}

func TestKPIQueryWrapsRepositoryErrors(t *testing.T) {
	boom := errors.New("ledger offline")
	query := NewKPIQuery(dashboard.FinanceRepositoryFunc(func(context.Context, dashboard.FinanceQuery) (dashboard.FinanceSnapshot, error) {
		return dashboard.FinanceSnapshot{}, boom
	}))
	_, err := query.Query(context.Background(), KPIInput{Scenario: "Bridge"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
