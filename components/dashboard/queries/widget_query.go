package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

var errMissingService = errors.New("queries: service is not configured")

type widgetReader interface {
	GetWidget(ctx context.Context, viewer dashboard.ViewerContext, widgetID string) (dashboard.WidgetInstance, error)
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// WidgetInput names one placed widget as seen by a viewer.
type WidgetInput struct {
	Viewer   dashboard.ViewerContext
	WidgetID string
}

// WidgetQuery renders a single widget. Transports call it after a refresh
// event instead of reloading the whole layout.
type WidgetQuery struct {
	service widgetReader
}

// NewWidgetQuery builds the query.
func NewWidgetQuery(service widgetReader) *WidgetQuery {
	return &WidgetQuery{service: service}
}

var _ gocommand.Querier[WidgetInput, dashboard.WidgetInstance] = (*WidgetQuery)(nil)

// Query returns the widget with its provider data in Metadata["data"].
func (q *WidgetQuery) Query(ctx context.Context, input WidgetInput) (dashboard.WidgetInstance, error) {
	if q == nil || q.service == nil {
		return dashboard.WidgetInstance{}, errMissingService
	}
	return q.service.GetWidget(ctx, input.Viewer, input.WidgetID)
}

// AreaInput names one dashboard area as seen by a viewer.
type AreaInput struct {
	Viewer   dashboard.ViewerContext
	AreaCode string
}

// AreaQuery renders every widget the viewer may see in one area.
type AreaQuery struct {
	service widgetReader
}

// NewAreaQuery builds the query.
func NewAreaQuery(service widgetReader) *AreaQuery {
	return &AreaQuery{service: service}
}

var _ gocommand.Querier[AreaInput, dashboard.ResolvedArea] = (*AreaQuery)(nil)

// Query resolves the area in stored order with provider data attached.
func (q *AreaQuery) Query(ctx context.Context, input AreaInput) (dashboard.ResolvedArea, error) {
	if q == nil || q.service == nil {
		return dashboard.ResolvedArea{}, errMissingService
	}
	return q.service.ResolveArea(ctx, input.Viewer, input.AreaCode)
}
