package httpapi

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/dashboard/queries"
	"github.com/goliatone/go-bizdash/components/projection"
)

func (h *handlers) sweepQuery(c *fiber.Ctx) error {
	input, err := sweepInputFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.cfg.Queries.Sweep.Query(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *handlers) sweepBody(c *fiber.Ctx) error {
	var input queries.SweepInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	result, err := h.cfg.Queries.Sweep.Query(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *handlers) sweepCSV(c *fiber.Ctx) error {
	input, err := sweepInputFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.cfg.Queries.Sweep.Query(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := projection.WriteCSV(&buf, result.Dataset); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="sweep-`+strings.ReplaceAll(result.Scenario, " ", "-")+`.csv"`)
	return c.Send(buf.Bytes())
}

func (h *handlers) kpis(c *fiber.Ctx) error {
	result, err := h.cfg.Queries.KPIs.Query(c.UserContext(), queries.KPIInput{
		Scenario: c.Query("scenario"),
		Viewer:   h.viewer(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *handlers) scenarios(c *fiber.Ctx) error {
	list, err := h.cfg.Queries.Scenarios.Query(c.UserContext(), queries.ScenarioListInput{})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"scenarios": list})
}

func (h *handlers) saveScenario(c *fiber.Ctx) error {
	var params projection.SweepParameters
	if err := c.BodyParser(&params); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	name, err := scenarioParam(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.cfg.Commands.Scenario.Execute(c.UserContext(), commands.UpdateScenarioInput{Name: name, Parameters: params}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "saved", "scenario": name})
}

func (h *handlers) deleteScenario(c *fiber.Ctx) error {
	name, err := scenarioParam(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.cfg.Commands.DropScenario.Execute(c.UserContext(), commands.DeleteScenarioInput{Name: name}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func scenarioParam(c *fiber.Ctx) (string, error) {
	raw, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return dashboard.NormalizeScenarioName(raw), nil
}

// sweepInputFromQuery reads ?scenario= plus optional parameter overrides.
// Unparseable numbers are rejected rather than ignored.
func sweepInputFromQuery(c *fiber.Ctx) (queries.SweepInput, error) {
	input := queries.SweepInput{Scenario: c.Query("scenario")}
	o := &input.Overrides
	var err error
	if o.UsersMin, err = queryInt(c, "users_min"); err != nil {
		return input, err
	}
	if o.UsersMax, err = queryInt(c, "users_max"); err != nil {
		return input, err
	}
	if o.Step, err = queryInt(c, "step"); err != nil {
		return input, err
	}
	if o.ARPUCurrent, err = queryFloat(c, "arpu_current"); err != nil {
		return input, err
	}
	if o.ARPUSuper, err = queryFloat(c, "arpu_super"); err != nil {
		return input, err
	}
	if o.LowBand, err = queryBand(c, "low"); err != nil {
		return input, err
	}
	if o.HighBand, err = queryBand(c, "high"); err != nil {
		return input, err
	}
	return input, nil
}

func queryInt(c *fiber.Ctx, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+": "+raw)
	}
	return &v, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+": "+raw)
	}
	return &v, nil
}

func queryBand(c *fiber.Ctx, prefix string) (*dashboard.BandOverride, error) {
	lo, err := queryFloat(c, prefix+"_min")
	if err != nil {
		return nil, err
	}
	hi, err := queryFloat(c, prefix+"_max")
	if err != nil {
		return nil, err
	}
	if lo == nil && hi == nil {
		return nil, nil
	}
	return &dashboard.BandOverride{Min: lo, Max: hi}, nil
}
