package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/dashboard/queries"
)

type assignPayload struct {
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration"`
	Position      *int           `json:"position"`
	Roles         []string       `json:"roles"`
}

func (h *handlers) assign(c *fiber.Ctx) error {
	var payload assignPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	viewer := h.viewer(c)
	err := h.cfg.Commands.Assign.Execute(c.UserContext(), dashboard.AddWidgetRequest{
		DefinitionID:  payload.DefinitionID,
		AreaCode:      payload.AreaCode,
		Configuration: payload.Configuration,
		Position:      payload.Position,
		Roles:         payload.Roles,
		UserID:        viewer.UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "created"})
}

func (h *handlers) update(c *fiber.Ctx) error {
	var payload struct {
		Configuration map[string]any `json:"configuration"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	err := h.cfg.Commands.Update.Execute(c.UserContext(), commands.UpdateWidgetInput{
		WidgetID:      c.Params("id"),
		Configuration: payload.Configuration,
		UserID:        h.viewer(c).UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

func (h *handlers) remove(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "widget id is required"))
	}
	err := h.cfg.Commands.Remove.Execute(c.UserContext(), commands.RemoveWidgetInput{
		WidgetID: id,
		UserID:   h.viewer(c).UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) reorder(c *fiber.Ctx) error {
	var payload commands.ReorderWidgetsInput
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	if err := h.cfg.Commands.Reorder.Execute(c.UserContext(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "reordered"})
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	var payload commands.RefreshWidgetInput
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	if err := h.cfg.Commands.Refresh.Execute(c.UserContext(), payload); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
}

func (h *handlers) preferences(c *fiber.Ctx) error {
	var payload commands.SaveLayoutPreferencesInput
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	payload.Viewer = h.viewer(c)
	if payload.Viewer.UserID == "" {
		return respondError(c, fiber.NewError(fiber.StatusUnauthorized, "viewer is required"))
	}
	if err := h.cfg.Commands.Preferences.Execute(c.UserContext(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "saved"})
}

func (h *handlers) widget(c *fiber.Ctx) error {
	widget, err := h.cfg.Queries.Widget.Query(c.UserContext(), queries.WidgetInput{
		Viewer:   h.viewer(c),
		WidgetID: c.Params("id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(widget)
}

func (h *handlers) area(c *fiber.Ctx) error {
	area, err := h.cfg.Queries.Area.Query(c.UserContext(), queries.AreaInput{
		Viewer:   h.viewer(c),
		AreaCode: c.Params("area"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(area)
}
