package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"glue-backend/controllers"
	automationhandler "glue-backend/lib/automation"
	"glue-backend/lib/graph"
	"glue-backend/middleware"
	apimodels "glue-backend/models/api"
	automationapimodels "glue-backend/models/api/automation"
)

type automationApiController struct {
	controllers.BaseAPIController
}

func InitAutomationApiRouters(app *fiber.App) {
	controller := automationApiController{}
	app.Route("automation", func(router fiber.Router) {
		router.Get("graph", controller.getLatest)
		router.Put("graph", middleware.SpaceAdminRequired(), controller.save)
		router.Post("graph/validate", controller.validate)
	})
}

// @Summary Save automation graph
// @Tags Automation
// @Description Validate and save the automation graph, bumping its version
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	automationapimodels.GraphData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/automation/graph [put]
func (c *automationApiController) save(ctx *fiber.Ctx) error {
	var payload automationapimodels.GraphData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	hMsg, err := automationhandler.Instance.Save(spaceID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to save automation graph")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Get automation graph
// @Tags Automation
// @Description Get the latest saved automation graph
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=automationapimodels.GraphView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/automation/graph [get]
func (c *automationApiController) getLatest(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	view, err := automationhandler.Instance.GetLatest(spaceID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get automation graph")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Validate automation graph
// @Tags Automation
// @Description Validate the graph without saving, returns errors and execution order
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	automationapimodels.GraphData	true	"request body"
// @Success 200 {object} apimodels.Response{data=graph.Result}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @router /api/v1/space/automation/graph/validate [post]
func (c *automationApiController) validate(ctx *fiber.Ctx) error {
	var payload automationapimodels.GraphData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result := graph.Validate(payload.Nodes, payload.Edges)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
