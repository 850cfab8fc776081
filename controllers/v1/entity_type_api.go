package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"glue-backend/controllers"
	entitytypehandler "glue-backend/lib/entity-type"
	"glue-backend/middleware"
	apimodels "glue-backend/models/api"
	entityapimodels "glue-backend/models/api/entity"
)

type entityTypeApiController struct {
	controllers.BaseAPIController
}

func InitEntityTypeApiRouters(app *fiber.App) {
	controller := entityTypeApiController{}
	app.Route("entity_types", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Get(":id", controller.getByID)
		router.Post("", middleware.SpaceAdminRequired(), controller.create)
		router.Put(":id", middleware.SpaceAdminRequired(), controller.update)
		router.Put(":id/workflow", middleware.SpaceAdminRequired(), controller.saveWorkflow)
	})
}

// @Summary Create entity type
// @Tags Entity types
// @Description Create entity type with field schema
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	entityapimodels.EntityTypeData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/entity_types [post]
func (c *entityTypeApiController) create(ctx *fiber.Ctx) error {
	var payload entityapimodels.EntityTypeData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	id, err := entitytypehandler.Instance.Create(spaceID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to create entity type")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Update entity type
// @Tags Entity types
// @Description Update entity type name and field schema
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	entityapimodels.EntityTypeData	true	"request body"
// @Param   id          	path    string							true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/entity_types/{id} [put]
func (c *entityTypeApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload entityapimodels.EntityTypeData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	if err = entitytypehandler.Instance.Update(spaceID, id, payload); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to update entity type")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Get entity type
// @Tags Entity types
// @Description Get entity type with schema and approval workflow
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response{data=entityapimodels.EntityTypeView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/entity_types/{id} [get]
func (c *entityTypeApiController) getByID(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	view, hMsg, err := entitytypehandler.Instance.GetByID(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get entity type")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary List entity types
// @Tags Entity types
// @Description List entity types of the organization
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]entityapimodels.EntityTypeView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/entity_types [get]
func (c *entityTypeApiController) list(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	list, err := entitytypehandler.Instance.List(spaceID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list entity types")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Save approval workflow
// @Tags Entity types
// @Description Save the ordered approval chain for the entity type
// @Param   Authorization	header	string								true	"Authorization token"
// @Param	body 			body	entityapimodels.WorkflowStepsData	true	"request body"
// @Param   id          	path    string								true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/entity_types/{id}/workflow [put]
func (c *entityTypeApiController) saveWorkflow(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload entityapimodels.WorkflowStepsData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	hMsg, err := entitytypehandler.Instance.SaveWorkflow(spaceID, id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to save approval workflow")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
