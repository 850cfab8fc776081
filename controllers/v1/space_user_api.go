package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"glue-backend/controllers"
	"glue-backend/db"
	spaceusersstore "glue-backend/lib/space/users/store"
	"glue-backend/middleware"
	apimodels "glue-backend/models/api"
	spaceapimodels "glue-backend/models/api/space"
)

type spaceUserApiController struct {
	controllers.BaseAPIController
}

func InitSpaceUserRouters(app *fiber.App) {
	controller := spaceUserApiController{}
	app.Route("users", func(router fiber.Router) {
		router.Get("", controller.list)
	})
}

// @Summary List organization users
// @Tags Users
// @Description List users of the organization for approver assignment
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]spaceapimodels.SpaceUserView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/users [get]
func (c *spaceUserApiController) list(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	list, err := spaceusersstore.NewInstance(db.DB).List(spaceID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list users")
	}
	result := make([]spaceapimodels.SpaceUserView, 0, len(list))
	for _, rec := range list {
		result = append(result, spaceapimodels.SpaceUserConvert(rec))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
