package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"glue-backend/controllers"
	slahandler "glue-backend/lib/sla"
	"glue-backend/middleware"
	apimodels "glue-backend/models/api"
)

type slaApiController struct {
	controllers.BaseAPIController
}

// InitSlaCronRouters - эндпоинт для внешнего планировщика, вместо JWT
// защищен секретом в заголовке
func InitSlaCronRouters(app *fiber.App) {
	controller := slaApiController{}
	app.Route("sla", func(router fiber.Router) {
		router.Post("run", middleware.CronSecretRequired(), controller.run)
	})
}

// InitSlaApiRouters - ручной запуск скана администратором
func InitSlaApiRouters(app *fiber.App) {
	controller := slaApiController{}
	app.Route("sla", func(router fiber.Router) {
		router.Post("run", middleware.SpaceAdminRequired(), controller.run)
	})
}

// @Summary Run SLA scan
// @Tags SLA
// @Description Scan overdue approval steps, send reminders and escalate
// @Param   X-Cron-Secret	header	string	true	"scheduler secret"
// @Success 200 {object} apimodels.Response{data=slahandler.ScanResult}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/sla/run [post]
func (c *slaApiController) run(ctx *fiber.Ctx) error {
	result, err := slahandler.Instance.Scan()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to run SLA scan")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
