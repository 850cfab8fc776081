package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"glue-backend/controllers"
	notificationhandler "glue-backend/lib/notification"
	"glue-backend/middleware"
	apimodels "glue-backend/models/api"
)

type notificationApiController struct {
	controllers.BaseAPIController
}

func InitNotificationApiRouters(app *fiber.App) {
	controller := notificationApiController{}
	app.Route("notifications", func(router fiber.Router) {
		router.Post("list", controller.list)
		router.Get("unread_count", controller.unreadCount)
		router.Post("read_all", controller.markAllRead)
		router.Post(":id/read", controller.markRead)
	})
}

// @Summary List notifications
// @Tags Notifications
// @Description List notifications of the current user
// @Param   Authorization	header	string					true	"Authorization token"
// @Param	body 			body	apimodels.Pagination	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/notifications/list [post]
func (c *notificationApiController) list(ctx *fiber.Ctx) error {
	var payload apimodels.Pagination
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	list, rowCount, err := notificationhandler.Instance.List(spaceID, userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list notifications")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Unread count
// @Tags Notifications
// @Description Count of unread notifications of the current user
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/notifications/unread_count [get]
func (c *notificationApiController) unreadCount(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	count, err := notificationhandler.Instance.UnreadCount(spaceID, userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to count notifications")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(count))
}

// @Summary Mark notification read
// @Tags Notifications
// @Description Mark one notification as read
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/notifications/{id}/read [post]
func (c *notificationApiController) markRead(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	if err = notificationhandler.Instance.MarkRead(spaceID, userID, id); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to mark notification read")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Mark all notifications read
// @Tags Notifications
// @Description Mark all notifications of the current user as read
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/notifications/read_all [post]
func (c *notificationApiController) markAllRead(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	if err := notificationhandler.Instance.MarkAllRead(spaceID, userID); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to mark notifications read")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
