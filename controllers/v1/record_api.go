package apiv1

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"glue-backend/controllers"
	audithandler "glue-backend/lib/audit"
	commenthandler "glue-backend/lib/comment"
	xlsexport "glue-backend/lib/export/xls"
	recordhandler "glue-backend/lib/record"
	workflowhandler "glue-backend/lib/workflow"
	"glue-backend/middleware"
	apimodels "glue-backend/models/api"
	recordapimodels "glue-backend/models/api/record"
)

type recordApiController struct {
	controllers.BaseAPIController
}

func InitRecordApiRouters(app *fiber.App) {
	controller := recordApiController{}
	app.Route("records", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Post("list", controller.list)
		router.Post("export/xls", controller.exportXls)
		router.Get(":id", controller.getByID)
		router.Get(":id/audit", controller.audit)
		router.Post(":id/approve", controller.approve)
		router.Post(":id/reject", controller.reject)
		router.Get(":id/comments", controller.listComments)
		router.Post(":id/comments", controller.addComment)
		router.Post(":id/comments/:commentId/resolve", controller.resolveComment)
	})
}

// @Summary Submit record
// @Tags Records
// @Description Submit a record for approval
// @Param   Authorization	header	string								true	"Authorization token"
// @Param	body 			body	recordapimodels.RecordCreateData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records [post]
func (c *recordApiController) create(ctx *fiber.Ctx) error {
	var payload recordapimodels.RecordCreateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	userRole := middleware.GetSpaceRole(ctx)
	id, hMsg, err := recordhandler.Instance.Create(spaceID, userID, userRole, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to submit record")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary List records
// @Tags Records
// @Description List records with filter and pagination
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	recordapimodels.RecordFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]recordapimodels.RecordView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/list [post]
func (c *recordApiController) list(ctx *fiber.Ctx) error {
	var payload recordapimodels.RecordFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	list, rowCount, err := recordhandler.Instance.List(spaceID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list records")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Export records
// @Tags Records
// @Description Export filtered records to xlsx
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	recordapimodels.RecordFilter	true	"request body"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/export/xls [post]
func (c *recordApiController) exportXls(ctx *fiber.Ctx) error {
	var payload recordapimodels.RecordFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	list, _, err := recordhandler.Instance.List(spaceID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list records")
	}
	buf, err := xlsexport.Instance.ExportRecordList(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to export records")
	}
	fileName := fmt.Sprintf("records_%v.xlsx", time.Now().Format("02-01-2006"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%v"`, fileName))
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}

// @Summary Get record
// @Tags Records
// @Description Get record with workflow steps and comments
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response{data=recordapimodels.RecordView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/{id} [get]
func (c *recordApiController) getByID(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	view, hMsg, err := recordhandler.Instance.GetByID(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get record")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Record audit trail
// @Tags Records
// @Description List audit entries of the record
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/{id}/audit [get]
func (c *recordApiController) audit(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	list, err := audithandler.Instance.ListByEntity(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get audit trail")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Approve record
// @Tags Records
// @Description Approve the current workflow step
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/{id}/approve [post]
func (c *recordApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	userRole := middleware.GetSpaceRole(ctx)
	hMsg, err := workflowhandler.Instance.Approve(spaceID, userID, userRole, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to approve record")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Reject record
// @Tags Records
// @Description Reject the current workflow step and terminate the chain
// @Param   Authorization	header	string								true	"Authorization token"
// @Param	body 			body	recordapimodels.ApprovalActionData	false	"request body"
// @Param   id          	path    string								true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/{id}/reject [post]
func (c *recordApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	payload := recordapimodels.ApprovalActionData{}
	if len(ctx.Body()) > 0 {
		if err = c.BodyParser(ctx, &payload); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	}
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	userRole := middleware.GetSpaceRole(ctx)
	hMsg, err := workflowhandler.Instance.Reject(spaceID, userID, userRole, id, payload.Reason)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to reject record")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary List comments
// @Tags Records
// @Description List comments of the record
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response{data=[]recordapimodels.CommentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/{id}/comments [get]
func (c *recordApiController) listComments(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	list, err := commenthandler.Instance.List(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list comments")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Add comment
// @Tags Records
// @Description Add a comment, question or blocker to the record
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	recordapimodels.CommentData		true	"request body"
// @Param   id          	path    string							true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/{id}/comments [post]
func (c *recordApiController) addComment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload recordapimodels.CommentData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	commentID, hMsg, err := commenthandler.Instance.Add(spaceID, id, userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to add comment")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(commentID))
}

// @Summary Resolve comment
// @Tags Records
// @Description Mark a question or blocker as resolved
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Param   commentId      	path    string	true    "comment rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/records/{id}/comments/{commentId}/resolve [post]
func (c *recordApiController) resolveComment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	commentID, err := c.GetIDByKey(ctx, "commentId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	hMsg, err := commenthandler.Instance.Resolve(spaceID, id, commentID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to resolve comment")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
