package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"glue-backend/middleware"
	apimodels "glue-backend/models/api"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetIDByKey(ctx, "id")
}

func (c *BaseAPIController) GetIDByKey(ctx *fiber.Ctx, key string) (string, error) {
	id := ctx.Params(key)
	if id == "" {
		return "", errors.Errorf("не указан параметр (%v)", key)
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	logger := log.
		WithField("path", ctx.Path()).
		WithField("method", ctx.Method())
	if spaceID := middleware.GetUserSpace(ctx); spaceID != "" {
		logger = logger.WithField("space_id", spaceID)
	}
	if userID := middleware.GetUserID(ctx); userID != "" {
		logger = logger.WithField("user_id", userID)
	}
	return logger
}

// SendError логирует внутреннюю ошибку и отдает пользователю безопасное сообщение
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, hMsg string) error {
	logger.WithError(err).Error(hMsg)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(hMsg))
}
