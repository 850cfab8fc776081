package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"glue-backend/config"
	apimodels "glue-backend/models/api"
)

const cronSecretHeader = "X-Cron-Secret"

// CronSecretRequired защищает эндпоинты для внешнего планировщика.
// Сравнение секрета за константное время.
func CronSecretRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		secret := config.Conf.Sla.CronSecret
		got := ctx.Get(cronSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(got)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("unauthorized"))
		}
		return ctx.Next()
	}
}
