package middleware

import (
	"github.com/gofiber/fiber/v2"

	authutils "glue-backend/lib/utils/auth-utils"
	"glue-backend/models"
	apimodels "glue-backend/models/api"
)

func GetUserSpace(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if space, exist := claims["space"]; exist {
		if stringSpace, ok := space.(string); ok {
			return stringSpace
		}
	}
	return ""
}

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, exist := claims["sub"]; exist {
		if stringSub, ok := sub.(string); ok {
			return stringSub
		}
	}
	return ""
}

func GetSpaceRole(ctx *fiber.Ctx) models.UserRole {
	claims := authutils.GetClaims(ctx)
	if role, exist := claims["role"]; exist {
		if stringRole, ok := role.(string); ok && stringRole != "" {
			// токены, выданные до переименования ролей, еще в ходу
			return models.NormalizeRole(models.UserRole(stringRole))
		}
	}
	return ""
}

func SpaceAdminRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		if !GetSpaceRole(ctx).IsAdmin() {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("operation is not allowed"))
		}
		return ctx.Next()
	}
}
