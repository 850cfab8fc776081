package spaceapimodels

import (
	"glue-backend/models"
	dbmodels "glue-backend/models/db"
)

type SpaceUserView struct {
	ID       string          `json:"id"`
	FullName string          `json:"full_name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	RoleName string          `json:"role_name"`
	IsActive bool            `json:"is_active"`
}

func SpaceUserConvert(rec dbmodels.SpaceUser) SpaceUserView {
	role := models.NormalizeRole(rec.Role)
	return SpaceUserView{
		ID:       rec.ID,
		FullName: rec.GetFullName(),
		Email:    rec.Email,
		Role:     role,
		RoleName: role.ToHuman(),
		IsActive: rec.IsActive,
	}
}
