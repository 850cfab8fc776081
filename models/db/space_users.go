package dbmodels

import (
	"fmt"
	"glue-backend/models"
)

type SpaceUser struct {
	BaseModel
	SpaceID     string `gorm:"type:varchar(36);index"`
	FirstName   string `gorm:"type:varchar(150)"`
	LastName    string `gorm:"type:varchar(150)"`
	Email       string `gorm:"type:varchar(255);index"`
	PhoneNumber string `gorm:"type:varchar(15)"`
	IsActive    bool
	Role        models.UserRole `gorm:"type:varchar(50)"`
}

func (r SpaceUser) GetFullName() string {
	return fmt.Sprintf("%s %s", r.FirstName, r.LastName)
}
