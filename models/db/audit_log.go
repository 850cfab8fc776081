package dbmodels

import "glue-backend/models"

// AuditLog - только добавление, записи не изменяются и не удаляются
type AuditLog struct {
	BaseSpaceModel
	Action   models.AuditAction `gorm:"type:varchar(50)"`
	ActorID  string             `gorm:"type:varchar(36)"`
	EntityID string             `gorm:"type:varchar(36);index"`
	Metadata JSONMap            `gorm:"type:jsonb"`
}
