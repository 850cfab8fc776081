package dbmodels

import (
	"time"

	"glue-backend/models"
)

// WorkflowInstance - живое состояние согласования одной записи.
// Инвариант: пока статус не терминальный, ровно один этап в статусе PENDING,
// и его номер равен CurrentStep.
type WorkflowInstance struct {
	BaseSpaceModel
	RecordID    string `gorm:"type:varchar(36);uniqueIndex"`
	CurrentStep int
	Status      models.RecordStatus    `gorm:"type:varchar(50)"`
	Steps       []WorkflowStepInstance `gorm:"foreignKey:InstanceID"`
}

type WorkflowStepInstance struct {
	BaseSpaceModel
	InstanceID          string `gorm:"type:varchar(36);index"`
	RecordID            string `gorm:"type:varchar(36);index"`
	StepNumber          int
	Status              models.StepStatus `gorm:"type:varchar(50);index:idx_step_status_due"`
	AssignedApproverIDs StringList        `gorm:"type:jsonb"`
	ApprovedBy          *string           `gorm:"type:varchar(36)"`
	ApprovedAt          *time.Time
	// DueAt выставляется при активации этапа, если в определении задан SLA
	DueAt             *time.Time `gorm:"index:idx_step_status_due"`
	LastSlaNotifiedAt *time.Time
	EscalatedAt       *time.Time
}
