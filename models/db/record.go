package dbmodels

import (
	"time"

	"glue-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Record struct {
	BaseSpaceModel
	EntityTypeID string `gorm:"type:varchar(36);index"`
	EntityType   *EntityType
	CreatorID    string     `gorm:"type:varchar(36)"`
	Creator      *SpaceUser `gorm:"foreignKey:CreatorID"`
	Data         JSONMap    `gorm:"type:jsonb"`
	Status       models.RecordStatus `gorm:"type:varchar(50);index"`
	Instance     *WorkflowInstance   `gorm:"foreignKey:RecordID"`
	Comments     []RecordComment     `gorm:"foreignKey:RecordID"`
}

type RecordComment struct {
	BaseSpaceModel
	RecordID   string `gorm:"type:varchar(36);index"`
	AuthorID   string `gorm:"type:varchar(36)"`
	Author     *SpaceUser `gorm:"foreignKey:AuthorID"`
	Kind       models.CommentKind `gorm:"type:varchar(50)"`
	Body       string
	ParentID   *string `gorm:"type:varchar(36)"`
	ResolvedAt *time.Time
}

func (r *Record) AfterDelete(tx *gorm.DB) (err error) {
	if r.ID == "" {
		return nil
	}
	tx.Clauses(clause.Returning{}).Where("record_id = ?", r.ID).Delete(&RecordComment{})
	tx.Clauses(clause.Returning{}).Where("record_id = ?", r.ID).Delete(&WorkflowStepInstance{})
	tx.Clauses(clause.Returning{}).Where("record_id = ?", r.ID).Delete(&WorkflowInstance{})
	return
}
