package workflowinstancestore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.WorkflowInstance) (id string, err error)
	GetByRecord(spaceID, recordID string) (rec *dbmodels.WorkflowInstance, err error)
	Update(spaceID, id string, updMap map[string]interface{}) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.WorkflowInstance) (id string, err error) {
	err = i.db.
		Omit("Steps").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByRecord(spaceID, recordID string) (*dbmodels.WorkflowInstance, error) {
	rec := dbmodels.WorkflowInstance{}
	err := i.db.
		Where("space_id = ?", spaceID).
		Where("record_id = ?", recordID).
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_number ASC")
		}).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Update(spaceID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.WorkflowInstance{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}
