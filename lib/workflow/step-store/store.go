package workflowstepstore

import (
	"time"

	"gorm.io/gorm"

	"glue-backend/models"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.WorkflowStepInstance) (id string, err error)
	Update(spaceID, id string, updMap map[string]interface{}) error
	// ResolvePending переводит этап из PENDING в терминальный статус.
	// Условие на текущий статус в WHERE защищает от гонки двух
	// одновременных согласований: выигрывает ровно одно обновление.
	ResolvePending(spaceID, id string, updMap map[string]interface{}) (resolved bool, err error)
	ListOverdue(now time.Time) (list []dbmodels.WorkflowStepInstance, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.WorkflowStepInstance) (id string, err error) {
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Update(spaceID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.WorkflowStepInstance{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) ResolvePending(spaceID, id string, updMap map[string]interface{}) (resolved bool, err error) {
	tx := i.db.
		Model(&dbmodels.WorkflowStepInstance{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Where("status = ?", models.StepStatusPending).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (i impl) ListOverdue(now time.Time) (list []dbmodels.WorkflowStepInstance, err error) {
	list = []dbmodels.WorkflowStepInstance{}
	err = i.db.
		Where("status = ?", models.StepStatusPending).
		Where("due_at IS NOT NULL").
		Where("due_at <= ?", now).
		Where("last_sla_notified_at IS NULL").
		Order("due_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
