package automationstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "glue-backend/models/db"
)

type Provider interface {
	GetByName(spaceID, name string) (rec *dbmodels.WorkflowGraph, err error)
	// GetLatest возвращает последний измененный граф организации
	GetLatest(spaceID string) (rec *dbmodels.WorkflowGraph, err error)
	Create(rec dbmodels.WorkflowGraph) (id string, err error)
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

func (i impl) GetByName(spaceID, name string) (*dbmodels.WorkflowGraph, error) {
	rec := dbmodels.WorkflowGraph{}
	err := i.db.
		Where("space_id = ?", spaceID).
		Where("name = ?", name).
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

func (i impl) GetLatest(spaceID string) (*dbmodels.WorkflowGraph, error) {
	rec := dbmodels.WorkflowGraph{}
	err := i.db.
		Where("space_id = ?", spaceID).
		Order("updated_at DESC").
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

func (i impl) Create(rec dbmodels.WorkflowGraph) (id string, err error) {
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
		Model(&dbmodels.WorkflowGraph{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}
