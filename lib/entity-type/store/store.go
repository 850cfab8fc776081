package entitytypestore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.EntityType) (id string, err error)
	GetByID(spaceID, id string) (rec *dbmodels.EntityType, err error)
	Update(spaceID, id string, updMap map[string]interface{}) error
	List(spaceID string) (list []dbmodels.EntityType, err error)
	GetWorkflow(spaceID, entityTypeID string) (rec *dbmodels.WorkflowDefinition, err error)
	SaveWorkflow(rec dbmodels.WorkflowDefinition) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.EntityType) (id string, err error) {
	err = i.db.
		Omit("Workflow").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(spaceID, id string) (*dbmodels.EntityType, error) {
	rec := dbmodels.EntityType{}
	err := i.db.
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Preload("Workflow").
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
		Model(&dbmodels.EntityType{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) List(spaceID string) (list []dbmodels.EntityType, err error) {
	list = []dbmodels.EntityType{}
	err = i.db.
		Where("space_id = ?", spaceID).
		Order("created_at ASC").
		Preload("Workflow").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) GetWorkflow(spaceID, entityTypeID string) (*dbmodels.WorkflowDefinition, error) {
	rec := dbmodels.WorkflowDefinition{}
	err := i.db.
		Where("space_id = ?", spaceID).
		Where("entity_type_id = ?", entityTypeID).
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

func (i impl) SaveWorkflow(rec dbmodels.WorkflowDefinition) error {
	current, err := i.GetWorkflow(rec.SpaceID, rec.EntityTypeID)
	if err != nil {
		return err
	}
	if current != nil {
		return i.db.
			Model(&dbmodels.WorkflowDefinition{}).
			Where("id = ?", current.ID).
			Update("steps", rec.Steps).
			Error
	}
	return i.db.Save(&rec).Error
}
