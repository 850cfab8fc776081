package recordstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	recordapimodels "glue-backend/models/api/record"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Record) (id string, err error)
	GetByID(spaceID, id string) (rec *dbmodels.Record, err error)
	Update(spaceID, id string, updMap map[string]interface{}) error
	List(spaceID string, filter recordapimodels.RecordFilter) (list []dbmodels.Record, err error)
	ListCount(spaceID string, filter recordapimodels.RecordFilter) (count int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Record) (id string, err error) {
	err = i.db.
		Omit("EntityType", "Creator", "Instance", "Comments").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(spaceID, id string) (*dbmodels.Record, error) {
	rec := dbmodels.Record{}
	err := i.db.
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Preload("EntityType").
		Preload("EntityType.Workflow").
		Preload("Creator").
		Preload("Instance").
		Preload("Instance.Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_number ASC")
		}).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("Comments.Author").
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
		Model(&dbmodels.Record{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) listQuery(spaceID string, filter recordapimodels.RecordFilter) *gorm.DB {
	tx := i.db.
		Model(&dbmodels.Record{}).
		Where("space_id = ?", spaceID)
	if filter.EntityTypeID != "" {
		tx = tx.Where("entity_type_id = ?", filter.EntityTypeID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status.Normalize())
	}
	return tx
}

func (i impl) List(spaceID string, filter recordapimodels.RecordFilter) (list []dbmodels.Record, err error) {
	list = []dbmodels.Record{}
	page, limit := filter.GetPage()
	err = i.listQuery(spaceID, filter).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("EntityType").
		Preload("Creator").
		Preload("Instance").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListCount(spaceID string, filter recordapimodels.RecordFilter) (count int64, err error) {
	err = i.listQuery(spaceID, filter).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
