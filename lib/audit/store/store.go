package auditstore

import (
	"gorm.io/gorm"

	dbmodels "glue-backend/models/db"
)

// Журнал аудита пишется только на добавление, обновлений и удалений нет.
type Provider interface {
	Create(rec dbmodels.AuditLog) (id string, err error)
	ListByEntity(spaceID, entityID string) (list []dbmodels.AuditLog, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.AuditLog) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ListByEntity(spaceID, entityID string) (list []dbmodels.AuditLog, err error) {
	list = []dbmodels.AuditLog{}
	err = i.db.
		Where("space_id = ?", spaceID).
		Where("entity_id = ?", entityID).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
