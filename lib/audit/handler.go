package audithandler

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	auditstore "glue-backend/lib/audit/store"
	"glue-backend/models"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	// Write добавляет запись аудита; ошибка только логируется,
	// аудит не должен ронять породившую его операцию
	Write(spaceID string, action models.AuditAction, actorID, entityID string, metadata map[string]any)
	// WriteTx - вариант для вызова внутри транзакции, ошибка откатывает ее
	WriteTx(spaceID string, action models.AuditAction, actorID, entityID string, metadata map[string]any) error
	ListByEntity(spaceID, entityID string) ([]dbmodels.AuditLog, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: auditstore.NewInstance(db.DB),
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store: auditstore.NewInstance(tx),
	}
}

type impl struct {
	store auditstore.Provider
}

func (i impl) Write(spaceID string, action models.AuditAction, actorID, entityID string, metadata map[string]any) {
	err := i.WriteTx(spaceID, action, actorID, entityID, metadata)
	if err != nil {
		log.
			WithField("space_id", spaceID).
			WithField("entity_id", entityID).
			WithField("action", action).
			WithError(err).
			Error("ошибка записи аудита")
	}
}

func (i impl) WriteTx(spaceID string, action models.AuditAction, actorID, entityID string, metadata map[string]any) error {
	rec := dbmodels.AuditLog{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: spaceID,
		},
		Action:   action,
		ActorID:  actorID,
		EntityID: entityID,
		Metadata: metadata,
	}
	_, err := i.store.Create(rec)
	return err
}

func (i impl) ListByEntity(spaceID, entityID string) ([]dbmodels.AuditLog, error) {
	return i.store.ListByEntity(spaceID, entityID)
}
