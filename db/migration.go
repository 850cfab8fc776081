package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbmodels "glue-backend/models/db"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	err := Migrate(DB)
	if err != nil {
		return err
	}
	log.Info("Миграция прошла успешно")
	return nil
}

// Migrate вынесена отдельно, чтобы тесты могли мигрировать свою БД
func Migrate(db *gorm.DB) error {
	migrations := []struct {
		name  string
		model any
	}{
		{"Space", &dbmodels.Space{}},
		{"SpaceUser", &dbmodels.SpaceUser{}},
		{"EntityType", &dbmodels.EntityType{}},
		{"WorkflowDefinition", &dbmodels.WorkflowDefinition{}},
		{"Record", &dbmodels.Record{}},
		{"RecordComment", &dbmodels.RecordComment{}},
		{"WorkflowInstance", &dbmodels.WorkflowInstance{}},
		{"WorkflowStepInstance", &dbmodels.WorkflowStepInstance{}},
		{"Notification", &dbmodels.Notification{}},
		{"AuditLog", &dbmodels.AuditLog{}},
		{"WorkflowGraph", &dbmodels.WorkflowGraph{}},
	}
	for _, m := range migrations {
		if err := db.AutoMigrate(m.model); err != nil {
			return errors.Wrapf(err, "ошибка создания структуры %s", m.name)
		}
	}
	return nil
}
