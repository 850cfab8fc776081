package dbmodels

// EntityType - определенный организацией тип записи с произвольной схемой полей.
// Schema хранится как jsonb и нормализуется пакетом lib/schema при каждом чтении.
type EntityType struct {
	BaseSpaceModel
	Name     string  `gorm:"type:varchar(255)"`
	Schema   JSONRaw `gorm:"type:jsonb"`
	Workflow *WorkflowDefinition `gorm:"foreignKey:EntityTypeID"`
}

// WorkflowDefinition - упорядоченная цепочка этапов согласования, 1:1 с типом записи
type WorkflowDefinition struct {
	BaseSpaceModel
	EntityTypeID string  `gorm:"type:varchar(36);uniqueIndex"`
	Steps        JSONRaw `gorm:"type:jsonb"`
}
