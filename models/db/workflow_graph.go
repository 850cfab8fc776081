package dbmodels

// WorkflowGraph - граф визуального редактора автоматизаций.
// Сохраняется только после успешной валидации, версия растет при каждом изменении.
type WorkflowGraph struct {
	BaseSpaceModel
	Name    string  `gorm:"type:varchar(255);index"`
	Nodes   JSONRaw `gorm:"type:jsonb"`
	Edges   JSONRaw `gorm:"type:jsonb"`
	Version int
}
