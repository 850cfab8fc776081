package schema

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"glue-backend/models"
)

// Чистые функции нормализации хранимых json-блобов схем и определений воркфлоу.
// Никогда не возвращают ошибку - некорректный вход деградирует до безопасных значений.

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
)

type FieldDefinition struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
}

type Permissions struct {
	CreateRoles []models.UserRole `json:"createRoles,omitempty"`
}

type EntitySchema struct {
	TitleField       string            `json:"titleField,omitempty"`
	DescriptionField string            `json:"descriptionField,omitempty"`
	Fields           []FieldDefinition `json:"fields"`
	Permissions      Permissions       `json:"permissions,omitempty"`
}

type StepDefinition struct {
	Step              int               `json:"step"`
	Role              models.UserRole   `json:"role"`
	ApproverIDs       []string          `json:"approverIds"`
	SLAHours          float64           `json:"slaHours,omitempty"`
	EscalationUserIDs []string          `json:"escalationUserIds,omitempty"`
	AutoEscalate      bool              `json:"autoEscalate,omitempty"`
}

// ParseEntitySchema разбирает схему типа записи, на любом мусоре
// возвращает пустую схему без полей
func ParseEntitySchema(raw []byte) EntitySchema {
	result := EntitySchema{Fields: []FieldDefinition{}}
	if len(raw) == 0 {
		return result
	}
	var blob map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		return result
	}

	var fields []FieldDefinition
	if err := json.Unmarshal(blob["fields"], &fields); err == nil && fields != nil {
		result.Fields = fields
	}
	_ = json.Unmarshal(blob["titleField"], &result.TitleField)
	_ = json.Unmarshal(blob["descriptionField"], &result.DescriptionField)

	var perms struct {
		CreateRoles []string `json:"createRoles"`
	}
	if err := json.Unmarshal(blob["permissions"], &perms); err == nil {
		for _, role := range perms.CreateRoles {
			result.Permissions.CreateRoles = append(result.Permissions.CreateRoles,
				models.NormalizeRole(models.UserRole(strings.ToUpper(role))))
		}
	}
	return result
}

// ParseWorkflowSteps разбирает определение цепочки согласования.
// Этапы с невалидным номером или пустой ролью отбрасываются, роли приводятся
// к верхнему регистру и нормализуются, результат отсортирован по номеру этапа.
// Дубликаты номеров схлопываются - выигрывает первое определение.
func ParseWorkflowSteps(raw []byte) []StepDefinition {
	result := []StepDefinition{}
	if len(raw) == 0 {
		return result
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return result
	}
	seen := map[int]bool{}
	for _, item := range items {
		step := toNumber(item["step"])
		if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
			continue
		}
		role := models.UserRole(strings.ToUpper(strings.TrimSpace(toString(item["role"]))))
		if role == "" {
			continue
		}
		def := StepDefinition{
			Step:              int(step),
			Role:              models.NormalizeRole(role),
			ApproverIDs:       toStringList(item["approverIds"]),
			SLAHours:          toNumber(item["slaHours"]),
			EscalationUserIDs: toStringList(item["escalationUserIds"]),
			AutoEscalate:      toBool(item["autoEscalate"]),
		}
		if def.SLAHours < 0 || math.IsNaN(def.SLAHours) {
			def.SLAHours = 0
		}
		if seen[def.Step] {
			continue
		}
		seen[def.Step] = true
		result = append(result, def)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Step < result[j].Step
	})
	return result
}

// FindStep возвращает определение этапа по номеру, nil если не найден
func FindStep(steps []StepDefinition, number int) *StepDefinition {
	for i := range steps {
		if steps[i].Step == number {
			return &steps[i]
		}
	}
	return nil
}

const defaultRecordTitle = "Untitled record"

func RecordTitle(data map[string]any, s EntitySchema) string {
	key := s.TitleField
	if key == "" {
		key = "title"
	}
	if title := strings.TrimSpace(toString(data[key])); title != "" {
		return title
	}
	return defaultRecordTitle
}

func RecordDescription(data map[string]any, s EntitySchema) string {
	key := s.DescriptionField
	if key == "" {
		key = "description"
	}
	return strings.TrimSpace(toString(data[key]))
}

func CreateRoles(s EntitySchema) []models.UserRole {
	if s.Permissions.CreateRoles == nil {
		return []models.UserRole{}
	}
	return s.Permissions.CreateRoles
}

func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		var f float64
		if err := json.Unmarshal([]byte(n), &f); err != nil {
			return 0
		}
		return f
	}
	return 0
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func toStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			result = append(result, s)
		}
	}
	return result
}
