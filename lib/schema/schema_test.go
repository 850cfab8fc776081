package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"glue-backend/models"
)

func TestParseWorkflowSteps(t *testing.T) {
	t.Run(`порядок и нормализация ролей`, func(t *testing.T) {
		raw := []byte(`[
			{"step": 2, "role": "admin", "approverIds": ["u2"]},
			{"step": 1, "role": "approver", "approverIds": ["u1"], "slaHours": 24}
		]`)
		steps := ParseWorkflowSteps(raw)
		require.Len(t, steps, 2)
		require.Equal(t, 1, steps[0].Step)
		require.Equal(t, models.MemberRole, steps[0].Role)
		require.Equal(t, []string{"u1"}, steps[0].ApproverIDs)
		require.Equal(t, 24.0, steps[0].SLAHours)
		require.Equal(t, 2, steps[1].Step)
		require.Equal(t, models.AdminRole, steps[1].Role)
	})

	t.Run(`невалидные этапы отбрасываются`, func(t *testing.T) {
		raw := []byte(`[
			{"step": 0, "role": "ADMIN"},
			{"step": -3, "role": "ADMIN"},
			{"step": "abc", "role": "ADMIN"},
			{"step": 1, "role": ""},
			{"step": 1, "role": "MANAGER"}
		]`)
		steps := ParseWorkflowSteps(raw)
		require.Len(t, steps, 1)
		require.Equal(t, models.ManagerRole, steps[0].Role)
	})

	t.Run(`дубликаты номеров: выигрывает первый`, func(t *testing.T) {
		raw := []byte(`[
			{"step": 1, "role": "ADMIN", "approverIds": ["first"]},
			{"step": 1, "role": "MANAGER", "approverIds": ["second"]}
		]`)
		steps := ParseWorkflowSteps(raw)
		require.Len(t, steps, 1)
		require.Equal(t, []string{"first"}, steps[0].ApproverIDs)
		require.Equal(t, models.AdminRole, steps[0].Role)
	})

	t.Run(`дробный номер этапа усекается`, func(t *testing.T) {
		raw := []byte(`[{"step": 2.7, "role": "ADMIN"}]`)
		steps := ParseWorkflowSteps(raw)
		require.Len(t, steps, 1)
		require.Equal(t, 2, steps[0].Step)
	})

	t.Run(`отрицательный SLA обнуляется`, func(t *testing.T) {
		raw := []byte(`[{"step": 1, "role": "ADMIN", "slaHours": -5}]`)
		steps := ParseWorkflowSteps(raw)
		require.Len(t, steps, 1)
		require.Equal(t, 0.0, steps[0].SLAHours)
	})

	t.Run(`мусор и пустой вход дают пустой список`, func(t *testing.T) {
		require.Empty(t, ParseWorkflowSteps(nil))
		require.Empty(t, ParseWorkflowSteps([]byte(`{`)))
		require.Empty(t, ParseWorkflowSteps([]byte(`{"not":"a list"}`)))
	})

	t.Run(`повторный разбор результата ничего не меняет`, func(t *testing.T) {
		raw := []byte(`[
			{"step": 3, "role": "approver"},
			{"step": 1, "role": "ADMIN"},
			{"step": 1, "role": "MANAGER"}
		]`)
		first := ParseWorkflowSteps(raw)
		remarshaled, err := json.Marshal(first)
		require.Nil(t, err)
		second := ParseWorkflowSteps(remarshaled)
		require.Equal(t, first, second)
	})
}

func TestParseEntitySchema(t *testing.T) {
	t.Run(`поля и permissions`, func(t *testing.T) {
		raw := []byte(`{
			"titleField": "name",
			"fields": [
				{"key": "name", "label": "Name", "type": "text", "required": true},
				{"key": "amount", "type": "number"}
			],
			"permissions": {"createRoles": ["admin", "approver"]}
		}`)
		s := ParseEntitySchema(raw)
		require.Equal(t, "name", s.TitleField)
		require.Len(t, s.Fields, 2)
		require.True(t, s.Fields[0].Required)
		require.Equal(t, FieldTypeNumber, s.Fields[1].Type)
		require.Equal(t, []models.UserRole{models.AdminRole, models.MemberRole}, CreateRoles(s))
	})

	t.Run(`мусор деградирует до пустой схемы`, func(t *testing.T) {
		s := ParseEntitySchema([]byte(`not json`))
		require.Empty(t, s.Fields)
		require.Empty(t, CreateRoles(s))
		s = ParseEntitySchema(nil)
		require.Empty(t, s.Fields)
	})
}

func TestRecordTitle(t *testing.T) {
	t.Run(`titleField из схемы`, func(t *testing.T) {
		s := EntitySchema{TitleField: "name"}
		require.Equal(t, "Laptop purchase", RecordTitle(map[string]any{"name": "Laptop purchase"}, s))
	})

	t.Run(`умолчание - ключ title`, func(t *testing.T) {
		require.Equal(t, "Trip", RecordTitle(map[string]any{"title": "Trip"}, EntitySchema{}))
	})

	t.Run(`пустое значение дает заглушку`, func(t *testing.T) {
		require.Equal(t, "Untitled record", RecordTitle(map[string]any{"title": "   "}, EntitySchema{}))
		require.Equal(t, "Untitled record", RecordTitle(map[string]any{}, EntitySchema{}))
	})
}

func TestFindStep(t *testing.T) {
	steps := ParseWorkflowSteps([]byte(`[{"step": 1, "role": "ADMIN"}, {"step": 2, "role": "MANAGER"}]`))
	require.NotNil(t, FindStep(steps, 2))
	require.Equal(t, models.ManagerRole, FindStep(steps, 2).Role)
	require.Nil(t, FindStep(steps, 5))
}
