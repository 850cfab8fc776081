package recordhandler

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"glue-backend/db"
	audithandler "glue-backend/lib/audit"
	automationhandler "glue-backend/lib/automation"
	commenthandler "glue-backend/lib/comment"
	entitytypehandler "glue-backend/lib/entity-type"
	notificationhandler "glue-backend/lib/notification"
	"glue-backend/models"
	apimodels "glue-backend/models/api"
	entityapimodels "glue-backend/models/api/entity"
	recordapimodels "glue-backend/models/api/record"
	dbmodels "glue-backend/models/db"
)

func setupTestDB(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.Nil(t, err)
	sqlDB, err := gdb.DB()
	require.Nil(t, err)
	sqlDB.SetMaxOpenConns(1)
	db.DB = gdb
	require.Nil(t, db.Migrate(gdb))

	audithandler.NewHandler()
	notificationhandler.NewHandler()
	entitytypehandler.NewHandler()
	automationhandler.NewHandler()
	commenthandler.NewHandler()
	NewHandler()
}

func seedUser(t *testing.T, spaceID string, role models.UserRole) string {
	id := uuid.NewString()
	err := db.DB.Create(&dbmodels.SpaceUser{
		BaseModel: dbmodels.BaseModel{ID: id},
		SpaceID:   spaceID,
		FirstName: "Test",
		LastName:  "User",
		Email:     id + "@acme.test",
		IsActive:  true,
		Role:      role,
	}).Error
	require.Nil(t, err)
	return id
}

func seedEntityType(t *testing.T, spaceID string, schemaRaw, stepsRaw string) string {
	id, err := entitytypehandler.Instance.Create(spaceID, entityapimodels.EntityTypeData{
		Name:   "Expense",
		Schema: json.RawMessage(schemaRaw),
	})
	require.Nil(t, err)
	if stepsRaw != "" {
		hMsg, err := entitytypehandler.Instance.SaveWorkflow(spaceID, id, entityapimodels.WorkflowStepsData{
			Steps: json.RawMessage(stepsRaw),
		})
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
	}
	return id
}

const expenseSchema = `{
	"titleField": "title",
	"fields": [
		{"key": "title", "label": "Title", "type": "text", "required": true},
		{"key": "amount", "label": "Amount", "type": "number"}
	]
}`

func TestRecordCreate(t *testing.T) {
	setupTestDB(t)
	spaceID := uuid.NewString()
	member := seedUser(t, spaceID, models.MemberRole)
	approver := seedUser(t, spaceID, models.MemberRole)
	steps := fmt.Sprintf(`[{"step": 1, "role": "MEMBER", "approverIds": [%q], "slaHours": 8}]`, approver)
	entityTypeID := seedEntityType(t, spaceID, expenseSchema, steps)

	t.Run(`успешная подача`, func(t *testing.T) {
		id, hMsg, err := Instance.Create(spaceID, member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: entityTypeID,
			Data:         map[string]any{"title": "Team offsite", "amount": 500.0},
		})
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		view, hMsg, err := Instance.GetByID(spaceID, id)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
		require.Equal(t, models.RecordStatusPending, view.Status)
		require.Equal(t, "Team offsite", view.Title)
		require.Equal(t, 1, view.CurrentStep)
		require.Len(t, view.Steps, 1)
		require.NotNil(t, view.Steps[0].DueAt)
		require.Equal(t, []string{approver}, view.Steps[0].AssignedApproverIDs)

		// согласующему первого этапа создано уведомление
		count, err := notificationhandler.Instance.UnreadCount(spaceID, approver)
		require.Nil(t, err)
		require.True(t, count > 0)
	})

	t.Run(`строковое число приводится к числу`, func(t *testing.T) {
		id, hMsg, err := Instance.Create(spaceID, member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: entityTypeID,
			Data:         map[string]any{"title": "Monitors", "amount": "12.5"},
		})
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		view, _, err := Instance.GetByID(spaceID, id)
		require.Nil(t, err)
		require.Equal(t, 12.5, view.Data["amount"])
	})

	t.Run(`нечисловое значение number-поля`, func(t *testing.T) {
		_, hMsg, err := Instance.Create(spaceID, member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: entityTypeID,
			Data:         map[string]any{"title": "Chairs", "amount": "not a number"},
		})
		require.Nil(t, err)
		require.Equal(t, `Field "Amount" must be a number`, hMsg)
	})

	t.Run(`обязательное поле`, func(t *testing.T) {
		_, hMsg, err := Instance.Create(spaceID, member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: entityTypeID,
			Data:         map[string]any{"amount": 10.0},
		})
		require.Nil(t, err)
		require.Equal(t, `Field "Title" is required`, hMsg)
	})

	t.Run(`тип без настроенного воркфлоу`, func(t *testing.T) {
		bareID := seedEntityType(t, spaceID, `{"fields": []}`, "")
		_, hMsg, err := Instance.Create(spaceID, member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: bareID,
			Data:         map[string]any{},
		})
		require.Nil(t, err)
		require.Equal(t, "Approval workflow is not configured for this record type", hMsg)
	})

	t.Run(`ограничение ролей на создание`, func(t *testing.T) {
		restrictedSchema := `{"fields": [], "permissions": {"createRoles": ["ADMIN"]}}`
		restrictedSteps := fmt.Sprintf(`[{"step": 1, "role": "ADMIN", "approverIds": [%q]}]`, approver)
		restrictedID := seedEntityType(t, spaceID, restrictedSchema, restrictedSteps)

		_, hMsg, err := Instance.Create(spaceID, member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: restrictedID,
			Data:         map[string]any{},
		})
		require.Nil(t, err)
		require.Equal(t, "You do not have permission to create records of this type", hMsg)

		admin := seedUser(t, spaceID, models.AdminRole)
		_, hMsg, err = Instance.Create(spaceID, admin, models.AdminRole, recordapimodels.RecordCreateData{
			EntityTypeID: restrictedID,
			Data:         map[string]any{},
		})
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
	})

	t.Run(`чужой тип записи не виден`, func(t *testing.T) {
		_, hMsg, err := Instance.Create(spaceID, member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: uuid.NewString(),
			Data:         map[string]any{},
		})
		require.Nil(t, err)
		require.Equal(t, "Entity type not found", hMsg)
	})

	t.Run(`фильтр списка по статусу`, func(t *testing.T) {
		list, rowCount, err := Instance.List(spaceID, recordapimodels.RecordFilter{
			Pagination: apimodels.Pagination{Page: 1, Limit: 100},
			Status:     models.RecordStatusPending,
		})
		require.Nil(t, err)
		require.True(t, rowCount > 0)
		for _, view := range list {
			require.Equal(t, models.RecordStatusPending, view.Status)
		}
	})
}
