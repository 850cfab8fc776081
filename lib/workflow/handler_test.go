package workflowhandler

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
	"glue-backend/lib/approval"
	audithandler "glue-backend/lib/audit"
	automationhandler "glue-backend/lib/automation"
	commenthandler "glue-backend/lib/comment"
	entitytypehandler "glue-backend/lib/entity-type"
	notificationhandler "glue-backend/lib/notification"
	recordhandler "glue-backend/lib/record"
	"glue-backend/models"
	entityapimodels "glue-backend/models/api/entity"
	recordapimodels "glue-backend/models/api/record"
	dbmodels "glue-backend/models/db"
)

type fixture struct {
	spaceID      string
	admin        string
	member       string
	outsider     string
	entityTypeID string
}

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
	recordhandler.NewHandler()
	NewHandler()
}

func seedUser(t *testing.T, spaceID, id, email string, role models.UserRole) {
	err := db.DB.Create(&dbmodels.SpaceUser{
		BaseModel: dbmodels.BaseModel{ID: id},
		SpaceID:   spaceID,
		FirstName: "Test",
		LastName:  id,
		Email:     email,
		IsActive:  true,
		Role:      role,
	}).Error
	require.Nil(t, err)
}

func seedFixture(t *testing.T) fixture {
	f := fixture{
		spaceID:  uuid.NewString(),
		admin:    uuid.NewString(),
		member:   uuid.NewString(),
		outsider: uuid.NewString(),
	}
	require.Nil(t, db.DB.Create(&dbmodels.Space{
		BaseModel:        dbmodels.BaseModel{ID: f.spaceID},
		OrganizationName: "Acme",
	}).Error)
	seedUser(t, f.spaceID, f.admin, "admin@acme.test", models.AdminRole)
	seedUser(t, f.spaceID, f.member, "member@acme.test", models.MemberRole)
	seedUser(t, f.spaceID, f.outsider, "outsider@acme.test", models.MemberRole)

	schemaRaw := []byte(`{
		"titleField": "title",
		"fields": [
			{"key": "title", "label": "Title", "type": "text", "required": true},
			{"key": "amount", "label": "Amount", "type": "number"}
		]
	}`)
	id, err := entitytypehandler.Instance.Create(f.spaceID, entityapimodels.EntityTypeData{
		Name:   "Purchase request",
		Schema: schemaRaw,
	})
	require.Nil(t, err)
	f.entityTypeID = id

	steps := fmt.Sprintf(`[
		{"step": 1, "role": "MEMBER", "approverIds": [%q], "slaHours": 24, "escalationUserIds": [%q], "autoEscalate": true},
		{"step": 2, "role": "ADMIN", "approverIds": [%q]}
	]`, f.member, f.admin, f.admin)
	hMsg, err := entitytypehandler.Instance.SaveWorkflow(f.spaceID, id, entityapimodels.WorkflowStepsData{
		Steps: json.RawMessage(steps),
	})
	require.Nil(t, err)
	require.Equal(t, "", hMsg)
	return f
}

func submitRecord(t *testing.T, f fixture) string {
	id, hMsg, err := recordhandler.Instance.Create(f.spaceID, f.member, models.MemberRole, recordapimodels.RecordCreateData{
		EntityTypeID: f.entityTypeID,
		Data:         map[string]any{"title": "Laptop purchase", "amount": 1200.0},
	})
	require.Nil(t, err)
	require.Equal(t, "", hMsg)
	require.NotEmpty(t, id)
	return id
}

func getRecord(t *testing.T, f fixture, id string) recordapimodels.RecordView {
	view, hMsg, err := recordhandler.Instance.GetByID(f.spaceID, id)
	require.Nil(t, err)
	require.Equal(t, "", hMsg)
	return view
}

func TestApprovalChain(t *testing.T) {
	setupTestDB(t)
	f := seedFixture(t)

	t.Run(`полный проход цепочки`, func(t *testing.T) {
		recID := submitRecord(t, f)

		view := getRecord(t, f, recID)
		require.Equal(t, models.RecordStatusPending, view.Status)
		require.Equal(t, 1, view.CurrentStep)
		require.Len(t, view.Steps, 2)
		require.Equal(t, models.StepStatusPending, view.Steps[0].Status)
		require.NotNil(t, view.Steps[0].DueAt)
		// дедлайн второго этапа выставляется при его активации
		require.Nil(t, view.Steps[1].DueAt)

		hMsg, err := Instance.Approve(f.spaceID, f.member, models.MemberRole, recID)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		view = getRecord(t, f, recID)
		require.Equal(t, models.RecordStatusPending, view.Status)
		require.Equal(t, 2, view.CurrentStep)
		require.Equal(t, models.StepStatusApproved, view.Steps[0].Status)
		require.Equal(t, f.member, *view.Steps[0].ApprovedBy)
		require.NotNil(t, view.Steps[1].DueAt)

		hMsg, err = Instance.Approve(f.spaceID, f.admin, models.AdminRole, recID)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		view = getRecord(t, f, recID)
		require.Equal(t, models.RecordStatusApproved, view.Status)
		require.Equal(t, models.StepStatusApproved, view.Steps[1].Status)

		audit, err := audithandler.Instance.ListByEntity(f.spaceID, recID)
		require.Nil(t, err)
		actions := []models.AuditAction{}
		for _, entry := range audit {
			actions = append(actions, entry.Action)
		}
		require.Contains(t, actions, models.AuditActionCreated)
		require.Contains(t, actions, models.AuditActionApproved)

		// по завершенной записи действия запрещены
		hMsg, err = Instance.Approve(f.spaceID, f.admin, models.AdminRole, recID)
		require.Nil(t, err)
		require.Equal(t, approval.MsgRecordNotPending, hMsg)
	})

	t.Run(`отклонение завершает всю цепочку`, func(t *testing.T) {
		recID := submitRecord(t, f)

		hMsg, err := Instance.Reject(f.spaceID, f.member, models.MemberRole, recID, "Over budget")
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		view := getRecord(t, f, recID)
		require.Equal(t, models.RecordStatusRejected, view.Status)
		require.Equal(t, models.StepStatusRejected, view.Steps[0].Status)

		// до второго этапа дело не доходит
		hMsg, err = Instance.Approve(f.spaceID, f.admin, models.AdminRole, recID)
		require.Nil(t, err)
		require.Equal(t, approval.MsgRecordNotPending, hMsg)

		audit, err := audithandler.Instance.ListByEntity(f.spaceID, recID)
		require.Nil(t, err)
		found := false
		for _, entry := range audit {
			if entry.Action == models.AuditActionRejected {
				found = true
				require.Equal(t, "Over budget", entry.Metadata["reason"])
			}
		}
		require.True(t, found)
	})

	t.Run(`не назначенный пользователь получает отказ`, func(t *testing.T) {
		recID := submitRecord(t, f)

		hMsg, err := Instance.Approve(f.spaceID, f.outsider, models.MemberRole, recID)
		require.Nil(t, err)
		require.Equal(t, approval.MsgNotAssigned, hMsg)

		view := getRecord(t, f, recID)
		require.Equal(t, 1, view.CurrentStep)
		require.Equal(t, models.StepStatusPending, view.Steps[0].Status)
	})

	t.Run(`открытый блокер запрещает согласование и не трогает состояние`, func(t *testing.T) {
		recID := submitRecord(t, f)

		commentID, hMsg, err := commenthandler.Instance.Add(f.spaceID, recID, f.admin, recordapimodels.CommentData{
			Kind: models.CommentKindBlocker,
			Body: "Missing vendor quote",
		})
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		hMsg, err = Instance.Approve(f.spaceID, f.member, models.MemberRole, recID)
		require.Nil(t, err)
		require.Equal(t, "Resolve open blockers before approving.", hMsg)

		view := getRecord(t, f, recID)
		require.Equal(t, models.RecordStatusPending, view.Status)
		require.Equal(t, models.StepStatusPending, view.Steps[0].Status)

		// отклонению блокер не мешает
		hMsg, err = Instance.Reject(f.spaceID, f.member, models.MemberRole, recID, "")
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		// а после резолва согласование проходит на новой записи
		hMsg, err = commenthandler.Instance.Resolve(f.spaceID, recID, commentID)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		recID2 := submitRecord(t, f)
		hMsg, err = Instance.Approve(f.spaceID, f.member, models.MemberRole, recID2)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
	})

	t.Run(`несуществующая запись`, func(t *testing.T) {
		hMsg, err := Instance.Approve(f.spaceID, f.member, models.MemberRole, uuid.NewString())
		require.Nil(t, err)
		require.Equal(t, "Record not found", hMsg)
	})

	t.Run(`запись без инстанса воркфлоу`, func(t *testing.T) {
		recID := submitRecord(t, f)
		require.Nil(t, db.DB.
			Where("record_id = ?", recID).
			Delete(&dbmodels.WorkflowInstance{}).
			Error)

		hMsg, err := Instance.Approve(f.spaceID, f.member, models.MemberRole, recID)
		require.Nil(t, err)
		require.Equal(t, "Record not found", hMsg)
	})

	t.Run(`легаси-роль APPROVER в определении работает как MEMBER`, func(t *testing.T) {
		id, err := entitytypehandler.Instance.Create(f.spaceID, entityapimodels.EntityTypeData{
			Name:   "Legacy flow",
			Schema: json.RawMessage(`{"fields": []}`),
		})
		require.Nil(t, err)
		steps := fmt.Sprintf(`[{"step": 1, "role": "APPROVER", "approverIds": [%q]}]`, f.member)
		hMsg, err := entitytypehandler.Instance.SaveWorkflow(f.spaceID, id, entityapimodels.WorkflowStepsData{
			Steps: json.RawMessage(steps),
		})
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		recID, hMsg, err := recordhandler.Instance.Create(f.spaceID, f.member, models.MemberRole, recordapimodels.RecordCreateData{
			EntityTypeID: id,
			Data:         map[string]any{"title": "Legacy"},
		})
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		hMsg, err = Instance.Approve(f.spaceID, f.member, models.MemberRole, recID)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
		require.Equal(t, models.RecordStatusApproved, getRecord(t, f, recID).Status)
	})
}
