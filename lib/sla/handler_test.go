package slahandler

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

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
	recordhandler "glue-backend/lib/record"
	workflowhandler "glue-backend/lib/workflow"
	"glue-backend/models"
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
	recordhandler.NewHandler()
	workflowhandler.NewHandler()
	NewHandler()
}

type slaFixture struct {
	spaceID  string
	admin    string
	approver string
}

func seedSlaFixture(t *testing.T) slaFixture {
	f := slaFixture{
		spaceID:  uuid.NewString(),
		admin:    uuid.NewString(),
		approver: uuid.NewString(),
	}
	for _, u := range []struct {
		id   string
		role models.UserRole
	}{
		{f.admin, models.AdminRole},
		{f.approver, models.MemberRole},
	} {
		require.Nil(t, db.DB.Create(&dbmodels.SpaceUser{
			BaseModel: dbmodels.BaseModel{ID: u.id},
			SpaceID:   f.spaceID,
			FirstName: "Test",
			LastName:  "User",
			Email:     u.id + "@acme.test",
			IsActive:  true,
			Role:      u.role,
		}).Error)
	}
	return f
}

func seedOverdueRecord(t *testing.T, f slaFixture, stepsRaw string, overdueBy time.Duration) string {
	entityTypeID, err := entitytypehandler.Instance.Create(f.spaceID, entityapimodels.EntityTypeData{
		Name:   "Contract",
		Schema: json.RawMessage(`{"fields": []}`),
	})
	require.Nil(t, err)
	hMsg, err := entitytypehandler.Instance.SaveWorkflow(f.spaceID, entityTypeID, entityapimodels.WorkflowStepsData{
		Steps: json.RawMessage(stepsRaw),
	})
	require.Nil(t, err)
	require.Equal(t, "", hMsg)

	recID, hMsg, err := recordhandler.Instance.Create(f.spaceID, f.approver, models.MemberRole, recordapimodels.RecordCreateData{
		EntityTypeID: entityTypeID,
		Data:         map[string]any{"title": "Vendor contract"},
	})
	require.Nil(t, err)
	require.Equal(t, "", hMsg)

	// дедлайн в прошлом, как будто этап давно ждет
	err = db.DB.Model(&dbmodels.WorkflowStepInstance{}).
		Where("record_id = ?", recID).
		Where("step_number = ?", 1).
		Update("due_at", time.Now().Add(-overdueBy)).
		Error
	require.Nil(t, err)
	return recID
}

func getStep(t *testing.T, recID string, number int) dbmodels.WorkflowStepInstance {
	rec := dbmodels.WorkflowStepInstance{}
	err := db.DB.
		Where("record_id = ?", recID).
		Where("step_number = ?", number).
		First(&rec).
		Error
	require.Nil(t, err)
	return rec
}

func TestSlaScan(t *testing.T) {
	setupTestDB(t)

	t.Run(`уведомление и эскалация, повторный скан молчит`, func(t *testing.T) {
		f := seedSlaFixture(t)
		steps := fmt.Sprintf(`[{"step": 1, "role": "MEMBER", "approverIds": [%q], "slaHours": 24, "escalationUserIds": [%q], "autoEscalate": true}]`,
			f.approver, f.admin)
		recID := seedOverdueRecord(t, f, steps, 30*time.Hour)

		result, err := Instance.Scan()
		require.Nil(t, err)
		require.Equal(t, 1, result.Checked)
		// по уведомлению на каждого адресата: согласующий и эскалируемый
		require.Equal(t, 2, result.Notified)
		require.Equal(t, 1, result.Escalated)

		step := getStep(t, recID, 1)
		require.NotNil(t, step.LastSlaNotifiedAt)
		require.NotNil(t, step.EscalatedAt)
		require.True(t, step.AssignedApproverIDs.Contains(f.approver))
		require.True(t, step.AssignedApproverIDs.Contains(f.admin))

		// эскалированный пользователь тоже получил уведомление
		count, err := notificationhandler.Instance.UnreadCount(f.spaceID, f.admin)
		require.Nil(t, err)
		require.True(t, count > 0)

		// этап уже отмечен - второй скан его не трогает
		result, err = Instance.Scan()
		require.Nil(t, err)
		require.Equal(t, 0, result.Checked)
	})

	t.Run(`после эскалации администратор может согласовать этап`, func(t *testing.T) {
		f := seedSlaFixture(t)
		steps := fmt.Sprintf(`[{"step": 1, "role": "MEMBER", "approverIds": [%q], "slaHours": 24, "escalationUserIds": [%q], "autoEscalate": true}]`,
			f.approver, f.admin)
		recID := seedOverdueRecord(t, f, steps, 26*time.Hour)

		_, err := Instance.Scan()
		require.Nil(t, err)

		hMsg, err := workflowhandler.Instance.Approve(f.spaceID, f.admin, models.AdminRole, recID)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
	})

	t.Run(`без autoEscalate только уведомление`, func(t *testing.T) {
		f := seedSlaFixture(t)
		steps := fmt.Sprintf(`[{"step": 1, "role": "MEMBER", "approverIds": [%q], "slaHours": 24, "escalationUserIds": [%q]}]`,
			f.approver, f.admin)
		recID := seedOverdueRecord(t, f, steps, 48*time.Hour)

		result, err := Instance.Scan()
		require.Nil(t, err)
		require.Equal(t, 1, result.Checked)
		require.Equal(t, 2, result.Notified)
		require.Equal(t, 0, result.Escalated)

		step := getStep(t, recID, 1)
		require.Nil(t, step.EscalatedAt)
		require.False(t, step.AssignedApproverIDs.Contains(f.admin))
	})

	t.Run(`счетчики считают адресатов, а не этапы`, func(t *testing.T) {
		f := seedSlaFixture(t)
		second := uuid.NewString()
		require.Nil(t, db.DB.Create(&dbmodels.SpaceUser{
			BaseModel: dbmodels.BaseModel{ID: second},
			SpaceID:   f.spaceID,
			FirstName: "Second",
			LastName:  "Escalation",
			Email:     second + "@acme.test",
			IsActive:  true,
			Role:      models.AdminRole,
		}).Error)
		steps := fmt.Sprintf(`[{"step": 1, "role": "MEMBER", "approverIds": [%q], "slaHours": 24, "escalationUserIds": [%q, %q], "autoEscalate": true}]`,
			f.approver, f.admin, second)
		recID := seedOverdueRecord(t, f, steps, 30*time.Hour)

		result, err := Instance.Scan()
		require.Nil(t, err)
		require.Equal(t, 1, result.Checked)
		require.Equal(t, 3, result.Notified)
		require.Equal(t, 2, result.Escalated)

		step := getStep(t, recID, 1)
		require.True(t, step.AssignedApproverIDs.Contains(f.admin))
		require.True(t, step.AssignedApproverIDs.Contains(second))
	})

	t.Run(`этап, пропавший из определения, пропускается`, func(t *testing.T) {
		f := seedSlaFixture(t)
		steps := fmt.Sprintf(`[{"step": 1, "role": "MEMBER", "approverIds": [%q], "slaHours": 24}]`, f.approver)
		recID := seedOverdueRecord(t, f, steps, 25*time.Hour)

		// воркфлоу переписали: первого этапа больше нет
		rec := dbmodels.Record{}
		require.Nil(t, db.DB.Where("id = ?", recID).First(&rec).Error)
		newSteps := fmt.Sprintf(`[{"step": 5, "role": "ADMIN", "approverIds": [%q]}]`, f.admin)
		require.Nil(t, db.DB.Model(&dbmodels.WorkflowDefinition{}).
			Where("entity_type_id = ?", rec.EntityTypeID).
			Update("steps", dbmodels.JSONRaw(newSteps)).
			Error)

		result, err := Instance.Scan()
		require.Nil(t, err)
		require.Equal(t, 1, result.Checked)
		require.Equal(t, 0, result.Notified)
		require.Equal(t, 0, result.Escalated)

		// отметка все равно поставлена, чтобы не перебирать его вечно
		step := getStep(t, recID, 1)
		require.NotNil(t, step.LastSlaNotifiedAt)
	})

	t.Run(`humanizeOverdue`, func(t *testing.T) {
		require.Equal(t, "1 hour", humanizeOverdue(30*time.Minute))
		require.Equal(t, "5 hours", humanizeOverdue(5*time.Hour+20*time.Minute))
		require.Equal(t, "23 hours", humanizeOverdue(23*time.Hour+59*time.Minute))
		require.Equal(t, "1 day", humanizeOverdue(25*time.Hour))
		require.Equal(t, "2 days", humanizeOverdue(50*time.Hour))
	})
}
