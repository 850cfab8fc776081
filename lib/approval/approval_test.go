package approval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"glue-backend/models"
)

func validContext() ActionContext {
	return ActionContext{
		RecordStatus:        models.RecordStatusPending,
		InstanceStatus:      models.RecordStatusPending,
		StepStatus:          models.StepStatusPending,
		RequiredRole:        models.MemberRole,
		AssignedApproverIDs: []string{"u1", "u2"},
		UserID:              "u1",
		UserRole:            models.MemberRole,
	}
}

func TestCheckAction(t *testing.T) {
	t.Run(`валидный контекст проходит`, func(t *testing.T) {
		require.Equal(t, "", CheckAction(validContext()))
	})

	t.Run(`терминальная запись`, func(t *testing.T) {
		c := validContext()
		c.RecordStatus = models.RecordStatusApproved
		require.Equal(t, MsgRecordNotPending, CheckAction(c))
	})

	t.Run(`легаси-статус PENDING считается ожидающим`, func(t *testing.T) {
		c := validContext()
		c.RecordStatus = models.LegacyRecordStatusPending
		require.Equal(t, "", CheckAction(c))
	})

	t.Run(`завершенный воркфлоу`, func(t *testing.T) {
		c := validContext()
		c.InstanceStatus = models.RecordStatusRejected
		require.Equal(t, MsgWorkflowNotPending, CheckAction(c))
	})

	t.Run(`закрытый этап`, func(t *testing.T) {
		c := validContext()
		c.StepStatus = models.StepStatusApproved
		require.Equal(t, MsgStepAlreadyResolved, CheckAction(c))
	})

	t.Run(`этап без согласующих`, func(t *testing.T) {
		c := validContext()
		c.AssignedApproverIDs = nil
		require.Equal(t, MsgNoApproversAssigned, CheckAction(c))
	})

	t.Run(`пользователь не назначен`, func(t *testing.T) {
		c := validContext()
		c.UserID = "stranger"
		require.Equal(t, MsgNotAssigned, CheckAction(c))
	})

	t.Run(`недостаточная роль`, func(t *testing.T) {
		c := validContext()
		c.RequiredRole = models.ManagerRole
		require.Equal(t, MsgInsufficientRole, CheckAction(c))
	})

	t.Run(`администратор проходит проверку роли, но не членства`, func(t *testing.T) {
		c := validContext()
		c.RequiredRole = models.ManagerRole
		c.UserRole = models.AdminRole
		require.Equal(t, "", CheckAction(c))

		c.UserID = "stranger"
		require.Equal(t, MsgNotAssigned, CheckAction(c))
	})

	t.Run(`открытые блокеры`, func(t *testing.T) {
		c := validContext()
		c.OpenBlockers = 2
		require.Equal(t, MsgOpenBlockers, CheckAction(c))
	})

	t.Run(`порядок проверок: статус записи важнее блокеров`, func(t *testing.T) {
		c := validContext()
		c.RecordStatus = models.RecordStatusRejected
		c.OpenBlockers = 1
		c.UserID = "stranger"
		require.Equal(t, MsgRecordNotPending, CheckAction(c))
	})
}
