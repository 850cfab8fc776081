package approval

import "glue-backend/models"

// Единственная точка принятия решения о допустимости согласования или
// отклонения. Порядок проверок фиксирован: первая непройденная определяет
// сообщение для пользователя.

const (
	MsgRecordNotPending    = "Record is not pending approval"
	MsgWorkflowNotPending  = "Workflow is not pending approval"
	MsgStepAlreadyResolved = "Current step has already been resolved"
	MsgNoApproversAssigned = "Approvers have not been assigned for this step"
	MsgNotAssigned         = "You are not assigned to this approval step"
	MsgInsufficientRole    = "Insufficient permissions"
	MsgOpenBlockers        = "Resolve open blockers before approving."
)

type ActionContext struct {
	RecordStatus        models.RecordStatus
	InstanceStatus      models.RecordStatus
	StepStatus          models.StepStatus
	RequiredRole        models.UserRole
	AssignedApproverIDs []string
	UserID              string
	UserRole            models.UserRole
	OpenBlockers        int
}

// CheckAction возвращает пустую строку, если действие разрешено,
// иначе - сообщение об отказе.
// ADMIN проходит проверку требуемой роли: иначе эскалированный по SLA
// администратор не смог бы согласовать чужой этап. Членство в списке
// согласующих обязательно для всех ролей.
func CheckAction(c ActionContext) string {
	if c.RecordStatus.Normalize() != models.RecordStatusPending {
		return MsgRecordNotPending
	}
	if c.InstanceStatus.Normalize() != models.RecordStatusPending {
		return MsgWorkflowNotPending
	}
	if c.StepStatus != models.StepStatusPending {
		return MsgStepAlreadyResolved
	}
	if len(c.AssignedApproverIDs) == 0 {
		return MsgNoApproversAssigned
	}
	assigned := false
	for _, id := range c.AssignedApproverIDs {
		if id == c.UserID {
			assigned = true
			break
		}
	}
	if !assigned {
		return MsgNotAssigned
	}
	if c.RequiredRole != "" && c.UserRole != c.RequiredRole && !c.UserRole.IsAdmin() {
		return MsgInsufficientRole
	}
	if c.OpenBlockers > 0 {
		return MsgOpenBlockers
	}
	return ""
}
