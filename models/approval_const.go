package models

type StepStatus string

const (
	StepStatusPending  StepStatus = "PENDING"
	StepStatusApproved StepStatus = "APPROVED"
	StepStatusRejected StepStatus = "REJECTED"
)

func (s StepStatus) IsResolved() bool {
	return s == StepStatusApproved || s == StepStatusRejected
}

type CommentKind string

const (
	CommentKindComment  CommentKind = "COMMENT"
	CommentKindQuestion CommentKind = "QUESTION"
	CommentKindBlocker  CommentKind = "BLOCKER"
)

func (k CommentKind) IsValid() bool {
	switch k {
	case CommentKindComment, CommentKindQuestion, CommentKindBlocker:
		return true
	}
	return false
}

type AuditAction string

const (
	AuditActionCreated      AuditAction = "CREATED"
	AuditActionApproved     AuditAction = "APPROVED"
	AuditActionRejected     AuditAction = "REJECTED"
	AuditActionNodeExecuted AuditAction = "NODE_EXECUTED"
)

// WorkflowEvent - события жизненного цикла записи, триггеры для автоматизации
type WorkflowEvent string

const (
	EventRecordCreated  WorkflowEvent = "record.created"
	EventRecordApproved WorkflowEvent = "record.approved"
	EventRecordRejected WorkflowEvent = "record.rejected"
)
