package recordapimodels

import (
	"time"

	"github.com/pkg/errors"

	"glue-backend/models"
	apimodels "glue-backend/models/api"
	dbmodels "glue-backend/models/db"
)

type RecordCreateData struct {
	EntityTypeID string         `json:"entity_type_id"`
	Data         map[string]any `json:"data"`
}

func (r RecordCreateData) Validate() error {
	if r.EntityTypeID == "" {
		return errors.New("entity_type_id is required")
	}
	return nil
}

type RecordFilter struct {
	apimodels.Pagination
	EntityTypeID string              `json:"entity_type_id,omitempty"`
	Status       models.RecordStatus `json:"status,omitempty"`
}

type ApprovalActionData struct {
	Reason string `json:"reason,omitempty"`
}

type CommentData struct {
	Kind     models.CommentKind `json:"kind"`
	Body     string             `json:"body"`
	ParentID string             `json:"parent_id,omitempty"`
}

func (r CommentData) Validate() error {
	if !r.Kind.IsValid() {
		return errors.New("unknown comment kind")
	}
	if r.Body == "" {
		return errors.New("body is required")
	}
	return nil
}

type StepView struct {
	StepNumber          int               `json:"step_number"`
	Status              models.StepStatus `json:"status"`
	AssignedApproverIDs []string          `json:"assigned_approver_ids"`
	ApprovedBy          *string           `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time        `json:"approved_at,omitempty"`
	DueAt               *time.Time        `json:"due_at,omitempty"`
	EscalatedAt         *time.Time        `json:"escalated_at,omitempty"`
}

type CommentView struct {
	ID         string             `json:"id"`
	Kind       models.CommentKind `json:"kind"`
	Body       string             `json:"body"`
	AuthorName string             `json:"author_name,omitempty"`
	ParentID   *string            `json:"parent_id,omitempty"`
	ResolvedAt *time.Time         `json:"resolved_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

type RecordView struct {
	ID          string              `json:"id"`
	EntityType  string              `json:"entity_type"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      models.RecordStatus `json:"status"`
	StatusName  string              `json:"status_name"`
	CreatorName string              `json:"creator_name,omitempty"`
	CurrentStep int                 `json:"current_step,omitempty"`
	Data        map[string]any      `json:"data"`
	Steps       []StepView          `json:"steps,omitempty"`
	Comments    []CommentView       `json:"comments,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func StepConvert(rec dbmodels.WorkflowStepInstance) StepView {
	return StepView{
		StepNumber:          rec.StepNumber,
		Status:              rec.Status,
		AssignedApproverIDs: rec.AssignedApproverIDs,
		ApprovedBy:          rec.ApprovedBy,
		ApprovedAt:          rec.ApprovedAt,
		DueAt:               rec.DueAt,
		EscalatedAt:         rec.EscalatedAt,
	}
}

func CommentConvert(rec dbmodels.RecordComment) CommentView {
	view := CommentView{
		ID:         rec.ID,
		Kind:       rec.Kind,
		Body:       rec.Body,
		ParentID:   rec.ParentID,
		ResolvedAt: rec.ResolvedAt,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.Author != nil {
		view.AuthorName = rec.Author.GetFullName()
	}
	return view
}
