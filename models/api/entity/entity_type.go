package entityapimodels

import (
	"encoding/json"

	"github.com/pkg/errors"

	"glue-backend/lib/schema"
	dbmodels "glue-backend/models/db"
)

type EntityTypeData struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

func (r EntityTypeData) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type WorkflowStepsData struct {
	Steps json.RawMessage `json:"steps"`
}

type EntityTypeView struct {
	ID     string                  `json:"id"`
	Name   string                  `json:"name"`
	Schema schema.EntitySchema     `json:"schema"`
	Steps  []schema.StepDefinition `json:"steps"`
}

func EntityTypeConvert(rec dbmodels.EntityType) EntityTypeView {
	view := EntityTypeView{
		ID:     rec.ID,
		Name:   rec.Name,
		Schema: schema.ParseEntitySchema(rec.Schema),
		Steps:  []schema.StepDefinition{},
	}
	if rec.Workflow != nil {
		view.Steps = schema.ParseWorkflowSteps(rec.Workflow.Steps)
	}
	return view
}
