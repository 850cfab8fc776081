package recordhandler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	audithandler "glue-backend/lib/audit"
	automationhandler "glue-backend/lib/automation"
	entitytypestore "glue-backend/lib/entity-type/store"
	notificationhandler "glue-backend/lib/notification"
	recordstore "glue-backend/lib/record/store"
	"glue-backend/lib/schema"
	workflowinstancestore "glue-backend/lib/workflow/instance-store"
	workflowstepstore "glue-backend/lib/workflow/step-store"
	"glue-backend/models"
	recordapimodels "glue-backend/models/api/record"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	// Create проводит запись через валидацию схемы и создает ее вместе
	// с экземпляром воркфлоу и этапами в одной транзакции
	Create(spaceID, userID string, userRole models.UserRole, data recordapimodels.RecordCreateData) (id string, hMsg string, err error)
	GetByID(spaceID, id string) (view recordapimodels.RecordView, hMsg string, err error)
	List(spaceID string, filter recordapimodels.RecordFilter) (list []recordapimodels.RecordView, rowCount int64, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:             recordstore.NewInstance(db.DB),
		entityTypeStore:   entitytypestore.NewInstance(db.DB),
		automationHandler: automationhandler.Instance,
	}
}

type impl struct {
	store             recordstore.Provider
	entityTypeStore   entitytypestore.Provider
	automationHandler automationhandler.Provider
}

func (i impl) Create(spaceID, userID string, userRole models.UserRole, data recordapimodels.RecordCreateData) (id string, hMsg string, err error) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("user_id", userID)
	entityType, err := i.entityTypeStore.GetByID(spaceID, data.EntityTypeID)
	if err != nil {
		return "", "", err
	}
	if entityType == nil {
		return "", "Entity type not found", nil
	}
	entitySchema := schema.ParseEntitySchema(entityType.Schema)
	if hMsg = checkCreateRole(entitySchema, userRole); hMsg != "" {
		return "", hMsg, nil
	}
	var steps []schema.StepDefinition
	if entityType.Workflow != nil {
		steps = schema.ParseWorkflowSteps(entityType.Workflow.Steps)
	}
	if len(steps) == 0 {
		return "", "Approval workflow is not configured for this record type", nil
	}
	payload, hMsg := normalizePayload(entitySchema, data.Data)
	if hMsg != "" {
		return "", hMsg, nil
	}

	now := time.Now()
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		store := recordstore.NewInstance(tx)
		instanceStore := workflowinstancestore.NewInstance(tx)
		stepStore := workflowstepstore.NewInstance(tx)
		auditHandler := audithandler.NewHandlerWithTx(tx)

		id, err = store.Create(dbmodels.Record{
			BaseSpaceModel: dbmodels.BaseSpaceModel{
				SpaceID: spaceID,
			},
			EntityTypeID: entityType.ID,
			CreatorID:    userID,
			Data:         payload,
			Status:       models.RecordStatusPending,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка создания записи")
		}
		instanceID, err := instanceStore.Create(dbmodels.WorkflowInstance{
			BaseSpaceModel: dbmodels.BaseSpaceModel{
				SpaceID: spaceID,
			},
			RecordID:    id,
			CurrentStep: steps[0].Step,
			Status:      models.RecordStatusPending,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка создания экземпляра воркфлоу")
		}
		for idx, step := range steps {
			rec := dbmodels.WorkflowStepInstance{
				BaseSpaceModel: dbmodels.BaseSpaceModel{
					SpaceID: spaceID,
				},
				InstanceID:          instanceID,
				RecordID:            id,
				StepNumber:          step.Step,
				Status:              models.StepStatusPending,
				AssignedApproverIDs: dbmodels.StringList{}.Union(step.ApproverIDs),
			}
			// SLA отсчитывается с момента активации этапа,
			// при создании активен только первый
			if idx == 0 && step.SLAHours > 0 {
				dueAt := now.Add(time.Duration(step.SLAHours * float64(time.Hour)))
				rec.DueAt = &dueAt
			}
			if _, err = stepStore.Create(rec); err != nil {
				return errors.Wrapf(err, "ошибка создания этапа согласования, step=%v", step.Step)
			}
		}
		return auditHandler.WriteTx(spaceID, models.AuditActionCreated, userID, id, map[string]any{
			"entity_type_id": entityType.ID,
			"title":          schema.RecordTitle(payload, entitySchema),
		})
	})
	if err != nil {
		logger.WithError(err).Error("ошибка создания записи")
		return "", "", err
	}
	logger.
		WithField("rec_id", id).
		Info("создана запись")

	i.notifyStepApprovers(spaceID, id, schema.RecordTitle(payload, entitySchema), steps[0])
	if rec, err := i.store.GetByID(spaceID, id); err == nil {
		i.automationHandler.Trigger(spaceID, models.EventRecordCreated, rec)
	}
	return id, "", nil
}

func checkCreateRole(entitySchema schema.EntitySchema, userRole models.UserRole) (hMsg string) {
	createRoles := schema.CreateRoles(entitySchema)
	if len(createRoles) == 0 {
		return ""
	}
	for _, role := range createRoles {
		if role == userRole {
			return ""
		}
	}
	return "You do not have permission to create records of this type"
}

// normalizePayload проверяет обязательные поля и приводит number-поля к числу
func normalizePayload(entitySchema schema.EntitySchema, data map[string]any) (payload map[string]any, hMsg string) {
	payload = map[string]any{}
	for key, value := range data {
		payload[key] = value
	}
	for _, field := range entitySchema.Fields {
		value, exist := payload[field.Key]
		if field.Required && (!exist || value == nil || value == "") {
			return nil, fmt.Sprintf("Field \"%s\" is required", fieldLabel(field))
		}
		if !exist || field.Type != schema.FieldTypeNumber {
			continue
		}
		switch v := value.(type) {
		case float64:
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Sprintf("Field \"%s\" must be a number", fieldLabel(field))
			}
			payload[field.Key] = parsed
		case nil:
		default:
			return nil, fmt.Sprintf("Field \"%s\" must be a number", fieldLabel(field))
		}
	}
	return payload, ""
}

func fieldLabel(field schema.FieldDefinition) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Key
}

func (i impl) notifyStepApprovers(spaceID, recordID, title string, step schema.StepDefinition) {
	if len(step.ApproverIDs) == 0 {
		return
	}
	notificationhandler.Instance.NotifyUsers(spaceID, step.ApproverIDs, &recordID,
		"Approval required",
		fmt.Sprintf("Record \"%s\" is waiting for your approval on step %d.", title, step.Step))
}

func (i impl) GetByID(spaceID, id string) (view recordapimodels.RecordView, hMsg string, err error) {
	rec, err := i.store.GetByID(spaceID, id)
	if err != nil {
		log.
			WithField("space_id", spaceID).
			WithField("rec_id", id).
			WithError(err).
			Error("ошибка получения записи")
		return recordapimodels.RecordView{}, "", err
	}
	if rec == nil {
		return recordapimodels.RecordView{}, "Record not found", nil
	}
	return RecordConvert(*rec), "", nil
}

func (i impl) List(spaceID string, filter recordapimodels.RecordFilter) (list []recordapimodels.RecordView, rowCount int64, err error) {
	logger := log.WithField("space_id", spaceID)
	rowCount, err = i.store.ListCount(spaceID, filter)
	if err != nil {
		return nil, 0, err
	}
	recList, err := i.store.List(spaceID, filter)
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка записей")
		return nil, 0, err
	}
	result := make([]recordapimodels.RecordView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, RecordConvert(rec))
	}
	return result, rowCount, nil
}

// RecordConvert собирает представление записи с разбором схемы типа
func RecordConvert(rec dbmodels.Record) recordapimodels.RecordView {
	entitySchema := schema.EntitySchema{}
	entityTypeName := ""
	if rec.EntityType != nil {
		entitySchema = schema.ParseEntitySchema(rec.EntityType.Schema)
		entityTypeName = rec.EntityType.Name
	}
	view := recordapimodels.RecordView{
		ID:          rec.ID,
		EntityType:  entityTypeName,
		Title:       schema.RecordTitle(rec.Data, entitySchema),
		Description: schema.RecordDescription(rec.Data, entitySchema),
		Status:      rec.Status.Normalize(),
		StatusName:  rec.Status.Normalize().ToHuman(),
		Data:        rec.Data,
		CreatedAt:   rec.CreatedAt,
	}
	if rec.Creator != nil {
		view.CreatorName = rec.Creator.GetFullName()
	}
	if rec.Instance != nil {
		view.CurrentStep = rec.Instance.CurrentStep
		for _, step := range rec.Instance.Steps {
			view.Steps = append(view.Steps, recordapimodels.StepConvert(step))
		}
	}
	for _, comment := range rec.Comments {
		view.Comments = append(view.Comments, recordapimodels.CommentConvert(comment))
	}
	return view
}
