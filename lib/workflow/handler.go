package workflowhandler

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	"glue-backend/lib/approval"
	audithandler "glue-backend/lib/audit"
	automationhandler "glue-backend/lib/automation"
	commenthandler "glue-backend/lib/comment"
	notificationhandler "glue-backend/lib/notification"
	recordstore "glue-backend/lib/record/store"
	"glue-backend/lib/schema"
	workflowinstancestore "glue-backend/lib/workflow/instance-store"
	workflowstepstore "glue-backend/lib/workflow/step-store"
	"glue-backend/models"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	// Approve закрывает текущий этап согласования и либо активирует
	// следующий, либо переводит запись в APPROVED
	Approve(spaceID, userID string, userRole models.UserRole, recordID string) (hMsg string, err error)
	// Reject отклоняет текущий этап и завершает всю цепочку
	Reject(spaceID, userID string, userRole models.UserRole, recordID, reason string) (hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:             recordstore.NewInstance(db.DB),
		commentHandler:    commenthandler.Instance,
		automationHandler: automationhandler.Instance,
	}
}

type impl struct {
	store             recordstore.Provider
	commentHandler    commenthandler.Provider
	automationHandler automationhandler.Provider
}

// actionState - все, что нужно движку для одного перехода
type actionState struct {
	record      *dbmodels.Record
	instance    *dbmodels.WorkflowInstance
	currentStep *dbmodels.WorkflowStepInstance
	stepDef     schema.StepDefinition
	steps       []schema.StepDefinition
	title       string
}

func (i impl) Approve(spaceID, userID string, userRole models.UserRole, recordID string) (hMsg string, err error) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("user_id", userID).
		WithField("rec_id", recordID)
	state, hMsg, err := i.loadState(spaceID, recordID)
	if err != nil || hMsg != "" {
		return hMsg, err
	}
	openBlockers, err := i.commentHandler.OpenBlockers(spaceID, recordID)
	if err != nil {
		return "", err
	}
	if hMsg = approval.CheckAction(approval.ActionContext{
		RecordStatus:        state.record.Status,
		InstanceStatus:      state.instance.Status,
		StepStatus:          state.currentStep.Status,
		RequiredRole:        state.stepDef.Role,
		AssignedApproverIDs: state.currentStep.AssignedApproverIDs,
		UserID:              userID,
		UserRole:            userRole,
		OpenBlockers:        int(openBlockers),
	}); hMsg != "" {
		return hMsg, nil
	}

	now := time.Now()
	nextStep, isLast := nextStepDefinition(state.steps, state.instance.CurrentStep)
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		stepStore := workflowstepstore.NewInstance(tx)
		instanceStore := workflowinstancestore.NewInstance(tx)
		store := recordstore.NewInstance(tx)
		auditHandler := audithandler.NewHandlerWithTx(tx)

		resolved, err := stepStore.ResolvePending(spaceID, state.currentStep.ID, map[string]interface{}{
			"status":      models.StepStatusApproved,
			"approved_by": userID,
			"approved_at": now,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка закрытия этапа")
		}
		if !resolved {
			hMsg = approval.MsgStepAlreadyResolved
			return nil
		}
		if isLast {
			if err = instanceStore.Update(spaceID, state.instance.ID, map[string]interface{}{
				"status": models.RecordStatusApproved,
			}); err != nil {
				return errors.Wrap(err, "ошибка завершения воркфлоу")
			}
			if err = store.Update(spaceID, recordID, map[string]interface{}{
				"status": models.RecordStatusApproved,
			}); err != nil {
				return errors.Wrap(err, "ошибка обновления статуса записи")
			}
		} else {
			if err = instanceStore.Update(spaceID, state.instance.ID, map[string]interface{}{
				"current_step": nextStep.Step,
			}); err != nil {
				return errors.Wrap(err, "ошибка перехода на следующий этап")
			}
			if err = activateStep(stepStore, spaceID, state.instance.Steps, nextStep, now); err != nil {
				return err
			}
		}
		return auditHandler.WriteTx(spaceID, models.AuditActionApproved, userID, recordID, map[string]any{
			"step": state.instance.CurrentStep,
		})
	})
	if err != nil {
		logger.WithError(err).Error("ошибка согласования записи")
		return "", err
	}
	if hMsg != "" {
		return hMsg, nil
	}
	logger.
		WithField("step", state.instance.CurrentStep).
		Info("этап согласован")

	if isLast {
		notificationhandler.Instance.NotifyUsers(spaceID, []string{state.record.CreatorID}, &recordID,
			"Record approved",
			fmt.Sprintf("Record \"%s\" has passed all approval steps.", state.title))
		if rec, err := i.store.GetByID(spaceID, recordID); err == nil {
			i.automationHandler.Trigger(spaceID, models.EventRecordApproved, rec)
		}
	} else if len(nextStep.ApproverIDs) > 0 {
		notificationhandler.Instance.NotifyUsers(spaceID, nextStep.ApproverIDs, &recordID,
			"Approval required",
			fmt.Sprintf("Record \"%s\" is waiting for your approval on step %d.", state.title, nextStep.Step))
	}
	return "", nil
}

func (i impl) Reject(spaceID, userID string, userRole models.UserRole, recordID, reason string) (hMsg string, err error) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("user_id", userID).
		WithField("rec_id", recordID)
	state, hMsg, err := i.loadState(spaceID, recordID)
	if err != nil || hMsg != "" {
		return hMsg, err
	}
	// открытые блокеры не мешают отклонению
	if hMsg = approval.CheckAction(approval.ActionContext{
		RecordStatus:        state.record.Status,
		InstanceStatus:      state.instance.Status,
		StepStatus:          state.currentStep.Status,
		RequiredRole:        state.stepDef.Role,
		AssignedApproverIDs: state.currentStep.AssignedApproverIDs,
		UserID:              userID,
		UserRole:            userRole,
	}); hMsg != "" {
		return hMsg, nil
	}

	now := time.Now()
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		stepStore := workflowstepstore.NewInstance(tx)
		instanceStore := workflowinstancestore.NewInstance(tx)
		store := recordstore.NewInstance(tx)
		auditHandler := audithandler.NewHandlerWithTx(tx)

		resolved, err := stepStore.ResolvePending(spaceID, state.currentStep.ID, map[string]interface{}{
			"status":      models.StepStatusRejected,
			"approved_by": userID,
			"approved_at": now,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка закрытия этапа")
		}
		if !resolved {
			hMsg = approval.MsgStepAlreadyResolved
			return nil
		}
		if err = instanceStore.Update(spaceID, state.instance.ID, map[string]interface{}{
			"status": models.RecordStatusRejected,
		}); err != nil {
			return errors.Wrap(err, "ошибка завершения воркфлоу")
		}
		if err = store.Update(spaceID, recordID, map[string]interface{}{
			"status": models.RecordStatusRejected,
		}); err != nil {
			return errors.Wrap(err, "ошибка обновления статуса записи")
		}
		metadata := map[string]any{
			"step": state.instance.CurrentStep,
		}
		if reason != "" {
			metadata["reason"] = reason
		}
		return auditHandler.WriteTx(spaceID, models.AuditActionRejected, userID, recordID, metadata)
	})
	if err != nil {
		logger.WithError(err).Error("ошибка отклонения записи")
		return "", err
	}
	if hMsg != "" {
		return hMsg, nil
	}
	logger.
		WithField("step", state.instance.CurrentStep).
		Info("запись отклонена")

	body := fmt.Sprintf("Record \"%s\" was rejected on step %d.", state.title, state.instance.CurrentStep)
	if reason != "" {
		body = fmt.Sprintf("%s Reason: %s", body, reason)
	}
	notificationhandler.Instance.NotifyUsers(spaceID, []string{state.record.CreatorID}, &recordID,
		"Record rejected", body)
	if rec, err := i.store.GetByID(spaceID, recordID); err == nil {
		i.automationHandler.Trigger(spaceID, models.EventRecordRejected, rec)
	}
	return "", nil
}

func (i impl) loadState(spaceID, recordID string) (state actionState, hMsg string, err error) {
	rec, err := i.store.GetByID(spaceID, recordID)
	if err != nil {
		log.
			WithField("space_id", spaceID).
			WithField("rec_id", recordID).
			WithError(err).
			Error("ошибка получения записи")
		return state, "", err
	}
	if rec == nil {
		return state, "Record not found", nil
	}
	if rec.EntityType == nil || rec.EntityType.Workflow == nil {
		return state, "Workflow definition missing", nil
	}
	// запись без инстанса считается отсутствующей: они создаются
	// в одной транзакции, порознь их быть не должно
	if rec.Instance == nil {
		return state, "Record not found", nil
	}
	steps := schema.ParseWorkflowSteps(rec.EntityType.Workflow.Steps)
	stepDef := schema.FindStep(steps, rec.Instance.CurrentStep)
	if stepDef == nil {
		return state, "Workflow definition missing", nil
	}
	if !stepDef.Role.IsKnown() {
		return state, "Invalid workflow role configuration", nil
	}
	var current *dbmodels.WorkflowStepInstance
	for idx := range rec.Instance.Steps {
		if rec.Instance.Steps[idx].StepNumber == rec.Instance.CurrentStep {
			current = &rec.Instance.Steps[idx]
			break
		}
	}
	if current == nil {
		return state, "Invalid workflow state", nil
	}
	entitySchema := schema.EntitySchema{}
	if rec.EntityType != nil {
		entitySchema = schema.ParseEntitySchema(rec.EntityType.Schema)
	}
	return actionState{
		record:      rec,
		instance:    rec.Instance,
		currentStep: current,
		stepDef:     *stepDef,
		steps:       steps,
		title:       schema.RecordTitle(rec.Data, entitySchema),
	}, "", nil
}

// nextStepDefinition возвращает следующий по порядку этап цепочки
func nextStepDefinition(steps []schema.StepDefinition, currentStep int) (next schema.StepDefinition, isLast bool) {
	for idx, step := range steps {
		if step.Step == currentStep {
			if idx == len(steps)-1 {
				return schema.StepDefinition{}, true
			}
			return steps[idx+1], false
		}
	}
	return schema.StepDefinition{}, true
}

// activateStep выставляет дедлайн активируемому этапу:
// SLA отсчитывается с момента активации, а не с создания записи
func activateStep(stepStore workflowstepstore.Provider, spaceID string, stepRecs []dbmodels.WorkflowStepInstance, stepDef schema.StepDefinition, now time.Time) error {
	if stepDef.SLAHours <= 0 {
		return nil
	}
	for _, rec := range stepRecs {
		if rec.StepNumber != stepDef.Step {
			continue
		}
		dueAt := now.Add(time.Duration(stepDef.SLAHours * float64(time.Hour)))
		if err := stepStore.Update(spaceID, rec.ID, map[string]interface{}{
			"due_at": dueAt,
		}); err != nil {
			return errors.Wrapf(err, "ошибка активации этапа, step=%v", stepDef.Step)
		}
		return nil
	}
	return nil
}
