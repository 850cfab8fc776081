package slahandler

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	notificationhandler "glue-backend/lib/notification"
	recordstore "glue-backend/lib/record/store"
	"glue-backend/lib/schema"
	workflowstepstore "glue-backend/lib/workflow/step-store"
	dbmodels "glue-backend/models/db"
)

type ScanResult struct {
	Checked   int `json:"checked"`
	Notified  int `json:"notified"`
	Escalated int `json:"escalated"`
}

type Provider interface {
	// Scan обходит просроченные этапы согласования, шлет уведомления
	// и при необходимости эскалирует. Каждый этап обрабатывается
	// независимо: ошибка по одному не прерывает обход
	Scan() (result ScanResult, err error)
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithTx(db.DB)
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		stepStore: workflowstepstore.NewInstance(tx),
		store:     recordstore.NewInstance(tx),
	}
}

type impl struct {
	stepStore workflowstepstore.Provider
	store     recordstore.Provider
}

func (i impl) Scan() (result ScanResult, err error) {
	now := time.Now()
	overdue, err := i.stepStore.ListOverdue(now)
	if err != nil {
		log.WithError(err).Error("ошибка выборки просроченных этапов")
		return result, err
	}
	for _, step := range overdue {
		result.Checked++
		notified, escalated := i.processStep(step, now)
		result.Notified += notified
		result.Escalated += escalated
	}
	if result.Checked > 0 {
		log.
			WithField("checked", result.Checked).
			WithField("notified", result.Notified).
			WithField("escalated", result.Escalated).
			Info("скан SLA завершен")
	}
	return result, nil
}

// processStep возвращает число созданных уведомлений и число
// добавленных эскалацией согласующих по этому этапу
func (i impl) processStep(step dbmodels.WorkflowStepInstance, now time.Time) (notified, escalated int) {
	logger := log.
		WithField("space_id", step.SpaceID).
		WithField("rec_id", step.RecordID).
		WithField("step", step.StepNumber)
	// отметка ставится в любом случае: повторный скан
	// не должен слать дубли по тому же этапу
	defer func() {
		if err := i.stepStore.Update(step.SpaceID, step.ID, map[string]interface{}{
			"last_sla_notified_at": now,
		}); err != nil {
			logger.WithError(err).Error("ошибка отметки SLA-уведомления")
		}
	}()

	rec, err := i.store.GetByID(step.SpaceID, step.RecordID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения записи по этапу")
		return 0, 0
	}
	if rec == nil || rec.EntityType == nil || rec.EntityType.Workflow == nil {
		return 0, 0
	}
	// конфигурация этапа перечитывается на каждом скане:
	// воркфлоу могли отредактировать после создания записи
	steps := schema.ParseWorkflowSteps(rec.EntityType.Workflow.Steps)
	stepDef := schema.FindStep(steps, step.StepNumber)
	if stepDef == nil || stepDef.SLAHours <= 0 {
		return 0, 0
	}
	entitySchema := schema.ParseEntitySchema(rec.EntityType.Schema)
	title := schema.RecordTitle(rec.Data, entitySchema)

	targets := step.AssignedApproverIDs.Union(stepDef.EscalationUserIDs)
	if len(targets) > 0 {
		notified = notificationhandler.Instance.NotifyUsers(step.SpaceID, targets, &step.RecordID,
			"Approval overdue",
			fmt.Sprintf("Record \"%s\" has been waiting on approval step %d for %s past its deadline.",
				title, step.StepNumber, humanizeOverdue(now.Sub(*step.DueAt))))
	}

	if stepDef.AutoEscalate && step.EscalatedAt == nil && len(stepDef.EscalationUserIDs) > 0 {
		merged := step.AssignedApproverIDs.Union(stepDef.EscalationUserIDs)
		if err := i.stepStore.Update(step.SpaceID, step.ID, map[string]interface{}{
			"assigned_approver_ids": merged,
			"escalated_at":          now,
		}); err != nil {
			logger.WithError(err).Error("ошибка эскалации этапа")
			return notified, 0
		}
		logger.Info("этап эскалирован")
		escalated = len(merged) - len(step.AssignedApproverIDs)
	}
	return notified, escalated
}

// humanizeOverdue - "5 hours" до суток, дальше "2 days", всегда с округлением вниз
func humanizeOverdue(d time.Duration) string {
	hours := int(math.Floor(d.Hours()))
	if hours < 1 {
		hours = 1
	}
	if hours < 24 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := hours / 24
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
