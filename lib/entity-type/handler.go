package entitytypehandler

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	entitytypestore "glue-backend/lib/entity-type/store"
	"glue-backend/lib/schema"
	spaceusersstore "glue-backend/lib/space/users/store"
	entityapimodels "glue-backend/models/api/entity"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Create(spaceID string, data entityapimodels.EntityTypeData) (id string, err error)
	Update(spaceID, id string, data entityapimodels.EntityTypeData) error
	GetByID(spaceID, id string) (view entityapimodels.EntityTypeView, hMsg string, err error)
	List(spaceID string) ([]entityapimodels.EntityTypeView, error)
	SaveWorkflow(spaceID, id string, data entityapimodels.WorkflowStepsData) (hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:     entitytypestore.NewInstance(db.DB),
		userStore: spaceusersstore.NewInstance(db.DB),
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:     entitytypestore.NewInstance(tx),
		userStore: spaceusersstore.NewInstance(tx),
	}
}

type impl struct {
	store     entitytypestore.Provider
	userStore spaceusersstore.Provider
}

func (i impl) Create(spaceID string, data entityapimodels.EntityTypeData) (id string, err error) {
	logger := log.WithField("space_id", spaceID)
	rec := dbmodels.EntityType{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: spaceID,
		},
		Name:   data.Name,
		Schema: dbmodels.JSONRaw(data.Schema),
	}
	id, err = i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("ошибка создания типа записи")
		return "", err
	}
	logger.
		WithField("rec_id", id).
		Info("создан тип записи")
	return id, nil
}

func (i impl) Update(spaceID, id string, data entityapimodels.EntityTypeData) error {
	logger := log.
		WithField("space_id", spaceID).
		WithField("rec_id", id)
	updMap := map[string]interface{}{
		"Name":   data.Name,
		"Schema": dbmodels.JSONRaw(data.Schema),
	}
	err := i.store.Update(spaceID, id, updMap)
	if err != nil {
		logger.WithError(err).Error("ошибка обновления типа записи")
		return err
	}
	logger.Info("обновлен тип записи")
	return nil
}

func (i impl) GetByID(spaceID, id string) (view entityapimodels.EntityTypeView, hMsg string, err error) {
	rec, err := i.store.GetByID(spaceID, id)
	if err != nil {
		return entityapimodels.EntityTypeView{}, "", err
	}
	if rec == nil {
		return entityapimodels.EntityTypeView{}, "Entity type not found", nil
	}
	return entityapimodels.EntityTypeConvert(*rec), "", nil
}

func (i impl) List(spaceID string) ([]entityapimodels.EntityTypeView, error) {
	recList, err := i.store.List(spaceID)
	if err != nil {
		return nil, err
	}
	result := make([]entityapimodels.EntityTypeView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, entityapimodels.EntityTypeConvert(rec))
	}
	return result, nil
}

func (i impl) SaveWorkflow(spaceID, id string, data entityapimodels.WorkflowStepsData) (hMsg string, err error) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("rec_id", id)
	rec, err := i.store.GetByID(spaceID, id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "Entity type not found", nil
	}
	steps := schema.ParseWorkflowSteps(data.Steps)
	for _, step := range steps {
		for _, approverID := range step.ApproverIDs {
			user, err := i.userStore.GetByID(approverID)
			if err != nil {
				return "", err
			}
			if user == nil || user.SpaceID != spaceID {
				return fmt.Sprintf("Approver from step %v was not found in this organization", step.Step), nil
			}
		}
	}
	// сохраняем уже нормализованное определение
	normalized, err := json.Marshal(steps)
	if err != nil {
		return "", err
	}
	err = i.store.SaveWorkflow(dbmodels.WorkflowDefinition{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: spaceID,
		},
		EntityTypeID: id,
		Steps:        dbmodels.JSONRaw(normalized),
	})
	if err != nil {
		logger.WithError(err).Error("ошибка сохранения цепочки согласования")
		return "", err
	}
	logger.Info("обновлена цепочка согласования")
	return "", nil
}
