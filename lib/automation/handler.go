package automationhandler

import (
	"encoding/json"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	audithandler "glue-backend/lib/audit"
	automationstore "glue-backend/lib/automation/store"
	"glue-backend/lib/graph"
	"glue-backend/models"
	automationapimodels "glue-backend/models/api/automation"
	dbmodels "glue-backend/models/db"
)

// Тип узла, исполняемого раннером; остальные типы узлов посещаются
// при обходе, но пока ничего не делают.
const NodeTypeApprovalStep = "approvalStep"

type Provider interface {
	Save(spaceID string, data automationapimodels.GraphData) (hMsg string, err error)
	GetLatest(spaceID string) (view *automationapimodels.GraphView, err error)
	// Trigger запускает раннер по событию записи. Ошибки и невалидный граф
	// не прерывают породившее событие действие - только лог.
	Trigger(spaceID string, event models.WorkflowEvent, record *dbmodels.Record)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:        automationstore.NewInstance(db.DB),
		auditHandler: audithandler.NewHandlerWithTx(db.DB),
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:        automationstore.NewInstance(tx),
		auditHandler: audithandler.NewHandlerWithTx(tx),
	}
}

type impl struct {
	store        automationstore.Provider
	auditHandler audithandler.Provider
}

func (i impl) Save(spaceID string, data automationapimodels.GraphData) (hMsg string, err error) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("graph_name", data.Name)
	validation := graph.Validate(data.Nodes, data.Edges)
	if !validation.Valid {
		return strings.Join(validation.Errors, " "), nil
	}
	nodesRaw, err := json.Marshal(data.Nodes)
	if err != nil {
		return "", err
	}
	edgesRaw, err := json.Marshal(data.Edges)
	if err != nil {
		return "", err
	}

	current, err := i.store.GetByName(spaceID, data.Name)
	if err != nil {
		return "", err
	}
	if current != nil {
		updMap := map[string]interface{}{
			"Nodes":   dbmodels.JSONRaw(nodesRaw),
			"Edges":   dbmodels.JSONRaw(edgesRaw),
			"Version": current.Version + 1,
		}
		err = i.store.Update(spaceID, current.ID, updMap)
		if err != nil {
			logger.WithError(err).Error("ошибка обновления графа автоматизации")
			return "", err
		}
		logger.Info("обновлен граф автоматизации")
		return "", nil
	}
	_, err = i.store.Create(dbmodels.WorkflowGraph{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: spaceID,
		},
		Name:    data.Name,
		Nodes:   dbmodels.JSONRaw(nodesRaw),
		Edges:   dbmodels.JSONRaw(edgesRaw),
		Version: 1,
	})
	if err != nil {
		logger.WithError(err).Error("ошибка создания графа автоматизации")
		return "", err
	}
	logger.Info("создан граф автоматизации")
	return "", nil
}

func (i impl) GetLatest(spaceID string) (*automationapimodels.GraphView, error) {
	rec, err := i.store.GetLatest(spaceID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	nodes, edges := decodeGraph(rec)
	view := automationapimodels.GraphConvert(*rec, nodes, edges)
	return &view, nil
}

func (i impl) Trigger(spaceID string, event models.WorkflowEvent, record *dbmodels.Record) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("event", event)
	rec, err := i.store.GetLatest(spaceID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения графа автоматизации")
		return
	}
	if rec == nil {
		return
	}
	nodes, edges := decodeGraph(rec)
	validation := graph.Validate(nodes, edges)
	if !validation.Valid {
		logger.
			WithField("graph_id", rec.ID).
			Debug("граф автоматизации невалиден, запуск пропущен")
		return
	}

	nodeByID := make(map[string]graph.Node, len(nodes))
	for _, node := range nodes {
		nodeByID[node.ID] = node
	}
	recordID := ""
	if record != nil {
		recordID = record.ID
	}
	for _, nodeID := range validation.Order {
		node := nodeByID[nodeID]
		if node.Type != NodeTypeApprovalStep {
			continue
		}
		role, _ := node.Data["role"].(string)
		i.auditHandler.Write(spaceID, models.AuditActionNodeExecuted, models.SystemUser, recordID, map[string]any{
			"graph_id":   rec.ID,
			"graph_name": rec.Name,
			"node_id":    node.ID,
			"node_type":  node.Type,
			"role":       role,
			"event":      string(event),
		})
	}
}

func decodeGraph(rec *dbmodels.WorkflowGraph) (nodes []graph.Node, edges []graph.Edge) {
	// хранится только провалидированный json, мусор здесь означает пустой граф
	_ = json.Unmarshal(rec.Nodes, &nodes)
	_ = json.Unmarshal(rec.Edges, &edges)
	return nodes, edges
}
