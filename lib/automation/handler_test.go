package automationhandler

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"glue-backend/db"
	audithandler "glue-backend/lib/audit"
	"glue-backend/lib/graph"
	"glue-backend/models"
	automationapimodels "glue-backend/models/api/automation"
)

func setupTestDB(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.Nil(t, err)
	sqlDB, err := gdb.DB()
	require.Nil(t, err)
	sqlDB.SetMaxOpenConns(1)
	db.DB = gdb
	require.Nil(t, db.Migrate(gdb))

	audithandler.NewHandler()
	NewHandler()
}

func TestAutomationGraph(t *testing.T) {
	setupTestDB(t)
	spaceID := uuid.NewString()

	t.Run(`сохранение и версионирование`, func(t *testing.T) {
		data := automationapimodels.GraphData{
			Name: "Expense flow",
			Nodes: []graph.Node{
				{ID: "n1", Type: NodeTypeApprovalStep, Data: map[string]any{"role": "MEMBER"}},
				{ID: "n2", Type: NodeTypeApprovalStep, Data: map[string]any{"role": "ADMIN"}},
			},
			Edges: []graph.Edge{{Source: "n1", Target: "n2"}},
		}
		hMsg, err := Instance.Save(spaceID, data)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)

		view, err := Instance.GetLatest(spaceID)
		require.Nil(t, err)
		require.NotNil(t, view)
		require.Equal(t, 1, view.Version)
		require.Len(t, view.Nodes, 2)

		// повторное сохранение того же имени поднимает версию
		hMsg, err = Instance.Save(spaceID, data)
		require.Nil(t, err)
		require.Equal(t, "", hMsg)
		view, err = Instance.GetLatest(spaceID)
		require.Nil(t, err)
		require.Equal(t, 2, view.Version)
	})

	t.Run(`невалидный граф не сохраняется`, func(t *testing.T) {
		data := automationapimodels.GraphData{
			Name: "Broken flow",
			Nodes: []graph.Node{
				{ID: "a", Type: NodeTypeApprovalStep},
				{ID: "b", Type: NodeTypeApprovalStep},
			},
			Edges: []graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
		}
		hMsg, err := Instance.Save(spaceID, data)
		require.Nil(t, err)
		require.Equal(t, "Graph contains a cycle or disconnected loop", hMsg)

		hMsg, err = Instance.Save(spaceID, automationapimodels.GraphData{Name: "Empty"})
		require.Nil(t, err)
		require.Equal(t, "Graph must contain at least one node", hMsg)
	})

	t.Run(`запуск пишет аудит в топологическом порядке`, func(t *testing.T) {
		Instance.Trigger(spaceID, models.EventRecordApproved, nil)

		audit, err := audithandler.Instance.ListByEntity(spaceID, "")
		require.Nil(t, err)
		require.Len(t, audit, 2)
		require.Equal(t, models.AuditActionNodeExecuted, audit[0].Action)
		require.Equal(t, models.SystemUser, audit[0].ActorID)
		require.Equal(t, "n1", audit[0].Metadata["node_id"])
		require.Equal(t, "n2", audit[1].Metadata["node_id"])
		require.Equal(t, "record.approved", audit[0].Metadata["event"])
	})

	t.Run(`нет графа - запуск молча пропускается`, func(t *testing.T) {
		Instance.Trigger(uuid.NewString(), models.EventRecordCreated, nil)
	})
}
