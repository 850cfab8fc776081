package automationapimodels

import (
	"github.com/pkg/errors"

	"glue-backend/lib/graph"
	dbmodels "glue-backend/models/db"
)

type GraphData struct {
	Name  string       `json:"name"`
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

func (r GraphData) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type GraphView struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Nodes   []graph.Node `json:"nodes"`
	Edges   []graph.Edge `json:"edges"`
	Version int          `json:"version"`
}

func GraphConvert(rec dbmodels.WorkflowGraph, nodes []graph.Node, edges []graph.Edge) GraphView {
	return GraphView{
		ID:      rec.ID,
		Name:    rec.Name,
		Nodes:   nodes,
		Edges:   edges,
		Version: rec.Version,
	}
}
