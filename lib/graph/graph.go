package graph

import "fmt"

// Валидация направленного графа редактора автоматизаций: ссылки ребер на
// существующие узлы и отсутствие циклов, порядок исполнения - сортировка Кана.

type Node struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	Order  []string `json:"order"`
}

const (
	errEmptyGraph = "Graph must contain at least one node"
	errCycle      = "Graph contains a cycle or disconnected loop"
)

// Validate проверяет граф и строит топологический порядок исполнения.
// Ребра с отсутствующими узлами добавляют ошибку, но сортировка продолжается
// по валидным ребрам. При равенстве приоритет у исходного порядка узлов.
func Validate(nodes []Node, edges []Edge) Result {
	result := Result{Errors: []string{}, Order: []string{}}
	if len(nodes) == 0 {
		result.Errors = append(result.Errors, errEmptyGraph)
		return result
	}

	// дубликаты id схлопываются в один узел, иначе проверка цикла
	// по числу узлов дала бы ложный результат
	known := make(map[string]bool, len(nodes))
	distinct := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		if known[node.ID] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Duplicate node id %s", node.ID))
			continue
		}
		known[node.ID] = true
		distinct = append(distinct, node)
	}
	nodes = distinct

	inDegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for _, edge := range edges {
		if !known[edge.Source] || !known[edge.Target] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Edge %s -> %s references a missing node", edge.Source, edge.Target))
			continue
		}
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	queue := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result.Order = append(result.Order, id)
		for _, next := range adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result.Order) < len(nodes) {
		result.Errors = append(result.Errors, errCycle)
	}
	result.Valid = len(result.Errors) == 0
	return result
}
