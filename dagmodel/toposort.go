package dagmodel

import "sort"

// TopologicalOrder runs Kahn's algorithm over enabled
// edges. The result is a diagnostic display/dry-run ordering only; the
// Streaming Executor schedules nodes independently and does not rely on
// this order. Ties are broken by node id for determinism. Returns
// a GraphStructureError if a cycle remains (Validate should always be run
// first and would already have caught it).
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = len(g.reverse[id])
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var next []string
		for _, e := range g.forward[id] {
			inDegree[e.ToNode]--
			if inDegree[e.ToNode] == 0 {
				next = append(next, e.ToNode)
			}
		}
		ready = append(ready, next...)
	}

	if len(order) != len(g.nodes) {
		var remaining []string
		for id, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &GraphStructureError{Reason: "cycle detected during topological sort", Cycle: remaining}
	}

	return order, nil
}
