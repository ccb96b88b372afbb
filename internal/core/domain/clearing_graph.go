package domain

import "sort"

// ClearingGraph maps a clearing account to the accounts its shares point at.
// It is rebuilt for every validation and never persisted.
type ClearingGraph map[int64][]int64

// NewClearingGraph creates an empty graph.
func NewClearingGraph() ClearingGraph {
	return make(ClearingGraph)
}

// SetShares replaces the outgoing edges of from with the accounts in shares.
func (g ClearingGraph) SetShares(from int64, shares ShareMap) {
	g[from] = shares.AccountIDs()
}

// HasSelfLoop reports whether a node points at itself.
func (g ClearingGraph) HasSelfLoop(node int64) bool {
	for _, neighbor := range g[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// FindCycle runs a depth-first search from start and returns the first cycle
// it reaches as a path that begins and ends on the same account, or nil.
func (g ClearingGraph) FindCycle(start int64) []int64 {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[int64]int)
	var stack []int64

	var visit func(node int64) []int64
	visit = func(node int64) []int64 {
		state[node] = inProgress
		stack = append(stack, node)

		neighbors := append([]int64(nil), g[node]...)
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
		for _, next := range neighbors {
			switch state[next] {
			case inProgress:
				for i, onPath := range stack {
					if onPath == next {
						cycle := append([]int64(nil), stack[i:]...)
						return append(cycle, next)
					}
				}
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[node] = done
		return nil
	}

	return visit(start)
}
