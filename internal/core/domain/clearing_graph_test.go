package domain_test

import (
	"testing"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestClearingGraph_FindCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges map[int64]domain.ShareMap
		start int64
		want  []int64
	}{
		{
			name:  "no edges",
			edges: map[int64]domain.ShareMap{1: {}},
			start: 1,
			want:  nil,
		},
		{
			name: "chain into personal accounts",
			edges: map[int64]domain.ShareMap{
				1: {2: 1, 10: 1},
				2: {3: 2},
				3: {10: 1, 11: 1},
			},
			start: 1,
			want:  nil,
		},
		{
			name: "two account loop",
			edges: map[int64]domain.ShareMap{
				1: {2: 1},
				2: {1: 1},
			},
			start: 2,
			want:  []int64{2, 1, 2},
		},
		{
			name: "three account loop",
			edges: map[int64]domain.ShareMap{
				1: {2: 1},
				2: {3: 1},
				3: {1: 1, 10: 1},
			},
			start: 3,
			want:  []int64{3, 1, 2, 3},
		},
		{
			name:  "self loop",
			edges: map[int64]domain.ShareMap{4: {4: 1}},
			start: 4,
			want:  []int64{4, 4},
		},
		{
			name: "diamond is not a cycle",
			edges: map[int64]domain.ShareMap{
				1: {2: 1, 3: 1},
				2: {4: 1},
				3: {4: 1},
			},
			start: 1,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := domain.NewClearingGraph()
			for from, shares := range tt.edges {
				graph.SetShares(from, shares)
			}
			assert.Equal(t, tt.want, graph.FindCycle(tt.start))
		})
	}
}

func TestClearingGraph_HasSelfLoop(t *testing.T) {
	graph := domain.NewClearingGraph()
	graph.SetShares(1, domain.ShareMap{1: 1, 2: 1})
	graph.SetShares(2, domain.ShareMap{3: 1})

	assert.True(t, graph.HasSelfLoop(1))
	assert.False(t, graph.HasSelfLoop(2))
}
