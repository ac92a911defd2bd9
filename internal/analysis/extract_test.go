package analysis_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

func TestExtractCharacteristic(t *testing.T) {
	t.Parallel()

	params := domain.DefaultParams()

	tests := []struct {
		name    string
		session domain.Session
		want    []int
	}{
		{
			name: "dwell before a nearby sample is kept, departure is not",
			session: makeSession("s1",
				node{ts: 0, x: 0, y: 0, zoom: 10},
				node{ts: 1000, x: 5, y: 0, zoom: 10},
				node{ts: 5000, x: 8, y: 0, zoom: 10},
				node{ts: 6000, x: 5008, y: 0, zoom: 10},
			),
			want: []int{0, 1},
		},
		{
			name: "gap exactly at threshold is kept",
			session: makeSession("s2",
				node{ts: 0, zoom: 10},
				node{ts: 100, zoom: 10},
				node{ts: 3100, x: 2999, zoom: 10},
				node{ts: 3200, x: 2999, zoom: 10},
			),
			want: []int{0, 1},
		},
		{
			name: "distance exactly at max is rejected",
			session: makeSession("s3",
				node{ts: 0, zoom: 10},
				node{ts: 100, zoom: 10},
				node{ts: 5000, x: 3000, zoom: 10},
			),
			want: []int{0},
		},
		{
			name: "short gaps keep only the start",
			session: makeSession("s4",
				node{ts: 0, zoom: 10},
				node{ts: 500, zoom: 10},
				node{ts: 1000, zoom: 10},
			),
			want: []int{0},
		},
		{
			name:    "single event session keeps its start",
			session: makeSession("s5", node{ts: 0, zoom: 10}),
			want:    []int{0},
		},
		{
			name:    "empty session",
			session: domain.Session{ID: "s6"},
			want:    []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := analysis.ExtractCharacteristic(tt.session, params)
			assert.Equal(t, tt.want, indices(got))
		})
	}
}

func TestExtractCharacteristic_SubsequenceProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	params := domain.DefaultParams()

	for range 200 {
		n := 2 + rng.IntN(20)
		nodes := make([]node, n)
		var ts int64
		for i := range nodes {
			ts += rng.Int64N(6000)
			nodes[i] = node{ts: ts, x: rng.Float64() * 6000, y: rng.Float64() * 6000, zoom: 10}
		}
		s := makeSession("prop", nodes...)

		got := indices(analysis.ExtractCharacteristic(s, params))

		require.NotEmpty(t, got)
		assert.Equal(t, 0, got[0], "first event always kept")
		assert.NotContains(t, got, n-1, "last event never kept")
		assert.IsIncreasing(t, got)
	}
}
