package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/api"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/compare"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/reactive"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/telemetry"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/viewsync"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func sampleResult() *analysis.Result {
	events := []domain.NormalizedEvent{
		{ObjectID: "e1", SessionID: "s1", Position: orb.Point{0, 0}, SpatialRef: domain.WKIDWebMercator, Zoom: 12},
		{ObjectID: "e2", SessionID: "s1", Index: 1, Position: orb.Point{9000, 0}, SpatialRef: domain.WKIDWebMercator, Zoom: 12},
	}
	return &analysis.Result{
		Cohort:               "novices",
		RunID:                "run-1",
		Sessions:             []domain.Session{{ID: "s1", Events: events}},
		CharacteristicPoints: events,
		Segments: []domain.TrajectorySegment{{
			SessionID: "s1", Line: orb.LineString{{0, 0}, {9000, 0}}, SpatialRef: domain.WKIDWebMercator,
		}},
		Clusters: []domain.Cluster{
			{ID: 1, Center: orb.Point{0, 0}, Zoom: 12, Radius: 1000, SpatialRef: domain.WKIDWebMercator, Members: 1},
			{ID: 2, Center: orb.Point{9000, 0}, Zoom: 12, Radius: 1000, SpatialRef: domain.WKIDWebMercator, Members: 1},
		},
		Assignments: []int{1, 2},
		Moves:       []domain.MoveEdge{{Start: 1, End: 2, Segments: []orb.LineString{{{0, 0}, {9000, 0}}}}},
	}
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()

	loop := reactive.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	tp := telemetry.NewProvider(nil)
	ws := compare.New(loop, viewsync.Viewpoint{Scale: 50000, Zoom: 10}, logger.NewNop(), compare.WithRecorder(tp))
	h := api.NewHandler([]api.Cohort{{ID: "novices", Title: "Novices", Result: sampleResult()}}, ws, logger.NewNop())

	router := gin.New()
	api.SetupRoutes(router, h, tp.Handler(), nil, logger.NewNop())
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListCohorts(t *testing.T) {
	t.Parallel()

	w := do(t, newRouter(t), http.MethodGet, "/api/v1/cohorts", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Cohorts []api.CohortSummary `json:"cohorts"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, api.CohortSummary{
		ID:                   "novices",
		Title:                "Novices",
		RunID:                "run-1",
		Sessions:             1,
		Interactions:         2,
		CharacteristicPoints: 2,
		Clusters:             2,
		Moves:                1,
	}, body.Cohorts[0])
}

func TestCohortLayer(t *testing.T) {
	t.Parallel()

	router := newRouter(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantLen  int
	}{
		{name: "points", path: "/api/v1/cohorts/novices/layers/interaction_points", wantCode: http.StatusOK, wantLen: 2},
		{name: "moves", path: "/api/v1/cohorts/novices/layers/moves", wantCode: http.StatusOK, wantLen: 1},
		{name: "circles", path: "/api/v1/cohorts/novices/layers/clusters?circles=16&native=true", wantCode: http.StatusOK, wantLen: 2},
		{name: "unknown cohort", path: "/api/v1/cohorts/experts/layers/moves", wantCode: http.StatusNotFound},
		{name: "unknown layer", path: "/api/v1/cohorts/novices/layers/heatmap", wantCode: http.StatusNotFound},
		{name: "bad circles", path: "/api/v1/cohorts/novices/layers/clusters?circles=lots", wantCode: http.StatusBadRequest},
		{name: "bad native", path: "/api/v1/cohorts/novices/layers/clusters?native=maybe", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(t, router, http.MethodGet, tt.path, "")
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}

			assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
			fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
			require.NoError(t, err)
			assert.Len(t, fc.Features, tt.wantLen)
		})
	}
}

func TestListLayers(t *testing.T) {
	t.Parallel()

	w := do(t, newRouter(t), http.MethodGet, "/api/v1/layers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"cluster"`)
	assert.Contains(t, w.Body.String(), `"count":5`)
}

func TestViewSyncOverHTTP(t *testing.T) {
	t.Parallel()

	router := newRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/views/left/state", `{"stationary":false,"interacting":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/views/left/state", `{"viewpoint":{"x":100,"y":200,"scale":25000,"zoom":12}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/views/left/state", `{"interacting":false,"stationary":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/views", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap compare.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, viewsync.Viewpoint{X: 100, Y: 200, Scale: 25000, Zoom: 12}, snap.Right.Viewpoint)
	assert.True(t, snap.Left.Stationary)

	metrics := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `session_viewer_viewsync_propagations_total{direction="left->right"}`)
}

func TestUpdateLayer(t *testing.T) {
	t.Parallel()

	router := newRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/views/left/layers/moves", `{"visible":false,"action":"zoomDiff"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var st layers.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.False(t, st.Visible)
	assert.Equal(t, "zoomDiff", st.RendererField)

	w = do(t, router, http.MethodGet, "/api/v1/views", "")
	var snap compare.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	for _, rs := range snap.Right.Layers {
		if rs.Layer == layers.Moves {
			assert.False(t, rs.Visible, "mirrored onto the right view")
			assert.Equal(t, "zoomDiff", rs.RendererField)
		}
	}
}

func TestUpdateErrors(t *testing.T) {
	t.Parallel()

	router := newRouter(t)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{name: "unknown view", path: "/api/v1/views/middle/state", body: `{"interacting":true}`, wantCode: http.StatusNotFound},
		{name: "bad json", path: "/api/v1/views/left/state", body: `{`, wantCode: http.StatusBadRequest},
		{name: "empty layer update", path: "/api/v1/views/left/layers/moves", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "unknown layer", path: "/api/v1/views/left/layers/heatmap", body: `{"visible":true}`, wantCode: http.StatusNotFound},
		{name: "unknown action", path: "/api/v1/views/left/layers/moves", body: `{"action":"scale"}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}
