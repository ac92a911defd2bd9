package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/compare"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/features"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
)

// ErrUnknownCohort is returned for a cohort id that was not loaded.
var ErrUnknownCohort = errors.New("unknown cohort")

const geoJSONContentType = "application/geo+json"

// Cohort is an analyzed participant group served by the API.
type Cohort struct {
	ID     string
	Title  string
	Result *analysis.Result
}

// CohortSummary is the listing entry for a cohort.
type CohortSummary struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	RunID                string `json:"run_id"`
	Sessions             int    `json:"sessions"`
	Interactions         int    `json:"interactions"`
	CharacteristicPoints int    `json:"characteristic_points"`
	Clusters             int    `json:"clusters"`
	Moves                int    `json:"moves"`
}

// Handler serves analysis results and the comparison workspace.
type Handler struct {
	cohorts   map[string]Cohort
	order     []string
	workspace *compare.Workspace
	logger    logger.Logger
}

// NewHandler creates a Handler. Cohorts are listed in the given order.
func NewHandler(cohorts []Cohort, workspace *compare.Workspace, log logger.Logger) *Handler {
	h := &Handler{
		cohorts:   make(map[string]Cohort, len(cohorts)),
		order:     make([]string, 0, len(cohorts)),
		workspace: workspace,
		logger:    log,
	}
	for _, c := range cohorts {
		h.cohorts[c.ID] = c
		h.order = append(h.order, c.ID)
	}
	return h
}

func (h *Handler) cohort(id string) (Cohort, error) {
	c, ok := h.cohorts[id]
	if !ok {
		return Cohort{}, fmt.Errorf("%w: %q", ErrUnknownCohort, id)
	}
	return c, nil
}

// ListCohorts handles GET /api/v1/cohorts.
func (h *Handler) ListCohorts(c *gin.Context) {
	out := make([]CohortSummary, 0, len(h.order))
	for _, id := range h.order {
		cohort := h.cohorts[id]
		r := cohort.Result
		out = append(out, CohortSummary{
			ID:                   cohort.ID,
			Title:                cohort.Title,
			RunID:                r.RunID,
			Sessions:             len(r.Sessions),
			Interactions:         len(r.Interactions()),
			CharacteristicPoints: len(r.CharacteristicPoints),
			Clusters:             len(r.Clusters),
			Moves:                len(r.Moves),
		})
	}
	c.JSON(http.StatusOK, gin.H{"cohorts": out, "count": len(out)})
}

// CohortLayer handles GET /api/v1/cohorts/:cohort/layers/:layer.
// Query parameters: native=true keeps source coordinates, circles=N renders clusters as polygons.
func (h *Handler) CohortLayer(c *gin.Context) {
	cohort, err := h.cohort(c.Param("cohort"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	opts, err := featureOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fc, err := features.ForLayer(c.Param("layer"), cohort.Result, opts...)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		h.logger.Error("Failed to encode features",
			logger.Cohort(cohort.ID),
			logger.String("layer", c.Param("layer")),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode features"})
		return
	}
	c.Data(http.StatusOK, geoJSONContentType, body)
}

func featureOptions(c *gin.Context) ([]features.Option, error) {
	var opts []features.Option

	if raw := c.Query("native"); raw != "" {
		native, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid native parameter: %q", raw)
		}
		if native {
			opts = append(opts, features.Native())
		}
	}

	if raw := c.Query("circles"); raw != "" {
		vertices, err := strconv.Atoi(raw)
		if err != nil || vertices < 0 {
			return nil, fmt.Errorf("invalid circles parameter: %q", raw)
		}
		opts = append(opts, features.WithCircles(vertices))
	}

	return opts, nil
}

// ListLayers handles GET /api/v1/layers.
func (h *Handler) ListLayers(c *gin.Context) {
	catalog := layers.Catalog()
	c.JSON(http.StatusOK, gin.H{"layers": catalog, "count": len(catalog)})
}

// Views handles GET /api/v1/views.
func (h *Handler) Views(c *gin.Context) {
	snap, err := h.workspace.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// UpdateView handles POST /api/v1/views/:view/state.
func (h *Handler) UpdateView(c *gin.Context) {
	var update compare.ViewUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	state, err := h.workspace.ApplyViewUpdate(c.Request.Context(), c.Param("view"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// LayerUpdate is the body of POST /api/v1/views/:view/layers/:layer.
type LayerUpdate struct {
	Visible *bool   `json:"visible"`
	Action  *string `json:"action"`
}

// UpdateLayer handles POST /api/v1/views/:view/layers/:layer.
func (h *Handler) UpdateLayer(c *gin.Context) {
	var update LayerUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if update.Visible == nil && update.Action == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visible or action is required"})
		return
	}

	ctx := c.Request.Context()
	view, layer := c.Param("view"), c.Param("layer")

	if update.Visible != nil {
		if err := h.workspace.SetLayerVisible(ctx, view, layer, *update.Visible); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if update.Action != nil {
		if err := h.workspace.SelectAction(ctx, view, layer, *update.Action); err != nil {
			h.respondError(c, err)
			return
		}
	}

	snap, err := h.workspace.Snapshot(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pane := snap.Left
	if view == compare.RightView {
		pane = snap.Right
	}
	for _, st := range pane.Layers {
		if st.Layer == layer {
			c.JSON(http.StatusOK, st)
			return
		}
	}
	c.JSON(http.StatusOK, pane)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownCohort),
		errors.Is(err, layers.ErrUnknownLayer),
		errors.Is(err, compare.ErrUnknownView):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, layers.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workspace unavailable"})
	}
}
