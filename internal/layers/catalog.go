// Package layers describes the map layers rendered from an analysis result and
// the per-view state that selects how each one is drawn.
package layers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownLayer is returned for a layer id that is not in the catalog.
	ErrUnknownLayer = errors.New("unknown layer")
	// ErrUnknownAction is returned for an action id the layer does not offer.
	ErrUnknownAction = errors.New("unknown action")
)

// Kind is the layer variant.
type Kind int

const (
	KindInteractions Kind = iota + 1
	KindTrajectories
	KindCluster
	KindMoves
)

func (k Kind) String() string {
	switch k {
	case KindInteractions:
		return "interactions"
	case KindTrajectories:
		return "trajectories"
	case KindCluster:
		return "cluster"
	case KindMoves:
		return "moves"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{KindInteractions, KindTrajectories, KindCluster, KindMoves} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown layer kind %q", text)
}

// Layer ids.
const (
	InteractionPoints    = "interaction_points"
	CharacteristicPoints = "characteristic_points"
	Trajectories         = "trajectories"
	Clusters             = "clusters"
	Moves                = "moves"
)

// FieldType is the attribute type of a layer field.
type FieldType string

const (
	FieldOID     FieldType = "oid"
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldDouble  FieldType = "double"
)

// Field is one attribute carried by a layer's features.
type Field struct {
	Name  string    `json:"name"`
	Alias string    `json:"alias"`
	Type  FieldType `json:"type"`
}

// Action is a renderer toggle offered by a layer.
type Action struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Layer is one entry of the catalog.
type Layer struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Kind    Kind     `json:"kind"`
	Fields  []Field  `json:"fields"`
	Actions []Action `json:"actions"`
}

// DefaultAction is the renderer field selected when a view is created.
func (l Layer) DefaultAction() string {
	if len(l.Actions) == 0 {
		return ""
	}
	return l.Actions[0].ID
}

// Action looks up one of the layer's actions.
func (l Layer) Action(id string) (Action, error) {
	for _, a := range l.Actions {
		if a.ID == id {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("%w %q for layer %q", ErrUnknownAction, id, l.ID)
}

// Catalog lists every layer in drawing order.
func Catalog() []Layer {
	entries := []struct {
		id, title string
		kind      Kind
	}{
		{InteractionPoints, "Interaction Points", KindInteractions},
		{CharacteristicPoints, "Characteristic Points", KindInteractions},
		{Trajectories, "Trajectories", KindTrajectories},
		{Clusters, "Clusters", KindCluster},
		{Moves, "Moves", KindMoves},
	}

	out := make([]Layer, 0, len(entries))
	for _, e := range entries {
		out = append(out, Layer{
			ID:      e.id,
			Title:   e.title,
			Kind:    e.kind,
			Fields:  fieldsFor(e.kind),
			Actions: actionsFor(e.kind),
		})
	}
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Layer, error) {
	for _, l := range Catalog() {
		if l.ID == id {
			return l, nil
		}
	}
	return Layer{}, fmt.Errorf("%w: %q", ErrUnknownLayer, id)
}

// LegendVisible reports whether a renderer field needs the relationship legend.
func LegendVisible(rendererField string) bool {
	return strings.Contains(strings.ToLower(rendererField), "relationship")
}

var timingFields = []Field{
	{Name: "elapsedSessionTime", Alias: "Time since Session-Start", Type: FieldDouble},
	{Name: "totalSessionTime", Alias: "Total Session-Time", Type: FieldDouble},
	{Name: "lastInteractionDelay", Alias: "Delay since last Interaction", Type: FieldDouble},
}

func fieldsFor(kind Kind) []Field {
	switch kind {
	case KindInteractions:
		return append([]Field{
			{Name: "ObjectID", Alias: "ObjectID", Type: FieldOID},
			{Name: "sessionId", Alias: "Session", Type: FieldString},
			{Name: "interactionCount", Alias: "Interaction Count", Type: FieldInteger},
			{Name: "topic", Alias: "Topic", Type: FieldString},
			{Name: "scale", Alias: "Scale", Type: FieldDouble},
			{Name: "zoom", Alias: "Zoom", Type: FieldDouble},
		}, timingFields...)
	case KindTrajectories:
		return append([]Field{
			{Name: "ObjectID", Alias: "ObjectID", Type: FieldOID},
			{Name: "sessionId", Alias: "Session", Type: FieldString},
			{Name: "interactionCount", Alias: "Interaction Count", Type: FieldInteger},
			{Name: "zoomDiff", Alias: "Zoom Difference", Type: FieldDouble},
			{Name: "scaleDiff", Alias: "Scale Difference", Type: FieldDouble},
		}, timingFields...)
	case KindCluster:
		return []Field{
			{Name: "ObjectID", Alias: "ObjectID", Type: FieldOID},
			{Name: "clusterId", Alias: "Cluster", Type: FieldInteger},
			{Name: "zoom", Alias: "Zoom", Type: FieldInteger},
			{Name: "radius", Alias: "Radius", Type: FieldDouble},
			{Name: "memberCount", Alias: "Members", Type: FieldInteger},
		}
	case KindMoves:
		return []Field{
			{Name: "ObjectID", Alias: "ObjectID", Type: FieldOID},
			{Name: "startClusterId", Alias: "From Cluster", Type: FieldInteger},
			{Name: "endClusterId", Alias: "To Cluster", Type: FieldInteger},
			{Name: "weight", Alias: "Sessions", Type: FieldInteger},
			{Name: "zoomDiff", Alias: "Zoom Difference", Type: FieldDouble},
		}
	default:
		return nil
	}
}

func actionsFor(kind Kind) []Action {
	switch kind {
	case KindInteractions:
		return []Action{
			{ID: "zoom", Title: "Zoom Factor"},
			{ID: "scale", Title: "Scale"},
			{ID: "interactionCount", Title: "Interaction Count"},
			{ID: "elapsedSessionTime", Title: "Time since Session-Start (s)"},
			{ID: "totalSessionTime", Title: "Total Session-Time (s)"},
			{ID: "lastInteractionDelay", Title: "Delay since last Interaction (s)"},
			{ID: "zoomScaleRelationship", Title: "Zoom + Scale Relationship"},
		}
	case KindTrajectories:
		return []Action{
			{ID: "zoomDiff", Title: "Zoom Difference"},
			{ID: "scaleDiff", Title: "Scale Difference"},
			{ID: "interactionCount", Title: "Interaction Count"},
			{ID: "elapsedSessionTime", Title: "Time since Session-Start (s)"},
			{ID: "totalSessionTime", Title: "Total Session-Time (s)"},
		}
	case KindCluster:
		return []Action{
			{ID: "zoom", Title: "Zoom Level"},
			{ID: "memberCount", Title: "Members"},
			{ID: "radius", Title: "Radius"},
		}
	case KindMoves:
		return []Action{
			{ID: "weight", Title: "Sessions"},
			{ID: "zoomDiff", Title: "Zoom Difference"},
		}
	default:
		return nil
	}
}
