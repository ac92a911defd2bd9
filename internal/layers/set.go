package layers

import "fmt"

// State is one layer's rendering state in a view.
type State struct {
	Layer         string `json:"layer"`
	Kind          Kind   `json:"kind"`
	Visible       bool   `json:"visible"`
	RendererField string `json:"renderer_field"`
	Legend        bool   `json:"legend"`
}

// Set holds the layer states of one view and publishes their changes.
// It is not safe for concurrent use; callers serialize access on their loop.
type Set struct {
	view   string
	bus    *Bus
	layers []Layer
	states map[string]*State
}

// NewSet creates the catalog's layers for view, all visible with their default renderer.
func NewSet(view string, bus *Bus) *Set {
	s := &Set{
		view:   view,
		bus:    bus,
		layers: Catalog(),
		states: make(map[string]*State),
	}
	for _, l := range s.layers {
		field := l.DefaultAction()
		s.states[l.ID] = &State{
			Layer:         l.ID,
			Kind:          l.Kind,
			Visible:       true,
			RendererField: field,
			Legend:        LegendVisible(field),
		}
	}
	return s
}

// View returns the owning view's name.
func (s *Set) View() string { return s.view }

// State returns the state of one layer.
func (s *Set) State(layerID string) (State, error) {
	st, ok := s.states[layerID]
	if !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownLayer, layerID)
	}
	return *st, nil
}

// States returns every layer's state in catalog order.
func (s *Set) States() []State {
	out := make([]State, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, *s.states[l.ID])
	}
	return out
}

// SetVisible shows or hides a layer. It publishes only when visibility changes.
func (s *Set) SetVisible(layerID string, visible bool, origin Origin) error {
	st, ok := s.states[layerID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layerID)
	}
	if st.Visible == visible {
		return nil
	}
	st.Visible = visible
	s.publish(st, origin)
	return nil
}

// SelectAction makes actionID the layer's only active renderer toggle.
// It publishes only when the renderer field changes.
func (s *Set) SelectAction(layerID, actionID string, origin Origin) error {
	st, ok := s.states[layerID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layerID)
	}
	layer, err := Lookup(layerID)
	if err != nil {
		return err
	}
	if _, err = layer.Action(actionID); err != nil {
		return err
	}
	if st.RendererField == actionID {
		return nil
	}
	st.RendererField = actionID
	st.Legend = LegendVisible(actionID)
	s.publish(st, origin)
	return nil
}

// Toggles reports each of a layer's actions and whether it is the active one.
func (s *Set) Toggles(layerID string) (map[string]bool, error) {
	st, ok := s.states[layerID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, layerID)
	}
	layer, err := Lookup(layerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(layer.Actions))
	for _, a := range layer.Actions {
		out[a.ID] = a.ID == st.RendererField
	}
	return out, nil
}

func (s *Set) publish(st *State, origin Origin) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(Event{
		View:          s.view,
		Layer:         st.Layer,
		Kind:          st.Kind,
		Visible:       st.Visible,
		RendererField: st.RendererField,
		Legend:        st.Legend,
		Origin:        origin,
	})
}
