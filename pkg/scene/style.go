package scene

import "fmt"

// Panel selects which face of a node a style applies to.
type Panel int

const (
	FrontPanel Panel = iota
	BackPanel
	LabelPanel
)

func (p Panel) String() string {
	switch p {
	case FrontPanel:
		return "front"
	case BackPanel:
		return "back"
	case LabelPanel:
		return "label"
	}
	return fmt.Sprintf("panel(%d)", int(p))
}

// ParsePanel resolves a panel name
func ParsePanel(s string) (Panel, error) {
	for _, p := range []Panel{FrontPanel, BackPanel, LabelPanel} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown panel %q", s)
}

func (p Panel) MarshalText() ([]byte, error) {
	if p < FrontPanel || p > LabelPanel {
		return nil, fmt.Errorf("unknown panel %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Panel) UnmarshalText(text []byte) error {
	parsed, err := ParsePanel(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Style is the drawing attributes of one panel of a node.
type Style struct {
	StrokeColor string    `yaml:"stroke_color"`
	FillColor   string    `yaml:"fill_color,omitempty"`
	StrokeWidth float64   `yaml:"stroke_width"`
	Opacity     float64   `yaml:"opacity"`
	Dash        []float64 `yaml:"dash,omitempty"`
}

// Clone returns a deep copy
func (s Style) Clone() Style {
	c := s
	if s.Dash != nil {
		c.Dash = append([]float64(nil), s.Dash...)
	}
	return c
}

// Equal compares two styles field by field
func (s Style) Equal(o Style) bool {
	if s.StrokeColor != o.StrokeColor || s.FillColor != o.FillColor ||
		s.StrokeWidth != o.StrokeWidth || s.Opacity != o.Opacity || len(s.Dash) != len(o.Dash) {
		return false
	}
	for i := range s.Dash {
		if s.Dash[i] != o.Dash[i] {
			return false
		}
	}
	return true
}

// DefaultStyle is the style a freshly created node gets for a panel.
func DefaultStyle(v Variant, p Panel) Style {
	s := Style{StrokeColor: "#000000", StrokeWidth: 2, Opacity: 1}
	switch v {
	case PointVariant:
		s.FillColor = "#ffffff"
		s.StrokeWidth = 1
	case CircleVariant:
		s.FillColor = "none"
	case AngleMarkerVariant:
		s.FillColor = "#ff000040"
		s.StrokeWidth = 1
	case LabelVariant:
		s.StrokeWidth = 0
	}
	if p == BackPanel {
		s.Opacity = 0.5
		s.Dash = []float64{5, 5}
	}
	if p == LabelPanel {
		s = Style{StrokeColor: "#000000", Opacity: 1}
	}
	return s
}

func defaultStyles(v Variant) map[Panel]Style {
	return map[Panel]Style{
		FrontPanel: DefaultStyle(v, FrontPanel),
		BackPanel:  DefaultStyle(v, BackPanel),
		LabelPanel: DefaultStyle(v, LabelPanel),
	}
}

// Style returns a copy of the style of one panel of a node
func (g *Graph) Style(id NodeID, panel Panel) (Style, error) {
	set, ok := g.styles[id]
	if !ok || !g.Has(id) {
		return Style{}, notFound("style", id)
	}
	return set[panel].Clone(), nil
}

// SetStyle stores a copy of s. Styles do not affect geometry, so no pass runs.
func (g *Graph) SetStyle(id NodeID, panel Panel, s Style) error {
	if !g.Has(id) {
		return notFound("style", id)
	}
	g.styles[id][panel] = s.Clone()
	if p, ok := g.plottables[id]; ok {
		p.MarkDirty()
	}
	return nil
}

// StyleRecord is the before-image of one node panel for a style command.
type StyleRecord struct {
	ID      NodeID
	Panel   Panel
	Current Style
	Default Style
}

// RecordStyleState captures the current and default style of each id for
// panel. For LabelPanel the record is taken from the node's label, and a
// node without one is an error.
func (g *Graph) RecordStyleState(panel Panel, ids ...NodeID) ([]StyleRecord, error) {
	records := make([]StyleRecord, 0, len(ids))
	for _, id := range ids {
		n, ok := g.nodes[id]
		if !ok {
			return nil, notFound("record style", id)
		}
		target := n
		if panel == LabelPanel && n.Variant() != LabelVariant {
			label, err := g.LabelOf(id)
			if err != nil {
				return nil, err
			}
			target = label
		}
		current, err := g.Style(target.ID(), panel)
		if err != nil {
			return nil, err
		}
		records = append(records, StyleRecord{
			ID:      target.ID(),
			Panel:   panel,
			Current: current,
			Default: DefaultStyle(target.Variant(), panel),
		})
	}
	return records, nil
}
