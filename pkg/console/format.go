package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

func formatVector(v geom.Vector) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

func degrees(rad float64) string {
	return fmt.Sprintf("%.2f°", rad*180/math.Pi)
}

// FormatState renders a node value on one line
func FormatState(s scene.State) string {
	if !s.Present() {
		return "does not exist"
	}
	switch st := s.(type) {
	case scene.PointState:
		return formatVector(st.Location)
	case scene.LineState:
		return "normal " + formatVector(st.Normal)
	case scene.SegmentState:
		return fmt.Sprintf("%s to %s, arc %s", formatVector(st.Start), formatVector(st.End()), degrees(st.ArcLength))
	case scene.CircleState:
		return fmt.Sprintf("center %s, radius %s", formatVector(st.Center), degrees(st.Radius))
	case scene.AngleMarkerState:
		return fmt.Sprintf("%s at %s", degrees(st.Value), formatVector(st.Vertex))
	case scene.LabelState:
		return fmt.Sprintf("%q at %s", st.Text, formatVector(st.Location))
	}
	return fmt.Sprintf("%v", s)
}

func (in *Interpreter) names(ids []scene.NodeID) string {
	if len(ids) == 0 {
		return "-"
	}
	g := in.Session.Graph()
	out := make([]string, len(ids))
	for i, id := range ids {
		if n, err := g.Get(id); err == nil {
			out[i] = n.Name()
		} else {
			out[i] = fmt.Sprintf("#%d", id)
		}
	}
	return strings.Join(out, " ")
}

func cmdList(in *Interpreter, args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("list")
	}
	nodes := in.Session.Graph().Nodes()
	if len(nodes) == 0 {
		return "empty scene", nil
	}
	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "%-6s %-3d %-14s %-12s %s\n",
			n.Name(), n.ID(), n.Construction(), in.names(n.Parents()), FormatState(n.State()))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func cmdShow(in *Interpreter, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("show")
	}
	n, err := in.node(args[0])
	if err != nil {
		return "", err
	}
	g := in.Session.Graph()
	var b strings.Builder
	fmt.Fprintf(&b, "%s (id %d)\n", n.Name(), n.ID())
	fmt.Fprintf(&b, "  variant:      %s\n", n.Variant())
	fmt.Fprintf(&b, "  construction: %s\n", n.Construction())
	fmt.Fprintf(&b, "  parents:      %s\n", in.names(n.Parents()))
	fmt.Fprintf(&b, "  children:     %s\n", in.names(n.Children()))
	fmt.Fprintf(&b, "  value:        %s\n", FormatState(n.State()))
	fmt.Fprintf(&b, "  showing:      %t", n.Showing())
	for _, panel := range []scene.Panel{scene.FrontPanel, scene.BackPanel} {
		s, err := g.Style(n.ID(), panel)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n  %-5s style:  stroke %s fill %s width %g opacity %g",
			panel, s.StrokeColor, s.FillColor, s.StrokeWidth, s.Opacity)
		if len(s.Dash) > 0 {
			fmt.Fprintf(&b, " dash %v", s.Dash)
		}
	}
	return b.String(), nil
}

func cmdStats(in *Interpreter, args []string) (string, error) {
	g := in.Session.Graph()
	h := in.Session.History()
	var b strings.Builder
	fmt.Fprintf(&b, "session %s\n", in.Session.ID())
	fmt.Fprintf(&b, "nodes   %d (", g.Len())
	for i, v := range scene.Variants {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %d", v, g.Count(v))
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "history %d/%d (undo %t, redo %t)\n", h.Cursor(), h.Len(), h.CanUndo(), h.CanRedo())
	fmt.Fprintf(&b, "unsaved %t", in.Session.Modified())
	return b.String(), nil
}
