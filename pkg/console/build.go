package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/dd0wney/cluso-sphere/pkg/command"
	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/dd0wney/cluso-sphere/pkg/session"
	"github.com/dd0wney/cluso-sphere/pkg/validation"
)

// build adds node, first adding any free points it was given as
// coordinates. All of it is one undo step.
func (in *Interpreter) build(name string, node *command.AddNodeCommand, adds []*command.AddNodeCommand) (string, error) {
	if len(adds) == 0 {
		return in.execute(node, node)
	}
	group := command.NewGroup(name)
	for _, a := range adds {
		group.Add(a)
	}
	group.Add(node)
	created := append(append([]*command.AddNodeCommand(nil), adds...), node)
	return in.execute(group, created...)
}

func cmdPoint(in *Interpreter, args []string) (string, error) {
	v, rest, err := vectorArg(args)
	if err != nil || len(rest) > 0 {
		return "", usage("point")
	}
	add, err := freePoint(v)
	if err != nil {
		return "", err
	}
	return in.execute(add, add)
}

func cmdAntipode(in *Interpreter, args []string) (string, error) {
	refs, adds, rest, err := in.points(args, 1)
	if err != nil {
		return "", err
	}
	if len(rest) > 0 {
		return "", usage("antipode")
	}
	node := command.AddNode(scene.NodeSpec{Variant: scene.PointVariant, Construction: scene.AntipodeOf}, refs...)
	return in.build("antipode", node, adds)
}

// cmdThrough builds a line, segment or circle from two points
func cmdThrough(name string) handler {
	return func(in *Interpreter, args []string) (string, error) {
		if len(args) != 2 {
			return "", usage(name)
		}
		refs, adds, _, err := in.points(args, 2)
		if err != nil {
			return "", err
		}
		variant, err := scene.ParseVariant(name)
		if err != nil {
			return "", err
		}
		node := command.AddNode(scene.NodeSpec{Variant: variant, Construction: scene.ThroughPoints}, refs...)
		return in.build(name, node, adds)
	}
}

func cmdIntersect(in *Interpreter, args []string) (string, error) {
	if len(args) != 2 && len(args) != 3 {
		return "", usage("intersect")
	}
	curves, err := in.nodes(args[:2])
	if err != nil {
		return "", err
	}
	index := 0
	if len(args) == 3 {
		switch args[2] {
		case "0":
		case "1":
			index = 1
		default:
			return "", usage("intersect")
		}
	}
	req := validation.NodeRequest{
		Variant:      "point",
		Construction: string(scene.IntersectionOf),
		Parents:      []uint64{curves[0].ID(), curves[1].ID()},
		Index:        index,
	}
	spec, err := session.SpecFromRequest(req)
	if err != nil {
		return "", err
	}
	node := command.AddNode(spec)
	return in.execute(node, node)
}

func cmdPerp(in *Interpreter, args []string) (string, error) {
	if len(args) != 2 {
		return "", usage("perp")
	}
	line, err := in.node(args[0])
	if err != nil {
		return "", err
	}
	refs, adds, _, err := in.points(args[1:], 1)
	if err != nil {
		return "", err
	}
	parents := append([]command.ParentRef{command.Existing(line.ID())}, refs...)
	node := command.AddNode(scene.NodeSpec{Variant: scene.LineVariant, Construction: scene.PerpendicularTo}, parents...)
	return in.build("perp", node, adds)
}

func cmdAngle(in *Interpreter, args []string) (string, error) {
	switch len(args) {
	case 3:
		refs, adds, _, err := in.points(args, 3)
		if err != nil {
			return "", err
		}
		node := command.AddNode(scene.NodeSpec{Variant: scene.AngleMarkerVariant, Construction: scene.FromPoints}, refs...)
		return in.build("angle", node, adds)
	case 2:
		lines, err := in.nodes(args)
		if err != nil {
			return "", err
		}
		node := command.AddNode(scene.NodeSpec{
			Variant:      scene.AngleMarkerVariant,
			Construction: scene.FromLines,
			Parents:      []scene.NodeID{lines[0].ID(), lines[1].ID()},
		})
		return in.execute(node, node)
	}
	return "", usage("angle")
}

func cmdLabel(in *Interpreter, args []string) (string, error) {
	if len(args) < 2 {
		return "", usage("label")
	}
	target, err := in.node(args[0])
	if err != nil {
		return "", err
	}
	spec, err := session.SpecFromRequest(validation.NodeRequest{
		Variant:      "label",
		Construction: string(scene.AnchoredTo),
		Parents:      []uint64{target.ID()},
		Text:         strings.Join(args[1:], " "),
	})
	if err != nil {
		return "", err
	}
	node := command.AddNode(spec)
	return in.execute(node, node)
}

func cmdMove(in *Interpreter, args []string) (string, error) {
	if len(args) < 2 {
		return "", usage("move")
	}
	n, err := in.node(args[0])
	if err != nil {
		return "", err
	}
	v, rest, err := vectorArg(args[1:])
	if err != nil {
		return "", err
	}
	to := toGeom(v)

	var c command.Command
	switch st := n.State().(type) {
	case scene.PointState:
		c = command.MovePoint(n.ID(), to)
	case scene.LabelState:
		c = command.MoveLabel(n.ID(), to)
	case scene.CircleState:
		radius := st.Radius
		if len(rest) == 1 {
			if radius, err = parseFloat(rest[0]); err != nil {
				return "", err
			}
			rest = nil
		}
		c = command.ResizeCircle(n.ID(), to, radius)
	default:
		return "", fmt.Errorf("%w: %s cannot be moved, use normal for lines and segments", ErrUsage, n.Name())
	}
	if len(rest) > 0 {
		return "", usage("move")
	}
	return in.execute(c)
}

func cmdNormal(in *Interpreter, args []string) (string, error) {
	if len(args) < 2 {
		return "", usage("normal")
	}
	n, err := in.node(args[0])
	if err != nil {
		return "", err
	}
	v, rest, err := vectorArg(args[1:])
	if err != nil {
		return "", err
	}
	normal := toGeom(v)

	var c command.Command
	switch st := n.State().(type) {
	case scene.LineState:
		c = command.SetLineNormal(n.ID(), normal)
	case scene.SegmentState:
		arc := st.ArcLength
		if len(rest) == 1 {
			if arc, err = parseFloat(rest[0]); err != nil {
				return "", err
			}
			rest = nil
		}
		c = command.SetSegment(n.ID(), normal, arc)
	default:
		return "", fmt.Errorf("%w: %s has no plane to set", ErrUsage, n.Name())
	}
	if len(rest) > 0 {
		return "", usage("normal")
	}
	return in.execute(c)
}

func cmdRotate(in *Interpreter, args []string) (string, error) {
	v, rest, err := vectorArg(args)
	if err != nil || len(rest) != 1 {
		return "", usage("rotate")
	}
	degrees, err := parseFloat(rest[0])
	if err != nil {
		return "", err
	}
	axis, _ := geom.Normalize(toGeom(v))
	return in.execute(command.RotateAbout(axis, degrees*math.Pi/180))
}

func cmdStyle(in *Interpreter, args []string) (string, error) {
	if len(args) < 3 {
		return "", usage("style")
	}
	n, err := in.node(args[0])
	if err != nil {
		return "", err
	}
	panel, err := scene.ParsePanel(strings.ToLower(args[1]))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUsage, err)
	}
	g := in.Session.Graph()
	records, err := g.RecordStyleState(panel, n.ID())
	if err != nil {
		return "", err
	}
	s, err := parseStyle(records[0].Current, args[2:])
	if err != nil {
		return "", err
	}
	c, err := command.SetStyle(g, panel, s, n.ID())
	if err != nil {
		return "", err
	}
	return in.execute(c)
}

func cmdDelete(in *Interpreter, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("delete")
	}
	n, err := in.node(args[0])
	if err != nil {
		return "", err
	}
	c := command.DeleteNode(n.ID())
	if err := in.Session.Execute(c); err != nil {
		return "", err
	}
	removed := len(c.Removed())
	if removed <= 1 {
		return "deleted " + n.Name(), nil
	}
	return fmt.Sprintf("deleted %s and %d dependents", n.Name(), removed-1), nil
}
