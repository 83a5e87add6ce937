package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-sphere/pkg/command"
	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/dd0wney/cluso-sphere/pkg/session"
	"github.com/dd0wney/cluso-sphere/pkg/validation"
)

// node resolves a numeric id or a generated name such as "L-4"
func (in *Interpreter) node(arg string) (scene.Node, error) {
	g := in.Session.Graph()
	if id, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return g.Get(id)
	}
	if err := validation.ValidateNodeName(arg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return g.Lookup(arg)
}

func (in *Interpreter) describe(n scene.Node) string {
	if n == nil {
		return "?"
	}
	return n.Name()
}

func parseFloat(arg string) (float64, error) {
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, arg)
	}
	return f, nil
}

// isCoordinates reports whether arg is a comma-separated triple
func isCoordinates(arg string) bool {
	return strings.Contains(arg, ",")
}

// vectorArg reads a vector written either as one "x,y,z" token or as three
// numbers, and returns the arguments after it.
func vectorArg(args []string) (validation.Vector, []string, error) {
	var v validation.Vector
	var parts []string
	var rest []string
	switch {
	case len(args) >= 1 && isCoordinates(args[0]):
		parts = strings.Split(strings.Trim(args[0], "()"), ",")
		rest = args[1:]
	case len(args) >= 3:
		parts = args[:3]
		rest = args[3:]
	default:
		return v, nil, fmt.Errorf("%w: expected x y z", ErrUsage)
	}
	if len(parts) != 3 {
		return v, nil, fmt.Errorf("%w: expected three coordinates, got %d", ErrUsage, len(parts))
	}
	for i, p := range parts {
		f, err := parseFloat(strings.TrimSpace(p))
		if err != nil {
			return v, nil, err
		}
		v[i] = f
	}
	if v.IsZero() {
		return v, nil, fmt.Errorf("%w: the zero vector has no direction", ErrUsage)
	}
	return v, rest, nil
}

func toGeom(v validation.Vector) geom.Vector {
	return geom.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// freePoint builds the command that adds a free point at v
func freePoint(v validation.Vector) (*command.AddNodeCommand, error) {
	spec, err := session.SpecFromRequest(validation.NodeRequest{
		Variant:      "point",
		Construction: string(scene.Free),
		Location:     &v,
	})
	if err != nil {
		return nil, err
	}
	return command.AddNode(spec), nil
}

// points reads n point arguments. A node name or id refers to an existing
// node; an "x,y,z" token creates a free point, returned in adds so the
// caller can run it in the same group.
func (in *Interpreter) points(args []string, n int) (refs []command.ParentRef, adds []*command.AddNodeCommand, rest []string, err error) {
	if len(args) < n {
		return nil, nil, nil, fmt.Errorf("%w: expected %d points", ErrUsage, n)
	}
	for _, arg := range args[:n] {
		if isCoordinates(arg) {
			v, _, err := vectorArg([]string{arg})
			if err != nil {
				return nil, nil, nil, err
			}
			add, err := freePoint(v)
			if err != nil {
				return nil, nil, nil, err
			}
			adds = append(adds, add)
			refs = append(refs, command.CreatedBy(add))
			continue
		}
		node, err := in.node(arg)
		if err != nil {
			return nil, nil, nil, err
		}
		refs = append(refs, command.Existing(node.ID()))
	}
	return refs, adds, args[n:], nil
}

// nodes resolves every argument as an existing node
func (in *Interpreter) nodes(args []string) ([]scene.Node, error) {
	out := make([]scene.Node, len(args))
	for i, arg := range args {
		n, err := in.node(arg)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// parseStyle applies key=value settings to s
func parseStyle(s scene.Style, settings []string) (scene.Style, error) {
	for _, kv := range settings {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return s, fmt.Errorf("%w: %q is not key=value", ErrUsage, kv)
		}
		switch strings.ToLower(key) {
		case "stroke":
			s.StrokeColor = value
		case "fill":
			s.FillColor = value
		case "width":
			w, err := parseFloat(value)
			if err != nil {
				return s, err
			}
			if w < 0 {
				return s, fmt.Errorf("%w: width must not be negative", ErrUsage)
			}
			s.StrokeWidth = w
		case "opacity":
			o, err := parseFloat(value)
			if err != nil {
				return s, err
			}
			if o < 0 || o > 1 {
				return s, fmt.Errorf("%w: opacity must be in [0, 1]", ErrUsage)
			}
			s.Opacity = o
		case "dash":
			if value == "none" || value == "" {
				s.Dash = nil
				continue
			}
			var dash []float64
			for _, part := range strings.Split(value, ",") {
				d, err := parseFloat(part)
				if err != nil {
					return s, err
				}
				dash = append(dash, d)
			}
			s.Dash = dash
		default:
			return s, fmt.Errorf("%w: unknown style key %q", ErrUsage, key)
		}
	}
	return s, nil
}
