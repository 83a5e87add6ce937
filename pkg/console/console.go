// Package console is the line-oriented command language shared by the CLI
// and TUI front ends. Each line is one verb and its arguments; every verb
// that edits the scene goes through the session's undo stack.
package console

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dd0wney/cluso-sphere/pkg/command"
	"github.com/dd0wney/cluso-sphere/pkg/logging"
	"github.com/dd0wney/cluso-sphere/pkg/session"
)

var (
	// ErrExit is returned by the exit verb; the front end should stop.
	ErrExit = errors.New("exit requested")
	// ErrUsage wraps malformed arguments
	ErrUsage = errors.New("usage")
	// ErrUnknownVerb is returned for a verb that is not in the table
	ErrUnknownVerb = errors.New("unknown command")
)

type handler func(in *Interpreter, args []string) (string, error)

type verb struct {
	usage   string
	summary string
	run     handler
}

var verbs map[string]verb

func init() {
	verbs = map[string]verb{
		"point":     {"point <x> <y> <z>", "free point at a direction", cmdPoint},
		"antipode":  {"antipode <point>", "point opposite a point", cmdAntipode},
		"line":      {"line <a> <b>", "great circle through two points", cmdThrough("line")},
		"segment":   {"segment <a> <b>", "shorter arc between two points", cmdThrough("segment")},
		"circle":    {"circle <center> <through>", "circle about a point through another", cmdThrough("circle")},
		"intersect": {"intersect <curve> <curve> [0|1]", "one crossing of two curves", cmdIntersect},
		"perp":      {"perp <line> <point>", "line through a point perpendicular to a line", cmdPerp},
		"angle":     {"angle <a> <vertex> <b> | angle <line> <line>", "angle marker", cmdAngle},
		"label":     {"label <node> <text...>", "attach a text label", cmdLabel},
		"move":      {"move <node> <x> <y> <z> [radius]", "move a free point, label or circle", cmdMove},
		"normal":    {"normal <node> <x> <y> <z> [arc]", "set the plane of a free line or segment", cmdNormal},
		"rotate":    {"rotate <x> <y> <z> <degrees>", "rotate the whole sphere about an axis", cmdRotate},
		"style":     {"style <node> <front|back|label> key=value...", "set stroke, fill, width, opacity or dash", cmdStyle},
		"delete":    {"delete <node>", "remove a node and its dependents", cmdDelete},
		"undo":      {"undo", "revert the last command", cmdUndo},
		"redo":      {"redo", "re-apply the last undone command", cmdRedo},
		"list":      {"list", "list every node", cmdList},
		"show":      {"show <node>", "describe one node", cmdShow},
		"stats":     {"stats", "scene and history counters", cmdStats},
		"save":      {"save <file> [-z]", "write a snapshot, -z compresses it", cmdSave},
		"load":      {"load <file>", "add the nodes of a snapshot", cmdLoad},
		"help":      {"help [verb]", "this text", cmdHelp},
		"exit":      {"exit", "leave", cmdExit},
	}
}

// aliases map short forms onto verbs
var aliases = map[string]string{
	"quit": "exit",
	"ls":   "list",
	"rm":   "delete",
	"u":    "undo",
	"?":    "help",
}

// Interpreter executes command lines against a session.
type Interpreter struct {
	Session *session.Session
}

// New returns an interpreter bound to s
func New(s *session.Session) *Interpreter {
	return &Interpreter{Session: s}
}

// Exec runs one line and returns what it printed. Blank lines and lines
// starting with # do nothing.
func (in *Interpreter) Exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	v, ok := verbs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s (type 'help' for a list)", ErrUnknownVerb, name)
	}

	out, err := v.run(in, fields[1:])
	if err != nil && !errors.Is(err, ErrExit) {
		in.Session.Logger().Debug("console command failed",
			logging.String("verb", name), logging.Error(err))
	}
	return out, err
}

// Verbs returns the verb names in sorted order
func Verbs() []string {
	names := make([]string, 0, len(verbs))
	for name := range verbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func usage(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, verbs[name].usage)
}

// execute runs c and reports the nodes it created
func (in *Interpreter) execute(c command.Command, adds ...*command.AddNodeCommand) (string, error) {
	if err := in.Session.Execute(c); err != nil {
		return "", err
	}
	if len(adds) == 0 {
		return "ok", nil
	}
	names := make([]string, len(adds))
	for i, a := range adds {
		names[i] = in.describe(a.Node())
	}
	return "created " + strings.Join(names, ", "), nil
}

func cmdUndo(in *Interpreter, args []string) (string, error) {
	done, err := in.Session.Undo()
	if err != nil {
		return "", err
	}
	if !done {
		return "nothing to undo", nil
	}
	return fmt.Sprintf("undone (%d/%d)", in.Session.History().Cursor(), in.Session.History().Len()), nil
}

func cmdRedo(in *Interpreter, args []string) (string, error) {
	done, err := in.Session.Redo()
	if err != nil {
		return "", err
	}
	if !done {
		return "nothing to redo", nil
	}
	return fmt.Sprintf("redone (%d/%d)", in.Session.History().Cursor(), in.Session.History().Len()), nil
}

func cmdSave(in *Interpreter, args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", usage("save")
	}
	compress := len(args) == 2 && args[1] == "-z"
	if len(args) == 2 && !compress {
		return "", usage("save")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return "", err
	}
	if err := in.Session.Save(f, compress); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("saved %d nodes to %s", in.Session.Graph().Len(), args[0]), nil
}

func cmdLoad(in *Interpreter, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("load")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return "", err
	}
	defer f.Close()
	ids, err := in.Session.Load(f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("loaded %d nodes from %s", len(ids), args[0]), nil
}

func cmdHelp(in *Interpreter, args []string) (string, error) {
	if len(args) == 1 {
		v, ok := verbs[strings.ToLower(args[0])]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownVerb, args[0])
		}
		return v.usage + "\n  " + v.summary, nil
	}
	var b strings.Builder
	b.WriteString("Nodes are named by id or name (P-1, L-2). A point argument may also be\n")
	b.WriteString("three coordinates, which creates a free point in the same undo step.\n\n")
	for _, name := range Verbs() {
		v := verbs[name]
		fmt.Fprintf(&b, "  %-48s %s\n", v.usage, v.summary)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func cmdExit(in *Interpreter, args []string) (string, error) {
	return "bye", ErrExit
}
