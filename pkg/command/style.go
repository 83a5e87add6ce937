package command

import (
	"errors"

	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

// StyleCommand sets one panel style on a set of nodes. For the label panel
// the style goes to each node's label.
type StyleCommand struct {
	lifecycle
	panel   scene.Panel
	targets []ParentRef
	after   scene.Style
	before  []scene.StyleRecord
}

// SetStyle builds a style command. Every id must be registered and, for the
// label panel, labelled; otherwise the error is returned here.
func SetStyle(g *scene.Graph, panel scene.Panel, s scene.Style, ids ...scene.NodeID) (*StyleCommand, error) {
	before, err := g.RecordStyleState(panel, ids...)
	if err != nil {
		return nil, err
	}
	targets := make([]ParentRef, len(ids))
	for i, id := range ids {
		targets[i] = Existing(id)
	}
	return &StyleCommand{panel: panel, targets: targets, after: s.Clone(), before: before}, nil
}

// Restyle sets the style of nodes that may not exist yet, such as nodes
// created earlier in the same group. Targets are checked at Do time.
func Restyle(panel scene.Panel, s scene.Style, targets ...ParentRef) *StyleCommand {
	return &StyleCommand{panel: panel, targets: targets, after: s.Clone()}
}

func (c *StyleCommand) Kind() string { return KindStyle }

// Before returns the styles that Restore puts back
func (c *StyleCommand) Before() []scene.StyleRecord {
	out := make([]scene.StyleRecord, len(c.before))
	for i, r := range c.before {
		out[i] = scene.StyleRecord{ID: r.ID, Panel: r.Panel, Current: r.Current.Clone(), Default: r.Default.Clone()}
	}
	return out
}

func (c *StyleCommand) Do(g *scene.Graph) error {
	if err := c.beginDo(KindStyle); err != nil {
		return err
	}
	ids := make([]scene.NodeID, len(c.targets))
	for i, ref := range c.targets {
		id, err := ref.resolve()
		if err != nil {
			return err
		}
		ids[i] = id
	}
	before, err := g.RecordStyleState(c.panel, ids...)
	if err != nil {
		return err
	}
	for i, r := range before {
		if err := g.SetStyle(r.ID, c.panel, c.after); err != nil {
			for _, done := range before[:i] {
				err = errors.Join(err, g.SetStyle(done.ID, c.panel, done.Current))
			}
			return err
		}
	}
	c.before = before
	c.applied = true
	return nil
}

func (c *StyleCommand) Restore(g *scene.Graph) error {
	if err := c.beginRestore(KindStyle); err != nil {
		return err
	}
	for i := len(c.before) - 1; i >= 0; i-- {
		r := c.before[i]
		if err := g.SetStyle(r.ID, c.panel, r.Current); err != nil {
			return err
		}
	}
	c.applied = false
	return nil
}
