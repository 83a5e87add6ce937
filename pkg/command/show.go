package command

import (
	"errors"

	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

// ShowCommand hides or shows nodes. Existence is untouched and no pass runs.
type ShowCommand struct {
	lifecycle
	showing bool
	targets []ParentRef
	before  map[scene.NodeID]bool
	order   []scene.NodeID
}

// SetShowing shows or hides the targets, which may be created earlier in the
// same group
func SetShowing(showing bool, targets ...ParentRef) *ShowCommand {
	return &ShowCommand{showing: showing, targets: targets}
}

func (c *ShowCommand) Kind() string { return KindShow }

func (c *ShowCommand) Do(g *scene.Graph) error {
	if err := c.beginDo(KindShow); err != nil {
		return err
	}
	before := make(map[scene.NodeID]bool, len(c.targets))
	order := make([]scene.NodeID, 0, len(c.targets))
	for _, ref := range c.targets {
		id, err := ref.resolve()
		if err != nil {
			return err
		}
		n, err := g.Get(id)
		if err != nil {
			return err
		}
		if _, seen := before[id]; !seen {
			before[id] = n.Showing()
			order = append(order, id)
		}
	}
	for i, id := range order {
		if err := g.SetShowing(id, c.showing); err != nil {
			for _, done := range order[:i] {
				err = errors.Join(err, g.SetShowing(done, before[done]))
			}
			return err
		}
	}
	c.before = before
	c.order = order
	c.applied = true
	return nil
}

func (c *ShowCommand) Restore(g *scene.Graph) error {
	if err := c.beginRestore(KindShow); err != nil {
		return err
	}
	for i := len(c.order) - 1; i >= 0; i-- {
		id := c.order[i]
		if err := g.SetShowing(id, c.before[id]); err != nil {
			return err
		}
	}
	c.applied = false
	return nil
}
