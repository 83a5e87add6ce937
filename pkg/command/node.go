package command

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

// ParentRef names a parent of a node to be added: either a node already in
// the graph or the node created by an earlier AddNodeCommand.
type ParentRef struct {
	ID      scene.NodeID
	Creator *AddNodeCommand
}

// Existing refers to a registered node
func Existing(id scene.NodeID) ParentRef {
	return ParentRef{ID: id}
}

// CreatedBy refers to the node another AddNodeCommand creates. That command
// must run first, normally as an earlier member of the same Group.
func CreatedBy(c *AddNodeCommand) ParentRef {
	return ParentRef{Creator: c}
}

func (r ParentRef) resolve() (scene.NodeID, error) {
	if r.Creator == nil {
		return r.ID, nil
	}
	if r.Creator.node == nil {
		return 0, fmt.Errorf("referenced node not created yet: %w", ErrCommandState)
	}
	return r.Creator.node.ID(), nil
}

// AddNodeCommand registers one node. The node is built on the first Do and
// the same node, with the same id and name, is re-inserted on redo.
type AddNodeCommand struct {
	lifecycle
	spec    scene.NodeSpec
	parents []ParentRef
	node    scene.Node
}

// AddNode adds a node built from spec. When parents are given they replace
// spec.Parents, resolved at Do time.
func AddNode(spec scene.NodeSpec, parents ...ParentRef) *AddNodeCommand {
	return &AddNodeCommand{spec: spec, parents: parents}
}

// AddBuilt adds a node already built with Graph.NewNode
func AddBuilt(n scene.Node) *AddNodeCommand {
	return &AddNodeCommand{spec: n.Spec(), node: n}
}

func (c *AddNodeCommand) Kind() string { return KindAdd }

// Node returns the node this command creates, or nil before the first Do
func (c *AddNodeCommand) Node() scene.Node { return c.node }

func (c *AddNodeCommand) Do(g *scene.Graph) error {
	if err := c.beginDo(KindAdd); err != nil {
		return err
	}
	if c.node == nil {
		spec := c.spec
		if len(c.parents) > 0 {
			spec.Parents = make([]scene.NodeID, len(c.parents))
			for i, ref := range c.parents {
				id, err := ref.resolve()
				if err != nil {
					return err
				}
				spec.Parents[i] = id
			}
		}
		n, err := g.NewNode(spec)
		if err != nil {
			return err
		}
		c.node = n
	}

	if err := g.Insert(c.node); err != nil {
		return err
	}
	if _, err := g.Update(c.node.ID()); err != nil {
		return err
	}
	c.applied = true
	return nil
}

func (c *AddNodeCommand) Restore(g *scene.Graph) error {
	if err := c.beginRestore(KindAdd); err != nil {
		return err
	}
	if _, err := g.Remove(c.node.ID()); err != nil {
		return err
	}
	c.applied = false
	return nil
}

// DeleteNodeCommand removes a node together with everything that depends on
// it. Restore re-inserts the same nodes parents first and puts back their
// values.
type DeleteNodeCommand struct {
	lifecycle
	target  scene.NodeID
	removed []scene.Node
	before  snapshot
}

// DeleteNode deletes id and its descendants
func DeleteNode(id scene.NodeID) *DeleteNodeCommand {
	return &DeleteNodeCommand{target: id}
}

func (c *DeleteNodeCommand) Kind() string { return KindDelete }

// Removed returns the ids deleted by the last Do, parents first
func (c *DeleteNodeCommand) Removed() []scene.NodeID {
	return append([]scene.NodeID(nil), c.before.ids...)
}

func (c *DeleteNodeCommand) Do(g *scene.Graph) error {
	if err := c.beginDo(KindDelete); err != nil {
		return err
	}
	order, err := g.Closure(c.target)
	if err != nil {
		return err
	}
	before, err := take(g, order)
	if err != nil {
		return err
	}

	removed := make([]scene.Node, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		n, err := g.Remove(order[i])
		if err != nil {
			// put back what was already taken out
			for j := len(removed) - 1; j >= 0; j-- {
				err = errors.Join(err, g.Insert(removed[j]))
			}
			return err
		}
		removed = append(removed, n)
	}

	c.before = before
	c.removed = removed
	c.applied = true
	return nil
}

func (c *DeleteNodeCommand) Restore(g *scene.Graph) error {
	if err := c.beginRestore(KindDelete); err != nil {
		return err
	}
	for i := len(c.removed) - 1; i >= 0; i-- {
		if err := g.Insert(c.removed[i]); err != nil {
			return err
		}
	}
	if err := c.before.restore(g); err != nil {
		return err
	}
	if _, err := g.Update(c.target); err != nil {
		return err
	}
	c.removed = nil
	c.applied = false
	return nil
}
