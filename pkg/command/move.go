package command

import (
	"errors"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

// MoveCommand applies a value-changing visitor to one node and propagates.
// The node and its descendants are snapshotted on each Do.
type MoveCommand struct {
	lifecycle
	target  scene.NodeID
	visitor scene.Visitor
	before  snapshot
}

// Move applies v to id
func Move(id scene.NodeID, v scene.Visitor) *MoveCommand {
	return &MoveCommand{target: id, visitor: v}
}

// MovePoint drags a free point to loc
func MovePoint(id scene.NodeID, loc geom.Vector) *MoveCommand {
	return Move(id, scene.PointMover{Location: loc})
}

// MoveLabel drags a label towards loc
func MoveLabel(id scene.NodeID, loc geom.Vector) *MoveCommand {
	return Move(id, scene.LabelMover{Location: loc})
}

// SetLineNormal changes the normal of a free line
func SetLineNormal(id scene.NodeID, normal geom.Vector) *MoveCommand {
	return Move(id, scene.LineNormalSetter{Normal: normal})
}

// SetSegment changes the plane and length of a free segment
func SetSegment(id scene.NodeID, normal geom.Vector, arcLength float64) *MoveCommand {
	return Move(id, scene.SegmentNormalArcLengthSetter{Normal: normal, ArcLength: arcLength})
}

// ResizeCircle moves the center and radius of a free circle
func ResizeCircle(id scene.NodeID, center geom.Vector, radius float64) *MoveCommand {
	return Move(id, scene.CircleResizer{Center: center, Radius: radius})
}

func (c *MoveCommand) Kind() string { return KindMove }

// Target returns the id the visitor is applied to
func (c *MoveCommand) Target() scene.NodeID { return c.target }

func (c *MoveCommand) Do(g *scene.Graph) error {
	if err := c.beginDo(KindMove); err != nil {
		return err
	}
	closure, err := g.Closure(c.target)
	if err != nil {
		return err
	}
	before, err := take(g, closure)
	if err != nil {
		return err
	}
	if err := g.Apply(c.target, c.visitor); err != nil {
		return err
	}
	if _, err := g.Update(c.target); err != nil {
		return errors.Join(err, before.restore(g))
	}
	c.before = before
	c.applied = true
	return nil
}

func (c *MoveCommand) Restore(g *scene.Graph) error {
	if err := c.beginRestore(KindMove); err != nil {
		return err
	}
	if err := c.before.restore(g); err != nil {
		return err
	}
	if _, err := g.Update(c.target); err != nil {
		return err
	}
	c.applied = false
	return nil
}

// RotateCommand turns the whole sphere.
type RotateCommand struct {
	lifecycle
	matrix  geom.Matrix
	before  snapshot
	inverse geom.Matrix
}

// Rotate turns the sphere by m
func Rotate(m geom.Matrix) *RotateCommand {
	return &RotateCommand{matrix: m}
}

// RotateAbout turns the sphere by angle radians about axis
func RotateAbout(axis geom.Vector, angle float64) *RotateCommand {
	return Rotate(geom.Rotation(axis, angle))
}

func (c *RotateCommand) Kind() string { return KindRotate }

func (c *RotateCommand) Do(g *scene.Graph) error {
	if err := c.beginDo(KindRotate); err != nil {
		return err
	}
	before, err := take(g, g.IDs())
	if err != nil {
		return err
	}
	inverse := g.InverseRotation()
	if _, err := g.Rotate(c.matrix); err != nil {
		err = errors.Join(err, before.restore(g))
		g.SetInverseRotation(inverse)
		return err
	}
	c.before = before
	c.inverse = inverse
	c.applied = true
	return nil
}

func (c *RotateCommand) Restore(g *scene.Graph) error {
	if err := c.beginRestore(KindRotate); err != nil {
		return err
	}
	if err := c.before.restore(g); err != nil {
		return err
	}
	g.SetInverseRotation(c.inverse)
	if _, err := g.Update(g.FreeIDs()...); err != nil {
		return err
	}
	c.applied = false
	return nil
}
