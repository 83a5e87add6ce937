package command

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

// Group applies its members in order and restores them in reverse. If a
// member fails the members already applied are rolled back, so the group
// either happens completely or not at all.
type Group struct {
	lifecycle
	name    string
	members []Command
}

// NewGroup collects commands under a name used in logs
func NewGroup(name string, members ...Command) *Group {
	return &Group{name: name, members: members}
}

// Add appends a member. Members cannot be added once the group has run.
func (c *Group) Add(cmd Command) {
	c.members = append(c.members, cmd)
}

func (c *Group) Kind() string { return KindGroup }

// Name returns the group's label
func (c *Group) Name() string { return c.name }

// Len returns the number of members
func (c *Group) Len() int { return len(c.members) }

func (c *Group) Do(g *scene.Graph) error {
	if err := c.beginDo(KindGroup); err != nil {
		return err
	}
	if len(c.members) == 0 {
		return ErrEmptyGroup
	}
	for i, cmd := range c.members {
		if err := cmd.Do(g); err != nil {
			err = fmt.Errorf("%s member %d (%s): %w", KindGroup, i, cmd.Kind(), err)
			for j := i - 1; j >= 0; j-- {
				if rerr := c.members[j].Restore(g); rerr != nil {
					return errors.Join(err, rerr)
				}
			}
			return err
		}
	}
	c.applied = true
	return nil
}

func (c *Group) Restore(g *scene.Graph) error {
	if err := c.beginRestore(KindGroup); err != nil {
		return err
	}
	for i := len(c.members) - 1; i >= 0; i-- {
		if err := c.members[i].Restore(g); err != nil {
			err = fmt.Errorf("%s member %d (%s): %w", KindGroup, i, c.members[i].Kind(), err)
			for j := i + 1; j < len(c.members); j++ {
				if rerr := c.members[j].Do(g); rerr != nil {
					return errors.Join(err, rerr)
				}
			}
			return err
		}
	}
	c.applied = false
	return nil
}
