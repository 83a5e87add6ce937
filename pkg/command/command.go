// Package command implements reversible edits of a scene graph and the
// linear undo stack that owns them.
//
// Every user-visible mutation of a scene.Graph is a Command. Do performs the
// edit and runs one propagation pass over what it touched; Restore puts back
// the values and topology captured before Do. Commands hold copies of node
// state, never references into live nodes, so later edits cannot rewrite
// history.
package command

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

var (
	// ErrCommandState is returned when a command is applied twice or
	// restored before it was applied.
	ErrCommandState = errors.New("command is not in a state that allows this action")
	// ErrReentrant is returned when the stack is used from inside one of
	// its own commands or their observers.
	ErrReentrant = errors.New("command stack is already executing")
	// ErrEmptyGroup is returned when executing a group with no members.
	ErrEmptyGroup = errors.New("command group is empty")
)

// Command is one reversible edit.
type Command interface {
	Do(g *scene.Graph) error
	Restore(g *scene.Graph) error
	Kind() string
}

// Kinds reported by the built-in commands
const (
	KindAdd    = "add"
	KindDelete = "delete"
	KindMove   = "move"
	KindRotate = "rotate"
	KindStyle  = "style"
	KindShow   = "show"
	KindGroup  = "group"
)

// lifecycle guards the applied/restored alternation shared by all commands.
type lifecycle struct {
	applied bool
}

func (l *lifecycle) beginDo(kind string) error {
	if l.applied {
		return fmt.Errorf("%s: do: %w", kind, ErrCommandState)
	}
	return nil
}

func (l *lifecycle) beginRestore(kind string) error {
	if !l.applied {
		return fmt.Errorf("%s: restore: %w", kind, ErrCommandState)
	}
	return nil
}

// Applied reports whether the command's effect is currently in the graph
func (l *lifecycle) Applied() bool {
	return l.applied
}

// snapshot is a deep copy of the values of a set of nodes.
type snapshot struct {
	ids    []scene.NodeID
	states map[scene.NodeID]scene.State
}

func take(g *scene.Graph, ids []scene.NodeID) (snapshot, error) {
	states, err := g.States(ids...)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{ids: append([]scene.NodeID(nil), ids...), states: states}, nil
}

func (s snapshot) restore(g *scene.Graph) error {
	for _, id := range s.ids {
		if err := g.RestoreState(id, s.states[id]); err != nil {
			return err
		}
	}
	return nil
}
