package command

import (
	"fmt"

	"github.com/dd0wney/cluso-sphere/pkg/logging"
	"github.com/dd0wney/cluso-sphere/pkg/metrics"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

// Stack actions, as reported in logs and metrics
const (
	ActionExecute = "execute"
	ActionUndo    = "undo"
	ActionRedo    = "redo"
)

// StackConfig configures a Stack
type StackConfig struct {
	// Limit caps the number of entries kept; the oldest are dropped first.
	// Zero means unbounded.
	Limit   int
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Stack is a linear undo history: a sequence of applied commands and a
// cursor. Entries below the cursor are applied, entries at or above it can
// be redone. Executing a new command discards the redo tail.
type Stack struct {
	graph   *scene.Graph
	entries []Command
	cursor  int
	limit   int
	busy    bool

	logger  logging.Logger
	metrics *metrics.Registry
}

// NewStack creates an empty stack editing g
func NewStack(g *scene.Graph, cfg StackConfig) *Stack {
	return &Stack{
		graph:   g,
		limit:   cfg.Limit,
		logger:  logging.OrNop(cfg.Logger).With(logging.Component("command")),
		metrics: cfg.Metrics,
	}
}

// Execute applies c and pushes it. A failed command leaves the stack as it
// was.
func (s *Stack) Execute(c Command) error {
	return s.run(ActionExecute, c, func() error {
		if err := c.Do(s.graph); err != nil {
			return err
		}
		s.entries = append(s.entries[:s.cursor], c)
		s.cursor++
		if s.limit > 0 && len(s.entries) > s.limit {
			drop := len(s.entries) - s.limit
			s.entries = append([]Command(nil), s.entries[drop:]...)
			s.cursor -= drop
		}
		return nil
	})
}

// Undo restores the command below the cursor. It reports false when there
// is nothing to undo.
func (s *Stack) Undo() (bool, error) {
	if !s.CanUndo() {
		return false, nil
	}
	c := s.entries[s.cursor-1]
	err := s.run(ActionUndo, c, func() error {
		if err := c.Restore(s.graph); err != nil {
			return err
		}
		s.cursor--
		return nil
	})
	return err == nil, err
}

// Redo re-applies the command at the cursor. It reports false when there is
// nothing to redo.
func (s *Stack) Redo() (bool, error) {
	if !s.CanRedo() {
		return false, nil
	}
	c := s.entries[s.cursor]
	err := s.run(ActionRedo, c, func() error {
		if err := c.Do(s.graph); err != nil {
			return err
		}
		s.cursor++
		return nil
	})
	return err == nil, err
}

func (s *Stack) run(action string, c Command, fn func() error) error {
	if s.busy {
		return fmt.Errorf("%s %s: %w", action, c.Kind(), ErrReentrant)
	}
	s.busy = true
	defer func() { s.busy = false }()

	timer := logging.StartTimer(s.logger, action, logging.Command(c.Kind()))
	err := fn()
	elapsed := timer.Elapsed()

	if s.metrics != nil {
		s.metrics.RecordCommand(c.Kind(), action, err, elapsed)
		s.metrics.UpdateStack(len(s.entries), s.cursor)
	}
	if err != nil {
		timer.EndError(err)
		return err
	}
	s.logger.Info(action,
		logging.Command(c.Kind()),
		logging.Int("depth", len(s.entries)),
		logging.Int("cursor", s.cursor),
		logging.Latency(elapsed),
	)
	return nil
}

// CanUndo reports whether an applied command is below the cursor
func (s *Stack) CanUndo() bool { return s.cursor > 0 }

// CanRedo reports whether an undone command is at the cursor
func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries) }

// Len returns the number of entries, applied or undone
func (s *Stack) Len() int { return len(s.entries) }

// Cursor returns the number of applied entries
func (s *Stack) Cursor() int { return s.cursor }

// Peek returns the command Undo would restore, or nil
func (s *Stack) Peek() Command {
	if !s.CanUndo() {
		return nil
	}
	return s.entries[s.cursor-1]
}

// Clear drops the whole history without touching the graph
func (s *Stack) Clear() {
	s.entries = nil
	s.cursor = 0
	if s.metrics != nil {
		s.metrics.UpdateStack(0, 0)
	}
}
