// Package session is the entry point for front ends: one session owns one
// scene graph and its undo stack, and is the only sanctioned way to change
// them.
package session

import (
	"fmt"

	"github.com/dd0wney/cluso-sphere/pkg/command"
	"github.com/dd0wney/cluso-sphere/pkg/config"
	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/logging"
	"github.com/dd0wney/cluso-sphere/pkg/metrics"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/dd0wney/cluso-sphere/pkg/validation"
	"github.com/google/uuid"
)

// Session is an editing document.
type Session struct {
	id      uuid.UUID
	cfg     *config.Config
	graph   *scene.Graph
	stack   *command.Stack
	logger  logging.Logger
	metrics *metrics.Registry

	// modified is set by every change to the scene since the last save or load
	modified bool
}

// Option customizes a Session
type Option func(*Session)

// WithLogger sets the logger instead of the one the config describes
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records into r. Without it, metrics are recorded into the
// default registry only when the config enables them.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Session) { s.metrics = r }
}

// WithID fixes the session id, for resuming a saved document
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

// New creates an empty session. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{id: uuid.New(), cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NopLogger{}
	}
	if s.metrics == nil && cfg.Metrics.Enabled {
		s.metrics = metrics.DefaultRegistry()
	}
	s.logger = s.logger.With(logging.Session(s.id.String()))

	s.graph = scene.New(scene.Config{
		Tolerances: cfg.Geometry,
		Logger:     s.logger,
		Metrics:    s.metrics,
	})
	s.stack = command.NewStack(s.graph, command.StackConfig{
		Limit:   cfg.History.Limit,
		Logger:  s.logger,
		Metrics: s.metrics,
	})
	s.logger.Info("session started", logging.Int("history_limit", cfg.History.Limit))
	return s
}

// ID returns the session's unique id
func (s *Session) ID() string { return s.id.String() }

// Graph returns the scene. Callers read it; writes go through Execute.
func (s *Session) Graph() *scene.Graph { return s.graph }

// History returns the undo stack
func (s *Session) History() *command.Stack { return s.stack }

// Config returns the configuration the session was built with
func (s *Session) Config() *config.Config { return s.cfg }

// Logger returns the session's logger
func (s *Session) Logger() logging.Logger { return s.logger }

// CreateNode validates req and builds the node it describes without
// registering it. Pass the node to Execute(command.AddBuilt(n)) to add it.
func (s *Session) CreateNode(req validation.NodeRequest) (scene.Node, error) {
	spec, err := SpecFromRequest(req)
	if err != nil {
		return nil, err
	}
	return s.graph.NewNode(spec)
}

// AddNode creates the node req describes and adds it as one undoable step
func (s *Session) AddNode(req validation.NodeRequest) (scene.Node, error) {
	n, err := s.CreateNode(req)
	if err != nil {
		return nil, err
	}
	if err := s.Execute(command.AddBuilt(n)); err != nil {
		return nil, err
	}
	return n, nil
}

// Execute applies c and records it for undo
func (s *Session) Execute(c command.Command) error {
	if err := s.stack.Execute(c); err != nil {
		return err
	}
	s.modified = true
	return nil
}

// Undo reverts the most recent command. It reports false if there was none.
func (s *Session) Undo() (bool, error) {
	ok, err := s.stack.Undo()
	if ok && err == nil {
		s.modified = true
	}
	return ok, err
}

// Redo re-applies the most recently undone command
func (s *Session) Redo() (bool, error) {
	ok, err := s.stack.Redo()
	if ok && err == nil {
		s.modified = true
	}
	return ok, err
}

// Modified reports whether the scene changed since it was last saved or
// loaded, or since ClearModified
func (s *Session) Modified() bool { return s.modified }

// ClearModified marks the scene as saved
func (s *Session) ClearModified() { s.modified = false }

// OnNodeChanged registers fn to run once for each pass that processes id.
// It returns a function that removes the registration.
func (s *Session) OnNodeChanged(id scene.NodeID, fn func(scene.Change)) (func(), error) {
	if !s.graph.Has(id) {
		return nil, scene.NewError("observe").ID(id).Cause(scene.ErrNodeNotFound).Err()
	}
	return s.graph.Subscribe(id, fn), nil
}

// OnAnyChange registers fn for every processed node
func (s *Session) OnAnyChange(fn func(scene.Change)) func() {
	return s.graph.SubscribeAll(fn)
}

// SpecFromRequest converts a validated request into a scene spec
func SpecFromRequest(req validation.NodeRequest) (scene.NodeSpec, error) {
	if err := validation.ValidateNodeRequest(&req); err != nil {
		return scene.NodeSpec{}, fmt.Errorf("%w: %v", scene.ErrInvalidSpec, err)
	}
	variant, err := scene.ParseVariant(req.Variant)
	if err != nil {
		return scene.NodeSpec{}, err
	}
	return scene.NodeSpec{
		Variant:      variant,
		Construction: scene.Construction(req.Construction),
		Parents:      append([]scene.NodeID(nil), req.Parents...),
		Params: scene.Params{
			Location:  vector(req.Location),
			Normal:    vector(req.Normal),
			Start:     vector(req.Start),
			Center:    vector(req.Center),
			ArcLength: req.ArcLength,
			Radius:    req.Radius,
			Index:     req.Index,
			Text:      req.Text,
		},
	}, nil
}

func vector(v *validation.Vector) geom.Vector {
	if v == nil {
		return geom.Vector{}
	}
	return geom.Vector{X: v[0], Y: v[1], Z: v[2]}
}
