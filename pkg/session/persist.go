package session

import (
	"fmt"
	"io"

	"github.com/dd0wney/cluso-sphere/pkg/command"
	"github.com/dd0wney/cluso-sphere/pkg/logging"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/dd0wney/cluso-sphere/pkg/snapshot"
)

// Save writes the whole scene to w and clears the modified flag
func (s *Session) Save(w io.Writer, compress bool) error {
	doc := snapshot.Capture(s.graph, s.ID())
	n, err := snapshot.Encode(w, doc, snapshot.Options{Compress: compress})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordSnapshot("save", compress, n)
	}
	s.modified = false
	s.logger.Info("scene saved", logging.Count(len(doc.Nodes)), logging.Int("bytes", n), logging.Bool("compressed", compress))
	return nil
}

// Load reads a snapshot and adds its nodes to the scene as a single
// undoable step. Nodes get fresh ids; the returned map takes saved ids to
// the new ones. The loaded scene counts as unmodified.
func (s *Session) Load(r io.Reader) (map[scene.NodeID]scene.NodeID, error) {
	doc, n, compressed, err := snapshot.Decode(r)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSnapshot("load", compressed, n)
	}
	order, err := snapshot.Order(doc)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return map[scene.NodeID]scene.NodeID{}, nil
	}

	group := command.NewGroup("load")
	created := make(map[scene.NodeID]*command.AddNodeCommand, len(order))
	for _, i := range order {
		rec := doc.Nodes[i]
		refs := make([]command.ParentRef, len(rec.Parents))
		for j, p := range rec.Parents {
			refs[j] = command.CreatedBy(created[p])
		}
		spec := rec.Spec()
		spec.Parents = nil
		add := command.AddNode(spec, refs...)
		created[rec.ID] = add
		group.Add(add)
	}
	for _, i := range order {
		rec := doc.Nodes[i]
		for _, panel := range []scene.Panel{scene.FrontPanel, scene.BackPanel, scene.LabelPanel} {
			if style, ok := rec.Styles[panel]; ok {
				group.Add(command.Restyle(panel, style, command.CreatedBy(created[rec.ID])))
			}
		}
	}
	var hidden []command.ParentRef
	for _, i := range order {
		if rec := doc.Nodes[i]; rec.Hidden {
			hidden = append(hidden, command.CreatedBy(created[rec.ID]))
		}
	}
	if len(hidden) > 0 {
		group.Add(command.SetShowing(false, hidden...))
	}

	if err := s.Execute(group); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	ids := make(map[scene.NodeID]scene.NodeID, len(created))
	for old, add := range created {
		ids[old] = add.Node().ID()
	}
	s.modified = false
	s.logger.Info("scene loaded", logging.Count(len(ids)), logging.String("from_session", doc.Session))
	return ids, nil
}
