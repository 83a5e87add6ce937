// Package snapshot persists a scene as a list of node records with their
// parent ids. Loading replays the records in topological order, so a
// snapshot never needs to store derived values.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-sphere/pkg/algorithms"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
)

// FormatVersion identifies the document layout
const FormatVersion = "cluso-sphere/v1"

var (
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	ErrCorrupt           = errors.New("snapshot is corrupt")
	ErrInvalidDocument   = errors.New("invalid snapshot document")
)

// Document is a saved scene.
type Document struct {
	Format  string    `yaml:"format"`
	Session string    `yaml:"session,omitempty"`
	Saved   time.Time `yaml:"saved"`
	Nodes   []Node    `yaml:"nodes"`
}

// Node is one saved node. Params carries the free values of free nodes and
// the construction parameters (intersection index, label text) of the rest.
type Node struct {
	ID           scene.NodeID                 `yaml:"id"`
	Name         string                       `yaml:"name"`
	Variant      scene.Variant                `yaml:"variant"`
	Construction scene.Construction           `yaml:"construction"`
	Parents      []scene.NodeID               `yaml:"parents,omitempty,flow"`
	Params       scene.Params                 `yaml:"params,omitempty"`
	Hidden       bool                         `yaml:"hidden,omitempty"`
	Styles       map[scene.Panel]scene.Style `yaml:"styles,omitempty"`
}

// Spec returns the spec that rebuilds n under a fresh id, with parents as
// saved. The caller remaps parents to the ids they received on replay.
func (n Node) Spec() scene.NodeSpec {
	return scene.NodeSpec{
		Variant:      n.Variant,
		Construction: n.Construction,
		Parents:      append([]scene.NodeID(nil), n.Parents...),
		Params:       n.Params,
	}
}

// Capture records every node of g. Styles equal to the variant default are
// left out. The label panel is stored on the label node itself.
func Capture(g *scene.Graph, session string) Document {
	doc := Document{Format: FormatVersion, Session: session, Saved: time.Now().UTC()}
	for _, n := range g.Nodes() {
		spec := n.Spec()
		rec := Node{
			ID:           n.ID(),
			Name:         n.Name(),
			Variant:      spec.Variant,
			Construction: spec.Construction,
			Parents:      spec.Parents,
			Params:       spec.Params,
			Hidden:       !n.Showing(),
		}
		for _, panel := range []scene.Panel{scene.FrontPanel, scene.BackPanel, scene.LabelPanel} {
			if panel == scene.LabelPanel && n.Variant() != scene.LabelVariant {
				continue
			}
			s, err := g.Style(n.ID(), panel)
			if err != nil || s.Equal(scene.DefaultStyle(n.Variant(), panel)) {
				continue
			}
			if rec.Styles == nil {
				rec.Styles = make(map[scene.Panel]scene.Style)
			}
			rec.Styles[panel] = s
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	return doc
}

// Order returns the indexes of doc.Nodes parents first, ties broken by
// saved id. It fails on duplicate ids, parents missing from the document,
// and cycles.
func Order(doc Document) ([]int, error) {
	index := make(map[scene.NodeID]int, len(doc.Nodes))
	adj := algorithms.NewAdjacencyList()
	for i, n := range doc.Nodes {
		if n.ID == 0 {
			return nil, fmt.Errorf("%w: node %d has no id", ErrInvalidDocument, i)
		}
		if _, dup := index[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidDocument, n.ID)
		}
		index[n.ID] = i
		adj.AddNode(n.ID)
	}
	for _, n := range doc.Nodes {
		for _, p := range n.Parents {
			if _, ok := index[p]; !ok {
				return nil, fmt.Errorf("%w: node %d refers to missing parent %d", ErrInvalidDocument, n.ID, p)
			}
			adj.AddEdge(p, n.ID)
		}
	}

	ids, err := algorithms.TopologicalSort(adj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	order := make([]int, len(ids))
	for i, id := range ids {
		order[i] = index[id]
	}
	return order, nil
}
