package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-sphere/pkg/command"
	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/dd0wney/cluso-sphere/pkg/session"
	"github.com/dd0wney/cluso-sphere/pkg/validation"
)

func main() {
	roots := flag.Int("roots", 200, "Number of free points")
	depth := flag.Int("depth", 20, "Length of the antipode chain hanging off each free point")
	moves := flag.Int("moves", 1000, "Number of point moves to time")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	fmt.Printf("🔥 Cluso Sphere Benchmark\n")
	fmt.Printf("==========================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Free points: %d\n", *roots)
	fmt.Printf("  Chain depth: %d\n", *depth)
	fmt.Printf("  Moves: %d\n\n", *moves)

	sess := session.New(nil)
	processed := 0
	sess.OnAnyChange(func(scene.Change) { processed++ })

	// Benchmark 1: Node Creation
	fmt.Printf("📝 Benchmark 1: Node Creation\n")
	start := time.Now()
	rootIDs := make([]scene.NodeID, *roots)

	for i := 0; i < *roots; i++ {
		loc := randomVector(rng)
		n := mustAdd(sess, validation.NodeRequest{Variant: "point", Construction: "free", Location: &loc})
		rootIDs[i] = n.ID()

		prev := n.ID()
		for d := 0; d < *depth; d++ {
			next := mustAdd(sess, validation.NodeRequest{Variant: "point", Construction: "antipode", Parents: []uint64{prev}})
			prev = next.ID()
		}
		if i > 0 {
			line := mustAdd(sess, validation.NodeRequest{
				Variant: "line", Construction: "through_points", Parents: []uint64{rootIDs[i-1], prev},
			})
			mustAdd(sess, validation.NodeRequest{
				Variant: "label", Construction: "anchored", Parents: []uint64{line.ID()}, Text: fmt.Sprintf("l%d", i),
			})
		}
	}

	total := sess.Graph().Len()
	duration := time.Since(start)
	fmt.Printf("  ✅ Created %d nodes in %v\n", total, duration)
	fmt.Printf("  ⚡ Average: %.2fμs per node\n", float64(duration.Microseconds())/float64(total))
	fmt.Printf("  🚀 Throughput: %.0f nodes/sec\n", float64(total)/duration.Seconds())

	// Benchmark 2: Propagation
	fmt.Printf("\n🌐 Benchmark 2: Move + Propagate (%d moves)\n", *moves)
	processed = 0
	start = time.Now()

	for i := 0; i < *moves; i++ {
		id := rootIDs[rng.Intn(len(rootIDs))]
		if err := sess.Execute(command.MovePoint(id, toGeom(randomVector(rng)))); err != nil {
			log.Fatalf("Failed to move point: %v", err)
		}
	}

	duration = time.Since(start)
	fmt.Printf("  ✅ %d moves in %v\n", *moves, duration)
	fmt.Printf("  📊 Average nodes per pass: %.1f\n", float64(processed)/float64(*moves))
	fmt.Printf("  ⚡ Average: %.2fμs per move\n", float64(duration.Microseconds())/float64(*moves))

	// Benchmark 3: Undo / Redo
	undos := min(*moves, 500)
	fmt.Printf("\n↩️  Benchmark 3: Undo + Redo (%d each)\n", undos)
	start = time.Now()
	for i := 0; i < undos; i++ {
		if _, err := sess.Undo(); err != nil {
			log.Fatalf("Failed to undo: %v", err)
		}
	}
	for i := 0; i < undos; i++ {
		if _, err := sess.Redo(); err != nil {
			log.Fatalf("Failed to redo: %v", err)
		}
	}
	duration = time.Since(start)
	fmt.Printf("  ✅ %d undo/redo steps in %v\n", 2*undos, duration)
	fmt.Printf("  ⚡ Average: %.2fμs per step\n", float64(duration.Microseconds())/float64(2*undos))

	// Benchmark 4: Snapshot Performance
	fmt.Printf("\n💾 Benchmark 4: Snapshot Performance\n")
	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		start = time.Now()
		if err := sess.Save(&buf, compress); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		saved := time.Since(start)
		size := buf.Len()

		start = time.Now()
		replay := session.New(nil)
		if _, err := replay.Load(&buf); err != nil {
			log.Fatalf("Failed to load: %v", err)
		}
		fmt.Printf("  ✅ compressed=%-5v %8d bytes, save %v, load %v (%d nodes)\n",
			compress, size, saved, time.Since(start), replay.Graph().Len())
	}

	// Final Statistics
	fmt.Printf("\n📊 Final Statistics\n")
	g := sess.Graph()
	for _, v := range scene.Variants {
		if c := g.Count(v); c > 0 {
			fmt.Printf("  %-8s %d\n", v.String()+":", c)
		}
	}
	h := sess.History()
	fmt.Printf("  History: %d/%d\n", h.Cursor(), h.Len())

	fmt.Printf("\n✅ Benchmark complete!\n")
}

func mustAdd(sess *session.Session, req validation.NodeRequest) scene.Node {
	n, err := sess.AddNode(req)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", req.Variant, err)
	}
	return n
}

func randomVector(rng *rand.Rand) validation.Vector {
	for {
		v := validation.Vector{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		if !v.IsZero() {
			return v
		}
	}
}

func toGeom(v validation.Vector) geom.Vector {
	return geom.Vector{X: v[0], Y: v[1], Z: v[2]}
}
