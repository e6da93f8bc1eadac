package darkmatter

import (
	"context"
	"testing"
)

func BenchmarkChunkKeyPack(b *testing.B) {
	var sink chunkKey
	for i := 0; i < b.N; i++ {
		sink = packChunkKey(i*512, -i*512)
	}
	_ = sink
}

func BenchmarkMultiplyAffine(b *testing.B) {
	m := [6]float64{0.8, 0.6, -0.6, 0.8, 400, 300}
	var sink [6]float64
	for i := 0; i < b.N; i++ {
		sink = multiplyAffine(m, sink)
	}
	_ = sink
}

func BenchmarkWorldToScreen(b *testing.B) {
	v := NewViewport(800, 600)
	v.SetZoom(2)
	v.SetAngle(30)
	var x, y float64
	for i := 0; i < b.N; i++ {
		x, y = v.WorldToScreen(float64(i), float64(-i))
	}
	_, _ = x, y
}

func BenchmarkViewportRefresh(b *testing.B) {
	v := NewViewport(800, 600)
	for i := 0; i < b.N; i++ {
		v.X = float64(i)
		v.dirty = true
		v.Refresh()
	}
}

func BenchmarkSnapshotDrawable(b *testing.B) {
	roots := make([]*Node, 0, 10)
	for i := 0; i < 10; i++ {
		root := NewNode("root")
		root.Depth = float64(i % 3)
		for j := 0; j < 10; j++ {
			child := NewNode("child")
			child.Depth = float64(j)
			root.AddChild(child)
		}
		roots = append(roots, root)
	}
	s := newScene("bench", roots)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.snapshotDrawable()
	}
}

func BenchmarkPreloadSteady(b *testing.B) {
	s := NewDecalChunkStore(512)
	v := NewViewport(800, 600)
	s.Preload(v, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.X += 1
		s.Preload(v, 1)
	}
}

func BenchmarkTick(b *testing.B) {
	e := NewEngine(Options{})
	nodes := make([]*Node, 0, 50)
	for i := 0; i < 50; i++ {
		nodes = append(nodes, NewNode("n").AddBehavior(&BaseBehavior{}))
	}
	if err := e.LoadScene(context.Background(), SceneDescriptor{Nodes: nodes}); err != nil {
		b.Fatal(err)
	}
	e.SetSurface(newStubSurface(800, 600))
	e.Scheduler.Start()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Scheduler.Tick(float64(i) * 16)
	}
}
