package benchmarks

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/store"
)

// BenchmarkMemoryStore_Put measures an in-memory record write.
func BenchmarkMemoryStore_Put(b *testing.B) {
	st := store.NewMemoryStore()
	data := encodedChain(b, 50)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = st.Put(ctx, "flow-key", data)
	}
}

// BenchmarkMemoryStore_Get measures an in-memory record read.
func BenchmarkMemoryStore_Get(b *testing.B) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	_ = st.Put(ctx, "flow-key", encodedChain(b, 50))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = st.Get(ctx, "flow-key")
	}
}

// BenchmarkSQLiteStore_Put measures an upsert into SQLite.
func BenchmarkSQLiteStore_Put(b *testing.B) {
	st, cleanup := createSQLiteStore(b)
	defer cleanup()
	data := encodedChain(b, 50)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = st.Put(ctx, fmt.Sprintf("flow-%d", i%100), data)
	}
}

// BenchmarkSQLiteStore_Get measures a read from SQLite.
func BenchmarkSQLiteStore_Get(b *testing.B) {
	st, cleanup := createSQLiteStore(b)
	defer cleanup()
	ctx := context.Background()
	_ = st.Put(ctx, "flow-key", encodedChain(b, 50))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = st.Get(ctx, "flow-key")
	}
}

// BenchmarkPersister_Save_10 saves a 10-node flow through the persister.
func BenchmarkPersister_Save_10(b *testing.B) {
	benchmarkSave(b, 10)
}

// BenchmarkPersister_Save_100 saves a 100-node flow through the persister.
func BenchmarkPersister_Save_100(b *testing.B) {
	benchmarkSave(b, 100)
}

// BenchmarkPersister_Restore_100 decodes and checks a 100-node record.
func BenchmarkPersister_Restore_100(b *testing.B) {
	p := flowcanvas.NewPersister(store.NewMemoryStore())
	g, _ := buildChain(100)
	ctx := context.Background()
	if err := p.Save(ctx, g.Snapshot(), flowcanvas.DefaultViewport); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = p.Restore(ctx)
	}
}

// BenchmarkSession_SaveRestore runs a validated save and a reset on SQLite.
func BenchmarkSession_SaveRestore(b *testing.B) {
	st, cleanup := createSQLiteStore(b)
	defer cleanup()
	s := flowcanvas.NewSession(st)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Save(ctx); err != nil {
			b.Fatal(err)
		}
		if _, err := s.Reset(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkSave(b *testing.B, n int) {
	p := flowcanvas.NewPersister(store.NewMemoryStore())
	g, _ := buildChain(n)
	snap := g.Snapshot()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Save(ctx, snap, flowcanvas.DefaultViewport)
	}
}

// encodedChain returns the stored bytes of an n-node chain.
func encodedChain(b *testing.B, n int) []byte {
	b.Helper()
	st := store.NewMemoryStore()
	p := flowcanvas.NewPersister(st)
	g, _ := buildChain(n)
	ctx := context.Background()
	if err := p.Save(ctx, g.Snapshot(), flowcanvas.DefaultViewport); err != nil {
		b.Fatal(err)
	}
	data, err := st.Get(ctx, p.Key())
	if err != nil {
		b.Fatal(err)
	}
	return data
}

func createSQLiteStore(b *testing.B) (*store.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	st, err := store.NewSQLiteStore(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return st, func() {
		st.Close()
		os.Remove(tmpFile.Name())
	}
}
