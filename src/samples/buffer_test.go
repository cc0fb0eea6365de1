package samples

import (
	"sync"
	"testing"
)

func TestBuffer_AppendThenSnapshot(t *testing.T) {
	b := NewBuffer(0)
	const n = 50
	for i := 0; i < n; i++ {
		b.Append(float64(i), float64(i*2))
	}
	xs, ys := b.Snapshot()
	if len(xs) != n || len(ys) != n {
		t.Fatalf("lengths xs=%d ys=%d want %d", len(xs), len(ys), n)
	}
	for i := 0; i < n; i++ {
		if xs[i] != float64(i) || ys[i] != float64(i*2) {
			t.Fatalf("index %d: got (%v,%v)", i, xs[i], ys[i])
		}
	}
}

func TestBuffer_SnapshotIsIndependent(t *testing.T) {
	b := NewBuffer(0)
	b.Append(1, 2)
	xs, ys := b.Snapshot()
	b.Append(3, 4)
	xs[0] = 99
	if len(xs) != 1 || len(ys) != 1 {
		t.Fatalf("snapshot grew after append: %d/%d", len(xs), len(ys))
	}
	again, _ := b.Snapshot()
	if again[0] != 1 {
		t.Fatalf("mutating a snapshot leaked into the buffer: %v", again)
	}
}

func TestBuffer_ClearThenSnapshot(t *testing.T) {
	b := NewBuffer(0)
	b.Append(1, 2)
	b.Append(3, 4)
	b.Clear()
	xs, ys := b.Snapshot()
	if len(xs) != 0 || len(ys) != 0 {
		t.Fatalf("expected empty snapshot after clear, got %v %v", xs, ys)
	}
	if b.Len() != 0 {
		t.Fatalf("Len=%d after clear", b.Len())
	}
}

func TestBuffer_Retain(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Append(float64(i), float64(-i))
	}
	got := b.Samples()
	want := []Sample{{3, -3}, {4, -4}, {5, -5}}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestBuffer_GenerationMoves(t *testing.T) {
	b := NewBuffer(0)
	g0 := b.Generation()
	b.Append(1, 1)
	g1 := b.Generation()
	if g1 == g0 {
		t.Fatalf("generation did not change on append")
	}
	b.Clear()
	_, _, g2 := b.SnapshotGen()
	if g2 == g1 {
		t.Fatalf("generation did not change on clear")
	}
}

// Run with -race: one writer, one snapshotting reader, one clearer.
func TestBuffer_ConcurrentNoTornSnapshots(t *testing.T) {
	b := NewBuffer(0)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			b.Append(float64(i), float64(i))
			if i%1000 == 999 {
				b.Clear()
			}
		}
		close(stop)
	}()
	go func() {
		defer wg.Done()
		for {
			xs, ys := b.Snapshot()
			if len(xs) != len(ys) {
				t.Errorf("torn snapshot: %d vs %d", len(xs), len(ys))
				return
			}
			for i := range xs {
				if xs[i] != ys[i] {
					t.Errorf("mismatched pair at %d: %v %v", i, xs[i], ys[i])
					return
				}
			}
			select {
			case <-stop:
				return
			default:
			}
		}
	}()
	wg.Wait()
}
