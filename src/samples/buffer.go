package samples

import "sync"

// Buffer is an append-only store of samples shared by one writer (the serial reader)
// and any number of readers taking snapshots. xs and ys are only ever mutated together
// under the lock, so a snapshot never sees sequences of different length.
type Buffer struct {
	mu     sync.RWMutex
	xs     []float64
	ys     []float64
	retain int
	gen    uint64
}

// NewBuffer returns an empty buffer. retain > 0 keeps only the newest retain samples;
// retain <= 0 grows without limit.
func NewBuffer(retain int) *Buffer {
	if retain < 0 {
		retain = 0
	}
	return &Buffer{retain: retain}
}

// Append adds one sample at the end.
func (b *Buffer) Append(x, y float64) {
	b.mu.Lock()
	b.xs = append(b.xs, x)
	b.ys = append(b.ys, y)
	if b.retain > 0 && len(b.xs) > b.retain {
		// Copy down instead of reslicing so the backing array does not creep forward forever.
		drop := len(b.xs) - b.retain
		n := copy(b.xs, b.xs[drop:])
		copy(b.ys, b.ys[drop:])
		b.xs = b.xs[:n]
		b.ys = b.ys[:n]
	}
	b.gen++
	b.mu.Unlock()
}

// Snapshot returns independent copies of both sequences.
func (b *Buffer) Snapshot() (xs, ys []float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	xs = make([]float64, len(b.xs))
	ys = make([]float64, len(b.ys))
	copy(xs, b.xs)
	copy(ys, b.ys)
	return xs, ys
}

// SnapshotGen is Snapshot plus the generation the copies belong to.
func (b *Buffer) SnapshotGen() (xs, ys []float64, gen uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	xs = make([]float64, len(b.xs))
	ys = make([]float64, len(b.ys))
	copy(xs, b.xs)
	copy(ys, b.ys)
	return xs, ys, b.gen
}

// Samples returns the buffer contents as pairs, in arrival order.
func (b *Buffer) Samples() []Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Sample, len(b.xs))
	for i := range b.xs {
		out[i] = Sample{X: b.xs[i], Y: b.ys[i]}
	}
	return out
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.xs = nil
	b.ys = nil
	b.gen++
	b.mu.Unlock()
}

// Len reports the number of stored samples.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.xs)
}

// Generation changes on every Append and Clear. Readers compare it with the value they
// last rendered to skip work when nothing arrived.
func (b *Buffer) Generation() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gen
}
