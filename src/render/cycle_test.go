package render

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iafilius/SerialPlotter/src/samples"
)

// recordingView keeps every frame it is given.
type recordingView struct {
	frames []Frame
	resets int
}

func (v *recordingView) Update(f Frame) { v.frames = append(v.frames, f) }
func (v *recordingView) Reset()         { v.resets++ }

func (v *recordingView) lastFrame(t *testing.T) Frame {
	t.Helper()
	if len(v.frames) == 0 {
		t.Fatalf("view never updated")
	}
	return v.frames[len(v.frames)-1]
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCycle_InvertAxes(t *testing.T) {
	buf := samples.NewBuffer(0)
	buf.Append(1, 3)
	buf.Append(2, 4)
	opts := NewOptions()
	opts.SetInvertAxes(true)
	view := &recordingView{}
	c := NewCycle(buf, opts, view, MaxPointsDisplay)
	if !c.Tick() {
		t.Fatalf("expected a redraw")
	}
	f := view.lastFrame(t)
	if !equalFloats(f.Xs, []float64{3, 4}) || !equalFloats(f.Ys, []float64{1, 2}) {
		t.Fatalf("inverted frame xs=%v ys=%v", f.Xs, f.Ys)
	}
	if f.XLabel != LabelSecond || f.YLabel != LabelFirst {
		t.Fatalf("labels not swapped: %q / %q", f.XLabel, f.YLabel)
	}

	opts.SetInvertAxes(false)
	c.Tick()
	f = view.lastFrame(t)
	if !equalFloats(f.Xs, []float64{1, 2}) || !equalFloats(f.Ys, []float64{3, 4}) {
		t.Fatalf("plain frame xs=%v ys=%v", f.Xs, f.Ys)
	}
	if f.XLabel != LabelFirst || f.YLabel != LabelSecond {
		t.Fatalf("labels wrong: %q / %q", f.XLabel, f.YLabel)
	}
}

func TestCycle_PausedAndEmptyAreNoOps(t *testing.T) {
	buf := samples.NewBuffer(0)
	opts := NewOptions()
	view := &recordingView{}
	c := NewCycle(buf, opts, view, 0)
	if c.Tick() {
		t.Fatalf("empty buffer should not redraw")
	}
	buf.Append(1, 1)
	opts.SetPaused(true)
	if c.Tick() {
		t.Fatalf("paused cycle should not redraw")
	}
	if len(view.frames) != 0 {
		t.Fatalf("view updated %d times", len(view.frames))
	}
	if opts.TogglePause() {
		t.Fatalf("toggle should unpause")
	}
	if !c.Tick() {
		t.Fatalf("expected redraw after unpause")
	}
}

func TestCycle_SkipsUnchanged(t *testing.T) {
	buf := samples.NewBuffer(0)
	buf.Append(1, 2)
	view := &recordingView{}
	c := NewCycle(buf, NewOptions(), view, 0)
	if !c.Tick() {
		t.Fatalf("first tick should draw")
	}
	if c.Tick() {
		t.Fatalf("unchanged tick should be skipped")
	}
	buf.Append(2, 3)
	if !c.Tick() {
		t.Fatalf("new sample should redraw")
	}
	c.Invalidate()
	if !c.Tick() {
		t.Fatalf("invalidate should force a redraw")
	}
	if len(view.frames) != 3 {
		t.Fatalf("frames=%d want 3", len(view.frames))
	}
}

func TestCycle_LineStyle(t *testing.T) {
	buf := samples.NewBuffer(0)
	buf.Append(1, 2)
	opts := NewOptions()
	view := &recordingView{}
	c := NewCycle(buf, opts, view, 0)
	c.Tick()
	if !view.lastFrame(t).Connected {
		t.Fatalf("default should be connected line")
	}
	opts.SetLineStyle(false)
	c.Tick()
	if view.lastFrame(t).Connected {
		t.Fatalf("expected markers only")
	}
}

func TestCycle_ClearResetsView(t *testing.T) {
	buf := samples.NewBuffer(0)
	buf.Append(1, 2)
	view := &recordingView{}
	c := NewCycle(buf, NewOptions(), view, 0)
	c.Tick()
	c.Clear()
	if buf.Len() != 0 || view.resets != 1 {
		t.Fatalf("clear: len=%d resets=%d", buf.Len(), view.resets)
	}
	if _, ok := c.LastFrame(); ok {
		t.Fatalf("last frame should be gone after clear")
	}
	if c.Tick() {
		t.Fatalf("tick after clear with empty buffer should be a no-op")
	}
}

func TestCycle_DisplayCap(t *testing.T) {
	buf := samples.NewBuffer(0)
	for i := 0; i < 10; i++ {
		buf.Append(float64(i), float64(i*i))
	}
	view := &recordingView{}
	c := NewCycle(buf, NewOptions(), view, 4)
	c.Tick()
	f := view.lastFrame(t)
	if !equalFloats(f.Xs, []float64{6, 7, 8, 9}) {
		t.Fatalf("expected newest 4 samples, got %v", f.Xs)
	}
	if !f.Capped() || f.Total != 10 {
		t.Fatalf("capped=%v total=%d", f.Capped(), f.Total)
	}
	if buf.Len() != 10 {
		t.Fatalf("display cap must not drop stored samples")
	}
}

func TestRunTicker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n int32
	done := make(chan struct{})
	go func() {
		RunTicker(ctx, 5*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
		close(done)
	}()
	time.Sleep(40 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ticker did not stop")
	}
	if atomic.LoadInt32(&n) == 0 {
		t.Fatalf("ticker never fired")
	}
}
