// Package render turns buffer snapshots into chart frames on a fixed tick. It knows
// nothing about windows: a View receives each Frame, and ChartView is the go-chart
// implementation used by both the desktop app and headless captures.
package render

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the redraw period.
const DefaultInterval = 100 * time.Millisecond

// Source is the buffer as seen by the render loop.
type Source interface {
	SnapshotGen() (xs, ys []float64, gen uint64)
	Clear()
}

// View displays frames.
type View interface {
	// Update replaces the plotted data, style, labels and axis ranges, then redraws.
	Update(f Frame)
	// Reset shows an empty chart.
	Reset()
}

// Cycle is the periodic snapshot-and-redraw step. It reads the buffer only through
// snapshots, so a slow view never holds up the serial reader.
type Cycle struct {
	src       Source
	opts      *Options
	view      View
	maxPoints int

	mu      sync.Mutex
	drawn   bool
	bufGen  uint64
	optGen  uint64
	last    Frame
	hasLast bool
}

// NewCycle wires a source, options and view. maxPoints <= 0 disables the display cap.
func NewCycle(src Source, opts *Options, view View, maxPoints int) *Cycle {
	return &Cycle{src: src, opts: opts, view: view, maxPoints: maxPoints}
}

// Tick runs one render cycle and reports whether the view was updated. Paused, empty,
// and unchanged (same buffer generation and options as the last drawn frame) cycles
// leave the previous picture in place.
func (c *Cycle) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.Paused() {
		return false
	}
	xs, ys, gen := c.src.SnapshotGen()
	if len(xs) == 0 {
		return false
	}
	og := c.opts.generation()
	if c.drawn && gen == c.bufGen && og == c.optGen {
		return false
	}
	f := BuildFrame(xs, ys, c.opts.Values(), c.maxPoints)
	c.view.Update(f)
	c.drawn, c.bufGen, c.optGen = true, gen, og
	c.last, c.hasLast = f, true
	return true
}

// Clear empties the buffer and blanks the view right away, without waiting for a tick.
func (c *Cycle) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.src.Clear()
	c.view.Reset()
	c.drawn = false
	c.last, c.hasLast = Frame{}, false
}

// Invalidate forces the next unpaused Tick to redraw (e.g. after a resize).
func (c *Cycle) Invalidate() {
	c.mu.Lock()
	c.drawn = false
	c.mu.Unlock()
}

// LastFrame returns the frame currently on screen.
func (c *Cycle) LastFrame() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

// RunTicker calls fn every interval until ctx is cancelled. fn runs on the ticker
// goroutine; callers that touch UI widgets hop to the UI thread themselves.
func RunTicker(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}
