package render

import "sync/atomic"

// Options are the display toggles. The UI writes them and the render loop reads them
// every tick; each field is atomic, last write wins.
type Options struct {
	invert    atomic.Bool
	points    atomic.Bool // true = markers only
	paused    atomic.Bool
	changeGen atomic.Uint64
}

// OptionValues is a plain copy of Options taken once per tick.
type OptionValues struct {
	InvertAxes bool
	LineStyle  bool // connected line + markers
	Paused     bool
}

// NewOptions returns options with the startup defaults: not inverted, connected line,
// not paused.
func NewOptions() *Options { return &Options{} }

func (o *Options) SetInvertAxes(v bool) { o.invert.Store(v); o.changeGen.Add(1) }
func (o *Options) SetLineStyle(v bool)  { o.points.Store(!v); o.changeGen.Add(1) }
func (o *Options) SetPaused(v bool)     { o.paused.Store(v); o.changeGen.Add(1) }

// TogglePause flips the pause flag and returns the new value.
func (o *Options) TogglePause() bool {
	for {
		cur := o.paused.Load()
		if o.paused.CompareAndSwap(cur, !cur) {
			o.changeGen.Add(1)
			return !cur
		}
	}
}

func (o *Options) InvertAxes() bool { return o.invert.Load() }
func (o *Options) LineStyle() bool  { return !o.points.Load() }
func (o *Options) Paused() bool     { return o.paused.Load() }

// Values returns a copy of all toggles.
func (o *Options) Values() OptionValues {
	return OptionValues{
		InvertAxes: o.invert.Load(),
		LineStyle:  !o.points.Load(),
		Paused:     o.paused.Load(),
	}
}

// generation changes whenever any toggle is written.
func (o *Options) generation() uint64 { return o.changeGen.Load() }
