package render

// MaxPointsDisplay caps how many of the most recent samples are plotted.
const MaxPointsDisplay = 2000

// Axis labels. Inverting the axes swaps which one sits on X.
const (
	LabelFirst  = "X (serial 1st value)"
	LabelSecond = "Y (serial 2nd value)"
	ChartTitle  = "Live Data"
)

// Frame is everything one render cycle hands to a View.
type Frame struct {
	Xs, Ys    []float64
	XLabel    string
	YLabel    string
	Connected bool // line + markers; false = markers only
	XRange    Range
	YRange    Range
	// Total is the number of samples in the snapshot before the display cap.
	Total int
}

// Capped reports whether older samples were left out of the plot.
func (f Frame) Capped() bool { return f.Total > len(f.Xs) }

// Empty reports whether there is nothing to plot.
func (f Frame) Empty() bool { return len(f.Xs) == 0 }

// BuildFrame turns a buffer snapshot into plot data: it keeps the newest maxPoints
// samples (maxPoints <= 0 keeps all), swaps the sequences and labels when the axes are
// inverted, picks the line style and fits both axis ranges to the plotted data.
// xs and ys are not modified.
func BuildFrame(xs, ys []float64, opts OptionValues, maxPoints int) Frame {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	f := Frame{Total: n, Connected: opts.LineStyle}
	start := 0
	if maxPoints > 0 && n > maxPoints {
		start = n - maxPoints
	}
	px, py := xs[start:n], ys[start:n]
	f.XLabel, f.YLabel = LabelFirst, LabelSecond
	if opts.InvertAxes {
		px, py = py, px
		f.XLabel, f.YLabel = LabelSecond, LabelFirst
	}
	f.Xs, f.Ys = px, py
	if r, ok := FitRange(px); ok {
		f.XRange = r
	}
	if r, ok := FitRange(py); ok {
		f.YRange = r
	}
	return f
}
