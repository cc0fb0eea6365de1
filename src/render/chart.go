package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/SerialPlotter/src/monitor"
)

// Screen defaults. Exports override size and DPI.
const (
	DefaultWidth  = 1100
	DefaultHeight = 560
	ScreenDPI     = 96
)

var seriesColor = drawing.ColorFromHex("007acc")

// seriesStyle is line+markers when connected, markers only otherwise.
func seriesStyle(connected bool, dpi float64) chart.Style {
	scale := dpi / ScreenDPI
	if scale <= 0 {
		scale = 1
	}
	st := chart.Style{
		StrokeColor: seriesColor,
		StrokeWidth: 1 * scale,
		DotColor:    seriesColor,
		DotWidth:    3 * scale,
	}
	if !connected {
		st.StrokeWidth = chart.Disabled
	}
	return st
}

func axisTicks(r Range) ([]chart.Tick, []chart.GridLine) {
	vals := NiceTicks(r.Min, r.Max, 7)
	labels := TickLabels(vals)
	ticks := make([]chart.Tick, 0, len(vals))
	grid := make([]chart.GridLine, 0, len(vals))
	for i, v := range vals {
		ticks = append(ticks, chart.Tick{Value: v, Label: labels[i]})
		grid = append(grid, chart.GridLine{Value: v})
	}
	return ticks, grid
}

// BuildChart maps a frame onto a go-chart definition of the given pixel size and DPI.
func BuildChart(f Frame, width, height int, dpi float64) chart.Chart {
	xs, ys := f.Xs, f.Ys
	if len(xs) == 1 {
		// go-chart draws nothing for a single-value series; duplicate it
		xs = []float64{xs[0], xs[0]}
		ys = []float64{ys[0], ys[0]}
	}
	gridStyle := chart.Style{
		StrokeColor:     drawing.ColorFromHex("b0b0b0"),
		StrokeWidth:     1,
		StrokeDashArray: []float64{4, 4},
	}
	xTicks, xGrid := axisTicks(f.XRange)
	yTicks, yGrid := axisTicks(f.YRange)
	return chart.Chart{
		Title:      ChartTitle,
		Width:      width,
		Height:     height,
		DPI:        dpi,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           f.XLabel,
			Range:          &chart.ContinuousRange{Min: f.XRange.Min, Max: f.XRange.Max},
			Ticks:          xTicks,
			GridLines:      xGrid,
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           f.YLabel,
			Range:          &chart.ContinuousRange{Min: f.YRange.Min, Max: f.YRange.Max},
			Ticks:          yTicks,
			GridLines:      yGrid,
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "samples",
				XValues: xs,
				YValues: ys,
				Style:   seriesStyle(f.Connected, dpi),
			},
		},
	}
}

// RenderPNG writes the frame as a PNG.
func RenderPNG(w io.Writer, f Frame, width, height int, dpi float64) error {
	if f.Empty() {
		return png.Encode(w, Blank(width, height))
	}
	ch := BuildChart(f, width, height, dpi)
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// RenderImage renders the frame to an in-memory image.
func RenderImage(f Frame, width, height int, dpi float64) (image.Image, error) {
	defer monitor.TimeTrack(time.Now(), "render chart")
	var buf bytes.Buffer
	if err := RenderPNG(&buf, f, width, height, dpi); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return img, nil
}

// Blank is the empty-chart placeholder.
func Blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// ChartView renders frames with go-chart and hands each image to a callback.
type ChartView struct {
	mu      sync.Mutex
	width   int
	height  int
	onImage func(image.Image)
	last    image.Image
}

// NewChartView creates a view of the given size. onImage may be nil.
func NewChartView(width, height int, onImage func(image.Image)) *ChartView {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &ChartView{width: width, height: height, onImage: onImage}
}

// SetSize changes the pixel size used by later updates.
func (v *ChartView) SetSize(width, height int) {
	v.mu.Lock()
	v.width, v.height = width, height
	v.mu.Unlock()
}

// Size returns the current pixel size.
func (v *ChartView) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// Update implements View.
func (v *ChartView) Update(f Frame) {
	w, h := v.Size()
	img, err := RenderImage(f, w, h, ScreenDPI)
	if err != nil {
		// keep the UI visibly alive even when go-chart rejects a frame
		monitor.Warnf("chart render error: %v; showing blank fallback", err)
		img = Blank(w, h)
	} else if f.Capped() {
		img = DrawLabel(img, fmt.Sprintf("showing last %d of %d points", len(f.Xs), f.Total))
	}
	v.deliver(img)
}

// Reset implements View.
func (v *ChartView) Reset() {
	w, h := v.Size()
	v.deliver(Blank(w, h))
}

// Image returns the most recently delivered image, or nil.
func (v *ChartView) Image() image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

func (v *ChartView) deliver(img image.Image) {
	v.mu.Lock()
	v.last = img
	fn := v.onImage
	v.mu.Unlock()
	if fn != nil {
		fn(img)
	}
}
