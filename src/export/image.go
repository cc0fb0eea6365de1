package export

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/iafilius/SerialPlotter/src/monitor"
	"github.com/iafilius/SerialPlotter/src/render"
)

// Raster exports are 8x5 inches at 300 DPI.
const (
	ImageDPI    = 300
	ImageWidth  = 8 * ImageDPI
	ImageHeight = 5 * ImageDPI
)

var (
	vectorWidth  = 8 * vg.Inch
	vectorHeight = 5 * vg.Inch
	seriesColor  = color.RGBA{R: 0x00, G: 0x7a, B: 0xcc, A: 0xff}
)

// ImageFormats lists the extensions Image accepts.
var ImageFormats = []string{".png", ".svg", ".pdf", ".eps"}

// Image writes the frame to path. The extension picks the backend: png (also used when
// there is no extension) goes through go-chart, svg/pdf/eps through gonum/plot.
func Image(path string, f render.Frame) error {
	defer monitor.TimeTrack(time.Now(), "export image")
	if f.Empty() {
		return &Error{Op: "image", Path: path, Err: ErrNoData}
	}
	ext := strings.ToLower(filepath.Ext(path))
	var buf bytes.Buffer
	var err error
	switch ext {
	case "", ".png":
		err = render.RenderPNG(&buf, f, ImageWidth, ImageHeight, ImageDPI)
	case ".svg", ".pdf", ".eps":
		err = writeVector(&buf, f, ext[1:])
	default:
		err = fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return &Error{Op: "image", Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &Error{Op: "image", Path: path, Err: fmt.Errorf("write file: %w", err)}
	}
	monitor.Infof("exported chart (%d points) to %s", len(f.Xs), path)
	return nil
}

// NewPlot builds the gonum/plot equivalent of the on-screen chart.
func NewPlot(f render.Frame) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = render.ChartTitle
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel

	pts := make(plotter.XYs, len(f.Xs))
	for i := range pts {
		pts[i].X = f.Xs[i]
		pts[i].Y = f.Ys[i]
	}

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Dashes = grid.Vertical.Dashes
	p.Add(grid)

	if f.Connected {
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("line plotter: %w", err)
		}
		line.Color = seriesColor
		points.GlyphStyle.Color = seriesColor
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(line, points)
	} else {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter plotter: %w", err)
		}
		sc.GlyphStyle.Color = seriesColor
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
	}

	// same bounds and ticks as the screen chart
	p.X.Min, p.X.Max = f.XRange.Min, f.XRange.Max
	p.Y.Min, p.Y.Max = f.YRange.Min, f.YRange.Max
	p.X.Tick.Marker = constantTicks(f.XRange)
	p.Y.Tick.Marker = constantTicks(f.YRange)
	return p, nil
}

func constantTicks(r render.Range) plot.ConstantTicks {
	vals := render.NiceTicks(r.Min, r.Max, 7)
	labels := render.TickLabels(vals)
	ticks := make(plot.ConstantTicks, 0, len(vals))
	for i, v := range vals {
		ticks = append(ticks, plot.Tick{Value: v, Label: labels[i]})
	}
	return ticks
}

func writeVector(buf *bytes.Buffer, f render.Frame, format string) error {
	p, err := NewPlot(f)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vectorWidth, vectorHeight, format)
	if err != nil {
		return fmt.Errorf("%s canvas: %w", format, err)
	}
	if _, err := wt.WriteTo(buf); err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	return nil
}
