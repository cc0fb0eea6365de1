package render

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	chart "github.com/wcharczuk/go-chart/v2"
)

func testFrame(n int, connected bool) Frame {
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = float64(i) * 0.5
	}
	return BuildFrame(xs, ys, OptionValues{LineStyle: connected}, MaxPointsDisplay)
}

func TestRenderPNG_Size(t *testing.T) {
	for _, n := range []int{1, 2, 50} {
		var buf bytes.Buffer
		if err := RenderPNG(&buf, testFrame(n, true), 640, 360, ScreenDPI); err != nil {
			t.Fatalf("n=%d render: %v", n, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("n=%d decode: %v", n, err)
		}
		if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
			t.Fatalf("n=%d size %dx%d", n, b.Dx(), b.Dy())
		}
	}
}

func TestRenderPNG_EmptyFrameIsBlank(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, Frame{}, 100, 50, ScreenDPI); err != nil {
		t.Fatalf("render: %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil || cfg.Width != 100 || cfg.Height != 50 {
		t.Fatalf("blank config %+v err=%v", cfg, err)
	}
}

func TestBuildChart_StyleFollowsFrame(t *testing.T) {
	ch := BuildChart(testFrame(5, false), 800, 400, ScreenDPI)
	s, ok := ch.Series[0].(chart.ContinuousSeries)
	if !ok {
		t.Fatalf("unexpected series type %T", ch.Series[0])
	}
	if s.Style.StrokeWidth != chart.Disabled {
		t.Fatalf("markers-only frame should disable the stroke, got %v", s.Style.StrokeWidth)
	}
	if s.Style.DotWidth <= 0 {
		t.Fatalf("markers should always be drawn")
	}
	ch = BuildChart(testFrame(5, true), 800, 400, ScreenDPI)
	s = ch.Series[0].(chart.ContinuousSeries)
	if s.Style.StrokeWidth <= 0 {
		t.Fatalf("connected frame should draw a line")
	}
	if ch.XAxis.Name != LabelFirst || ch.YAxis.Name != LabelSecond {
		t.Fatalf("axis names %q %q", ch.XAxis.Name, ch.YAxis.Name)
	}
}

func TestChartView_DeliversImages(t *testing.T) {
	var got []image.Image
	v := NewChartView(320, 200, func(img image.Image) { got = append(got, img) })
	v.Update(testFrame(3, true))
	v.Reset()
	if len(got) != 2 {
		t.Fatalf("delivered %d images", len(got))
	}
	if v.Image() != got[1] {
		t.Fatalf("Image() should return the latest delivery")
	}
	if b := got[0].Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("size %v", b)
	}
}

func TestDrawLabel_KeepsSourceAndSize(t *testing.T) {
	src := Blank(200, 80)
	out := DrawLabel(src, "showing last 2000 of 2500 points")
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed")
	}
	// bottom-left strip is dark now, the source stays white
	if r, _, _, _ := out.At(10, 75).RGBA(); r > 0x8000 {
		t.Fatalf("expected dark label background")
	}
	if r, _, _, _ := src.At(10, 75).RGBA(); r != 0xffff {
		t.Fatalf("source image was modified")
	}
	if DrawLabel(src, "  ") != src {
		t.Fatalf("blank text should return the input")
	}
}

func TestRenderImage_TinySpans(t *testing.T) {
	for _, xs := range [][]float64{
		{1e-7, 2e-7, 3e-7},
		{1000.0000001, 1000.0000002, 1000.0000003},
	} {
		f := BuildFrame(xs, []float64{1, 2, 3}, OptionValues{LineStyle: true}, MaxPointsDisplay)
		if _, err := RenderImage(f, 640, 360, ScreenDPI); err != nil {
			t.Fatalf("xs=%v render: %v", xs, err)
		}
	}
}
