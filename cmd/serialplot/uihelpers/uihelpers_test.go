package uihelpers

import (
	"strings"
	"testing"
	"time"
)

func TestComputeChartDimensions(t *testing.T) {
	cases := []struct {
		w, h         int
		wantW, wantH int
	}{
		{100, 100, 480, 240},
		{1000, 0, 1000, 500},
		{1200, 700, 1200, 700},
		{2000, 5000, 2000, 1600},
	}
	for _, c := range cases {
		w, h := ComputeChartDimensions(c.w, c.h)
		if w != c.wantW || h != c.wantH {
			t.Fatalf("ComputeChartDimensions(%d,%d)=(%d,%d) want (%d,%d)", c.w, c.h, w, h, c.wantW, c.wantH)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	if got := TruncatePath("/tmp/a.csv", 60); got != "/tmp/a.csv" {
		t.Fatalf("short path changed: %q", got)
	}
	long := "/home/user/projects/measurements/2024/january/session_one/capture.csv"
	got := TruncatePath(long, 30)
	if !strings.HasSuffix(got, "capture.csv") || len(got) > 30 {
		t.Fatalf("truncated %q", got)
	}
	if got := TruncatePath(long, 10); got != "...capture.csv" {
		t.Fatalf("base-only truncation %q", got)
	}
}

func TestButtonLabels(t *testing.T) {
	if ConnectButtonLabel(true) != "Disconnect" || ConnectButtonLabel(false) != "Connect" {
		t.Fatalf("connect labels")
	}
	if PauseButtonLabel(true) != "Resume" || PauseButtonLabel(false) != "Pause" {
		t.Fatalf("pause labels")
	}
}

func TestSampleCountText(t *testing.T) {
	if got := SampleCountText(12, 12); got != "Samples: 12" {
		t.Fatalf("got %q", got)
	}
	if got := SampleCountText(2500, 2000); got != "Samples: 2500 (showing last 2000)" {
		t.Fatalf("got %q", got)
	}
}

func TestBaudChoicesAndExportName(t *testing.T) {
	got := BaudChoices([]int{9600, 115200})
	if len(got) != 2 || got[0] != "9600" || got[1] != "115200" {
		t.Fatalf("choices %v", got)
	}
	ts := time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)
	if n := DefaultExportName("serial_data", ".csv", ts); n != "serial_data_20240131_154500.csv" {
		t.Fatalf("name %q", n)
	}
}

func TestSavedMessage(t *testing.T) {
	if got := SavedMessage("/tmp/run.csv", 3); got != "Saved 3 points to /tmp/run.csv" {
		t.Fatalf("got %q", got)
	}
	long := "/home/user/projects/measurements/2024/january/session_one/and/more/capture.png"
	if got := SavedMessage(long, 1); !strings.HasSuffix(got, "capture.png") || len(got) > len("Saved 1 points to ")+60 {
		t.Fatalf("got %q", got)
	}
}
