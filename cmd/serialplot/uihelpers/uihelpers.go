package uihelpers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// ComputeChartDimensions clamps the canvas area to a size the chart renders legibly at.
// A non-positive height derives one from the width.
func ComputeChartDimensions(rawW, rawH int) (int, int) {
	w := rawW
	if w < 480 {
		w = 480
	}
	h := rawH
	if h <= 0 {
		h = int(float32(w) * 0.5)
	}
	if h < 240 {
		h = 240
	}
	if h > 1600 {
		h = 1600
	}
	return w, h
}

// TruncatePath shortens p to about n characters, keeping the file name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}

// ConnectButtonLabel is the text of the connect toggle for the given state.
func ConnectButtonLabel(connected bool) string {
	if connected {
		return "Disconnect"
	}
	return "Connect"
}

// PauseButtonLabel is the text of the pause toggle.
func PauseButtonLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}

// SampleCountText summarizes the buffer for the status bar.
func SampleCountText(total, shown int) string {
	if shown > 0 && shown < total {
		return fmt.Sprintf("Samples: %d (showing last %d)", total, shown)
	}
	return fmt.Sprintf("Samples: %d", total)
}

// BaudChoices renders baud rates for a selector.
func BaudChoices(rates []int) []string {
	out := make([]string, 0, len(rates))
	for _, r := range rates {
		out = append(out, strconv.Itoa(r))
	}
	return out
}

// DefaultExportName proposes a file name like "serial_data_20240131_154500.csv".
func DefaultExportName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s%s", prefix, now.Format("20060102_150405"), ext)
}

// SavedMessage confirms a finished export.
func SavedMessage(path string, points int) string {
	return fmt.Sprintf("Saved %d points to %s", points, TruncatePath(path, 60))
}
