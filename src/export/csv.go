// Package export writes the sample buffer and the current plot to files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iafilius/SerialPlotter/src/monitor"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"X_Original", "Y_Original"}

var (
	ErrNoData            = errors.New("no data to export")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Error is returned by the file exports. Op is "csv" or "image".
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("export %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FormatValue renders a float the way the CSV has always carried them: shortest
// round-trip digits, always with a decimal point ("1.0", "2.5") and exponent form
// below 1e-4 or from 1e16 on ("1e-05").
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	av := math.Abs(v)
	if av != 0 && (av < 1e-4 || av >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteCSV writes the header and one row per (xs[i], ys[i]) pair in order.
func WriteCSV(w io.Writer, xs, ys []float64) error {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	row := make([]string, 2)
	for i := 0; i < n; i++ {
		row[0] = FormatValue(xs[i])
		row[1] = FormatValue(ys[i])
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV writes the samples to path. The file is written in a single call once the
// whole document is built, so a formatting failure never leaves a partial file.
func CSV(path string, xs, ys []float64) error {
	defer monitor.TimeTrack(time.Now(), "export csv")
	var buf bytes.Buffer
	if err := WriteCSV(&buf, xs, ys); err != nil {
		return &Error{Op: "csv", Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &Error{Op: "csv", Path: path, Err: fmt.Errorf("write file: %w", err)}
	}
	monitor.Infof("exported %d samples to %s", len(xs), path)
	return nil
}
