package monitor

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/iafilius/SerialPlotter/src/samples"
)

const (
	// DefaultIdle is how long a read waits for bytes before the loop re-checks for
	// cancellation. Short enough for low latency, long enough not to spin a core.
	DefaultIdle = 5 * time.Millisecond
	// LineTimeout flushes a partial line that never received its newline.
	LineTimeout = time.Second
	// maxLineBytes bounds the pending partial line when a device never sends '\n'.
	maxLineBytes = 4096
)

// Sink receives parsed samples. *samples.Buffer implements it.
type Sink interface {
	Append(x, y float64)
}

// lineReader splits a byte stream into lines and feeds parsed pairs to a Sink.
type lineReader struct {
	sink        Sink
	pending     []byte
	pendingFrom time.Time
	lines       int
	parsed      int
	tag         string
}

// feed consumes newly read bytes and handles every complete line.
func (lr *lineReader) feed(chunk []byte, now time.Time) {
	if len(chunk) == 0 {
		return
	}
	if len(lr.pending) == 0 {
		lr.pendingFrom = now
	}
	lr.pending = append(lr.pending, chunk...)
	for {
		idx := bytes.IndexByte(lr.pending, '\n')
		if idx < 0 {
			break
		}
		lr.handle(lr.pending[:idx])
		lr.pending = lr.pending[idx+1:]
		lr.pendingFrom = now
	}
	if len(lr.pending) >= maxLineBytes {
		lr.flush()
	}
	if len(lr.pending) == 0 {
		lr.pending = nil
	}
}

// expire flushes a partial line that has waited LineTimeout for its newline.
func (lr *lineReader) expire(now time.Time) {
	if len(lr.pending) > 0 && now.Sub(lr.pendingFrom) >= LineTimeout {
		lr.flush()
	}
}

func (lr *lineReader) flush() {
	lr.handle(lr.pending)
	lr.pending = nil
}

func (lr *lineReader) handle(raw []byte) {
	line := strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
	if line == "" {
		return
	}
	lr.lines++
	s, ok := samples.ParseLine(line)
	if !ok {
		Debugf("[%s] skipped line %q", lr.tag, line)
		return
	}
	lr.parsed++
	lr.sink.Append(s.X, s.Y)
}

// readLoop reads from port until ctx is cancelled (returns nil) or a read fails
// (returns the error). The port's read timeout provides the idle wait between polls.
func readLoop(ctx context.Context, port io.Reader, sink Sink, tag string) error {
	lr := &lineReader{sink: sink, tag: tag}
	buf := make([]byte, 1024)
	defer func() {
		Debugf("[%s] reader exit: lines=%d parsed=%d", tag, lr.lines, lr.parsed)
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := port.Read(buf)
		now := time.Now()
		if n > 0 {
			lr.feed(buf[:n], now)
		} else {
			lr.expire(now)
		}
		if err != nil {
			// Close() from Disconnect also surfaces here; that is not a failure.
			if ctx.Err() != nil {
				return nil
			}
			if len(lr.pending) > 0 {
				lr.flush()
			}
			return err
		}
	}
}
