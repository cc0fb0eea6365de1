package monitor

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

var errFakeClosed = errors.New("fake port closed")

// fakePort is an in-memory serial device. Bytes pushed with send are returned by Read;
// Read honors the read timeout like a real port and fails once closed.
type fakePort struct {
	data    chan []byte
	errs    chan error
	closed  chan struct{}
	once    sync.Once
	closes  int32
	resets  int32
	timeout time.Duration
	mu      sync.Mutex
	// closeDelay makes Close slow, like a driver flushing on release
	closeDelay time.Duration
}

func newFakePort() *fakePort {
	return &fakePort{
		data:    make(chan []byte, 64),
		errs:    make(chan error, 1),
		closed:  make(chan struct{}),
		timeout: DefaultIdle,
	}
}

func (f *fakePort) send(s string) { f.data <- []byte(s) }

func (f *fakePort) fail(err error) { f.errs <- err }

func (f *fakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	to := f.timeout
	f.mu.Unlock()
	select {
	case <-f.closed:
		return 0, errFakeClosed
	default:
	}
	// queued bytes win over a queued error, like a driver returning buffered data first
	select {
	case chunk := <-f.data:
		return copy(p, chunk), nil
	default:
	}
	select {
	case chunk := <-f.data:
		return copy(p, chunk), nil
	case err := <-f.errs:
		return 0, err
	case <-f.closed:
		return 0, errFakeClosed
	case <-time.After(to):
		return 0, nil
	}
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.mu.Lock()
	f.timeout = t
	f.mu.Unlock()
	return nil
}

func (f *fakePort) ResetInputBuffer() error {
	atomic.AddInt32(&f.resets, 1)
	for {
		select {
		case <-f.data:
		default:
			return nil
		}
	}
}

func (f *fakePort) Close() error {
	if f.closeDelay > 0 {
		time.Sleep(f.closeDelay)
	}
	atomic.AddInt32(&f.closes, 1)
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakePort) closeCount() int { return int(atomic.LoadInt32(&f.closes)) }

// fakeOpener hands out one port per call and records the requested modes.
type fakeOpener struct {
	mu    sync.Mutex
	ports []*fakePort
	names []string
	modes []serial.Mode
	err   error
}

func (o *fakeOpener) open(name string, mode *serial.Mode) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	p := newFakePort()
	o.ports = append(o.ports, p)
	o.names = append(o.names, name)
	o.modes = append(o.modes, *mode)
	return p, nil
}

func (o *fakeOpener) last() *fakePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.ports) == 0 {
		return nil
	}
	return o.ports[len(o.ports)-1]
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(d time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
