// Package monitor owns the serial side of the plotter: the session lifecycle, the
// background reader that turns device lines into samples, port discovery and logging.
//
// Design notes:
//   - One Session per window. It owns the device handle; nothing else closes it.
//   - The reader goroutine lives exactly as long as the Connected state. When it dies on
//     an I/O error the session moves itself to Disconnected so the UI never shows a
//     connection that no longer reads.
//   - Samples go to a Sink (normally *samples.Buffer); the session never clears it.
package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.bug.st/serial"
)

// State is the connection state of a Session.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Port is the subset of serial.Port the session uses.
type Port interface {
	io.Reader
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// Opener opens a device. OpenSerial is the production implementation; tests inject
// in-memory ports.
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenSerial opens a real device through go.bug.st/serial.
func OpenSerial(name string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Status is a point-in-time view of a Session for status bars and logs.
type Status struct {
	State     State
	Port      string
	Baud      int
	SessionID string
	Since     time.Time
	// LastErr is the read error that ended the previous session, if any.
	LastErr error
}

func (st Status) String() string {
	if st.State == Connected {
		return fmt.Sprintf("Connected to %s @ %d bps", st.Port, st.Baud)
	}
	if st.LastErr != nil {
		return fmt.Sprintf("Disconnected: %v", st.LastErr)
	}
	return "Disconnected"
}

// SessionOptions tune a Session. Zero values pick the defaults.
type SessionOptions struct {
	Opener Opener
	Idle   time.Duration
}

// Session manages connect/disconnect and the reader goroutine.
type Session struct {
	sink Sink
	open Opener
	idle time.Duration

	mu        sync.Mutex
	conn      *connection
	last      *connection // most recent connection, possibly still shutting down
	lastErr   error
	listeners []func(Status)

	// pending status changes in transition order; one dispatcher drains them
	events      []Status
	dispatching bool
}

type connection struct {
	id     string
	name   string
	baud   int
	since  time.Time
	port   Port
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (c *connection) tag() string {
	if len(c.id) > 8 {
		return c.id[:8]
	}
	return c.id
}

// close releases the device exactly once, whichever path gets here first.
func (c *connection) close() error {
	c.closeOnce.Do(func() { c.closeErr = c.port.Close() })
	return c.closeErr
}

// NewSession creates a disconnected session that appends parsed samples to sink.
func NewSession(sink Sink, opts SessionOptions) *Session {
	s := &Session{sink: sink, open: opts.Opener, idle: opts.Idle}
	if s.open == nil {
		s.open = OpenSerial
	}
	if s.idle <= 0 {
		s.idle = DefaultIdle
	}
	return s
}

// OnChange registers fn to be called after every state transition. Calls happen one at
// a time, in transition order, on a goroutine owned by the session, so the last status
// a listener sees always matches State().
func (s *Session) OnChange(fn func(Status)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// State reports Connected or Disconnected.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return Connected
	}
	return Disconnected
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	if s.conn == nil {
		return Status{State: Disconnected, LastErr: s.lastErr}
	}
	return Status{
		State:     Connected,
		Port:      s.conn.name,
		Baud:      s.conn.baud,
		SessionID: s.conn.id,
		Since:     s.conn.since,
	}
}

// Connect opens port at baud, drops whatever the device queued before we attached, and
// starts reading. Every failure is a *ConnectError and leaves the session untouched.
func (s *Session) Connect(port, baud string) error {
	port = strings.TrimSpace(port)
	if port == "" {
		return &ConnectError{Baud: baud, Err: ErrNoPort}
	}
	rate, err := ParseBaud(baud)
	if err != nil {
		return &ConnectError{Port: port, Baud: baud, Err: err}
	}

	s.mu.Lock()
	for {
		if s.conn != nil {
			s.mu.Unlock()
			return &ConnectError{Port: port, Baud: baud, Err: ErrAlreadyConnected}
		}
		prev := s.last
		if prev == nil || isClosed(prev.done) {
			break
		}
		// the previous reader still owns the device until it exits
		s.mu.Unlock()
		<-prev.done
		s.mu.Lock()
	}
	// The lock is held across open so two racing Connect calls cannot both own a device.
	p, err := s.open(port, &serial.Mode{
		BaudRate: rate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		s.mu.Unlock()
		return &ConnectError{Port: port, Baud: baud, Err: &openError{cause: err}}
	}
	if err := p.SetReadTimeout(s.idle); err != nil {
		_ = p.Close()
		s.mu.Unlock()
		return &ConnectError{Port: port, Baud: baud, Err: &openError{cause: fmt.Errorf("set read timeout: %w", err)}}
	}
	if err := p.ResetInputBuffer(); err != nil {
		Warnf("connect %s: discard input backlog: %v", port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &connection{
		id:     uuid.NewString(),
		name:   port,
		baud:   rate,
		since:  time.Now(),
		port:   p,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.conn = c
	s.last = c
	s.lastErr = nil
	s.enqueueLocked(s.statusLocked())
	s.mu.Unlock()

	Infof("[%s] connected to %s @ %d bps", c.tag(), port, rate)
	go s.run(ctx, c)
	return nil
}

// run is the reader goroutine for one connection.
func (s *Session) run(ctx context.Context, c *connection) {
	err := readLoop(ctx, c.port, s.sink, c.tag())

	s.mu.Lock()
	owned := s.conn == c
	if owned {
		// The loop died on its own: the device went away or a read failed.
		s.conn = nil
		if err != nil {
			s.lastErr = fmt.Errorf("read %s: %w", c.name, err)
		}
		s.enqueueLocked(s.statusLocked())
	}
	s.mu.Unlock()

	if cerr := c.close(); cerr != nil && owned {
		Debugf("[%s] close after read failure: %v", c.tag(), cerr)
	}
	c.cancel()
	close(c.done)

	if owned {
		Warnf("[%s] reader stopped, session disconnected: %v", c.tag(), err)
	}
}

// Disconnect stops the reader and releases the device. Calling it while disconnected
// only waits for a reader that is still shutting down. Collected samples are left alone.
func (s *Session) Disconnect() {
	s.mu.Lock()
	c := s.conn
	if c == nil {
		prev := s.last
		s.mu.Unlock()
		if prev != nil {
			<-prev.done
		}
		return
	}
	s.conn = nil
	s.enqueueLocked(s.statusLocked())
	s.mu.Unlock()

	c.cancel()
	if err := c.close(); err != nil {
		Warnf("[%s] close %s: %v", c.tag(), c.name, err)
	}
	<-c.done
	Infof("[%s] disconnected from %s after %s", c.tag(), c.name, time.Since(c.since).Round(time.Millisecond))
}

// Close is Disconnect for use with defer and io.Closer.
func (s *Session) Close() error {
	s.Disconnect()
	return nil
}

// enqueueLocked records a transition. s.mu must be held so queue order is state order.
func (s *Session) enqueueLocked(st Status) {
	s.events = append(s.events, st)
	if !s.dispatching {
		s.dispatching = true
		go s.dispatch()
	}
}

func (s *Session) dispatch() {
	for {
		s.mu.Lock()
		if len(s.events) == 0 {
			s.dispatching = false
			s.mu.Unlock()
			return
		}
		st := s.events[0]
		s.events = s.events[1:]
		ls := make([]func(Status), len(s.listeners))
		copy(ls, s.listeners)
		s.mu.Unlock()
		for _, fn := range ls {
			fn(st)
		}
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
