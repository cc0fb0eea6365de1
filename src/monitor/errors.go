package monitor

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

var (
	ErrNoPort           = errors.New("no serial port selected")
	ErrInvalidBaud      = errors.New("baud rate must be a positive integer")
	ErrOpenFailed       = errors.New("cannot open serial port")
	ErrAlreadyConnected = errors.New("already connected")
)

// ConnectError is returned by Session.Connect. The session state is unchanged when
// one is returned. Err chains to one of the Err* sentinels above, and for open
// failures also to the driver error.
type ConnectError struct {
	Port string
	Baud string
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("connect: %v", e.Err)
	}
	return fmt.Sprintf("connect %s @ %s: %v", e.Port, e.Baud, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// openError wraps a driver failure so errors.Is matches ErrOpenFailed and the
// driver error stays reachable through errors.As.
type openError struct {
	cause error
}

func (e *openError) Error() string {
	return fmt.Sprintf("%v: %s", ErrOpenFailed, describeOpenError(e.cause))
}

func (e *openError) Unwrap() []error { return []error{ErrOpenFailed, e.cause} }

// describeOpenError turns go.bug.st/serial error codes into the messages a user can act on.
func describeOpenError(err error) string {
	var pe *serial.PortError
	if !errors.As(err, &pe) {
		return err.Error()
	}
	switch pe.Code() {
	case serial.PortBusy:
		return "device busy (is another program using it?)"
	case serial.PortNotFound:
		return "device not found"
	case serial.PermissionDenied:
		return "permission denied"
	case serial.InvalidSpeed:
		return "baud rate not supported by the device"
	case serial.InvalidSerialPort:
		return "not a serial port"
	}
	return pe.Error()
}
