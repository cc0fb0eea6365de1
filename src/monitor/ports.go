package monitor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaud is preselected in the UI and used when -baud is omitted.
const DefaultBaud = 9600

// CommonBaudRates are offered in the baud selector. Any positive integer is accepted.
var CommonBaudRates = []int{9600, 14400, 19200, 38400, 57600, 115200, 230400, 250000}

// PortInfo describes one serial device found on the host.
type PortInfo struct {
	Name    string
	Product string
	IsUSB   bool
	VID     string
	PID     string
	Serial  string
}

// Label is the text shown in port pickers, e.g. "/dev/ttyACM0 (Arduino Uno 2341:0043)".
func (p PortInfo) Label() string {
	if !p.IsUSB {
		return p.Name
	}
	var extra []string
	if p.Product != "" {
		extra = append(extra, p.Product)
	}
	if p.VID != "" || p.PID != "" {
		extra = append(extra, strings.ToLower(p.VID)+":"+strings.ToLower(p.PID))
	}
	if len(extra) == 0 {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, strings.Join(extra, " "))
}

// ListPorts enumerates serial devices sorted by name. USB details are included when
// the platform enumerator provides them.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		out := make([]PortInfo, 0, len(details))
		for _, d := range details {
			out = append(out, PortInfo{
				Name:    d.Name,
				Product: d.Product,
				IsUSB:   d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
			})
		}
		sortPorts(out)
		return out, nil
	}
	Debugf("detailed port enumeration failed, falling back to names: %v", err)
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n})
	}
	sortPorts(out)
	return out, nil
}

func sortPorts(ps []PortInfo) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
}

// ParseBaud validates a user-entered baud rate.
func ParseBaud(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBaud, s)
	}
	return n, nil
}
