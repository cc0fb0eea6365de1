package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/iafilius/SerialPlotter/src/export"
	"github.com/iafilius/SerialPlotter/src/monitor"
)

// printSink writes each sample as a CSV row and signals done after limit rows.
type printSink struct {
	mu    sync.Mutex
	w     io.Writer
	n     int
	limit int
	done  chan struct{}
}

func newPrintSink(w io.Writer, limit int) *printSink {
	return &printSink{w: w, limit: limit, done: make(chan struct{})}
}

func (p *printSink) Append(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limit > 0 && p.n >= p.limit {
		return
	}
	fmt.Fprintf(p.w, "%s,%s\n", export.FormatValue(x), export.FormatValue(y))
	p.n++
	if p.limit > 0 && p.n == p.limit {
		close(p.done)
	}
}

func main() {
	var port, baud, level string
	var list bool
	var limit int
	flag.StringVar(&port, "port", "", "Serial device to read")
	flag.StringVar(&baud, "baud", strconv.Itoa(monitor.DefaultBaud), "Baud rate")
	flag.BoolVar(&list, "list", false, "List serial ports and exit")
	flag.IntVar(&limit, "n", 0, "Stop after n samples (0 = until interrupted)")
	flag.StringVar(&level, "log-level", "warn", "Log level: debug|info|warn|error")
	flag.Parse()
	monitor.SetLogLevel(level)

	if list {
		ports, err := monitor.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p.Label())
		}
		fmt.Fprintf(os.Stderr, "Total ports: %d\n", len(ports))
		return
	}

	out := newPrintSink(os.Stdout, limit)
	sess := monitor.NewSession(out, monitor.SessionOptions{})
	lost := make(chan monitor.Status, 1)
	sess.OnChange(func(st monitor.Status) {
		if st.State == monitor.Disconnected {
			select {
			case lost <- st:
			default:
			}
		}
	})
	if err := sess.Connect(port, baud); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(export.CSVHeader[0] + "," + export.CSVHeader[1])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := 0
	select {
	case <-ctx.Done():
	case <-out.done:
	case st := <-lost:
		fmt.Fprintf(os.Stderr, "error: %v\n", st)
		code = 1
	}
	stop()
	sess.Close()
	os.Exit(code)
}
