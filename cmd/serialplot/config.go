package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iafilius/SerialPlotter/src/monitor"
	"github.com/iafilius/SerialPlotter/src/render"
)

// config holds the command line settings.
type config struct {
	port      string
	baud      string
	logLevel  string
	interval  time.Duration
	idle      time.Duration
	maxPoints int
	retain    int

	headless bool
	duration time.Duration
	csvPath  string
	imgPath  string

	invert     bool
	pointsOnly bool

	// flags given on the command line, by name
	explicit map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("serialplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.port, "port", "", "Serial device to open (e.g. /dev/ttyACM0 or COM3)")
	fs.StringVar(&cfg.baud, "baud", strconv.Itoa(monitor.DefaultBaud), "Baud rate")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.DurationVar(&cfg.interval, "interval", render.DefaultInterval, "Chart redraw period")
	fs.DurationVar(&cfg.idle, "idle", monitor.DefaultIdle, "Serial read timeout between polls")
	fs.IntVar(&cfg.maxPoints, "max-points", render.MaxPointsDisplay, "Plot only the newest N samples (0 = all)")
	fs.IntVar(&cfg.retain, "retain", 0, "Keep only the newest N samples in memory (0 = unbounded)")
	fs.BoolVar(&cfg.headless, "headless", false, "Capture without a window, then export (needs -port)")
	fs.DurationVar(&cfg.duration, "duration", 10*time.Second, "Headless capture length")
	fs.StringVar(&cfg.csvPath, "csv", "", "Headless: write samples to this CSV file")
	fs.StringVar(&cfg.imgPath, "image", "", "Headless: write the chart to this file (.png, .svg, .pdf, .eps)")
	fs.BoolVar(&cfg.invert, "invert", false, "Start with axes inverted")
	fs.BoolVar(&cfg.pointsOnly, "points-only", false, "Start with markers only (no connecting line)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.explicit = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { cfg.explicit[f.Name] = true })
	if cfg.maxPoints < 0 || cfg.retain < 0 {
		return cfg, fmt.Errorf("-max-points and -retain must not be negative")
	}
	if cfg.headless {
		if cfg.port == "" {
			return cfg, fmt.Errorf("-headless requires -port")
		}
		if cfg.duration <= 0 {
			return cfg, fmt.Errorf("-duration must be positive")
		}
	}
	return cfg, nil
}

// displayOptions applies the startup toggles from the command line.
func (c config) displayOptions() *render.Options {
	o := render.NewOptions()
	o.SetInvertAxes(c.invert)
	o.SetLineStyle(!c.pointsOnly)
	return o
}
