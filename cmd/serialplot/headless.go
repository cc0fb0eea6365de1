package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iafilius/SerialPlotter/src/export"
	"github.com/iafilius/SerialPlotter/src/monitor"
	"github.com/iafilius/SerialPlotter/src/render"
	"github.com/iafilius/SerialPlotter/src/samples"
)

// RunHeadless connects without a window, collects samples until cfg.duration passes,
// ctx is cancelled or the device goes away, then writes the requested exports.
// open may be nil to use the real serial driver.
func RunHeadless(ctx context.Context, cfg config, open monitor.Opener) error {
	buf := samples.NewBuffer(cfg.retain)
	sess := monitor.NewSession(buf, monitor.SessionOptions{Opener: open, Idle: cfg.idle})

	lost := make(chan monitor.Status, 1)
	sess.OnChange(func(st monitor.Status) {
		if st.State == monitor.Disconnected {
			select {
			case lost <- st:
			default:
			}
		}
	})
	if err := sess.Connect(cfg.port, cfg.baud); err != nil {
		return err
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()
	var readErr error
	select {
	case <-timer.C:
	case <-ctx.Done():
		monitor.Infof("headless capture interrupted")
	case st := <-lost:
		readErr = st.LastErr
		monitor.Warnf("headless capture ended early: %v", st)
	}
	sess.Close()

	xs, ys := buf.Snapshot()
	monitor.Infof("headless capture collected %d samples", len(xs))

	var errs []error
	if readErr != nil {
		errs = append(errs, readErr)
	}
	if cfg.csvPath != "" {
		if err := export.CSV(cfg.csvPath, xs, ys); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.imgPath != "" {
		f := render.BuildFrame(xs, ys, cfg.displayOptions().Values(), cfg.maxPoints)
		if err := export.Image(cfg.imgPath, f); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("headless capture: %w", errors.Join(errs...))
	}
	return nil
}
