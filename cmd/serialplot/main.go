package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/SerialPlotter/cmd/serialplot/uihelpers"
	"github.com/iafilius/SerialPlotter/src/export"
	"github.com/iafilius/SerialPlotter/src/monitor"
	"github.com/iafilius/SerialPlotter/src/render"
	"github.com/iafilius/SerialPlotter/src/samples"
)

type uiState struct {
	app    fyne.App
	window fyne.Window
	cfg    config

	buf     *samples.Buffer
	session *monitor.Session
	opts    *render.Options
	view    *render.ChartView
	cycle   *render.Cycle

	// port picker label -> device name
	portNames map[string]string

	// widgets
	portSelect  *widget.Select
	baudEntry   *widget.SelectEntry
	connectBtn  *widget.Button
	pauseBtn    *widget.Button
	invertChk   *widget.Check
	lineChk     *widget.Check
	statusLabel *widget.Label
	countLabel  *widget.Label
	chartImg    *canvas.Image
}

// dark theme wrapper
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "serialplot: %v\n", err)
		os.Exit(2)
	}
	if !monitor.SetLogLevel(cfg.logLevel) {
		monitor.Warnf("unknown log level %q, keeping %s", cfg.logLevel, monitor.GetLogLevel())
	}

	if cfg.headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := RunHeadless(ctx, cfg, nil); err != nil {
			fmt.Fprintf(os.Stderr, "serialplot: %v\n", err)
			os.Exit(1)
		}
		return
	}

	a := app.NewWithID("com.serialplot.viewer")
	a.Settings().SetTheme(&darkTheme{})
	w := a.NewWindow("Serial XY Plotter")
	w.Resize(fyne.NewSize(1200, 760))

	state := &uiState{
		app:       a,
		window:    w,
		cfg:       cfg,
		buf:       samples.NewBuffer(cfg.retain),
		opts:      cfg.displayOptions(),
		portNames: map[string]string{},
	}
	loadPrefs(state)
	state.session = monitor.NewSession(state.buf, monitor.SessionOptions{Idle: cfg.idle})

	state.chartImg = canvas.NewImageFromImage(render.Blank(render.DefaultWidth, render.DefaultHeight))
	state.chartImg.FillMode = canvas.ImageFillContain
	state.chartImg.SetMinSize(fyne.NewSize(640, 360))
	state.view = render.NewChartView(render.DefaultWidth, render.DefaultHeight, func(img image.Image) {
		fyne.Do(func() {
			state.chartImg.Image = img
			state.chartImg.Refresh()
		})
	})
	state.cycle = render.NewCycle(state.buf, state.opts, state.view, cfg.maxPoints)

	// connection bar
	state.portSelect = widget.NewSelect(nil, nil)
	state.portSelect.PlaceHolder = "Select port"
	refreshBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() { refreshPorts(state) })
	state.baudEntry = widget.NewSelectEntry(uihelpers.BaudChoices(monitor.CommonBaudRates))
	state.baudEntry.SetText(cfg.baud)
	state.connectBtn = widget.NewButton(uihelpers.ConnectButtonLabel(false), func() { toggleConnect(state) })

	// display toggles
	state.invertChk = widget.NewCheck("Invert axes", nil)
	state.invertChk.SetChecked(state.opts.InvertAxes())
	state.lineChk = widget.NewCheck("Connect points", nil)
	state.lineChk.SetChecked(state.opts.LineStyle())
	state.pauseBtn = widget.NewButton(uihelpers.PauseButtonLabel(false), func() { togglePause(state) })
	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() { clearData(state) })
	csvBtn := widget.NewButtonWithIcon("CSV…", theme.DocumentSaveIcon(), func() { saveCSVDialog(state) })
	imgBtn := widget.NewButtonWithIcon("Image…", theme.DocumentSaveIcon(), func() { saveImageDialog(state) })

	state.statusLabel = widget.NewLabel(state.session.Status().String())
	state.countLabel = widget.NewLabel(uihelpers.SampleCountText(0, 0))

	top := container.NewVBox(
		container.NewHBox(
			widget.NewLabel("Port:"), state.portSelect, refreshBtn,
			widget.NewLabel("Baud:"), state.baudEntry,
			state.connectBtn,
		),
		container.NewHBox(
			state.invertChk, state.lineChk, state.pauseBtn, clearBtn,
			widget.NewSeparator(), csvBtn, imgBtn,
		),
	)
	bottom := container.NewHBox(state.statusLabel, widget.NewSeparator(), state.countLabel)
	w.SetContent(container.NewBorder(top, bottom, nil, nil, state.chartImg))

	// wire callbacks after every widget exists
	state.invertChk.OnChanged = func(b bool) { state.opts.SetInvertAxes(b); savePrefs(state) }
	state.lineChk.OnChanged = func(b bool) { state.opts.SetLineStyle(b); savePrefs(state) }
	state.session.OnChange(func(st monitor.Status) {
		fyne.Do(func() { applyStatus(state, st) })
	})

	buildMenus(state)
	refreshPorts(state)
	if cfg.port != "" {
		selectPort(state, cfg.port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.SetOnClosed(func() {
		savePrefs(state)
		cancel()
		_ = state.session.Close()
	})
	go renderLoop(ctx, state)

	w.ShowAndRun()
}

// renderLoop drives the render cycle and follows window resizes.
func renderLoop(ctx context.Context, state *uiState) {
	lastCount, lastShown := -1, -1
	render.RunTicker(ctx, state.cfg.interval, func() {
		if c := state.window.Canvas(); c != nil {
			sz := c.Size()
			scale := c.Scale()
			if scale <= 0 {
				scale = 1
			}
			// leave room for the two toolbars and the status bar
			w, h := uihelpers.ComputeChartDimensions(int(sz.Width*scale), int((sz.Height-120)*scale))
			if cw, ch := state.view.Size(); cw != w || ch != h {
				state.view.SetSize(w, h)
				state.cycle.Invalidate()
			}
		}
		state.cycle.Tick()

		n := state.buf.Len()
		shown := n
		if f, ok := state.cycle.LastFrame(); ok {
			shown = len(f.Xs)
		}
		if n != lastCount || shown != lastShown {
			lastCount, lastShown = n, shown
			fyne.Do(func() { state.countLabel.SetText(uihelpers.SampleCountText(n, shown)) })
		}
	})
}

func applyStatus(state *uiState, st monitor.Status) {
	connected := st.State == monitor.Connected
	state.connectBtn.SetText(uihelpers.ConnectButtonLabel(connected))
	if connected {
		state.connectBtn.Importance = widget.DangerImportance
		state.portSelect.Disable()
		state.baudEntry.Disable()
	} else {
		state.connectBtn.Importance = widget.MediumImportance
		state.portSelect.Enable()
		state.baudEntry.Enable()
	}
	state.connectBtn.Refresh()
	state.statusLabel.SetText(st.String())
}

func toggleConnect(state *uiState) {
	if state.session.State() == monitor.Connected {
		state.session.Disconnect()
		return
	}
	port := state.portNames[state.portSelect.Selected]
	if port == "" {
		port = state.portSelect.Selected
	}
	if err := state.session.Connect(port, state.baudEntry.Text); err != nil {
		monitor.Warnf("%v", err)
		dialog.ShowError(err, state.window)
	}
}

func refreshPorts(state *uiState) {
	ports, err := monitor.ListPorts()
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	prev := state.portNames[state.portSelect.Selected]
	state.portNames = make(map[string]string, len(ports))
	labels := make([]string, 0, len(ports))
	for _, p := range ports {
		l := p.Label()
		state.portNames[l] = p.Name
		labels = append(labels, l)
	}
	state.portSelect.SetOptions(labels)
	monitor.Debugf("found %d serial ports", len(ports))
	if prev != "" {
		selectPort(state, prev)
	} else if len(labels) == 1 {
		state.portSelect.SetSelected(labels[0])
	}
}

// selectPort picks the entry for device name, adding it when enumeration missed it.
func selectPort(state *uiState, name string) {
	for label, n := range state.portNames {
		if n == name {
			state.portSelect.SetSelected(label)
			return
		}
	}
	state.portNames[name] = name
	state.portSelect.SetOptions(append(state.portSelect.Options, name))
	state.portSelect.SetSelected(name)
}

func togglePause(state *uiState) {
	paused := state.opts.TogglePause()
	state.pauseBtn.SetText(uihelpers.PauseButtonLabel(paused))
}

func clearData(state *uiState) {
	state.cycle.Clear()
	state.countLabel.SetText(uihelpers.SampleCountText(0, 0))
	monitor.Infof("sample buffer cleared")
}

func saveCSVDialog(state *uiState) {
	if state.buf.Len() == 0 {
		dialog.ShowInformation("Save CSV", "No data to export.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		xs, ys := state.buf.Snapshot()
		if err := export.CSV(path, xs, ys); err != nil {
			showExportError(state, err)
			return
		}
		dialog.ShowInformation("Save CSV", uihelpers.SavedMessage(path, len(xs)), state.window)
	}, state.window)
	fs.SetFileName(uihelpers.DefaultExportName("serial_data", ".csv", time.Now()))
	fs.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fs.Show()
}

func saveImageDialog(state *uiState) {
	f, ok := state.cycle.LastFrame()
	if !ok {
		dialog.ShowInformation("Save Image", "No chart to export.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if err := export.Image(path, f); err != nil {
			if errors.Is(err, export.ErrUnsupportedFormat) {
				_ = os.Remove(path)
			}
			showExportError(state, err)
			return
		}
		dialog.ShowInformation("Save Image", uihelpers.SavedMessage(path, len(f.Xs)), state.window)
	}, state.window)
	fs.SetFileName(uihelpers.DefaultExportName("serial_plot", ".png", time.Now()))
	fs.SetFilter(storage.NewExtensionFileFilter(export.ImageFormats))
	fs.Show()
}

func showExportError(state *uiState, err error) {
	monitor.Errorf("%v", err)
	var ee *export.Error
	if errors.As(err, &ee) {
		err = fmt.Errorf("could not save %s: %w", uihelpers.TruncatePath(filepath.Clean(ee.Path), 60), ee.Err)
	}
	dialog.ShowError(err, state.window)
}

// menus and shortcuts
func buildMenus(state *uiState) {
	if state == nil || state.window == nil {
		return
	}
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Save CSV…", func() { saveCSVDialog(state) }),
		fyne.NewMenuItem("Save Image…", func() { saveImageDialog(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	connMenu := fyne.NewMenu("Connection",
		fyne.NewMenuItem("Refresh Ports", func() { refreshPorts(state) }),
		fyne.NewMenuItem("Connect / Disconnect", func() { toggleConnect(state) }),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Invert Axes", func() { state.invertChk.SetChecked(!state.invertChk.Checked) }),
		fyne.NewMenuItem("Connect Points", func() { state.lineChk.SetChecked(!state.lineChk.Checked) }),
		fyne.NewMenuItem("Pause / Resume", func() { togglePause(state) }),
		fyne.NewMenuItem("Clear", func() { clearData(state) }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, connMenu, viewMenu))

	canv := state.window.Canvas()
	if canv == nil {
		return
	}
	bind := func(key fyne.KeyName, fn func()) {
		for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
		}
	}
	bind(fyne.KeyS, func() { saveCSVDialog(state) })
	bind(fyne.KeyE, func() { saveImageDialog(state) })
	bind(fyne.KeyP, func() { togglePause(state) })
	bind(fyne.KeyL, func() { clearData(state) })
	bind(fyne.KeyW, func() { state.window.Close() })
}

// prefs hold display toggles only; connection settings always come from the UI or flags.
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetBool("invertAxes", state.opts.InvertAxes())
	prefs.SetBool("lineStyle", state.opts.LineStyle())
}

// loadPrefs restores saved toggles unless the command line set them.
func loadPrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	if !state.cfg.explicit["invert"] {
		state.opts.SetInvertAxes(prefs.BoolWithFallback("invertAxes", state.opts.InvertAxes()))
	}
	if !state.cfg.explicit["points-only"] {
		state.opts.SetLineStyle(prefs.BoolWithFallback("lineStyle", state.opts.LineStyle()))
	}
}
