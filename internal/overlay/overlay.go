// Package overlay provides a floating status window for the voice pipeline.
package overlay

import (
	"image/color"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/mofa-org/mofa-input/internal/i18n"
)

// State represents the window display state.
type State int

const (
	StateRecording    State = iota // Waveform and timer
	StateTranscribing              // Spinner and live transcript preview
	StatePolishing                 // Spinner and streaming polished text
	StateError                     // Error message
)

// SampleProvider provides audio samples for visualization.
type SampleProvider interface {
	GetSamples() []float32
	IsRecording() bool
}

// Config holds window configuration.
type Config struct {
	Width        int           // Window width in pixels
	Height       int           // Window height in pixels
	RefreshRate  time.Duration // Refresh interval
	BGColor      color.NRGBA   // Background color
	WaveColor    color.NRGBA   // Waveform color
	VolumeColor  color.NRGBA   // Volume bar color
	TextColor    color.NRGBA   // Text color
	TextDimColor color.NRGBA   // Dim text color
	AccentColor  color.NRGBA   // Accent color (spinner)
	ErrorColor   color.NRGBA   // Error text color
	PanelColor   color.NRGBA   // Panel background
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Width:        360,
		Height:       100,
		RefreshRate:  33 * time.Millisecond, // ~30fps
		BGColor:      color.NRGBA{R: 30, G: 30, B: 34, A: 245},
		WaveColor:    color.NRGBA{R: 80, G: 200, B: 120, A: 255},
		VolumeColor:  color.NRGBA{R: 255, G: 100, B: 100, A: 255},
		TextColor:    color.NRGBA{R: 240, G: 240, B: 245, A: 255},
		TextDimColor: color.NRGBA{R: 140, G: 140, B: 150, A: 255},
		AccentColor:  color.NRGBA{R: 88, G: 166, B: 255, A: 255},
		ErrorColor:   color.NRGBA{R: 255, G: 110, B: 110, A: 255},
		PanelColor:   color.NRGBA{R: 45, G: 45, B: 50, A: 255},
	}
}

// Window manages the floating status window. It is display-only:
// all interaction happens through the hotkey and the tray.
type Window struct {
	mu        sync.Mutex
	provider  SampleProvider
	config    Config
	startTime time.Time
	state     State
	preview   string
	errText   string

	window  *app.Window
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a status window with the given sample provider.
func New(provider SampleProvider, cfg Config) *Window {
	return &Window{
		provider: provider,
		config:   cfg,
	}
}

// Show displays the window in recording state (non-blocking).
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		// Window already visible - reset to recording state
		w.state = StateRecording
		w.startTime = time.Now()
		w.preview = ""
		w.errText = ""
		if w.window != nil {
			w.window.Invalidate()
		}
		return
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.startTime = time.Now()
	w.state = StateRecording
	w.preview = ""
	w.errText = ""

	go w.runEventLoop()
}

// Hide closes the window.
func (w *Window) Hide() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh := w.stopCh
	doneCh := w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}

	// Wait for window to close
	if doneCh != nil {
		select {
		case <-doneCh:
		case <-time.After(time.Second):
		}
	}
}

// SetState changes the window display state. Transcribing and
// Polishing reset the preview text.
func (w *Window) SetState(state State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if state != w.state {
		w.preview = ""
	}
	w.state = state
	if w.window != nil {
		w.window.Invalidate()
	}
}

// SetPreview replaces the preview text (accumulated transcript segments).
func (w *Window) SetPreview(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preview = text
	if w.window != nil {
		w.window.Invalidate()
	}
}

// AppendToken appends a streaming LLM token to the preview.
func (w *Window) AppendToken(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preview += token
	if w.window != nil {
		w.window.Invalidate()
	}
}

// ShowError switches to the error state with the given message.
func (w *Window) ShowError(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateError
	w.errText = msg
	if w.window != nil {
		w.window.Invalidate()
	}
}

// IsVisible returns true if the window is currently shown.
func (w *Window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Window) runEventLoop() {
	w.mu.Lock()
	stopCh := w.stopCh
	doneCh := w.doneCh
	if stopCh == nil {
		// Hide успел сработать до старта цикла
		w.mu.Unlock()
		close(doneCh)
		return
	}

	win := new(app.Window)
	win.Option(
		app.Title("MoFA Input"),
		app.Size(unit.Dp(w.config.Width), unit.Dp(w.config.Height)),
		app.Decorated(false), // Borderless
	)

	// Окно публикуется под мьютексом: Invalidate из сеттеров
	// может прийти из горутины пайплайна сразу после Show
	w.window = win
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.window = nil
		w.mu.Unlock()
		close(doneCh)
	}()

	var ops op.Ops

	// Timer for periodic redraws
	ticker := time.NewTicker(w.config.RefreshRate)
	defer ticker.Stop()

	// Invalidation and close goroutine
	go func() {
		for {
			select {
			case <-stopCh:
				win.Perform(system.ActionClose)
				return
			case <-ticker.C:
				win.Invalidate()
			}
		}
	}()

	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			w.mu.Lock()
			startTime := w.startTime
			state := w.state
			preview := w.preview
			errText := w.errText
			w.mu.Unlock()

			elapsed := time.Since(startTime)

			switch state {
			case StateTranscribing:
				drawStage(gtx, elapsed, w.config, i18n.T("overlay_transcribing"), preview)
			case StatePolishing:
				drawStage(gtx, elapsed, w.config, i18n.T("overlay_polishing"), preview)
			case StateError:
				drawError(gtx, w.config, i18n.T("overlay_error"), errText)
			default:
				var samples []float32
				if w.provider != nil {
					samples = w.provider.GetSamples()
				}
				drawRecording(gtx, samples, elapsed, w.config)
			}

			e.Frame(gtx.Ops)
		}
	}
}
