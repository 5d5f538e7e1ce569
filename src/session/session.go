// Package session runs one capture from the screen grab to the finalized
// image. A Session is single use: it captures before any selection surface
// exists, publishes the preview and layout once, and finalizes or cancels once.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/display"
	"github.com/sprintrstudio/openCap/src/history"
	"github.com/sprintrstudio/openCap/src/output"
	"github.com/sprintrstudio/openCap/src/pending"
	"github.com/sprintrstudio/openCap/src/region"
)

var (
	// ErrNoPendingData is returned when the preview or layout was already taken.
	ErrNoPendingData = errors.New("no pending data")
	// ErrNoPendingCapture is returned by a finalize with nothing left to finalize.
	ErrNoPendingCapture = errors.New("no pending capture")
	ErrAlreadyStarted   = errors.New("session already started")

	ErrSelectionCancelled = errors.New("selection cancelled")
)

type State int

const (
	Idle State = iota
	Captured
	Published
	Finalized
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Captured:
		return "captured"
	case Published:
		return "published"
	case Finalized:
		return "finalized"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Saver persists the final image and returns its location.
type Saver interface {
	Save(img image.Image) (string, error)
}

type ClipboardWriter interface {
	WriteImage(img image.Image) error
}

// Recorder appends a finalized capture to the history index.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

type PreviewFunc func(img image.Image) (string, error)

type OpenFunc func(path string) error

// Options wires a session to its collaborators. Enumerator and Grabber are
// required; every output collaborator is optional.
type Options struct {
	Enumerator    display.Enumerator
	Grabber       display.Grabber
	Resampler     compositor.Resampler
	EncodePreview PreviewFunc

	Saver     Saver
	Clipboard ClipboardWriter
	Open      OpenFunc
	History   Recorder

	// Target is notified of the outcome by Execute.
	Target ResultTarget
}

type Result struct {
	Path      string
	Width     int
	Height    int
	Selection region.Selection
	Copied    bool
	Image     *image.RGBA
}

type Session struct {
	opts Options

	// op serializes Start, Finalize and Cancel.
	op sync.Mutex

	mu           sync.Mutex
	state        State
	layout       compositor.Layout
	previewTaken bool
	layoutTaken  bool
	done         chan struct{}

	capture pending.Slot[*compositor.Canvas]
	preview pending.Slot[string]
	screens pending.Slot[compositor.Layout]
}

func New(opts Options) *Session {
	if opts.EncodePreview == nil {
		opts.EncodePreview = output.EncodePreview
	}
	return &Session{opts: opts, done: make(chan struct{})}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session reaches Finalized or Cancelled.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start enumerates and grabs every display, composes the canvas and fills
// the pending capture, preview and layout. Any failure here ends the session.
func (s *Session) Start() error {
	s.op.Lock()
	defer s.op.Unlock()

	if st := s.State(); st != Idle {
		return fmt.Errorf("%w (state %s)", ErrAlreadyStarted, st)
	}
	if s.opts.Enumerator == nil || s.opts.Grabber == nil {
		s.terminate(Cancelled)
		return errors.New("session requires an Enumerator and a Grabber")
	}

	started := time.Now()
	canvas, preview, err := s.grab()
	if err != nil {
		log.Printf("Session: capture aborted: %v", err)
		s.terminate(Cancelled)
		return err
	}

	layout := canvas.Layout()
	s.mu.Lock()
	s.layout = canvas.Layout()
	s.state = Captured
	s.mu.Unlock()

	s.capture.Put(canvas)
	s.preview.Put(preview)
	s.screens.Put(layout)

	log.Printf("Session: captured %d display(s) into %dx%d canvas at origin (%d,%d) in %v",
		len(layout.Monitors), canvas.Width(), canvas.Height(), canvas.Origin.X, canvas.Origin.Y, time.Since(started))
	return nil
}

func (s *Session) grab() (*compositor.Canvas, string, error) {
	displays, err := s.opts.Enumerator.Displays()
	if err != nil {
		return nil, "", err
	}
	frames, err := display.GrabAll(s.opts.Grabber, displays)
	if err != nil {
		return nil, "", err
	}
	canvas, err := compositor.Compose(frames, s.opts.Resampler)
	if err != nil {
		return nil, "", err
	}
	preview, err := s.opts.EncodePreview(canvas.Image)
	if err != nil {
		return nil, "", fmt.Errorf("encode preview: %w", err)
	}
	return canvas, preview, nil
}

// Preview hands out the encoded canvas exactly once.
func (s *Session) Preview() (string, error) {
	v, err := s.preview.Take()
	if err != nil {
		return "", ErrNoPendingData
	}
	s.markTaken(func() { s.previewTaken = true })
	return v, nil
}

// Layout hands out the published layout exactly once.
func (s *Session) Layout() (compositor.Layout, error) {
	v, err := s.screens.Take()
	if err != nil {
		return compositor.Layout{}, ErrNoPendingData
	}
	s.markTaken(func() { s.layoutTaken = true })
	return v, nil
}

func (s *Session) markTaken(set func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set()
	if s.state == Captured && s.previewTaken && s.layoutTaken {
		s.state = Published
	}
}

// Finalize extracts sel from the pending canvas and hands it to the outputs.
// Selection and persistence errors put the canvas back so the caller can
// choose again; a successful finalize consumes it.
func (s *Session) Finalize(sel region.Selection) (Result, error) {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	st, layout := s.state, s.layout
	s.mu.Unlock()
	if st != Captured && st != Published {
		return Result{}, fmt.Errorf("%w (state %s)", ErrNoPendingCapture, st)
	}

	canvas, err := s.capture.Take()
	if err != nil {
		return Result{}, ErrNoPendingCapture
	}

	img, err := region.Extract(canvas.Image, layout, sel)
	if err != nil {
		s.capture.Restore(canvas)
		log.Printf("Session: selection %s rejected: %v", sel, err)
		return Result{}, err
	}

	res := Result{
		Selection: sel,
		Width:     img.Rect.Dx(),
		Height:    img.Rect.Dy(),
		Image:     img,
	}
	if s.opts.Saver != nil {
		path, err := s.opts.Saver.Save(img)
		if err != nil {
			s.capture.Restore(canvas)
			return Result{}, fmt.Errorf("save screenshot: %w", err)
		}
		res.Path = path
	}
	s.deliver(&res, len(layout.Monitors))

	s.preview.Clear()
	s.screens.Clear()
	s.terminate(Finalized)
	log.Printf("Session: finalized %s as %dx%d", sel, res.Width, res.Height)
	return res, nil
}

// deliver runs the best-effort outputs. Their failures are logged only.
func (s *Session) deliver(res *Result, monitors int) {
	if s.opts.Clipboard != nil {
		if err := s.opts.Clipboard.WriteImage(res.Image); err != nil {
			log.Printf("Session: clipboard write failed: %v", err)
		} else {
			res.Copied = true
		}
	}
	if s.opts.Open != nil && res.Path != "" {
		if err := s.opts.Open(res.Path); err != nil {
			log.Printf("Session: open failed: %v", err)
		}
	}
	if s.opts.History != nil && res.Path != "" {
		_, err := s.opts.History.Record(context.Background(), history.Entry{
			Path:      res.Path,
			Selection: res.Selection.String(),
			Width:     res.Width,
			Height:    res.Height,
			Monitors:  monitors,
		})
		if err != nil {
			log.Printf("Session: history record failed: %v", err)
		}
	}
}

// Cancel drops every pending value. It always succeeds; a session that
// already finished keeps its terminal state.
func (s *Session) Cancel() {
	s.op.Lock()
	defer s.op.Unlock()

	s.capture.Clear()
	s.preview.Clear()
	s.screens.Clear()
	if st := s.State(); st == Finalized || st == Cancelled {
		return
	}
	s.terminate(Cancelled)
	log.Printf("Session: cancelled")
}

func (s *Session) terminate(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Finalized || s.state == Cancelled {
		return
	}
	s.state = st
	close(s.done)
}
