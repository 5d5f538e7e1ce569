package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sprintrstudio/openCap/src/overlay"
	"github.com/sprintrstudio/openCap/src/singleinstance"
)

// ResultTarget receives the outcome of Execute.
type ResultTarget interface {
	OnSuccess(res Result) error
	OnFailure(err error) error
}

// Execute runs one session end to end: capture, publish the preview and
// layout to sel, then finalize the choice or cancel.
func Execute(ctx context.Context, opts Options, sel overlay.Selector) (Result, error) {
	if sel == nil {
		return Result{}, errors.New("Selector is required")
	}
	target := opts.Target
	if target == nil {
		target = discardTarget{}
	}

	s := New(opts)
	res, err := run(ctx, s, sel)
	if err != nil {
		s.Cancel()
		_ = target.OnFailure(err)
		return Result{}, err
	}
	if err := target.OnSuccess(res); err != nil {
		_ = target.OnFailure(err)
		return Result{}, err
	}
	return res, nil
}

func run(ctx context.Context, s *Session, sel overlay.Selector) (Result, error) {
	if err := s.Start(); err != nil {
		return Result{}, err
	}
	preview, err := s.Preview()
	if err != nil {
		return Result{}, err
	}
	layout, err := s.Layout()
	if err != nil {
		return Result{}, err
	}

	choice, cancelled, err := sel.Select(ctx, overlay.Request{Preview: preview, Layout: layout})
	if err != nil {
		return Result{}, err
	}
	if cancelled {
		return Result{}, ErrSelectionCancelled
	}
	return s.Finalize(choice)
}

type discardTarget struct{}

func (discardTarget) OnSuccess(Result) error { return nil }
func (discardTarget) OnFailure(error) error  { return nil }

// StdoutTarget prints the saved path, or the image size when nothing was saved.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(res Result) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	var err error
	if res.Path != "" {
		_, err = fmt.Fprintln(w, res.Path)
	} else {
		_, err = fmt.Fprintf(w, "captured %dx%d (%s)\n", res.Width, res.Height, res.Selection)
	}
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// DelegatedTarget answers a run-once client over its connection.
type DelegatedTarget struct {
	Conn singleinstance.Conn
}

func (t DelegatedTarget) OnSuccess(res Result) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	return t.Conn.RespondSuccess(res.Path)
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}
