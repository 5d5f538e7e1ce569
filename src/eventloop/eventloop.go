package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sprintrstudio/openCap/src/hotkey"
	"github.com/sprintrstudio/openCap/src/notification"
	"github.com/sprintrstudio/openCap/src/overlay"
	"github.com/sprintrstudio/openCap/src/region"
	"github.com/sprintrstudio/openCap/src/session"
	"github.com/sprintrstudio/openCap/src/singleinstance"
	"github.com/sprintrstudio/openCap/src/tray"
	"github.com/sprintrstudio/openCap/src/worker"
)

var ErrBusy = errors.New("Busy, please retry")

// Loop is the single-threaded coordinator for run-once, tray and hotkey flows.
type Loop struct {
	base           session.Options
	pool           *worker.Pool
	srv            singleinstance.Server
	newServer      func() singleinstance.Server
	results        chan result
	triggers       chan region.Selection
	defaultSel     region.Selection
	defaultTooltip string
	status         func(string)
}

type result struct {
	res    session.Result
	err    error
	target resultTarget
}

// resultTarget is notified and closed on the loop goroutine once the
// worker posts the session outcome back.
type resultTarget interface {
	session.ResultTarget
	Close()
}

// interactiveTarget reports tray and hotkey outcomes to the user.
type interactiveTarget struct{}

func (interactiveTarget) OnSuccess(res session.Result) error {
	if res.Path != "" {
		log.Printf("Capture saved to %s", res.Path)
	}
	return nil
}

func (interactiveTarget) OnFailure(err error) error {
	if title, ok := failureTitle(err); ok {
		notification.Info(title, err.Error())
	}
	return nil
}

// failureTitle picks the notification title for a failed session; ok is
// false when the user cancelled and nothing should be shown.
func failureTitle(err error) (string, bool) {
	switch {
	case errors.Is(err, session.ErrSelectionCancelled):
		return "", false
	case errors.Is(err, ErrBusy):
		return "Capture in progress", true
	case region.IsSelectionError(err):
		return "Selection rejected", true
	default:
		return "Capture failed", true
	}
}

func (interactiveTarget) Close() {}

type delegatedTarget struct {
	session.DelegatedTarget
}

func (t delegatedTarget) Close() {
	if t.Conn != nil {
		_ = t.Conn.Close()
	}
}

// New creates an event loop running sessions with base options. defaultSel
// is what the hotkey captures.
func New(base session.Options, defaultSel region.Selection) *Loop {
	l := &Loop{
		base:           base,
		newServer:      singleinstance.NewServer,
		results:        make(chan result, 1),
		triggers:       make(chan region.Selection, 4),
		defaultSel:     defaultSel,
		defaultTooltip: "OpenCap",
		status:         tray.UpdateTooltip,
	}
	l.pool = worker.New(l.runSession)
	return l
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// Trigger asks the loop to capture sel. It never blocks; triggers beyond
// the small buffer are dropped.
func (l *Loop) Trigger(sel region.Selection) {
	select {
	case l.triggers <- sel:
	default:
		log.Printf("Eventloop: trigger %s dropped, queue full", sel)
	}
}

// StartHotkey registers a global hotkey that triggers the default selection.
func (l *Loop) StartHotkey(combo string) error {
	if combo == "" {
		return nil
	}
	return hotkey.Listen(combo, func() { l.Trigger(l.defaultSel) })
}

// Run starts the singleinstance server and processes requests until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = l.newServer()
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", p))
	}
	defer l.pool.Close()

	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		defer close(reqCh)
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sel := <-l.triggers:
			l.startRequest(ctx, sel, interactiveTarget{})
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.startRequest(ctx, conn.Request().Selection, delegatedTarget{session.DelegatedTarget{Conn: conn}})
		case r := <-l.results:
			l.handleResult(r)
		}
	}
}

func (l *Loop) startRequest(ctx context.Context, sel region.Selection, target resultTarget) {
	submitted := l.pool.Submit(ctx, sel, func(res session.Result, err error) {
		select {
		case l.results <- result{res: res, err: err, target: target}:
		case <-ctx.Done():
			target.Close()
		}
	})
	if !submitted {
		log.Printf("Eventloop: busy, rejecting %s", sel)
		_ = target.OnFailure(ErrBusy)
		target.Close()
		return
	}
	l.setStatus(fmt.Sprintf("%s: capturing %s...", l.defaultTooltip, sel))
}

// runSession runs on the worker goroutine.
func (l *Loop) runSession(ctx context.Context, sel region.Selection) (session.Result, error) {
	opts := l.base
	opts.Target = nil
	return session.Execute(ctx, opts, overlay.Fixed{Selection: sel})
}

func (l *Loop) handleResult(r result) {
	defer l.setStatus(l.defaultTooltip)
	if r.target == nil {
		log.Printf("Eventloop: result without target, err=%v", r.err)
		return
	}
	defer r.target.Close()

	if r.err != nil {
		log.Printf("Eventloop: session failed: %v", r.err)
		_ = r.target.OnFailure(r.err)
		return
	}
	log.Printf("Eventloop: session finalized %dx%d %s", r.res.Width, r.res.Height, r.res.Path)
	if err := r.target.OnSuccess(r.res); err != nil {
		log.Printf("Eventloop: delivery error: %v", err)
		_ = r.target.OnFailure(err)
	}
}

func (l *Loop) setStatus(text string) {
	if l.status != nil {
		l.status(text)
	}
}
