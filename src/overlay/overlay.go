package overlay

import (
	"context"
	"errors"

	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/region"
)

// Request is what a selection surface receives after a capture: a PNG data
// URI of the whole canvas and the monitor layout the preview was built from.
type Request struct {
	Preview string
	Layout  compositor.Layout
}

// Selector defines a synchronous selection API owned by the event loop.
// The call is blocking and MUST be invoked only from the single event-loop goroutine.
// Returns (selection, cancelled, error). If cancelled is true, selection is undefined and err is nil.
type Selector interface {
	Select(ctx context.Context, req Request) (region.Selection, bool, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(ctx context.Context, req Request) (region.Selection, bool, error)

func (f SelectorFunc) Select(ctx context.Context, req Request) (region.Selection, bool, error) {
	return f(ctx, req)
}

// Fixed answers every request with the same selection. It backs the tray
// menu, the hotkey and the CLI, where the choice is made before capture.
type Fixed struct {
	Selection region.Selection
}

func (f Fixed) Select(ctx context.Context, req Request) (region.Selection, bool, error) {
	if err := ctx.Err(); err != nil {
		return region.Selection{}, false, err
	}
	if f.Selection.Kind == region.KindMonitor && f.Selection.Monitor >= len(req.Layout.Monitors) {
		return region.Selection{}, false, errors.Join(region.ErrInvalidMonitorIndex,
			errors.New("requested monitor is not in the captured layout"))
	}
	return f.Selection, false, nil
}
