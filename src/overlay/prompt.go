package overlay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/manifoldco/promptui"

	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/region"
)

// Prompt asks on a terminal which part of the captured canvas to keep.
// Nil Stdin/Stdout use the process terminal.
type Prompt struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

type choice struct {
	label     string
	selection region.Selection
	custom    bool
	cancel    bool
}

func choices(layout compositor.Layout) []choice {
	out := []choice{{
		label:     fmt.Sprintf("Full canvas (%dx%d)", layout.VirtualWidth, layout.VirtualHeight),
		selection: region.Full(),
	}}
	for i, d := range layout.Monitors {
		out = append(out, choice{
			label:     fmt.Sprintf("Monitor %d: %dx%d at (%d,%d)", i, d.Width, d.Height, d.X, d.Y),
			selection: region.Monitor(i),
		})
	}
	return append(out,
		choice{label: "Region (x,y,w,h in canvas pixels)", custom: true},
		choice{label: "Cancel", cancel: true},
	)
}

// parseRegion accepts "x,y,w,h" relative to the canvas origin and rejects
// rectangles that cannot fit the canvas.
func parseRegion(text string, layout compositor.Layout) (region.Selection, error) {
	sel, err := region.ParseSelection("region:" + text)
	if err != nil {
		return region.Selection{}, err
	}
	if err := region.ValidateRegion(sel.X, sel.Y, sel.W, sel.H, layout.VirtualWidth, layout.VirtualHeight); err != nil {
		return region.Selection{}, err
	}
	return sel, nil
}

func (p Prompt) Select(ctx context.Context, req Request) (region.Selection, bool, error) {
	if err := ctx.Err(); err != nil {
		return region.Selection{}, false, err
	}
	items := choices(req.Layout)
	labels := make([]string, len(items))
	for i, c := range items {
		labels[i] = c.label
	}

	sel := promptui.Select{
		Label:  "Capture",
		Items:  labels,
		Size:   len(labels),
		Stdin:  p.Stdin,
		Stdout: p.Stdout,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return promptResult(err)
	}
	picked := items[idx]
	switch {
	case picked.cancel:
		return region.Selection{}, true, nil
	case !picked.custom:
		return picked.selection, false, nil
	}

	var parsed region.Selection
	in := promptui.Prompt{
		Label:  "Region x,y,w,h",
		Stdin:  p.Stdin,
		Stdout: p.Stdout,
		Validate: func(text string) error {
			var err error
			parsed, err = parseRegion(text, req.Layout)
			return err
		},
	}
	text, err := in.Run()
	if err != nil {
		return promptResult(err)
	}
	if parsed, err = parseRegion(text, req.Layout); err != nil {
		return region.Selection{}, false, err
	}
	log.Printf("Overlay: prompt selected %s", parsed)
	return parsed, false, nil
}

// Ctrl+C, Ctrl+D and Esc all mean the user backed out.
func promptResult(err error) (region.Selection, bool, error) {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return region.Selection{}, true, nil
	}
	return region.Selection{}, false, fmt.Errorf("selection prompt failed: %w", err)
}
