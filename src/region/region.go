// Package region maps a user selection onto pixel-exact crop bounds within
// a composite canvas.
package region

import (
	"errors"
	"fmt"
	"image"

	"github.com/sprintrstudio/openCap/src/compositor"
)

var (
	ErrOutOfBounds         = errors.New("region extends beyond image bounds")
	ErrEmptyRegion         = errors.New("region has zero size")
	ErrInvalidMonitorIndex = errors.New("invalid monitor index")
)

// IsSelectionError reports whether err is a caller-input error that leaves
// the captured state intact so the user can select again.
func IsSelectionError(err error) bool {
	return errors.Is(err, ErrOutOfBounds) || errors.Is(err, ErrEmptyRegion) || errors.Is(err, ErrInvalidMonitorIndex)
}

// CropRegion returns an exact copy of the w x h rectangle at (x, y) in
// canvas-local pixels. No resampling happens here.
func CropRegion(canvas *image.RGBA, x, y, w, h int) (*image.RGBA, error) {
	b := canvas.Rect
	if err := ValidateRegion(x, y, w, h, b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	rowBytes := w * 4
	for row := 0; row < h; row++ {
		src := canvas.PixOffset(b.Min.X+x, b.Min.Y+y+row)
		copy(out.Pix[row*out.Stride:row*out.Stride+rowBytes], canvas.Pix[src:src+rowBytes])
	}
	return out, nil
}

// ValidateRegion checks a w x h rectangle at (x, y) against a
// width x height canvas. Emptiness is reported before bounds.
func ValidateRegion(x, y, w, h, width, height int) error {
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyRegion, w, h)
	}
	if !fits(x, w, width) || !fits(y, h, height) {
		return fmt.Errorf("%w: (%d,%d %dx%d) on %dx%d", ErrOutOfBounds, x, y, w, h, width, height)
	}
	return nil
}

// fits reports whether [off, off+size) lies inside [0, limit) without
// computing off+size, which can overflow for caller-supplied values.
func fits(off, size, limit int) bool {
	return off >= 0 && size >= 0 && off <= limit && size <= limit-off
}

// MonitorRect translates a monitor's global logical rect into canvas-local
// coordinates by subtracting the layout origin.
func MonitorRect(layout compositor.Layout, index int) (image.Rectangle, error) {
	if index < 0 || index >= len(layout.Monitors) {
		return image.Rectangle{}, fmt.Errorf("%w: %d of %d", ErrInvalidMonitorIndex, index, len(layout.Monitors))
	}
	m := layout.Monitors[index]
	return m.Rect().Sub(image.Pt(layout.OriginX, layout.OriginY)), nil
}

// CropMonitor crops the area of one monitor out of the canvas.
func CropMonitor(canvas *image.RGBA, layout compositor.Layout, index int) (*image.RGBA, error) {
	r, err := MonitorRect(layout, index)
	if err != nil {
		return nil, err
	}
	return CropRegion(canvas, r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// Extract resolves a Selection against the canvas.
func Extract(canvas *image.RGBA, layout compositor.Layout, sel Selection) (*image.RGBA, error) {
	switch sel.Kind {
	case KindRegion:
		return CropRegion(canvas, sel.X, sel.Y, sel.W, sel.H)
	case KindMonitor:
		return CropMonitor(canvas, layout, sel.Monitor)
	case KindFull:
		b := canvas.Rect
		return CropRegion(canvas, 0, 0, b.Dx(), b.Dy())
	default:
		return nil, fmt.Errorf("unknown selection kind %d", sel.Kind)
	}
}
