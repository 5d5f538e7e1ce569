// Package compositor stitches per-display frames into one canvas in
// logical-pixel space.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"log"

	xdraw "golang.org/x/image/draw"

	"github.com/sprintrstudio/openCap/src/display"
)

var (
	ErrNoFrames        = errors.New("no frames to composite")
	ErrBlitOutOfBounds = errors.New("blit target exceeds canvas bounds")
)

// CompositionError is always an environment or enumeration inconsistency,
// never something the user can trigger.
type CompositionError struct {
	Err error
}

func (e *CompositionError) Error() string { return fmt.Sprintf("composite displays: %v", e.Err) }

func (e *CompositionError) Unwrap() error { return e.Err }

// Canvas is the union of all displays. Image bounds are zero-based;
// Origin is the global logical coordinate of pixel (0,0).
type Canvas struct {
	Image    *image.RGBA
	Origin   image.Point
	Displays []display.Descriptor
}

func (c *Canvas) Width() int  { return c.Image.Rect.Dx() }
func (c *Canvas) Height() int { return c.Image.Rect.Dy() }

// Layout is the immutable description of a canvas handed to the selection
// surface. Field names follow the surface's wire format.
type Layout struct {
	Monitors      []display.Descriptor `json:"monitors" yaml:"monitors"`
	OriginX       int                  `json:"origin_x" yaml:"origin_x"`
	OriginY       int                  `json:"origin_y" yaml:"origin_y"`
	VirtualWidth  int                  `json:"virtual_width" yaml:"virtual_width"`
	VirtualHeight int                  `json:"virtual_height" yaml:"virtual_height"`
}

// Layout returns a copy so later callers cannot mutate the canvas metadata.
func (c *Canvas) Layout() Layout {
	monitors := make([]display.Descriptor, len(c.Displays))
	copy(monitors, c.Displays)
	return Layout{
		Monitors:      monitors,
		OriginX:       c.Origin.X,
		OriginY:       c.Origin.Y,
		VirtualWidth:  c.Width(),
		VirtualHeight: c.Height(),
	}
}

// Bounds returns the bounding box of every descriptor's logical rect.
func Bounds(displays []display.Descriptor) image.Rectangle {
	if len(displays) == 0 {
		return image.Rectangle{}
	}
	// Union skips empty rects, so seed with the first one explicitly.
	box := displays[0].Rect()
	for _, d := range displays[1:] {
		r := d.Rect()
		box.Min.X = min(box.Min.X, r.Min.X)
		box.Min.Y = min(box.Min.Y, r.Min.Y)
		box.Max.X = max(box.Max.X, r.Max.X)
		box.Max.Y = max(box.Max.Y, r.Max.Y)
	}
	return box
}

// LayoutOf describes the canvas that composing displays would produce,
// without grabbing any pixels.
func LayoutOf(displays []display.Descriptor) Layout {
	box := Bounds(displays)
	monitors := make([]display.Descriptor, len(displays))
	copy(monitors, displays)
	return Layout{
		Monitors:      monitors,
		OriginX:       box.Min.X,
		OriginY:       box.Min.Y,
		VirtualWidth:  box.Dx(),
		VirtualHeight: box.Dy(),
	}
}

// Compose builds the canvas. Frames whose size differs from the display's
// logical size are resampled with r (Lanczos3 when nil). Overlapping
// displays resolve as last write wins, in frame order.
func Compose(frames []display.Frame, r Resampler) (*Canvas, error) {
	if len(frames) == 0 {
		return nil, &CompositionError{Err: ErrNoFrames}
	}
	if r == nil {
		r = Lanczos3
	}

	displays := make([]display.Descriptor, len(frames))
	for i, f := range frames {
		if f.Image == nil {
			return nil, &CompositionError{Err: fmt.Errorf("display %d has no image", f.Display.Index)}
		}
		if err := f.Display.Validate(); err != nil {
			return nil, &CompositionError{Err: err}
		}
		displays[i] = f.Display
	}
	box := Bounds(displays)
	if box.Empty() {
		return nil, &CompositionError{Err: fmt.Errorf("empty bounding box %v", box)}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	for _, f := range frames {
		d := f.Display
		src := f.Image
		if src.Rect.Dx() != d.Width || src.Rect.Dy() != d.Height {
			log.Printf("Compositor: resampling display %d from %dx%d to %dx%d", d.Index, src.Rect.Dx(), src.Rect.Dy(), d.Width, d.Height)
			src = r.Resample(src, d.Width, d.Height)
		}
		at := image.Pt(d.X-box.Min.X, d.Y-box.Min.Y)
		target := image.Rectangle{Min: at, Max: at.Add(src.Rect.Size())}
		if !target.In(canvas.Rect) {
			return nil, &CompositionError{Err: fmt.Errorf("%w: display %d at %v, canvas %v", ErrBlitOutOfBounds, d.Index, target, canvas.Rect)}
		}
		xdraw.Draw(canvas, target, src, src.Rect.Min, xdraw.Src)
	}

	return &Canvas{Image: canvas, Origin: box.Min, Displays: displays}, nil
}
