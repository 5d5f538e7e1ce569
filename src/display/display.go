package display

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	ErrNoDisplays      = errors.New("no active displays found")
	ErrInvalidGeometry = errors.New("invalid display geometry")
	ErrBufferMismatch  = errors.New("pixel buffer does not match frame dimensions")
)

// EnumerationError reports a failed or empty display listing. It aborts the
// session before any window exists.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string { return fmt.Sprintf("enumerate displays: %v", e.Err) }

func (e *EnumerationError) Unwrap() error { return e.Err }

// CaptureError reports a failed grab for one display.
type CaptureError struct {
	Display int
	Err     error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture display %d: %v", e.Display, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Descriptor is one physical display. X, Y, Width and Height are logical
// pixels in the global desktop space; X and Y may be negative.
type Descriptor struct {
	Index       int     `json:"index" yaml:"index"`
	X           int     `json:"x" yaml:"x"`
	Y           int     `json:"y" yaml:"y"`
	Width       int     `json:"width" yaml:"width"`
	Height      int     `json:"height" yaml:"height"`
	ScaleFactor float64 `json:"scale_factor" yaml:"scale_factor"`
	// Physical is the OS rectangle handed to the grabber.
	Physical image.Rectangle `json:"-" yaml:"-"`
}

// Rect returns the logical rectangle in global coordinates.
func (d Descriptor) Rect() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
}

func (d Descriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: display %d is %dx%d", ErrInvalidGeometry, d.Index, d.Width, d.Height)
	}
	if !(d.ScaleFactor > 0) || math.IsInf(d.ScaleFactor, 0) {
		return fmt.Errorf("%w: display %d scale factor %v", ErrInvalidGeometry, d.Index, d.ScaleFactor)
	}
	return nil
}

// Logical converts the OS rectangle of a lone display, in physical pixels,
// into a Descriptor using scale physical pixels per logical pixel.
func Logical(index int, physical image.Rectangle, scale float64) Descriptor {
	scale = validScale(scale)
	return logicalAt(index, physical, scale, scale)
}

// LogicalLayout converts every display of one desktop. Positions are divided
// by the smallest scale on the desktop and sizes by each display's own scale,
// so physically disjoint displays never overlap in logical space (mixed-DPI
// neighbours may leave a gap instead). physical and scales are parallel.
func LogicalLayout(physical []image.Rectangle, scales []float64) []Descriptor {
	base := 0.0
	for i := range physical {
		s := 1.0
		if i < len(scales) {
			s = validScale(scales[i])
		}
		if base == 0 || s < base {
			base = s
		}
	}
	out := make([]Descriptor, len(physical))
	for i, r := range physical {
		s := 1.0
		if i < len(scales) {
			s = validScale(scales[i])
		}
		out[i] = logicalAt(i, r, s, base)
	}
	return out
}

// logicalAt floors both the origin and the size, so the logical right edge
// floor(x/base)+floor(w/scale) never passes floor((x+w)/base) while scale >= base.
func logicalAt(index int, physical image.Rectangle, scale, base float64) Descriptor {
	return Descriptor{
		Index:       index,
		X:           int(math.Floor(float64(physical.Min.X) / base)),
		Y:           int(math.Floor(float64(physical.Min.Y) / base)),
		Width:       int(math.Floor(float64(physical.Dx()) / scale)),
		Height:      int(math.Floor(float64(physical.Dy()) / scale)),
		ScaleFactor: scale,
		Physical:    physical,
	}
}

func validScale(scale float64) float64 {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 1
	}
	return scale
}

// Frame is the RGBA buffer grabbed from one display at native resolution.
// Image always has a zero origin and a tight stride.
type Frame struct {
	Display Descriptor
	Image   *image.RGBA
}

// NewFrame reinterprets pix as a width x height RGBA buffer.
func NewFrame(d Descriptor, width, height int, pix []byte) (Frame, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return Frame{}, fmt.Errorf("%w: %dx%d with %d bytes", ErrBufferMismatch, width, height, len(pix))
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return Frame{Display: d, Image: img}, nil
}

// FrameFromRGBA wraps an image returned by a capture backend, copying it
// into a zero-origin tight buffer when needed.
func FrameFromRGBA(d Descriptor, img *image.RGBA) (Frame, error) {
	if img == nil {
		return Frame{}, fmt.Errorf("%w: nil image", ErrBufferMismatch)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return Frame{}, fmt.Errorf("%w: empty %dx%d image", ErrBufferMismatch, w, h)
	}
	rowBytes := w * 4
	if img.Rect.Min == (image.Point{}) && img.Stride == rowBytes && len(img.Pix) == rowBytes*h {
		return Frame{Display: d, Image: img}, nil
	}
	if img.Stride < rowBytes || len(img.Pix) < (h-1)*img.Stride+rowBytes {
		return Frame{}, fmt.Errorf("%w: stride %d, %d bytes for %dx%d", ErrBufferMismatch, img.Stride, len(img.Pix), w, h)
	}
	pix := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		src := y * img.Stride
		copy(pix[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	return NewFrame(d, w, h, pix)
}

// Enumerator lists the active displays. Order is whatever the OS returns.
type Enumerator interface {
	Displays() ([]Descriptor, error)
}

// Grabber captures one display.
type Grabber interface {
	Grab(d Descriptor) (Frame, error)
}

// GrabAll captures every display once, in order. The first failure aborts
// the whole set since a partial composite is not useful.
func GrabAll(g Grabber, displays []Descriptor) ([]Frame, error) {
	frames := make([]Frame, 0, len(displays))
	for _, d := range displays {
		f, err := g.Grab(d)
		if err != nil {
			var ce *CaptureError
			if errors.As(err, &ce) {
				return nil, err
			}
			return nil, &CaptureError{Display: d.Index, Err: err}
		}
		frames = append(frames, f)
	}
	return frames, nil
}
