package display

import (
	"fmt"
	"image"
	"log"

	"github.com/kbinani/screenshot"
)

// Screens enumerates and grabs displays through github.com/kbinani/screenshot.
type Screens struct {
	// Scale resolves physical pixels per logical pixel for an OS rectangle.
	// Nil uses the platform lookup.
	Scale func(physical image.Rectangle) float64
}

func NewScreens() *Screens { return &Screens{} }

func (s *Screens) Displays() ([]Descriptor, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, &EnumerationError{Err: ErrNoDisplays}
	}
	scale := s.Scale
	if scale == nil {
		scale = platformScale
	}
	bounds := make([]image.Rectangle, n)
	scales := make([]float64, n)
	for i := 0; i < n; i++ {
		bounds[i] = screenshot.GetDisplayBounds(i)
		scales[i] = scale(bounds[i])
	}
	out := LogicalLayout(bounds, scales)
	for i, d := range out {
		if err := d.Validate(); err != nil {
			return nil, &EnumerationError{Err: err}
		}
		log.Printf("Display: #%d physical=%v logical=%v scale=%.2f", i, bounds[i], d.Rect(), d.ScaleFactor)
	}
	return out, nil
}

func (s *Screens) Grab(d Descriptor) (Frame, error) {
	if d.Physical.Empty() {
		return Frame{}, &CaptureError{Display: d.Index, Err: fmt.Errorf("%w: empty capture rectangle", ErrInvalidGeometry)}
	}
	img, err := screenshot.CaptureRect(d.Physical)
	if err != nil {
		return Frame{}, &CaptureError{Display: d.Index, Err: err}
	}
	f, err := FrameFromRGBA(d, img)
	if err != nil {
		return Frame{}, &CaptureError{Display: d.Index, Err: err}
	}
	return f, nil
}
