package display

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogical(t *testing.T) {
	tests := []struct {
		name     string
		physical image.Rectangle
		scale    float64
		want     image.Rectangle
		wantSF   float64
	}{
		{"unscaled", image.Rect(0, 0, 1920, 1080), 1, image.Rect(0, 0, 1920, 1080), 1},
		{"hidpi", image.Rect(0, 0, 3840, 2160), 2, image.Rect(0, 0, 1920, 1080), 2},
		{"negative origin", image.Rect(-1600, 0, 0, 1200), 2, image.Rect(-800, 0, 0, 600), 2},
		{"fractional", image.Rect(0, 0, 2880, 1800), 1.5, image.Rect(0, 0, 1920, 1200), 1.5},
		{"invalid scale falls back", image.Rect(10, 20, 110, 220), 0, image.Rect(10, 20, 110, 220), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Logical(3, tt.physical, tt.scale)
			assert.Equal(t, tt.want, d.Rect())
			assert.Equal(t, tt.wantSF, d.ScaleFactor)
			assert.Equal(t, tt.physical, d.Physical)
			assert.Equal(t, 3, d.Index)
		})
	}
}

func TestLogicalLayoutMixedDPI(t *testing.T) {
	// 1920x1080@1.0 primary with a 4K@2.0 display touching its right edge.
	got := LogicalLayout(
		[]image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 5760, 2160)},
		[]float64{1, 2},
	)
	require.Len(t, got, 2)
	assert.Equal(t, image.Rect(0, 0, 1920, 1080), got[0].Rect())
	assert.Equal(t, image.Rect(1920, 0, 3840, 1080), got[1].Rect())
	assert.Equal(t, 2.0, got[1].ScaleFactor)
	assert.Equal(t, 1, got[1].Index)
}

func TestLogicalLayoutKeepsDisjointDisplaysApart(t *testing.T) {
	tests := []struct {
		name     string
		physical []image.Rectangle
		scales   []float64
	}{
		{
			"hidpi primary, unscaled left neighbour",
			[]image.Rectangle{image.Rect(0, 0, 3840, 2160), image.Rect(-1920, 0, 0, 1080)},
			[]float64{2, 1},
		},
		{
			"unscaled primary, hidpi right neighbour",
			[]image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 5760, 2160)},
			[]float64{1, 2},
		},
		{
			"stacked fractional scales",
			[]image.Rectangle{image.Rect(0, 0, 2560, 1440), image.Rect(0, 1440, 2880, 3240), image.Rect(2560, 0, 4480, 1080)},
			[]float64{1.25, 1.5, 1.75},
		},
		{
			"odd sizes at fractional scale",
			[]image.Rectangle{image.Rect(-1367, 0, 0, 769), image.Rect(0, 0, 1367, 769), image.Rect(1367, 0, 2734, 769)},
			[]float64{1.5, 1.25, 1.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogicalLayout(tt.physical, tt.scales)
			require.Len(t, got, len(tt.physical))
			for i := range got {
				require.NoError(t, got[i].Validate())
				for j := i + 1; j < len(got); j++ {
					require.True(t, tt.physical[i].Intersect(tt.physical[j]).Empty())
					assert.True(t, got[i].Rect().Intersect(got[j].Rect()).Empty(),
						"display %d %v overlaps display %d %v", i, got[i].Rect(), j, got[j].Rect())
				}
			}
		})
	}
}

func TestLogicalLayoutUniformScaleMatchesLogical(t *testing.T) {
	rects := []image.Rectangle{image.Rect(0, 0, 3840, 2160), image.Rect(3840, 0, 7680, 2160)}
	got := LogicalLayout(rects, []float64{2, 2})
	for i, r := range rects {
		assert.Equal(t, Logical(i, r, 2).Rect(), got[i].Rect())
	}
	assert.Equal(t, image.Rect(1920, 0, 3840, 1080), got[1].Rect())
}

func TestDescriptorValidate(t *testing.T) {
	assert.NoError(t, Descriptor{Width: 1, Height: 1, ScaleFactor: 1}.Validate())
	assert.ErrorIs(t, Descriptor{Width: 0, Height: 1, ScaleFactor: 1}.Validate(), ErrInvalidGeometry)
	assert.ErrorIs(t, Descriptor{Width: 1, Height: 1, ScaleFactor: 0}.Validate(), ErrInvalidGeometry)
	assert.ErrorIs(t, Descriptor{Width: 1, Height: 1, ScaleFactor: -2}.Validate(), ErrInvalidGeometry)
}

func TestNewFrameRejectsLengthMismatch(t *testing.T) {
	d := Descriptor{Width: 2, Height: 2, ScaleFactor: 1}

	_, err := NewFrame(d, 2, 2, make([]byte, 15))
	assert.ErrorIs(t, err, ErrBufferMismatch)

	_, err = NewFrame(d, 0, 2, nil)
	assert.ErrorIs(t, err, ErrBufferMismatch)

	f, err := NewFrame(d, 2, 2, make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), f.Image.Bounds())
	assert.Equal(t, 8, f.Image.Stride)
}

func TestFrameFromRGBANormalisesOriginAndStride(t *testing.T) {
	parent := image.NewRGBA(image.Rect(0, 0, 6, 4))
	red := color.RGBA{R: 255, A: 255}
	parent.SetRGBA(3, 2, red)
	sub := parent.SubImage(image.Rect(2, 1, 5, 4)).(*image.RGBA)

	f, err := FrameFromRGBA(Descriptor{Width: 3, Height: 3, ScaleFactor: 1}, sub)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), f.Image.Bounds())
	assert.Equal(t, 12, f.Image.Stride)
	assert.Equal(t, red, f.Image.RGBAAt(1, 1))
}

func TestFrameFromRGBARejectsShortBuffer(t *testing.T) {
	img := &image.RGBA{Pix: make([]byte, 10), Stride: 8, Rect: image.Rect(0, 0, 2, 2)}
	_, err := FrameFromRGBA(Descriptor{}, img)
	assert.ErrorIs(t, err, ErrBufferMismatch)

	_, err = FrameFromRGBA(Descriptor{}, nil)
	assert.ErrorIs(t, err, ErrBufferMismatch)
}

type stubGrabber struct {
	failOn int
	err    error
	calls  []int
}

func (g *stubGrabber) Grab(d Descriptor) (Frame, error) {
	g.calls = append(g.calls, d.Index)
	if d.Index == g.failOn {
		return Frame{}, g.err
	}
	return NewFrame(d, d.Width, d.Height, make([]byte, d.Width*d.Height*4))
}

func TestGrabAllAbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	g := &stubGrabber{failOn: 1, err: boom}
	displays := []Descriptor{
		{Index: 0, Width: 2, Height: 2, ScaleFactor: 1},
		{Index: 1, Width: 2, Height: 2, ScaleFactor: 1},
		{Index: 2, Width: 2, Height: 2, ScaleFactor: 1},
	}

	frames, err := GrabAll(g, displays)
	assert.Nil(t, frames)
	var ce *CaptureError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Display)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{0, 1}, g.calls)
}

func TestGrabAllKeepsOrder(t *testing.T) {
	g := &stubGrabber{failOn: -1}
	displays := []Descriptor{
		{Index: 1, Width: 4, Height: 2, ScaleFactor: 1},
		{Index: 0, Width: 2, Height: 2, ScaleFactor: 1},
	}
	frames, err := GrabAll(g, displays)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 1, frames[0].Display.Index)
	assert.Equal(t, 0, frames[1].Display.Index)
}

func TestScreensDisplays(t *testing.T) {
	// Needs a real display; headless environments report an enumeration error.
	displays, err := NewScreens().Displays()
	if err != nil {
		var ee *EnumerationError
		if !errors.As(err, &ee) {
			t.Fatalf("expected EnumerationError, got %T: %v", err, err)
		}
		t.Skipf("no displays available: %v", err)
	}
	for _, d := range displays {
		if err := d.Validate(); err != nil {
			t.Errorf("display %d invalid: %v", d.Index, err)
		}
	}
}
