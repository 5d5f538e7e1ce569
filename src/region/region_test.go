package region

import (
	"bytes"
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/display"
)

// patterned fills a frame with pixels unique to (seed, x, y) so crops can be
// compared byte for byte.
func patterned(t *testing.T, d display.Descriptor, seed byte) display.Frame {
	t.Helper()
	pix := make([]byte, d.Width*d.Height*4)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			i := (y*d.Width + x) * 4
			pix[i] = byte(x)
			pix[i+1] = byte(y)
			pix[i+2] = seed ^ byte(x>>8) ^ byte(y>>4)
			pix[i+3] = 255
		}
	}
	f, err := display.NewFrame(d, d.Width, d.Height, pix)
	require.NoError(t, err)
	return f
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i * 7)
	}
	return img
}

func TestScenarioTwoMonitorsCropSecond(t *testing.T) {
	d0 := display.Descriptor{Index: 0, X: 0, Y: 0, Width: 1920, Height: 1080, ScaleFactor: 1}
	d1 := display.Descriptor{Index: 1, X: 1920, Y: 0, Width: 1280, Height: 1024, ScaleFactor: 1}
	f1 := patterned(t, d1, 0x5a)

	c, err := compositor.Compose([]display.Frame{patterned(t, d0, 0x11), f1}, nil)
	require.NoError(t, err)
	require.Equal(t, 3200, c.Width())
	require.Equal(t, 1080, c.Height())
	require.Equal(t, image.Pt(0, 0), c.Origin)

	got, err := CropMonitor(c.Image, c.Layout(), 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1280, 1024), got.Bounds())
	assert.True(t, bytes.Equal(f1.Image.Pix, got.Pix), "crop differs from captured display pixels")
}

func TestScenarioMonitorLeftOfOrigin(t *testing.T) {
	d := display.Descriptor{Index: 0, X: -800, Y: 0, Width: 800, Height: 600, ScaleFactor: 1}
	c, err := compositor.Compose([]display.Frame{patterned(t, d, 1)}, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(-800, 0), c.Origin)

	r, err := MonitorRect(c.Layout(), 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 600), r)

	got, err := CropMonitor(c.Image, c.Layout(), 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 600), got.Bounds())
}

func TestCropRegionBoundaries(t *testing.T) {
	canvas := gradient(100, 50)
	tests := []struct {
		name       string
		x, y, w, h int
		wantErr    error
	}{
		{"exact right edge", 60, 0, 40, 10, nil},
		{"exact bottom edge", 0, 40, 10, 10, nil},
		{"whole canvas", 0, 0, 100, 50, nil},
		{"one past right edge", 61, 0, 40, 10, ErrOutOfBounds},
		{"one past bottom edge", 0, 41, 10, 10, ErrOutOfBounds},
		{"negative x", -1, 0, 10, 10, ErrOutOfBounds},
		{"negative width", 10, 0, -5, 10, ErrOutOfBounds},
		{"zero width", 10, 10, 0, 10, ErrEmptyRegion},
		{"zero height", 10, 10, 10, 0, ErrEmptyRegion},
		{"max int x", math.MaxInt, 0, 1, 1, ErrOutOfBounds},
		{"max int y", 0, math.MaxInt, 1, 1, ErrOutOfBounds},
		{"max int width", 1, 0, math.MaxInt, 1, ErrOutOfBounds},
		{"max int height", 0, 1, 1, math.MaxInt, ErrOutOfBounds},
		{"min int x", math.MinInt, 0, 1, 1, ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CropRegion(canvas, tt.x, tt.y, tt.w, tt.h)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, tt.w, tt.h), got.Bounds())
		})
	}
}

func TestExtractParsedHugeRegion(t *testing.T) {
	sel, err := ParseSelection("region:9223372036854775807,0,1,1")
	require.NoError(t, err)
	_, err = Extract(gradient(10, 10), compositor.Layout{}, sel)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.True(t, IsSelectionError(err))
}

func TestZeroWidthIsEmptyRegardlessOfCanvas(t *testing.T) {
	for _, size := range []image.Point{{1, 1}, {50, 50}, {150, 200}} {
		_, err := Extract(gradient(size.X, size.Y), compositor.Layout{}, Region(100, 100, 0, 50))
		assert.ErrorIs(t, err, ErrEmptyRegion, "canvas %v", size)
	}
}

func TestCropRegionIsPixelExact(t *testing.T) {
	canvas := gradient(97, 61)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		w := 1 + rng.Intn(97)
		h := 1 + rng.Intn(61)
		x := rng.Intn(97 - w + 1)
		y := rng.Intn(61 - h + 1)

		got, err := CropRegion(canvas, x, y, w, h)
		require.NoError(t, err)
		require.Equal(t, image.Rect(0, 0, w, h), got.Bounds())
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				if got.RGBAAt(col, row) != canvas.RGBAAt(x+col, y+row) {
					t.Fatalf("pixel mismatch at (%d,%d) for crop (%d,%d %dx%d)", col, row, x, y, w, h)
				}
			}
		}
	}
}

func TestCropRegionReadsSubImageCanvas(t *testing.T) {
	parent := gradient(20, 20)
	sub := parent.SubImage(image.Rect(5, 5, 15, 15)).(*image.RGBA)
	got, err := CropRegion(sub, 1, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, parent.RGBAAt(6, 7), got.RGBAAt(0, 0))
	_, err = CropRegion(sub, 8, 0, 3, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCropMonitorInvalidIndex(t *testing.T) {
	layout := compositor.Layout{Monitors: []display.Descriptor{{Width: 10, Height: 10, ScaleFactor: 1}}, VirtualWidth: 10, VirtualHeight: 10}
	canvas := gradient(10, 10)
	for _, idx := range []int{-1, 1, 5} {
		_, err := CropMonitor(canvas, layout, idx)
		assert.ErrorIs(t, err, ErrInvalidMonitorIndex)
		assert.True(t, IsSelectionError(err))
	}
}

func TestCropMonitorMatchesLogicalSize(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 30; i++ {
		var frames []display.Frame
		x := rng.Intn(200) - 100
		n := 1 + rng.Intn(3)
		for j := 0; j < n; j++ {
			d := display.Descriptor{Index: j, X: x, Y: rng.Intn(40) - 20, Width: 1 + rng.Intn(30), Height: 1 + rng.Intn(30), ScaleFactor: 1}
			frames = append(frames, patterned(t, d, byte(j)))
			x += d.Width + rng.Intn(3)
		}
		c, err := compositor.Compose(frames, nil)
		require.NoError(t, err)
		layout := c.Layout()
		for j, f := range frames {
			got, err := CropMonitor(c.Image, layout, j)
			require.NoError(t, err)
			assert.Equal(t, f.Display.Width, got.Rect.Dx())
			assert.Equal(t, f.Display.Height, got.Rect.Dy())
			assert.True(t, bytes.Equal(f.Image.Pix, got.Pix))
		}
	}
}

func TestExtractFull(t *testing.T) {
	canvas := gradient(8, 6)
	got, err := Extract(canvas, compositor.Layout{}, Full())
	require.NoError(t, err)
	assert.Equal(t, canvas.Pix, got.Pix)
	assert.NotSame(t, &canvas.Pix[0], &got.Pix[0])
}
