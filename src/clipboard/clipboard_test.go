package clipboard

import (
	"errors"
	"image"
	"testing"
)

func TestWriteImage(t *testing.T) {
	// Headless runners have no clipboard; only the error shape is checked there.
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	err := WriteImage(img)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("unexpected error kind: %v", err)
		}
		t.Skipf("clipboard not available: %v", err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	first := Init()
	second := Init()
	if (first == nil) != (second == nil) {
		t.Fatalf("Init results differ: %v vs %v", first, second)
	}
}
