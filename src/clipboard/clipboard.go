package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	initErr error
	once    sync.Once
)

// ErrUnavailable is returned when the platform clipboard could not be initialized.
var ErrUnavailable = errors.New("clipboard unavailable")

// Init initializes the platform clipboard once. Later calls return the first result.
func Init() error {
	once.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

// WriteImage places img on the clipboard as PNG.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("clipboard encode: %w", err)
	}
	return WritePNG(buf.Bytes())
}

// WritePNG performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func WritePNG(data []byte) error {
	if err := Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// Writer adapts the package functions to the session's clipboard collaborator.
type Writer struct{}

func (Writer) WriteImage(img image.Image) error { return WriteImage(img) }
