// Package output holds the collaborators a finalized capture is handed to:
// the PNG file writer, the preview encoder and the external viewer.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	filePrefix      = "Screenshot_"
	timestampFmt    = "2006-01-02_15-04-05"
	maxNameAttempts = 100
)

// DefaultDir is <Pictures>/Screenshots. XDG_PICTURES_DIR wins when set.
func DefaultDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_PICTURES_DIR")); xdg != "" {
		return filepath.Join(xdg, "Screenshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find Pictures directory: %w", err)
	}
	return filepath.Join(home, "Pictures", "Screenshots"), nil
}

// FileSaver writes lossless, alpha-preserving PNG files.
type FileSaver struct {
	// Dir overrides the destination directory; empty uses DefaultDir.
	Dir string
	Now func() time.Time
}

// Save writes img and returns the final path. A name taken within the same
// second gets a numeric suffix rather than being overwritten.
func (s FileSaver) Save(img image.Image) (string, error) {
	dir := s.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshots dir: %w", err)
	}

	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	base := filePrefix + now().Format(timestampFmt)
	for i := 0; i < maxNameAttempts; i++ {
		name := base + ".png"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.png", base, i)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to save screenshot: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to save screenshot: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to save screenshot: %w", err)
		}
		log.Printf("Output: saved %dx%d screenshot to %s", img.Bounds().Dx(), img.Bounds().Dy(), path)
		return path, nil
	}
	return "", fmt.Errorf("failed to save screenshot: no free file name for %s in %s", base, dir)
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("PNG encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
