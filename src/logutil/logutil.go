package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/sprintrstudio/openCap/src/config"
)

const (
	logFileName  = "opencap_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
	logFlags     = log.LstdFlags | log.Lshortfile
)

// Setup enables file logging with basic size-based rotation (10MB, max 3 archives)
// in the user config directory. When disabled, logs are discarded.
func Setup(enableFileLogging bool) {
	log.SetFlags(logFlags)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve log directory: %v\n", err)
		log.SetOutput(io.Discard)
		return
	}
	w, err := Open(filepath.Join(dir, logFileName), maxSizeBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(w)
}

// SetupStderr routes logs to stderr, used by --verbose.
func SetupStderr() {
	log.SetFlags(logFlags)
	log.SetOutput(os.Stderr)
}

// RotatingWriter appends to a file and rotates it to .1..3 once it would exceed maxSize.
type RotatingWriter struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	f       *os.File
}

func Open(path string, maxSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	rotateIfNeeded(path, maxSize, 0)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	return &RotatingWriter{path: path, maxSize: maxSize, f: f}, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		rotateIfNeeded(w.path, w.maxSize, int64(len(p)))
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// rotateIfNeeded shifts path to .1, .2, .3 (oldest discarded) when adding
// pending bytes would exceed maxSize.
func rotateIfNeeded(path string, maxSize, pending int64) {
	st, err := os.Stat(path)
	if err != nil || st.Size() == 0 || st.Size()+pending <= maxSize {
		return
	}
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }
