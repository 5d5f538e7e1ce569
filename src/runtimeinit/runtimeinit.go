package runtimeinit

import (
	"fmt"
	"log"
	"os"

	"github.com/sprintrstudio/openCap/src/clipboard"
	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/config"
	"github.com/sprintrstudio/openCap/src/display"
	"github.com/sprintrstudio/openCap/src/history"
	"github.com/sprintrstudio/openCap/src/notification"
	"github.com/sprintrstudio/openCap/src/output"
	"github.com/sprintrstudio/openCap/src/session"
)

type Options struct {
	LoadOptions             config.LoadOptions
	SetupLogging            func(bool)
	ShowBlockingConfigError bool
}

// Runtime is the process-wide state shared by every capture session.
type Runtime struct {
	Config  *config.Config
	History *history.Store
	Screens *display.Screens
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if err := cfg.Validate(); err != nil {
		if opts.ShowBlockingConfigError {
			notification.ShowBlockingError("OpenCap configuration", fmt.Sprintf("%v.\n\nEnable COPY_TO_CLIPBOARD, AUTO_OPEN or SAVE_LOCALLY in %s.", err, cfg.Path))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	display.EnableDPIAwareness()

	if cfg.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable, copies will be skipped: %v", err)
		}
	}

	rt := &Runtime{Config: cfg, Screens: display.NewScreens()}
	if cfg.HistoryEnabled() {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			log.Printf("History disabled: %v", err)
		} else {
			rt.History = store
		}
	}
	log.Printf("Runtime ready: clipboard=%v save=%v (%s) open=%v (%s) history=%v",
		cfg.CopyToClipboard, cfg.SaveLocally, cfg.SavePath, cfg.AutoOpen, cfg.OpenWithProgram, rt.History != nil)
	return rt, nil
}

// SessionOptions wires the configured outputs into a session. With saving
// off but auto-open on, the image goes to the temp dir so it can be opened.
func (r *Runtime) SessionOptions() session.Options {
	return sessionOptions(r.Config, r.Screens, r.History)
}

func sessionOptions(cfg *config.Config, screens *display.Screens, store *history.Store) session.Options {
	opts := session.Options{
		Resampler: compositor.ResamplerByName(cfg.ResampleFilter),
	}
	if screens != nil {
		opts.Enumerator = screens
		opts.Grabber = screens
	}
	switch {
	case cfg.SaveLocally:
		opts.Saver = output.FileSaver{Dir: cfg.SavePath}
		if store != nil {
			opts.History = store
		}
	case cfg.AutoOpen:
		opts.Saver = output.FileSaver{Dir: os.TempDir()}
	}
	if cfg.CopyToClipboard {
		opts.Clipboard = clipboard.Writer{}
	}
	if cfg.AutoOpen {
		program := cfg.OpenWithProgram
		opts.Open = func(path string) error { return output.Open(path, program) }
	}
	return opts
}

func (r *Runtime) Close() error {
	if r == nil || r.History == nil {
		return nil
	}
	return r.History.Close()
}
