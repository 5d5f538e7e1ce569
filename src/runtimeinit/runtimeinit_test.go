package runtimeinit

import (
	"os"
	"testing"

	"github.com/sprintrstudio/openCap/src/config"
	"github.com/sprintrstudio/openCap/src/output"
)

func TestSessionOptionsFollowsOutputs(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		wantSaveDir string
		wantClip    bool
		wantOpen    bool
	}{
		{"all", config.Config{CopyToClipboard: true, AutoOpen: true, SaveLocally: true, SavePath: "/shots"}, "/shots", true, true},
		{"clipboard only", config.Config{CopyToClipboard: true}, "", true, false},
		{"open without save uses temp", config.Config{AutoOpen: true}, os.TempDir(), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := sessionOptions(&tt.cfg, nil, nil)
			if tt.wantSaveDir == "" {
				if opts.Saver != nil {
					t.Errorf("expected no saver, got %#v", opts.Saver)
				}
			} else {
				fs, ok := opts.Saver.(output.FileSaver)
				if !ok || fs.Dir != tt.wantSaveDir {
					t.Errorf("saver = %#v, want dir %q", opts.Saver, tt.wantSaveDir)
				}
			}
			if (opts.Clipboard != nil) != tt.wantClip {
				t.Errorf("clipboard wired = %v", opts.Clipboard != nil)
			}
			if (opts.Open != nil) != tt.wantOpen {
				t.Errorf("open wired = %v", opts.Open != nil)
			}
			if opts.Resampler == nil {
				t.Error("resampler not set")
			}
		})
	}
}

func TestBootstrapRejectsNoOutputs(t *testing.T) {
	for _, k := range config.Keys {
		t.Setenv(k, "")
	}
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("COPY_TO_CLIPBOARD", "false")
	t.Setenv("AUTO_OPEN", "false")
	t.Setenv("SAVE_LOCALLY", "false")

	if _, err := Bootstrap(Options{}); err == nil {
		t.Fatal("expected invalid configuration error")
	}
}
