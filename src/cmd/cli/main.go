package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/config"
	"github.com/sprintrstudio/openCap/src/display"
	"github.com/sprintrstudio/openCap/src/history"
	"github.com/sprintrstudio/openCap/src/overlay"
	"github.com/sprintrstudio/openCap/src/region"
	"github.com/sprintrstudio/openCap/src/runtimeinit"
	"github.com/sprintrstudio/openCap/src/session"
)

type cliOptions struct {
	verbose    bool
	configPath string

	selection   string
	outFile     string
	jsonOutput  bool
	noClipboard bool
	noOpen      bool
	interactive bool

	format string
	limit  int
	dbPath string
}

// newScreens is swapped by tests.
var newScreens = func() display.Enumerator {
	display.EnableDPIAwareness()
	return display.NewScreens()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"opencap-cli"}
	}
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opencap-cli",
		Short:         "Capture screens and inspect displays from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logging BEFORE any other operations.
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a .env config file")

	cmd.AddCommand(newCaptureCmd(opts), newDisplaysCmd(opts), newHistoryCmd(opts), newConfigCmd(opts))
	return cmd
}

func newCaptureCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture every display and finalize one selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.selection, "select", "", "full, monitor:N or region:x,y,w,h (default DEFAULT_SELECTION)")
	cmd.Flags().StringVarP(&opts.outFile, "out", "o", "", "Write the PNG to this exact path instead of SAVE_PATH")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&opts.noClipboard, "no-clipboard", false, "Do not copy to the clipboard")
	cmd.Flags().BoolVar(&opts.noOpen, "no-open", false, "Do not open the result")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Choose the selection from a terminal menu after capture")
	return cmd
}

type CaptureResult struct {
	Path      string  `json:"path"`
	Selection string  `json:"selection"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Copied    bool    `json:"copied"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
}

func runCapture(ctx context.Context, opts cliOptions, out io.Writer) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{ConfigPathOverride: opts.configPath, DefaultSelectionOverride: opts.selection},
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	sel, err := region.ParseSelection(rt.Config.DefaultSelection)
	if err != nil {
		return err
	}

	sessOpts := rt.SessionOptions()
	if opts.noClipboard {
		sessOpts.Clipboard = nil
	}
	if opts.noOpen {
		sessOpts.Open = nil
	}
	if opts.outFile != "" {
		sessOpts.Saver = exactFile(opts.outFile)
	}

	var selector overlay.Selector = overlay.Fixed{Selection: sel}
	if opts.interactive {
		selector = overlay.Prompt{}
	}

	start := time.Now()
	res, err := session.Execute(ctx, sessOpts, selector)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	return outputCapture(out, res, time.Since(start), opts.jsonOutput)
}

// exactFile saves to one fixed path, replacing any existing file.
type exactFile string

func (p exactFile) Save(img image.Image) (string, error) {
	path := string(p)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := writePNG(f, img); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func outputCapture(out io.Writer, res session.Result, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		if res.Path != "" {
			_, err := fmt.Fprintln(out, res.Path)
			return err
		}
		_, err := fmt.Fprintf(out, "captured %dx%d (%s)\n", res.Width, res.Height, res.Selection)
		return err
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(CaptureResult{
		Path:      res.Path,
		Selection: res.Selection.String(),
		Width:     res.Width,
		Height:    res.Height,
		Copied:    res.Copied,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
	}); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func newDisplaysCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "displays",
		Short: "List displays and the virtual canvas they compose into",
		RunE: func(cmd *cobra.Command, args []string) error {
			displays, err := newScreens().Displays()
			if err != nil {
				return err
			}
			return printLayout(cmd.OutOrStdout(), compositor.LayoutOf(displays), opts.format)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "table", "table, json or yaml")
	return cmd
}

func printLayout(out io.Writer, layout compositor.Layout, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(layout)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(layout); err != nil {
			return err
		}
		return encoder.Close()
	case "table", "":
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "X", "Y", "Width", "Height", "Scale", "Canvas Rect"})
		for i, d := range layout.Monitors {
			r := d.Rect().Sub(image.Pt(layout.OriginX, layout.OriginY))
			t.AppendRow(table.Row{i, d.X, d.Y, d.Width, d.Height, d.ScaleFactor, r.String()})
		}
		t.SetCaption("canvas %dx%d, origin (%d,%d)", layout.VirtualWidth, layout.VirtualHeight, layout.OriginX, layout.OriginY)
		_, err := fmt.Fprintln(out, t.Render())
		return err
	default:
		return fmt.Errorf("unknown format %q: expected table, json or yaml", format)
	}
}

func newHistoryCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent captures",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.dbPath
			if path == "" {
				cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigPathOverride: opts.configPath})
				if err != nil {
					return err
				}
				if !cfg.HistoryEnabled() {
					return fmt.Errorf("capture history is disabled (HISTORY_DB=%s)", config.HistoryDisabled)
				}
				path = cfg.HistoryDB
			}
			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.Recent(cmd.Context(), opts.limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), entries, opts.format)
		},
	}
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&opts.format, "format", "table", "table or json")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "History database (default HISTORY_DB)")
	return cmd
}

func printHistory(out io.Writer, entries []history.Entry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		if entries == nil {
			entries = []history.Entry{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "table", "":
		if len(entries) == 0 {
			_, err := fmt.Fprintln(out, "[*] No captures recorded")
			return err
		}
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "Created", "Selection", "Size", "Path"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				shortID(e.ID),
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Selection,
				fmt.Sprintf("%dx%d", e.Width, e.Height),
				e.Path,
			})
		}
		_, err := fmt.Fprintln(out, t.Render())
		return err
	default:
		return fmt.Errorf("unknown format %q: expected table or json", format)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newConfigCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigPathOverride: opts.configPath})
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
	var target string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a .env file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigPathOverride: opts.configPath})
			if err != nil {
				return err
			}
			path := target
			if path == "" {
				path = cfg.Path
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().StringVar(&target, "path", "", "Destination (default: the loaded or per-user config file)")
	cmd.AddCommand(initCmd)
	return cmd
}

func printConfig(out io.Writer, cfg *config.Config) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Setting", "Value"})
	historyDB := cfg.HistoryDB
	if historyDB == "" {
		historyDB = config.HistoryDisabled
	}
	t.AppendRows([]table.Row{
		{"COPY_TO_CLIPBOARD", cfg.CopyToClipboard},
		{"AUTO_OPEN", cfg.AutoOpen},
		{"SAVE_LOCALLY", cfg.SaveLocally},
		{"SAVE_PATH", cfg.SavePath},
		{"OPEN_WITH_PROGRAM", cfg.OpenWithProgram},
		{"HOTKEY", cfg.Hotkey},
		{"DEFAULT_SELECTION", cfg.DefaultSelection},
		{"RESAMPLE_FILTER", cfg.ResampleFilter},
		{"ENABLE_FILE_LOGGING", cfg.EnableFileLogging},
		{"HISTORY_DB", historyDB},
	})
	t.SetCaption("loaded from %s", cfg.Path)
	_, err := fmt.Fprintln(out, t.Render())
	if err == nil {
		if verr := cfg.Validate(); verr != nil {
			_, err = fmt.Fprintf(out, "warning: %v\n", verr)
		}
	}
	return err
}
