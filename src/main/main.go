package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/config"
	"github.com/sprintrstudio/openCap/src/eventloop"
	"github.com/sprintrstudio/openCap/src/logutil"
	"github.com/sprintrstudio/openCap/src/overlay"
	"github.com/sprintrstudio/openCap/src/region"
	"github.com/sprintrstudio/openCap/src/runtimeinit"
	"github.com/sprintrstudio/openCap/src/session"
	"github.com/sprintrstudio/openCap/src/singleinstance"
	"github.com/sprintrstudio/openCap/src/tray"
)

type mainOptions struct {
	runOnce    bool
	selection  string
	configPath string
	savePath   string
	verbose    bool
}

// legacyLongFlags are accepted with a single dash for compatibility.
var legacyLongFlags = []string{"run-once", "select", "config", "save-path", "verbose"}

func init() {
	// systray needs the main goroutine on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// normalizeLegacyArgs maps -run-once style flags to cobra's --run-once.
func normalizeLegacyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		arg := out[i]
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(arg[1:], "=")
		for _, flag := range legacyLongFlags {
			if name == flag {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opencap",
		Short:         "Multi-monitor screenshot tool",
		Long:          "Runs the tray resident by default. With --run-once, hands one capture to a running resident or performs it standalone.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runOnce {
				return runOnce(cmd.Context(), opts, cmd.OutOrStdout())
			}
			return runResident(opts)
		},
	}
	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Capture once and exit, delegating to a resident when one is running")
	cmd.Flags().StringVar(&opts.selection, "select", "", "Selection for --run-once: full, monitor:N or region:x,y,w,h (default DEFAULT_SELECTION)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a .env config file")
	cmd.Flags().StringVar(&opts.savePath, "save-path", "", "Override SAVE_PATH")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	return cmd
}

func bootstrap(opts *mainOptions, showErrors bool) (*runtimeinit.Runtime, error) {
	setup := logutil.Setup
	if opts.verbose {
		setup = func(bool) { logutil.SetupStderr() }
	}
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			ConfigPathOverride:       opts.configPath,
			SavePathOverride:         opts.savePath,
			DefaultSelectionOverride: opts.selection,
		},
		SetupLogging:            setup,
		ShowBlockingConfigError: showErrors,
	})
}

func runOnce(ctx context.Context, opts *mainOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Load .env early so SINGLEINSTANCE_PORT_* are applied before delegation scan
	cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigPathOverride: opts.configPath, DefaultSelectionOverride: opts.selection})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return err
	}
	sel, err := region.ParseSelection(cfg.DefaultSelection)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid selection: %v\n", err)
		return err
	}

	return handleRunOnceWithDelegation(ctx, sel, singleinstance.NewClient(), out, func() error {
		return runStandalone(ctx, opts, sel, out)
	})
}

// handleRunOnceWithDelegation tries the resident first and falls back to
// fallback when none answers or the transport fails. An error reported by
// the resident itself, busy included, is returned as is.
func handleRunOnceWithDelegation(ctx context.Context, sel region.Selection, client singleinstance.Client, out io.Writer, fallback func() error) error {
	delegated, path, err := client.TryRunOnce(ctx, sel)
	if singleinstance.IsRemote(err) {
		log.Printf("Resident reported an error: %v", err)
		fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
		return err
	}
	if err != nil {
		log.Printf("Delegation error: %v; falling back to standalone", err)
		return fallback()
	}
	if !delegated {
		log.Printf("No resident detected (not delegated), running standalone")
		return fallback()
	}
	log.Printf("Delegated to resident")
	if path != "" {
		fmt.Fprintln(out, path)
	}
	return nil
}

func runStandalone(ctx context.Context, opts *mainOptions, sel region.Selection, out io.Writer) error {
	rt, err := bootstrap(opts, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	defer rt.Close()

	sessOpts := rt.SessionOptions()
	sessOpts.Target = session.StdoutTarget{Writer: out}
	log.Printf("Running capture once (--run-once mode) for %s", sel)
	if _, err := session.Execute(ctx, sessOpts, overlay.Fixed{Selection: sel}); err != nil {
		fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
		return err
	}
	return nil
}

// ensureSingleResident fails if another resident already owns the start port.
func ensureSingleResident() error {
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy → resident already exists", startPort)
		return fmt.Errorf("one is already running on port %d", startPort)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free → we are the one true resident", startPort)
	return nil
}

func runResident(opts *mainOptions) error {
	rt, err := bootstrap(opts, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	defer rt.Close()
	cfg := rt.Config

	if err := ensureSingleResident(); err != nil {
		fmt.Println(err)
		return err
	}
	logMonitorConfiguration()

	defaultSel, err := region.ParseSelection(cfg.DefaultSelection)
	if err != nil {
		log.Printf("Invalid DEFAULT_SELECTION %q, using full: %v", cfg.DefaultSelection, err)
		defaultSel = region.Full()
	}

	var monitors []string
	if displays, err := rt.Screens.Displays(); err != nil {
		log.Printf("Display enumeration failed, monitor menu disabled: %v", err)
	} else {
		monitors = tray.MonitorLabels(compositor.LayoutOf(displays))
	}

	tooltip := fmt.Sprintf("OpenCap - Press %s to capture", cfg.Hotkey)
	loop := eventloop.New(rt.SessionOptions(), defaultSel)
	loop.SetDefaultTooltip(tooltip)
	if err := loop.StartHotkey(cfg.Hotkey); err != nil {
		log.Printf("Hotkey disabled: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		loopErr <- err
		tray.Quit()
	}()

	log.Printf("OpenCap resident initialized, hotkey %s captures %s", cfg.Hotkey, defaultSel)
	tray.Run(tray.Menu{
		Tooltip:   tooltip,
		Monitors:  monitors,
		OnCapture: loop.Trigger,
		OnQuit:    cancel,
	})
	cancel()

	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}
