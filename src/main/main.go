package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"screen-snip/src/config"
	"screen-snip/src/gui"
	"screen-snip/src/hotkey"
	"screen-snip/src/logutil"
	"screen-snip/src/singleinstance"
)

const appID = "io.github.screensnip"

type mainOptions struct {
	envPath string
	hotkey  string
	snip    bool
}

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	args = normalizeLegacyArgs(args)
	if len(args) == 0 {
		args = []string{"screen-snip"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-snip",
		Short:         "Capture a region of the screen and save it as an image",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.envPath, "env-file", "", "Path to a .env file (highest precedence)")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Global hotkey, e.g. Ctrl+Alt+S ('none' disables it)")
	cmd.Flags().BoolVar(&opts.snip, "snip", false, "Start a selection immediately (in the running instance if there is one)")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags to their GNU form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"env-file", "hotkey", "snip"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

func runApp(opts mainOptions) error {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		EnvPathOverride: opts.envPath,
		HotkeyOverride:  opts.hotkey,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logutil.Setup(cfg.EnableFileLogging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if delegated, err := delegateToResident(ctx, singleinstance.NewClient(), opts.snip); delegated {
		return err
	}

	server := singleinstance.NewServer()
	if err := server.Start(ctx); err != nil {
		log.Printf("Single-instance endpoint unavailable, continuing without it: %v", err)
		server = nil
	} else {
		defer server.Close()
	}

	logMonitorConfiguration()

	a := app.NewWithID(appID)
	shell := gui.New(a, gui.Options{
		OverlayOpacity: cfg.OverlayOpacity,
		SaveDir:        cfg.SaveDir,
		WindowSize:     fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)),
	})

	log.Printf("Screen Snip initialized (hotkey: %q, overlay opacity: %.2f)", cfg.Hotkey, cfg.OverlayOpacity)

	if listener := startHotkey(cfg.Hotkey, shell); listener != nil {
		defer listener.Stop()
	}
	if server != nil {
		go serveResident(ctx, server, shell, fyne.DoAndWait)
	}
	if opts.snip {
		a.Lifecycle().SetOnStarted(func() { shell.RequestSnip() })
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			log.Printf("Signal received, quitting")
			fyne.Do(a.Quit)
		case <-ctx.Done():
		}
	}()

	shell.ShowAndRun()
	log.Printf("Screen Snip stopped")
	return nil
}

// startHotkey registers the global hotkey. Failures are logged; the window
// buttons keep working without it.
func startHotkey(combo string, shell *gui.Shell) *hotkey.Listener {
	if combo == "" {
		log.Printf("Global hotkey disabled")
		return nil
	}
	listener, err := hotkey.New(combo)
	if err != nil {
		log.Printf("Global hotkey unavailable: %v", err)
		return nil
	}
	listener.Start(func() {
		fyne.Do(func() { shell.RequestSnip() })
	})
	return listener
}
