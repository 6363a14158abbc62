package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-snip/src/logutil"
	"screen-snip/src/screenshot"
	"screen-snip/src/selection"
	"screen-snip/src/snipfile"
)

type cliOptions struct {
	rect       string
	outPath    string
	jsonOutput bool
	verbose    bool
}

// capturer and saver are swapped out in tests.
var (
	capturer selection.Capturer = screenshot.Live{}
	saver    selection.Saver    = selection.SaverFunc(snipfile.Save)
)

func main() {
	if err := runWithArgs(normalizeLegacyArgs(os.Args), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"snip-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "snip-cli",
		Short:         "Capture a screen rectangle to an image file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, stdout)
		},
	}

	cmd.Flags().StringVar(&opts.rect, "rect", "", "Screen rectangle as left,top,right,bottom")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Output file (.png appended when it has no extension; the extension picks the format)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("rect")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"rect", "out", "json", "verbose"} {
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

func runWithOptions(opts cliOptions, stdout io.Writer) error {
	// Configure logging before any other operations.
	if opts.verbose {
		logutil.ToStderr("[verbose] ")
	} else {
		logutil.Discard()
	}

	r, err := parseRect(opts.rect)
	if err != nil {
		return err
	}
	log.Printf("Capturing %v", r)

	start := time.Now()
	img, err := capturer.Capture(r.Bounds())
	if err != nil {
		return fmt.Errorf("capture %v: %w", r, err)
	}
	path, err := saver.Save(img, opts.outPath)
	if err != nil {
		return fmt.Errorf("save snip: %w", err)
	}
	elapsed := time.Since(start)
	log.Printf("Saved %s in %v", path, elapsed)

	return outputResult(stdout, SnipResult{
		Path:      path,
		Rect:      [4]int{r.Left, r.Top, r.Right, r.Bottom},
		Width:     r.Width(),
		Height:    r.Height(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
	}, opts.jsonOutput)
}

// parseRect reads "left,top,right,bottom" and normalizes the corners.
func parseRect(s string) (selection.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return selection.Rect{}, fmt.Errorf("invalid --rect %q: want left,top,right,bottom", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return selection.Rect{}, fmt.Errorf("invalid --rect %q: %w", s, err)
		}
		v[i] = n
	}
	r := selection.RectFromCorners(selection.Point{X: v[0], Y: v[1]}, selection.Point{X: v[2], Y: v[3]})
	if r.Empty() {
		return selection.Rect{}, fmt.Errorf("invalid --rect %q: %w", s, screenshot.ErrEmptyRegion)
	}
	return r, nil
}

type SnipResult struct {
	Path      string  `json:"path"`
	Rect      [4]int  `json:"rect"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
}

func outputResult(w io.Writer, res SnipResult, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprintln(w, res.Path)
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
