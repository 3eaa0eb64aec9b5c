package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/masker"
)

type rootFlags struct {
	config    string
	image     string
	script    string
	mask      string
	composite string
	verbose   bool
}

func newRootCommand() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "maskreplay --script FILE [flags]",
		Short: "Replay a mask painting session",
		Long: `maskreplay loads an image, feeds a YAML script of pointer, wheel and
key events to a mask editor, and writes the resulting mask and composite
as PNG files.

Timing in the script runs on a virtual clock, so debounced notifications
and deferred viewport updates are deterministic.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReplay(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "editor config file (YAML)")
	fl.StringVarP(&f.image, "image", "i", "", "image path, file:// URL, http(s) URL or data URI")
	fl.StringVarP(&f.script, "script", "s", "", "event script (YAML)")
	fl.StringVarP(&f.mask, "mask", "m", "", "write the mask PNG here")
	fl.StringVar(&f.composite, "composite", "", "write the image with the mask blended over it here")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log editor diagnostics to stderr")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func runReplay(cmd *cobra.Command, f rootFlags) error {
	if f.verbose {
		masker.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		defer masker.SetLogger(nil)
	}

	cfg := masker.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = masker.LoadConfig(f.config); err != nil {
			return err
		}
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	script, err := LoadScript(f.script)
	if err != nil {
		return err
	}

	e, sum, err := Replay(cmd.Context(), script, f.image, opts)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	if f.mask != "" {
		if err := writePNG(f.mask, e.Mask()); err != nil {
			return err
		}
	}
	if f.composite != "" {
		img, err := e.Composite()
		if err != nil {
			return err
		}
		if err := writePNG(f.composite, img); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "surface:  %dx%d\n", sum.Width, sum.Height)
	fmt.Fprintf(out, "events:   %d\n", sum.Events)
	fmt.Fprintf(out, "masks:    %d\n", sum.MaskChanges)
	fmt.Fprintf(out, "history:  %d (cursor %d)\n", sum.HistoryLen, sum.Cursor)
	fmt.Fprintf(out, "requests: undo %d, redo %d\n", sum.Undos, sum.Redos)
	return nil
}
