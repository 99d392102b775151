package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/saraf/clean-whiteboard-images/internal/config"
	"github.com/saraf/clean-whiteboard-images/pkg/engine"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the image engine installation",
		Long: `Check verifies that an ImageMagick binary is available and prints the
exact arguments each cleanup mode passes to it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.engineBinary, "engine", "",
		"image engine binary (default: magick or convert from PATH)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false,
		"disable colored output")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.EngineBinary = opts.engineBinary
	}
	if flags.Changed("no-color") {
		cfg.NoColor = opts.noColor
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	log := logger.NewLogger(logger.Config{
		Verbosity: opts.verbosity,
		JSON:      cfg.LogJSON,
		Output:    os.Stderr,
	})

	binary, err := engine.ResolveBinary(cfg.EngineBinary)
	if err != nil {
		fmt.Printf("engine binary:   %s\n", color.New(color.FgRed).Sprint("missing"))
		fmt.Println()
		fmt.Println("Install ImageMagick so that \"magick\" or \"convert\" is on PATH,")
		fmt.Println("or point --engine (WBCLEAN_ENGINE) at the binary.")
		return err
	}

	fmt.Printf("engine binary:   %s %s\n", binary, color.New(color.FgGreen).Sprint("ok"))

	eng, err := engine.NewMagick(engine.Options{
		Binary: cfg.EngineBinary,
	}, afero.NewOsFs(), log)
	if err != nil {
		return err
	}

	if version, err := eng.Version(cmd.Context()); err != nil {
		fmt.Printf("engine version:  unknown (%v)\n", err)
	} else {
		fmt.Printf("engine version:  %s\n", version)
	}

	fmt.Println()
	for _, mode := range []engine.ColorMode{engine.ModeColor, engine.ModeGray} {
		fmt.Printf("%s chain:\n", mode)
		fmt.Printf("  %s <input> %s <output>\n", binary, strings.Join(mode.Args(), " "))
	}

	return nil
}
