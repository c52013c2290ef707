package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/cmd/fuzzpatch/commands"
	"github.com/walteh/fuzzpatch/cmd/fuzzpatch/opts"
	"github.com/walteh/fuzzpatch/pkg/config"
	"github.com/walteh/fuzzpatch/pkg/diag"
	"github.com/walteh/fuzzpatch/pkg/log"
)

const defaultConfigFile = ".fuzzpatch.yaml"

// rootFlags are the flags shared by every command
type rootFlags struct {
	configFile string
	debug      bool
	logJSON    bool
}

// newRootCmd builds the command tree. Running the root with three arguments
// is the same as "edit".
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	rootOpts := &opts.RootOpts{Stdout: stdout}

	cmd := &cobra.Command{
		Use:   "fuzzpatch [pattern-file replacement-file target-file]",
		Short: "Replace a region of a file located by an approximate pattern",
		Long: `fuzzpatch finds the one region of a target file that a pattern refers to,
tolerating whitespace drift and small typos, and replaces it.

It refuses to guess: when nothing is similar enough, or when more than one
region is, the target is left untouched, the ranked candidates are printed
and a diagnostics record is written.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return errors.Errorf("expected a pattern file, a replacement file and a target file, got %d arguments", len(args))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), stderr, flags)
			cmd.SetContext(ctx)
			return loadRootOpts(ctx, cmd, flags, rootOpts, stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return commands.RunEdit(cmd.Context(), rootOpts, args, false)
		},
	}

	addRootFlags(cmd, flags)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(
		commands.NewEditCmd(rootOpts),
		commands.NewDiagnosticsCmd(rootOpts),
		commands.NewThresholdsCmd(rootOpts),
		newVersionCmd(rootOpts),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", defaultConfigFile, "config file path (yaml, hcl or json)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "write structured logs as json")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, stderr io.Writer, flags *rootFlags) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	level := zerolog.WarnLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	if flags.logJSON {
		out = stderr
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// loadRootOpts fills rootOpts from the config file and flags. The default
// config file is optional; one named with --config must exist.
func loadRootOpts(ctx context.Context, cmd *cobra.Command, flags *rootFlags, rootOpts *opts.RootOpts, stderr io.Writer) error {
	load := config.LoadOptional
	if cmd.Flags().Changed("config") {
		load = config.Load
	}

	cfg, err := load(ctx, flags.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	mirror := zerolog.Nop()
	if flags.logJSON {
		mirror = *zerolog.Ctx(ctx)
	}

	rootOpts.Config = cfg
	rootOpts.Console = log.New(stderr, mirror)
	rootOpts.Sink = diag.NopSink{}
	if !cfg.Diagnostics.Disabled {
		rootOpts.Sink = diag.NewFileSink(cfg.Diagnostics.Dir)
	}

	zerolog.Ctx(ctx).Debug().
		Str("config", cfg.Location()).
		Str("settings", cfg.String()).
		Msg("configuration loaded")
	return nil
}
