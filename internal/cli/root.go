package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional config file

	// Settings holds the config file and environment defaults, loaded
	// before any subcommand runs.
	Settings Settings

	// Logger is the logger commands hand to the executor.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sheetq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sheetq",
		Short: "sheetq - query spreadsheets",
		Long: `Query worksheets of Excel, CSV and Parquet files with filters,
ordering, paging and aggregates. Each worksheet is a table; each header
cell names a column.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file with flag defaults")

	// Add subcommands
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewSheetsCommand(opts))
	cmd.AddCommand(NewColumnsCommand(opts))

	return cmd
}

// prepare layers config defaults under unset flags and installs the logger.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	settings, err := LoadSettings(o.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "load settings", err)
	}
	o.Settings = settings

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = settings.Format
	}
	if !flags.Changed("verbose") {
		o.Verbose = settings.Verbose
	}

	// Validate format flag
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	logLevel := slog.LevelWarn
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
