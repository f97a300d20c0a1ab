package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sheetq/internal/engine"
	"github.com/roach88/sheetq/internal/queryir"
	"github.com/roach88/sheetq/internal/source"
)

// NameList is a list of names printed one per line in text mode.
type NameList []string

func (l NameList) String() string {
	return strings.Join(l, "\n")
}

// NewSheetsCommand creates the sheets command.
func NewSheetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "sheets <file>",
		Short:         "List the worksheets of a file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}

			ex := engine.New(source.File(args[0]), engine.WithLogger(rootOpts.logger()))
			defer ex.Close()

			names, err := ex.Sheets(cmd.Context())
			if err != nil {
				return formatter.Fail(ErrCodeLoadFailed, err)
			}
			return formatter.Success(NameList(names))
		},
	}
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		sheet    string
		rng      string
		noHeader bool
	)

	cmd := &cobra.Command{
		Use:           "columns <file>",
		Short:         "List the column names of a worksheet",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}

			table := queryir.Table{Name: sheet, NoHeader: noHeader}
			if rng != "" {
				r, err := parseRange(rng)
				if err != nil {
					return formatter.Fail(ErrCodeBadFlag, err)
				}
				table.Range = r
			}

			ex := engine.New(source.File(args[0]), engine.WithLogger(rootOpts.logger()))
			defer ex.Close()

			cols, err := ex.Columns(cmd.Context(), table)
			if err != nil {
				return formatter.Fail(ErrCodeLoadFailed, err)
			}
			return formatter.Success(NameList(cols))
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name (required)")
	cmd.Flags().StringVar(&rng, "range", "", "cell range, e.g. B2:F100")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "first row is data; columns are F1..Fn")
	_ = cmd.MarkFlagRequired("sheet")
	return cmd
}
