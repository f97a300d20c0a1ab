package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sheetq/internal/engine"
	"github.com/roach88/sheetq/internal/source"
)

// TranslateResult is the output of the translate command.
type TranslateResult struct {
	SQL       string   `json:"sql"`
	Params    []any    `json:"params"`
	Table     string   `json:"table"`
	Aggregate string   `json:"aggregate,omitempty"`
	Local     []string `json:"local,omitempty"`
	Element   string   `json:"element,omitempty"`
}

func (r TranslateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sql:    %s\n", r.SQL)
	fmt.Fprintf(&b, "params: %v\n", r.Params)
	fmt.Fprintf(&b, "table:  %s", r.Table)
	if r.Aggregate != "" {
		fmt.Fprintf(&b, "\naggregate: %s", r.Aggregate)
	}
	if len(r.Local) > 0 {
		fmt.Fprintf(&b, "\nlocal:  %s", strings.Join(r.Local, ", "))
	}
	if r.Element != "" {
		fmt.Fprintf(&b, "\nelement: %s", r.Element)
	}
	return b.String()
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Print the SQL a query translates to",
		Long: `Translate query flags to the native SQL statement and its bound
parameters without running it. Takes the same flags as query; the file
argument is accepted for symmetry and not read.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, cmd)
		},
	}

	addQueryFlags(cmd, opts)
	return cmd
}

func runTranslate(opts *QueryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	q, cfg, err := opts.build()
	if err != nil {
		return formatter.Fail(ErrCodeBadFlag, err)
	}

	ex := engine.New(source.Static(), engine.WithMapping(cfg), engine.WithLogger(opts.logger()))
	st, err := ex.Translate(q)
	if err != nil {
		return formatter.Fail(ErrCodeBadFlag, err)
	}

	result := TranslateResult{
		SQL:    st.SQL,
		Params: st.Params,
		Table:  st.Table.Key(),
	}
	if st.Params == nil {
		result.Params = []any{}
	}
	if st.Plan.Aggregate != nil {
		result.Aggregate = st.Plan.Aggregate.Name()
	}
	for _, op := range st.Plan.Local {
		result.Local = append(result.Local, op.Name())
	}
	if st.Plan.Element != nil {
		result.Element = st.Plan.Element.Name()
	}
	return formatter.Success(result)
}
