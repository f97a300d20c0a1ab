package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sheetq/internal/colref"
	"github.com/roach88/sheetq/internal/engine"
	"github.com/roach88/sheetq/internal/mapping"
	"github.com/roach88/sheetq/internal/materialize"
	"github.com/roach88/sheetq/internal/queryir"
	"github.com/roach88/sheetq/internal/source"
)

// QueryOptions holds flags for the query and translate commands.
type QueryOptions struct {
	*RootOptions
	Sheet    string
	Range    string
	NoHeader bool
	Where    string
	Select   []string
	OrderBy  []string
	Skip     int
	Take     int
	Reverse  bool
	Ops      []string
	Mapping  string
	Trim     string
	Strict   string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Query a worksheet",
		Long: `Query one worksheet of an .xlsx, .csv or .parquet file.

Filtering, ordering and paging run in the query engine; --reverse and
operators after it run over the fetched rows. Operators apply in this
order: --skip, --take, --reverse, then each --op in the order given.

With --mapping, rows are read into the mapped properties, applying the
file's transforms and strict policy.

Example:
  sheetq query people.xlsx --sheet People --where "Age >= 30 AND Dept == 'Ops'" --order-by -Age
  sheetq query people.xlsx --sheet People --op sum:Salary
  sheetq query people.xlsx --sheet People --range B2:D20 --no-header --op first`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], cmd)
		},
	}

	addQueryFlags(cmd, opts)
	return cmd
}

func addQueryFlags(cmd *cobra.Command, opts *QueryOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.Sheet, "sheet", "", "worksheet name (required)")
	f.StringVar(&opts.Range, "range", "", "cell range, e.g. B2:F100")
	f.BoolVar(&opts.NoHeader, "no-header", false, "first row is data; columns are F1..Fn")
	f.StringVarP(&opts.Where, "where", "w", "", "filter expression")
	f.StringSliceVar(&opts.Select, "select", nil, "properties to fetch")
	f.StringSliceVar(&opts.OrderBy, "order-by", nil, "ordering, e.g. Dept,-Age (- for descending)")
	f.IntVar(&opts.Skip, "skip", 0, "rows to skip")
	f.IntVar(&opts.Take, "take", -1, "rows to take (-1 = all)")
	f.BoolVar(&opts.Reverse, "reverse", false, "reverse the sequence")
	f.StringArrayVar(&opts.Ops, "op", nil, "operator: count, first, last, single, sum:Col, skip:N, ... (repeatable)")
	f.StringVar(&opts.Mapping, "mapping", "", "mapping file (.yaml or .cue)")
	f.StringVar(&opts.Trim, "trim", "", "trim policy: none, start, end, both")
	f.StringVar(&opts.Strict, "strict", "", "strict policy: none, property, column, both")
	_ = cmd.MarkFlagRequired("sheet")
}

func runQuery(ctx context.Context, opts *QueryOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	q, cfg, err := opts.build()
	if err != nil {
		return formatter.Fail(ErrCodeBadFlag, err)
	}

	ex := engine.New(source.File(path),
		engine.WithMapping(cfg),
		engine.WithLogger(opts.logger()),
	)
	defer ex.Close()

	var data TableData
	if opts.Mapping != "" {
		data, err = queryMapped(ctx, ex, q, cfg)
	} else {
		data, err = queryRows(ctx, ex, q)
	}
	if err != nil {
		return formatter.Fail(ErrCodeLoadFailed, err)
	}
	return formatter.Success(data)
}

// queryRows returns the result rows under their column names.
func queryRows(ctx context.Context, ex *engine.Executor, q queryir.Query) (TableData, error) {
	res, err := engine.ExecuteRows(ctx, ex, q)
	if err != nil {
		return TableData{}, err
	}

	switch res.Shape {
	case engine.ShapeScalar:
		return scalarTable(q, res.Scalar), nil
	case engine.ShapeElement:
		if !res.Found {
			return TableData{Columns: q.Select, Rows: [][]any{}}, nil
		}
		return TableData{Columns: res.Item.Columns(), Rows: [][]any{res.Item.Values()}}, nil
	}

	data := TableData{Columns: q.Select, Rows: make([][]any, 0, len(res.Items))}
	for _, row := range res.Items {
		data.Columns = row.Columns()
		data.Rows = append(data.Rows, row.Values())
	}
	return data, nil
}

// record holds one row read into mapped properties.
type record struct {
	values map[string]any
}

// queryMapped reads rows into the mapped properties of cfg, or the
// selected ones.
func queryMapped(ctx context.Context, ex *engine.Executor, q queryir.Query, cfg *mapping.Config) (TableData, error) {
	props := q.Select
	if len(props) == 0 {
		props = cfg.Properties()
	}
	fields := make([]materialize.Field[record], len(props))
	for i, name := range props {
		fields[i] = materialize.Any(name, func(r *record, v any) {
			if r.values == nil {
				r.values = make(map[string]any, len(props))
			}
			r.values[name] = v
		})
	}

	res, err := engine.Execute(ctx, ex, q, materialize.Describe(fields...))
	if err != nil {
		return TableData{}, err
	}

	data := TableData{Columns: props, Rows: [][]any{}}
	appendRecord := func(r record) {
		row := make([]any, len(props))
		for i, name := range props {
			row[i] = r.values[name]
		}
		data.Rows = append(data.Rows, row)
	}
	switch res.Shape {
	case engine.ShapeScalar:
		return scalarTable(q, res.Scalar), nil
	case engine.ShapeElement:
		if res.Found {
			appendRecord(res.Item)
		}
	default:
		for _, r := range res.Items {
			appendRecord(r)
		}
	}
	return data, nil
}

func scalarTable(q queryir.Query, v any) TableData {
	name := q.Operators[len(q.Operators)-1].Name()
	return TableData{Columns: []string{name}, Rows: [][]any{{v}}}
}

// build converts the flags into a query and its mapping configuration.
// Flag policies override the mapping file, which overrides the settings.
func (o *QueryOptions) build() (queryir.Query, *mapping.Config, error) {
	q := queryir.Query{
		From:   queryir.Table{Name: o.Sheet, NoHeader: o.NoHeader},
		Select: o.Select,
	}

	if o.Range != "" {
		rng, err := parseRange(o.Range)
		if err != nil {
			return q, nil, err
		}
		q.From.Range = rng
	}

	filter, err := ParseFilter(o.Where)
	if err != nil {
		return q, nil, fmt.Errorf("parse filter: %w", err)
	}
	q.Filter = filter

	for _, item := range o.OrderBy {
		item = strings.TrimSpace(item)
		desc := strings.HasPrefix(item, "-")
		q.OrderBy = append(q.OrderBy, queryir.Ordering{
			Member:     strings.TrimPrefix(item, "-"),
			Descending: desc,
		})
	}

	if o.Skip > 0 {
		q.Operators = append(q.Operators, queryir.Skip{N: o.Skip})
	}
	if o.Take >= 0 {
		q.Operators = append(q.Operators, queryir.Take{N: o.Take})
	}
	if o.Reverse {
		q.Operators = append(q.Operators, queryir.Reverse{})
	}
	for _, text := range o.Ops {
		op, err := queryir.ParseOperator(text)
		if err != nil {
			return q, nil, err
		}
		q.Operators = append(q.Operators, op)
	}

	cfg, err := o.mappingConfig()
	if err != nil {
		return q, nil, err
	}
	return q, cfg, nil
}

func (o *QueryOptions) mappingConfig() (*mapping.Config, error) {
	var (
		cfg *mapping.Config
		err error
	)
	if o.Mapping != "" {
		cfg, err = mapping.LoadFile(o.Mapping, nil)
	} else {
		cfg, err = mapping.NewConfig()
		if err == nil {
			cfg.Trim, err = mapping.ParseTrimPolicy(o.Settings.Trim)
		}
		if err == nil {
			cfg.Strict, err = mapping.ParseStrictPolicy(o.Settings.Strict)
		}
	}
	if err != nil {
		return nil, err
	}

	if o.Trim != "" {
		if cfg.Trim, err = mapping.ParseTrimPolicy(o.Trim); err != nil {
			return nil, err
		}
	}
	if o.Strict != "" {
		if cfg.Strict, err = mapping.ParseStrictPolicy(o.Strict); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// parseRange parses "B2:F100", "B2:" or "B2".
func parseRange(text string) (colref.Range, error) {
	start, end, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(text)), ":")
	return colref.NewRange(start, end)
}

// logger returns the root logger, or a discarding one when the command
// runs without its parent.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
