package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/sheetq/internal/mapping"
	"github.com/roach88/sheetq/internal/materialize"
	"github.com/roach88/sheetq/internal/queryir"
	"github.com/roach88/sheetq/internal/querysql"
	"github.com/roach88/sheetq/internal/source"
)

// Executor runs queries against a source.
//
// Thread-safety model: an Executor serves one execution at a time. The
// persistent connection, when enabled, is reused without locking.
type Executor struct {
	src        source.Source
	cfg        *mapping.Config
	translator *querysql.Translator
	logger     *slog.Logger
	ids        IDGenerator
	clock      *Clock

	persistent bool
	conn       source.Conn // held between executions in persistent mode
}

// Option configures an Executor.
type Option func(*Executor)

// WithMapping sets the property-to-column mapping and its policies.
func WithMapping(cfg *mapping.Config) Option {
	return func(e *Executor) {
		e.cfg = cfg
	}
}

// WithPersistent keeps one source connection open across executions.
// Loaded worksheets stay cached until Close.
func WithPersistent() Option {
	return func(e *Executor) {
		e.persistent = true
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithIDGenerator sets the execution ID generator.
// Default: UUIDv7Generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Executor) {
		e.ids = gen
	}
}

// New creates an Executor over src.
func New(src source.Source, opts ...Option) *Executor {
	e := &Executor{
		src:    src,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.translator = querysql.NewTranslator(e.cfg)
	return e
}

// Translate translates q without executing it.
func (e *Executor) Translate(q queryir.Query) (querysql.Statement, error) {
	return e.translator.Translate(q)
}

// Sheets lists the worksheet names of the source.
func (e *Executor) Sheets(ctx context.Context) ([]string, error) {
	conn, release, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return conn.Sheets(), nil
}

// Columns lists the column names of a worksheet view.
func (e *Executor) Columns(ctx context.Context, t queryir.Table) ([]string, error) {
	conn, release, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	cols, err := conn.Columns(ctx, t)
	if err != nil {
		return nil, classify(ctx, conn, querysql.Statement{Table: t}, err)
	}
	return cols, nil
}

// Close releases the persistent connection, if any.
func (e *Executor) Close() error {
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

// connect returns a connection and the func that releases it. In
// persistent mode the connection is kept and release is a no-op.
func (e *Executor) connect(ctx context.Context) (source.Conn, func(), error) {
	if e.persistent && e.conn != nil {
		return e.conn, func() {}, nil
	}

	conn, err := e.src.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to source: %w", err)
	}
	if e.persistent {
		e.conn = conn
		return conn, func() {}, nil
	}
	return conn, func() { _ = conn.Close() }, nil
}

// Result is the outcome of one execution.
type Result[T any] struct {
	Shape Shape

	// Items holds the rows of a ShapeSequence result.
	Items []T

	// Item holds the selected row of a ShapeElement result; Found is false
	// when an *OrDefault operator met an empty sequence.
	Item  T
	Found bool

	// Scalar holds the aggregate of a ShapeScalar result: int64 for
	// Count/LongCount, else the column's value type, or nil.
	Scalar any
}

// Execute runs q and materializes each row into a T described by desc.
func Execute[T any](ctx context.Context, e *Executor, q queryir.Query, desc materialize.Descriptor[T]) (Result[T], error) {
	run := e.begin(q)
	return runExecution(ctx, run, q, func(st querysql.Statement, cols []string) (func([]any) (T, error), error) {
		plan, err := materialize.NewPlan(desc, materialize.Input{
			Resolver:   e.translator.Resolver(),
			Table:      q.From,
			Projection: q.Select,
			Projected:  st.Projected,
			Columns:    cols,
			Logger:     run.logger,
		})
		if err != nil {
			return nil, err
		}
		return plan.Materialize, nil
	})
}

// ExecuteRows runs q and returns dynamic row records.
func ExecuteRows(ctx context.Context, e *Executor, q queryir.Query) (Result[materialize.Row], error) {
	run := e.begin(q)
	return runExecution(ctx, run, q, func(_ querysql.Statement, cols []string) (func([]any) (materialize.Row, error), error) {
		layout := materialize.NewRowLayout(cols, !q.From.NoHeader, e.translator.Resolver().Trim())
		return func(values []any) (materialize.Row, error) {
			return layout.Row(values), nil
		}, nil
	})
}

// execution tracks the state of one run for logging.
type execution struct {
	e      *Executor
	logger *slog.Logger
	state  State
	start  time.Time
}

func (e *Executor) begin(q queryir.Query) *execution {
	logger := e.logger.With(
		"exec", e.ids.Generate(),
		"seq", e.clock.Next(),
		"table", q.From.Name,
	)
	return &execution{e: e, logger: logger, state: StateIdle, start: time.Now()}
}

func (x *execution) transition(to State) {
	x.logger.Debug("state transition", "from", x.state.String(), "to", to.String())
	x.state = to
}

func (x *execution) fail(err error) error {
	x.logger.Debug("execution failed", "state", x.state.String(), "error", err)
	x.state = StateFailed
	return err
}

// rowFunc builds the per-row converter once the cursor's columns are known.
type rowFunc[T any] func(st querysql.Statement, cols []string) (func([]any) (T, error), error)

func runExecution[T any](ctx context.Context, x *execution, q queryir.Query, build rowFunc[T]) (Result[T], error) {
	var zero Result[T]

	x.transition(StateTranslating)
	st, err := x.e.translator.Translate(q)
	if err != nil {
		return zero, x.fail(err)
	}
	x.logger.Debug("translated", "sql", st.SQL, "params", len(st.Params))

	x.transition(StateExecuting)
	conn, release, err := x.e.connect(ctx)
	if err != nil {
		return zero, x.fail(err)
	}
	defer release()

	cur, err := conn.Execute(ctx, st)
	if err != nil {
		return zero, x.fail(classify(ctx, conn, st, err))
	}
	defer cur.Close()

	x.transition(StateClassifyingShape)
	if st.Plan.Scalar() {
		v, err := readScalar(cur)
		if err != nil {
			return zero, x.fail(err)
		}
		x.complete("scalar", 1)
		return Result[T]{Shape: ShapeScalar, Scalar: v}, nil
	}

	x.transition(StateMaterializing)
	convert, err := build(st, cur.Columns())
	if err != nil {
		return zero, x.fail(err)
	}

	var items []T
	for cur.Next() {
		item, err := convert(cur.Values())
		if err != nil {
			return zero, x.fail(err)
		}
		items = append(items, item)
	}
	if err := cur.Err(); err != nil {
		return zero, x.fail(fmt.Errorf("read rows: %w", err))
	}

	x.transition(StatePostProcessing)
	items = applyLocal(items, st.Plan.Local)

	if st.Plan.Element == nil {
		x.complete(ShapeSequence.String(), len(items))
		return Result[T]{Shape: ShapeSequence, Items: items}, nil
	}

	item, found, err := selectElement(items, st.Plan.Element)
	if err != nil {
		return zero, x.fail(err)
	}
	x.complete(ShapeElement.String(), len(items))
	return Result[T]{Shape: ShapeElement, Item: item, Found: found}, nil
}

func (x *execution) complete(shape string, rows int) {
	x.transition(StateCompleted)
	x.logger.Debug("execution completed",
		"shape", shape,
		"rows", rows,
		"elapsed", time.Since(x.start))
}

// readScalar reads the single aggregate value.
func readScalar(cur source.Cursor) (any, error) {
	var v any
	if cur.Next() {
		if values := cur.Values(); len(values) > 0 {
			v = values[0]
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("read aggregate: %w", err)
	}
	return v, nil
}
