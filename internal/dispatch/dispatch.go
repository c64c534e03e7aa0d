package dispatch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/roach88/resql/internal/savedquery"
)

// Span names and attribute keys.
const (
	SpanExecute = "resql.execute"
	SpanBatch   = "resql.batch"

	AttrProject   = "resql.project"
	AttrMethod    = "resql.method"
	AttrName      = "resql.name"
	AttrRows      = "resql.rows"
	AttrCacheHit  = "resql.cache_hit"
	AttrBatchSize = "resql.batch.size"
)

// Row is one result row, column name to value.
type Row = map[string]any

// Queries resolves saved queries. *registry.Registry implements it.
type Queries interface {
	Lookup(project string, method savedquery.Method, name string) (savedquery.Definition, error)
}

// Executor runs a bound template. *store.Store implements it.
type Executor interface {
	Execute(ctx context.Context, template string, params map[string]any) ([]Row, error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTracer sets the tracer used for execution spans.
// Defaults to a no-op tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// WithCache enables caching of GET results for ttl. A ttl of zero or less
// leaves caching disabled.
func WithCache(ttl time.Duration) Option {
	return func(d *Dispatcher) {
		if ttl > 0 {
			d.cache = newResultCache(ttl)
		}
	}
}

// WithBatchConcurrency sets how many batch entries may run at once.
// Values below 1 are ignored. Defaults to 1.
func WithBatchConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchConcurrency = n
		}
	}
}

// Dispatcher executes saved queries. It is safe for concurrent use.
type Dispatcher struct {
	queries          Queries
	exec             Executor
	logger           *slog.Logger
	tracer           trace.Tracer
	cache            *resultCache
	batchConcurrency int
}

// New creates a Dispatcher over queries and exec.
func New(queries Queries, exec Executor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queries:          queries,
		exec:             exec,
		logger:           slog.Default(),
		tracer:           noop.NewTracerProvider().Tracer("resql"),
		batchConcurrency: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Has reports whether a query is registered for project, method and name.
func (d *Dispatcher) Has(project string, method savedquery.Method, name string) bool {
	_, err := d.queries.Lookup(project, method, name)
	return err == nil
}

// ExecuteSingle runs the query registered for (project, method, name) with
// params and returns its rows unchanged.
//
// A lookup miss is returned as the registry's *NotFoundError, a schema
// failure as *savedquery.ValidationError. Executor errors pass through
// unmodified.
func (d *Dispatcher) ExecuteSingle(ctx context.Context, project string, method savedquery.Method, name string, params map[string]any) (rows []Row, err error) {
	ctx, span := d.tracer.Start(ctx, SpanExecute,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrProject, project),
			attribute.String(AttrMethod, string(method)),
			attribute.String(AttrName, name),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int(AttrRows, len(rows)))
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	def, err := d.queries.Lookup(project, method, name)
	if err != nil {
		return nil, err
	}

	if err := def.Validate(params); err != nil {
		return nil, err
	}

	cacheKey, cacheable := "", false
	if d.cache != nil && method == savedquery.MethodGet {
		cacheKey, cacheable = d.cache.key(def.Key(), params)
	}
	if cacheable {
		if cached, ok := d.cache.get(cacheKey); ok {
			span.SetAttributes(attribute.Bool(AttrCacheHit, true))
			d.logger.Debug("cache hit", "query", def.Key().String())
			return cached, nil
		}
	}

	d.logger.Debug("executing saved query",
		"query", def.Key().String(),
		"source", def.Source(),
		"params", len(params))

	rows, err = d.exec.Execute(ctx, def.Body(), params)
	if err != nil {
		return nil, err
	}

	if cacheable {
		d.cache.set(cacheKey, rows)
	}
	return rows, nil
}
