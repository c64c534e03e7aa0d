package dispatch

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/resql/internal/route"
	"github.com/roach88/resql/internal/savedquery"
)

// BatchError reports the batch entry that stopped a batch.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch entry %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// ExecuteBatch runs the POST query addressed by name once per parameter set
// and returns the results in input order.
//
// name is a full query path, "project/logical/name", with or without a
// leading slash. The project is taken from its first segment.
//
// The batch is fail-fast: the first failing entry cancels the batch, no
// further entries start, and its error is returned wrapped in a *BatchError
// with no partial results. Entries that already ran are not rolled back.
func (d *Dispatcher) ExecuteBatch(ctx context.Context, name string, batch []map[string]any) (results [][]Row, err error) {
	path := name
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	ctx, span := d.tracer.Start(ctx, SpanBatch,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrName, path),
			attribute.Int(AttrBatchSize, len(batch)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	project, remainder, err := route.Resolve(path)
	if err != nil {
		return nil, err
	}

	// A missing query fails the whole batch before any entry runs.
	if _, err := d.queries.Lookup(project, savedquery.MethodPost, remainder); err != nil {
		return nil, err
	}

	d.logger.Debug("executing batch",
		"project", project,
		"name", remainder,
		"entries", len(batch),
		"concurrency", d.batchConcurrency)

	results = make([][]Row, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.batchConcurrency)

	for i, params := range batch {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &BatchError{Index: i, Err: err}
			}
			rows, err := d.ExecuteSingle(gctx, project, savedquery.MethodPost, remainder, params)
			if err != nil {
				return &BatchError{Index: i, Err: err}
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
