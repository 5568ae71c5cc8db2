package filter

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
)

// Pipeline applies filters in order. Records produced by one filter are fed
// one by one to the next.
type Pipeline struct {
	filters []Filter
	logger  log.Log
	metrics *Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used to report ignored failures.
func WithLogger(l log.Log) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics enables per-filter counters.
func WithMetrics(m *Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

func NewPipeline(filters []Filter, opts ...Option) *Pipeline {
	p := &Pipeline{filters: slices.Clone(filters), logger: log.Nop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) Filters() []Filter { return slices.Clone(p.filters) }

// Process runs rec through every filter. It stops at the first failure not
// covered by IgnoreFailure.
func (p *Pipeline) Process(ctx context.Context, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	recs := one(rec)
	for i, f := range p.filters {
		next := make([]*filepulse.TypedStruct, 0, len(recs))
		for _, r := range recs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out, err := p.apply(ctx, i, f, r)
			if err != nil {
				return nil, fmt.Errorf("filter %d (%s): %w", i, f.Name(), err)
			}
			next = append(next, out...)
		}
		recs = next
		if len(recs) == 0 {
			break
		}
	}
	return recs, nil
}

func (p *Pipeline) apply(ctx context.Context, i int, f Filter, rec *filepulse.TypedStruct) ([]*filepulse.TypedStruct, error) {
	inner, lenient := f.(ignoreFailure)
	if !lenient {
		out, err := f.Apply(ctx, rec)
		p.metrics.observe(f.Name(), len(out), err, false)
		return out, err
	}
	out, err := inner.Filter.Apply(ctx, rec.Clone())
	if err == nil {
		p.metrics.observe(f.Name(), len(out), nil, false)
		return out, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	p.metrics.observe(f.Name(), 1, err, true)
	p.logger.Warn("filter failure ignored",
		log.Int("index", i),
		log.String("filter", f.Name()),
		log.Error(err))
	return one(rec), nil
}

// ProcessAll processes recs with at most workers records in flight. Output
// keeps the input order. workers <= 0 means one.
func (p *Pipeline) ProcessAll(ctx context.Context, recs []*filepulse.TypedStruct, workers int) ([]*filepulse.TypedStruct, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([][]*filepulse.TypedStruct, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range recs {
		g.Go(func() error {
			out, err := p.Process(gctx, rec)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

// Schema folds the schemas of recs with Merge. An empty input yields the
// NULL schema.
func Schema(recs []*filepulse.TypedStruct) (filepulse.Schema, error) {
	var acc filepulse.Schema = filepulse.None()
	for i, r := range recs {
		merged, err := filepulse.Merge(acc, r.Schema())
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		acc = merged
	}
	return acc, nil
}
