package filter_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	fp "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/filter"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
)

func TestPipeline_ChainsFilters(t *testing.T) {
	p := filter.NewPipeline([]filter.Filter{
		filter.Split{Field: "tags"},
		filter.Explode{Field: "tags"},
		filter.Rename{Field: "tags", Target: "tag"},
	})
	rec := record(t, map[string]any{"tags": "a,b"})

	out, err := p.Process(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i, want := range []string{"a", "b"} {
		s, err := out[i].GetString("tag")
		require.NoError(t, err)
		assert.Equal(t, want, s)
	}
	assert.Len(t, p.Filters(), 3)
}

func TestPipeline_DropStopsChain(t *testing.T) {
	var calls atomic.Int32
	drop := filter.Func("drop", func(context.Context, *fp.TypedStruct) ([]*fp.TypedStruct, error) {
		return nil, nil
	})
	count := filter.Func("count", func(_ context.Context, r *fp.TypedStruct) ([]*fp.TypedStruct, error) {
		calls.Add(1)
		return []*fp.TypedStruct{r}, nil
	})

	out, err := filter.NewPipeline([]filter.Filter{drop, count}).Process(context.Background(), fp.NewStruct())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, calls.Load())
}

func TestPipeline_ErrorNamesFilter(t *testing.T) {
	p := filter.NewPipeline([]filter.Filter{
		filter.Exclude{Fields: []string{"x"}},
		filter.Convert{Field: "n", To: fp.TypeInteger},
	})

	_, err := p.Process(context.Background(), record(t, map[string]any{"n": "abc"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter 1 (convert)")
	assert.True(t, errors.Is(err, fp.ErrConversion))
}

func TestPipeline_IgnoreFailureLogsAndPassesThrough(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := filter.NewPipeline([]filter.Filter{
		filter.IgnoreFailure(filter.Convert{Field: "n", To: fp.TypeInteger}),
		filter.Rename{Field: "n", Target: "value"},
	}, filter.WithLogger(log.NewWithCore(core)))

	out, err := p.Process(context.Background(), record(t, map[string]any{"n": "abc"}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	s, err := out[0].GetString("value")
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	entries := logs.FilterMessage("filter failure ignored").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "convert", entries[0].ContextMap()["filter"])
}

func TestPipeline_IgnoreFailureDiscardsPartialMutation(t *testing.T) {
	half := filter.Func("half", func(_ context.Context, r *fp.TypedStruct) ([]*fp.TypedStruct, error) {
		r.Put("touched", fp.Bool(true))
		return nil, errors.New("boom")
	})
	p := filter.NewPipeline([]filter.Filter{filter.IgnoreFailure(half)})

	out, err := p.Process(context.Background(), record(t, map[string]any{"a": "x"}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.False(t, out[0].Has("touched"))
}

func TestPipeline_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := filter.NewPipeline([]filter.Filter{filter.Exclude{}}).Process(ctx, fp.NewStruct())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_ProcessAllKeepsOrder(t *testing.T) {
	p := filter.NewPipeline([]filter.Filter{filter.Split{Field: "v", Separator: "-"}, filter.Explode{Field: "v"}})
	var recs []*fp.TypedStruct
	for i := range 20 {
		recs = append(recs, fp.NewStruct().Put("v", fp.String(fmt.Sprintf("%d-%d", i, i))))
	}

	out, err := p.ProcessAll(context.Background(), recs, 4)
	require.NoError(t, err)
	require.Len(t, out, 40)
	for i, r := range out {
		s, err := r.GetString("v")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(i/2), s)
	}
}

func TestPipeline_ProcessAllFailure(t *testing.T) {
	p := filter.NewPipeline([]filter.Filter{filter.Convert{Field: "n", To: fp.TypeLong}})
	recs := []*fp.TypedStruct{
		record(t, map[string]any{"n": "1"}),
		record(t, map[string]any{"n": "x"}),
	}

	_, err := p.ProcessAll(context.Background(), recs, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestSchema_FoldsRecords(t *testing.T) {
	s, err := filter.Schema(nil)
	require.NoError(t, err)
	assert.Equal(t, fp.TypeNull, s.Type())

	a := fp.NewStruct().Put("n", fp.Long(1))
	b := fp.NewStruct().Put("n", fp.Long(2))
	s, err = filter.Schema([]*fp.TypedStruct{a, b})
	require.NoError(t, err)
	assert.True(t, s.Equal(a.Schema()))

	c := fp.NewStruct().Put("other", fp.Long(2))
	_, err = filter.Schema([]*fp.TypedStruct{a, c})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fp.ErrSchemaMerge))
}

func TestMetrics_CountsPerFilter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := filter.NewMetrics(reg)
	require.NoError(t, err)

	p := filter.NewPipeline([]filter.Filter{
		filter.Split{Field: "v"},
		filter.Explode{Field: "v"},
		filter.IgnoreFailure(filter.Convert{Field: "v", To: fp.TypeLong}),
	}, filter.WithMetrics(m))

	_, err = p.Process(context.Background(), fp.NewStruct().Put("v", fp.String("1,x")))
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "filepulse_filter_records_in_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = testutil.GatherAndCount(reg, "filepulse_filter_failures_ignored_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	again, err := filter.NewMetrics(reg)
	require.NoError(t, err, "registering twice shares the counters")
	assert.NotNil(t, again)
}

func TestSchema_FailsOnUninferableArrays(t *testing.T) {
	recs := []*fp.TypedStruct{
		record(t, map[string]any{"tags": []any{true, int64(1)}}),
		record(t, map[string]any{"tags": []any{false, int64(2)}}),
	}

	_, err := filter.Schema(recs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fp.ErrSchemaMerge))
}

func TestSchema_SingleRecordWithUninferableArrayFails(t *testing.T) {
	_, err := filter.Schema([]*fp.TypedStruct{record(t, map[string]any{"tags": []any{true, 1.5}})})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fp.ErrSchemaMerge))
}
