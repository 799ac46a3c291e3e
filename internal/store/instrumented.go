package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented records operation counts and latency for a wrapped Store.
type Instrumented struct {
	next     Store
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewInstrumented(next Store, reg prometheus.Registerer) *Instrumented {
	s := &Instrumented{
		next: next,
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ayursutra",
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Document store operations by collection and outcome",
			},
			[]string{"operation", "collection", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ayursutra",
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Document store operation latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "collection"},
		),
	}
	reg.MustRegister(s.ops, s.duration)
	return s
}

func (s *Instrumented) observe(op, collection string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	s.ops.WithLabelValues(op, collection, status).Inc()
	s.duration.WithLabelValues(op, collection).Observe(time.Since(start).Seconds())
}

func (s *Instrumented) Get(ctx context.Context, collection, id string, out any) (err error) {
	defer func(start time.Time) { s.observe("get", collection, start, err) }(time.Now())
	return s.next.Get(ctx, collection, id, out)
}

func (s *Instrumented) Exists(ctx context.Context, collection, id string) (ok bool, err error) {
	defer func(start time.Time) { s.observe("exists", collection, start, err) }(time.Now())
	return s.next.Exists(ctx, collection, id)
}

func (s *Instrumented) Set(ctx context.Context, collection, id string, doc any) (err error) {
	defer func(start time.Time) { s.observe("set", collection, start, err) }(time.Now())
	return s.next.Set(ctx, collection, id, doc)
}

func (s *Instrumented) Merge(ctx context.Context, collection, id string, fields map[string]any) (err error) {
	defer func(start time.Time) { s.observe("merge", collection, start, err) }(time.Now())
	return s.next.Merge(ctx, collection, id, fields)
}

func (s *Instrumented) Update(ctx context.Context, collection, id string, fields map[string]any) (err error) {
	defer func(start time.Time) { s.observe("update", collection, start, err) }(time.Now())
	return s.next.Update(ctx, collection, id, fields)
}

func (s *Instrumented) Add(ctx context.Context, collection string, doc any) (id string, err error) {
	defer func(start time.Time) { s.observe("add", collection, start, err) }(time.Now())
	return s.next.Add(ctx, collection, doc)
}

func (s *Instrumented) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { s.observe("delete", collection, start, err) }(time.Now())
	return s.next.Delete(ctx, collection, id)
}

func (s *Instrumented) Find(ctx context.Context, collection string, q Query, out any) (err error) {
	defer func(start time.Time) { s.observe("find", collection, start, err) }(time.Now())
	return s.next.Find(ctx, collection, q, out)
}

func (s *Instrumented) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
