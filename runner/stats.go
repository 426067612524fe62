package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/logging"
	"github.com/weldsql/weld/query"
)

// DefaultSlowThreshold is the slow-statement cutoff used when none is set.
const DefaultSlowThreshold = 100 * time.Millisecond

// QueryStats holds statement execution counters.
type QueryStats struct {
	// TotalQueries counts FetchRows calls.
	TotalQueries atomic.Int64
	// TotalExecs counts Execute calls.
	TotalExecs atomic.Int64
	// TotalDuration is the time spent in both, in nanoseconds.
	TotalDuration atomic.Int64
	// SlowQueries counts statements over the slow threshold.
	SlowQueries atomic.Int64
	// Errors counts statements that returned an error.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration returns the mean statement duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is called when a statement exceeds the slow threshold.
type SlowQueryHook func(ctx context.Context, sql string, args []any, duration time.Duration)

// StatsClient wraps a query.Client with counters, debug logging of every
// statement and slow-statement detection.
type StatsClient struct {
	client        query.Client
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

var _ query.Client = (*StatsClient)(nil)

// StatsOption configures a StatsClient.
type StatsOption func(*StatsClient)

// WithSlowThreshold sets the slow-statement threshold. Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsClient) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsClient) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements at warn level to the context logger.
func WithSlowQueryLog() StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, sql string, args []any, duration time.Duration) {
		logging.FromContext(ctx).Warn("slow query detected", "duration", duration, "sql", sql, "args", args)
	})
}

// Instrument wraps c:
//
//	client := runner.Instrument(db,
//	    runner.WithSlowThreshold(200*time.Millisecond),
//	    runner.WithSlowQueryLog(),
//	)
//	rows, err := query.From(Products).Run(ctx, client)
//	fmt.Println(client.QueryStats().Stats())
func Instrument(c query.Client, opts ...StatsOption) *StatsClient {
	s := &StatsClient{
		client:        c,
		stats:         &QueryStats{},
		slowThreshold: DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (s *StatsClient) QueryStats() *QueryStats {
	return s.stats
}

// SlowThreshold returns the current slow-statement threshold.
func (s *StatsClient) SlowThreshold() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slowThreshold
}

// SetSlowThreshold updates the slow-statement threshold.
func (s *StatsClient) SetSlowThreshold(threshold time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowThreshold = threshold
}

// Dialect returns the wrapped client's dialect.
func (s *StatsClient) Dialect() compile.Dialect {
	return s.client.Dialect()
}

// Execute runs a write and records statistics.
func (s *StatsClient) Execute(ctx context.Context, sql string, args []any) (int64, error) {
	start := time.Now()
	n, err := s.client.Execute(ctx, sql, args)
	s.record(ctx, sql, args, start, err, false)
	return n, err
}

// FetchRows runs a read and records statistics.
func (s *StatsClient) FetchRows(ctx context.Context, sql string, args []any) ([]query.Row, error) {
	start := time.Now()
	rows, err := s.client.FetchRows(ctx, sql, args)
	s.record(ctx, sql, args, start, err, true)
	return rows, err
}

func (s *StatsClient) record(ctx context.Context, sql string, args []any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		s.stats.TotalQueries.Add(1)
	} else {
		s.stats.TotalExecs.Add(1)
	}
	s.stats.TotalDuration.Add(int64(duration))

	log := logging.FromContext(ctx)
	if err != nil {
		s.stats.Errors.Add(1)
		log.Debug("statement failed", "dialect", s.Dialect().Name(), "sql", sql, "error", err)
	} else {
		log.Debug("statement", "dialect", s.Dialect().Name(), "sql", sql, "args", len(args), "duration", duration)
	}

	s.mu.RLock()
	threshold := s.slowThreshold
	hook := s.slowHook
	s.mu.RUnlock()

	if duration > threshold {
		s.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, sql, args, duration)
		}
	}
}
