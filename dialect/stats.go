package dialect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// OperationStats holds operation execution statistics.
type OperationStats struct {
	// TotalReads is the number of read-only operations executed.
	TotalReads atomic.Int64
	// TotalWrites is the number of mutating operations executed.
	TotalWrites atomic.Int64
	// TotalDuration is the total time spent executing operations.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowOperations is the count of operations exceeding the slow threshold.
	SlowOperations atomic.Int64
	// Errors is the count of failed operations.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *OperationStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalReads:     s.TotalReads.Load(),
		TotalWrites:    s.TotalWrites.Load(),
		TotalDuration:  time.Duration(s.TotalDuration.Load()),
		SlowOperations: s.SlowOperations.Load(),
		Errors:         s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *OperationStats) Reset() {
	s.TotalReads.Store(0)
	s.TotalWrites.Store(0)
	s.TotalDuration.Store(0)
	s.SlowOperations.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of operation statistics.
type StatsSnapshot struct {
	TotalReads     int64
	TotalWrites    int64
	TotalDuration  time.Duration
	SlowOperations int64
	Errors         int64
}

// AvgDuration returns the average operation duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalReads + s.TotalWrites
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"reads=%d writes=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalReads, s.TotalWrites, s.TotalDuration, s.AvgDuration(),
		s.SlowOperations, s.Errors,
	)
}

// SlowOperationHook is called when a slow operation is detected.
type SlowOperationHook func(ctx context.Context, op *Operation, duration time.Duration)

// StatsExecutor wraps an Executor with statistics collection.
type StatsExecutor struct {
	Executor
	stats         *OperationStats
	slowThreshold time.Duration
	slowHook      SlowOperationHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsExecutor.
type StatsOption func(*StatsExecutor)

// WithSlowThreshold sets the threshold for slow operation detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsExecutor) {
		s.slowThreshold = d
	}
}

// WithSlowOperationHook sets a callback for slow operations.
func WithSlowOperationHook(hook SlowOperationHook) StatsOption {
	return func(s *StatsExecutor) {
		s.slowHook = hook
	}
}

// WithSlowOperationLog logs slow operations to the default logger.
func WithSlowOperationLog() StatsOption {
	return WithSlowOperationHook(func(_ context.Context, op *Operation, duration time.Duration) {
		slog.Warn("slow operation detected", "duration", duration, "root", op.Root, "field", op.Field, "kind", string(op.Kind))
	})
}

// NewStatsExecutor wraps exec with statistics collection.
//
//	exec := dialect.NewStatsExecutor(translator, dialect.WithSlowOperationLog())
//	// Later:
//	fmt.Println(exec.OperationStats().Stats())
func NewStatsExecutor(exec Executor, opts ...StatsOption) *StatsExecutor {
	s := &StatsExecutor{
		Executor:      exec,
		stats:         &OperationStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OperationStats returns the underlying statistics.
func (e *StatsExecutor) OperationStats() *OperationStats {
	return e.stats
}

// SlowThreshold returns the current slow operation threshold.
func (e *StatsExecutor) SlowThreshold() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slowThreshold
}

// SetSlowThreshold updates the slow operation threshold.
func (e *StatsExecutor) SetSlowThreshold(threshold time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slowThreshold = threshold
}

// Execute runs the operation and records statistics.
func (e *StatsExecutor) Execute(ctx context.Context, op *Operation, s Session) (*Result, error) {
	start := time.Now()
	res, err := e.Executor.Execute(ctx, op, s)
	e.record(ctx, op, start, err)
	return res, err
}

func (e *StatsExecutor) record(ctx context.Context, op *Operation, start time.Time, err error) {
	duration := time.Since(start)
	if op.Kind.Mutating() {
		e.stats.TotalWrites.Add(1)
	} else {
		e.stats.TotalReads.Add(1)
	}
	e.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		e.stats.Errors.Add(1)
	}

	e.mu.RLock()
	threshold := e.slowThreshold
	hook := e.slowHook
	e.mu.RUnlock()

	if duration > threshold {
		e.stats.SlowOperations.Add(1)
		if hook != nil {
			hook(ctx, op, duration)
		}
	}
}

// DebugExecutor wraps an Executor with debug logging of every operation.
type DebugExecutor struct {
	Executor
	log func(context.Context, ...any)
}

// DebugOption configures the DebugExecutor.
type DebugOption func(*DebugExecutor)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugExecutor) {
		d.log = logFunc
	}
}

// Debug wraps exec with debug logging. By default operations are logged
// through slog at debug level.
func Debug(exec Executor, opts ...DebugOption) *DebugExecutor {
	d := &DebugExecutor{
		Executor: exec,
		log: func(ctx context.Context, v ...any) {
			slog.DebugContext(ctx, fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute logs the operation and runs it.
func (d *DebugExecutor) Execute(ctx context.Context, op *Operation, s Session) (*Result, error) {
	d.log(ctx, fmt.Sprintf("operation=%s.%s kind=%s entity=%s args=%v", op.Root, op.Field, op.Kind, op.Entity, op.Args))
	return d.Executor.Execute(ctx, op, s)
}

var (
	_ Executor = (*StatsExecutor)(nil)
	_ Executor = (*DebugExecutor)(nil)
)
