package profiling

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// StageProfiler measures one pipeline stage
type StageProfiler struct {
	StartTime   time.Time
	StartMemory uint64
	Name        string
}

// NewStageProfiler starts measuring the named stage
func NewStageProfiler(name string) *StageProfiler {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &StageProfiler{
		StartTime:   time.Now(),
		StartMemory: m.Alloc,
		Name:        name,
	}
}

// Finish completes the profiling and returns metrics
func (sp *StageProfiler) Finish() StageMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return StageMetrics{
		Name:        sp.Name,
		Duration:    time.Since(sp.StartTime),
		MemoryDelta: int64(m.Alloc) - int64(sp.StartMemory),
		FinalMemory: m.Alloc,
	}
}

// StageMetrics holds the cost of one stage
type StageMetrics struct {
	Name        string
	Duration    time.Duration
	MemoryDelta int64
	FinalMemory uint64
}

// Stage runs fn and logs its duration and heap delta at debug level.
func Stage(name string, fn func() error) error {
	profiler := NewStageProfiler(name)
	err := fn()
	metrics := profiler.Finish()

	logrus.WithFields(logrus.Fields{
		"stage":  metrics.Name,
		"ms":     float64(metrics.Duration.Nanoseconds()) / 1000000.0,
		"memory": metrics.MemoryDelta,
		"failed": err != nil,
	}).Debug("stage finished")
	return err
}
