// Package metrics tracks ingestion pipeline health: how many filings
// each run processed, what kind of effective-date evidence they
// yielded, and how often the followup extraction pass earned its keep.
package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/alpacahq/gofilings/models"
	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gopaca/db"
)

// PipelineStats accumulates counts over one ingestion run. Not safe for
// concurrent use; each worker run owns its own instance and hands it to
// Record at the end.
type PipelineStats struct {
	Processed int `json:"processed"`
	Persisted int `json:"persisted"`
	Failed    int `json:"failed"`

	DefinitiveDates int `json:"definitive_dates"`
	EstimatedDates  int `json:"estimated_dates"`
	WindowDates     int `json:"window_dates"`
	RelativeDates   int `json:"relative_dates"`
	PromotedDates   int `json:"promoted_dates"`
	FollowupUsed    int `json:"followup_used"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// CountCandidate tallies one effective-date candidate by its kind.
func (s *PipelineStats) CountCandidate(c models.DateCandidate) {
	switch c.Kind {
	case enum.Definitive:
		s.DefinitiveDates++
	case enum.Estimated:
		s.EstimatedDates++
	case enum.Window:
		s.WindowDates++
	default:
		s.RelativeDates++
	}
	if c.Method == "llm_followup" {
		s.FollowupUsed++
	}
}

// FillRate is the share of processed filings that ended with a promoted
// effective date.
func (s PipelineStats) FillRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.PromotedDates) / float64(s.Processed)
}

// PerformanceMetrics is the process-health snapshot served next to the
// pipeline numbers.
type PerformanceMetrics struct {
	GoRoutines      int64         `json:"goroutines"`
	DatabaseLatency time.Duration `json:"db_latency"`
}

func GetPerformanceMetrics() (*PerformanceMetrics, error) {
	start := time.Now()
	if err := db.DB().Exec("SELECT 1").Error; err != nil {
		return nil, err
	}
	return &PerformanceMetrics{
		GoRoutines:      int64(runtime.NumGoroutine()),
		DatabaseLatency: time.Since(start),
	}, nil
}

var (
	lastRunMu sync.RWMutex
	lastRun   *PipelineStats
)

// Record stores the finished run for the metrics endpoint and pushes it
// to statsd when a client is configured.
func Record(s PipelineStats) {
	lastRunMu.Lock()
	lastRun = &s
	lastRunMu.Unlock()

	if dd := client(); dd != nil {
		publish(dd, s)
	}
}

// LastRun returns the most recently recorded run, or nil before the
// first one finishes.
func LastRun() *PipelineStats {
	lastRunMu.RLock()
	defer lastRunMu.RUnlock()
	if lastRun == nil {
		return nil
	}
	s := *lastRun
	return &s
}

func publish(dd *statsd.Client, s PipelineStats) {
	dd.Count("pipeline.processed", int64(s.Processed), nil, 1)
	dd.Count("pipeline.persisted", int64(s.Persisted), nil, 1)
	dd.Count("pipeline.failed", int64(s.Failed), nil, 1)
	dd.Count("dates.definitive", int64(s.DefinitiveDates), nil, 1)
	dd.Count("dates.estimated", int64(s.EstimatedDates), nil, 1)
	dd.Count("dates.window", int64(s.WindowDates), nil, 1)
	dd.Count("dates.relative", int64(s.RelativeDates), nil, 1)
	dd.Count("dates.promoted", int64(s.PromotedDates), nil, 1)
	dd.Count("dates.followup_used", int64(s.FollowupUsed), nil, 1)
	dd.Gauge("dates.fill_rate", s.FillRate(), nil, 1)
	if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() {
		dd.Timing("pipeline.run_duration", s.FinishedAt.Sub(s.StartedAt), nil, 1)
	}
}
