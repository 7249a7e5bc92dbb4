// Copyright 2024-2026 Madhukar Beema, Distinguished Engineer. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package health

import (
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats tracks self-monitoring counters for a masking run.
type Stats struct {
	startTime time.Time
	proc      *process.Process

	Statements        atomic.Int64
	LiteralsMasked    atomic.Int64
	LiteralsPreserved atomic.Int64
	ListsCollapsed    atomic.Int64
	ParseErrors       atomic.Int64
	Fallbacks         atomic.Int64
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	s := &Stats{startTime: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = p
	}
	return s
}

// Uptime returns process uptime.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// RecordMask counts one masked statement.
func (s *Stats) RecordMask(masked, preserved, collapsed int) {
	s.Statements.Add(1)
	s.LiteralsMasked.Add(int64(masked))
	s.LiteralsPreserved.Add(int64(preserved))
	s.ListsCollapsed.Add(int64(collapsed))
}

// RecordFallback counts a statement the parser rejected but regex
// normalization masked.
func (s *Stats) RecordFallback() {
	s.Statements.Add(1)
	s.ParseErrors.Add(1)
	s.Fallbacks.Add(1)
}

// RecordError counts a statement that could not be masked at all.
func (s *Stats) RecordError() {
	s.Statements.Add(1)
	s.ParseErrors.Add(1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	UptimeSeconds     float64
	Goroutines        int
	MemoryRSSBytes    uint64
	CPUPercent        float64
	Statements        int64
	LiteralsMasked    int64
	LiteralsPreserved int64
	ListsCollapsed    int64
	ParseErrors       int64
	Fallbacks         int64
}

// Snapshot returns current stats.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		UptimeSeconds:     s.Uptime().Seconds(),
		Goroutines:        runtime.NumGoroutine(),
		Statements:        s.Statements.Load(),
		LiteralsMasked:    s.LiteralsMasked.Load(),
		LiteralsPreserved: s.LiteralsPreserved.Load(),
		ListsCollapsed:    s.ListsCollapsed.Load(),
		ParseErrors:       s.ParseErrors.Load(),
		Fallbacks:         s.Fallbacks.Load(),
	}

	if s.proc != nil {
		if mem, err := s.proc.MemoryInfo(); err == nil {
			snap.MemoryRSSBytes = mem.RSS
		}
		if pct, err := s.proc.CPUPercent(); err == nil {
			snap.CPUPercent = pct
		}
	}
	if snap.MemoryRSSBytes == 0 {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		snap.MemoryRSSBytes = memStats.Sys
	}
	return snap
}

// PrometheusMetrics returns stats in Prometheus text exposition format.
func (s *Stats) PrometheusMetrics() string {
	return prometheusFormat(s.Snapshot())
}

func prometheusFormat(snap Snapshot) string {
	var b []byte
	b = appendMetric(b, "sqlmask_uptime_seconds", "gauge", "Process uptime in seconds", snap.UptimeSeconds)
	b = appendMetric(b, "sqlmask_goroutines", "gauge", "Number of goroutines", float64(snap.Goroutines))
	b = appendMetric(b, "sqlmask_memory_rss_bytes", "gauge", "Resident memory in bytes", float64(snap.MemoryRSSBytes))
	b = appendMetric(b, "sqlmask_cpu_percent", "gauge", "Process CPU utilization percent", snap.CPUPercent)
	b = appendMetric(b, "sqlmask_statements_total", "counter", "Total statements processed", float64(snap.Statements))
	b = appendMetric(b, "sqlmask_literals_masked_total", "counter", "Total literals replaced by a placeholder", float64(snap.LiteralsMasked))
	b = appendMetric(b, "sqlmask_literals_preserved_total", "counter", "Total literals kept after LIMIT, OFFSET or TOP", float64(snap.LiteralsPreserved))
	b = appendMetric(b, "sqlmask_lists_collapsed_total", "counter", "Total IN lists collapsed", float64(snap.ListsCollapsed))
	b = appendMetric(b, "sqlmask_parse_errors_total", "counter", "Total statements the parser rejected", float64(snap.ParseErrors))
	b = appendMetric(b, "sqlmask_fallbacks_total", "counter", "Total statements masked by regex normalization", float64(snap.Fallbacks))
	return string(b)
}

func appendMetric(b []byte, name, typ, help string, value float64) []byte {
	b = append(b, "# HELP "...)
	b = append(b, name...)
	b = append(b, ' ')
	b = append(b, help...)
	b = append(b, '\n')
	b = append(b, "# TYPE "...)
	b = append(b, name...)
	b = append(b, ' ')
	b = append(b, typ...)
	b = append(b, '\n')
	b = append(b, name...)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, value, 'f', -1, 64)
	b = append(b, '\n')
	return b
}
