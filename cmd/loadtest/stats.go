package main

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Stats accumulates per-request outcomes from all workers.
type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	latencies     []time.Duration
	scores        []float64
	mu            sync.Mutex
	statusCodes   map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		scores:      make([]float64, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

// RecordRequest records one request. score is only kept for successful
// responses.
func (s *Stats) RecordRequest(duration time.Duration, statusCode int, score float64, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	success := statusCode >= 200 && statusCode < 300
	if success {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latencies = append(s.latencies, duration)
	s.statusCodes[statusCode]++
	if success {
		s.scores = append(s.scores, score)
	}
}

// Summary is the computed report for a run.
type Summary struct {
	Total, Success, Errors int64
	Min, Avg, Max          time.Duration
	P50, P90, P95, P99     time.Duration
	StdDev                 time.Duration
	AvgScore               float64
	StatusCodes            map[int]int64
}

// Summarize computes latency percentiles over every recorded request.
func (s *Stats) Summarize() Summary {
	s.mu.Lock()
	latencies := make([]time.Duration, len(s.latencies))
	copy(latencies, s.latencies)
	scores := make([]float64, len(s.scores))
	copy(scores, s.scores)
	codes := make(map[int]int64, len(s.statusCodes))
	for k, v := range s.statusCodes {
		codes[k] = v
	}
	s.mu.Unlock()

	sum := Summary{
		Total:       s.totalRequests.Load(),
		Success:     s.successCount.Load(),
		Errors:      s.errorCount.Load(),
		StatusCodes: codes,
	}

	if len(scores) > 0 {
		var total float64
		for _, sc := range scores {
			total += sc
		}
		sum.AvgScore = total / float64(len(scores))
	}

	if len(latencies) == 0 {
		return sum
	}
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	sum.Avg = total / time.Duration(len(latencies))
	sum.Min = latencies[0]
	sum.Max = latencies[len(latencies)-1]
	sum.P50 = percentile(latencies, 50)
	sum.P90 = percentile(latencies, 90)
	sum.P95 = percentile(latencies, 95)
	sum.P99 = percentile(latencies, 99)

	var sumSquared float64
	avgFloat := float64(sum.Avg)
	for _, l := range latencies {
		diff := float64(l) - avgFloat
		sumSquared += diff * diff
	}
	sum.StdDev = time.Duration(math.Sqrt(sumSquared / float64(len(latencies))))
	return sum
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
