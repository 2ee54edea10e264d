package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
)

const maxLatencySamples = 10000

// AggregatedStats is the payload of GET /analytics.
type AggregatedStats struct {
	TotalAnalyses     int64        `json:"total_analyses"`
	LLMRequested      int64        `json:"llm_requested"`
	LLMHints          int64        `json:"llm_hints"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	AvgScore          float64      `json:"avg_score"`
	PerfectMatches    int64        `json:"perfect_matches"`
	NoSkillJobs       int64        `json:"no_skill_jobs"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      float64      `json:"p50_latency_ms"`
	P95LatencyMs      float64      `json:"p95_latency_ms"`
	P99LatencyMs      float64      `json:"p99_latency_ms"`
	TopMissingSkills  []SkillCount `json:"top_missing_skills"`
	AnalysesPerMinute float64      `json:"analyses_per_minute"`
}

// SkillCount is how often a skill was reported missing.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int64  `json:"count"`
}

// Aggregator folds AnalysisEvents into running statistics. Latency
// percentiles are computed over the most recent samples only.
type Aggregator struct {
	mu            sync.RWMutex
	total         int64
	llmRequested  int64
	llmHints      int64
	cacheHits     int64
	cacheMisses   int64
	scoreSum      float64
	perfect       int64
	noSkillJobs   int64
	latencies     []float64
	next          int
	missingCounts map[string]int64
	startTime     time.Time
	logger        *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:     make([]float64, 0, 1024),
		missingCounts: make(map[string]int64),
		startTime:     time.Now(),
		logger:        logger.WithComponent("analytics-aggregator"),
	}
}

// HandleMessage is a kafka.MessageHandler that records consumed events.
// Undecodable messages are logged and skipped so they are still committed.
func (a *Aggregator) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	event, err := kafka.DecodeJSON[AnalysisEvent](value)
	if err != nil {
		a.logger.Error("failed to decode analytics event", "error", err)
		return nil
	}
	if event.Type != EventAnalysis {
		a.logger.Debug("ignoring analytics event", "type", event.Type)
		return nil
	}
	a.Record(event)
	return nil
}

// Publish records an in-process event, letting the Aggregator stand in for
// Kafka when it is disabled.
func (a *Aggregator) Publish(ctx context.Context, event kafka.Event) error {
	ev, ok := event.Value.(AnalysisEvent)
	if !ok {
		return fmt.Errorf("unexpected analytics event %T", event.Value)
	}
	a.Record(ev)
	return nil
}

// Record adds one event to the statistics.
func (a *Aggregator) Record(event AnalysisEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if event.LLMRequested {
		a.llmRequested++
	}
	if event.LLMHint {
		a.llmHints++
	}
	switch event.CacheStatus {
	case "hit":
		a.cacheHits++
	case "miss":
		a.cacheMisses++
	}
	a.scoreSum += event.Score
	if event.JDSkills > 0 && event.MatchedSkills == event.JDSkills {
		a.perfect++
	}
	if event.JDSkills == 0 {
		a.noSkillJobs++
	}
	for _, skill := range event.MissingSkills {
		a.missingCounts[skill]++
	}

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

// Stats returns a snapshot of the aggregated statistics.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalAnalyses:  a.total,
		LLMRequested:   a.llmRequested,
		LLMHints:       a.llmHints,
		CacheHits:      a.cacheHits,
		CacheMisses:    a.cacheMisses,
		PerfectMatches: a.perfect,
		NoSkillJobs:    a.noSkillJobs,
	}
	if a.total > 0 {
		stats.AvgScore = a.scoreSum / float64(a.total)
	}
	if len(a.latencies) > 0 {
		sorted := make([]float64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Float64s(sorted)

		var sum float64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = sum / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopMissingSkills = topN(a.missingCounts, 10)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.AnalysesPerMinute = float64(stats.TotalAnalyses) / elapsed
	}
	return stats
}

func percentile(sorted []float64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending, then skill name for a stable output.
func topN(counts map[string]int64, n int) []SkillCount {
	result := make([]SkillCount, 0, len(counts))
	for skill, count := range counts {
		result = append(result, SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Skill < result[j].Skill
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
