package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func TestCollector_PublishesAndDrainsOnClose(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 16, metrics.New(prometheus.NewRegistry()))
	c.Start(context.Background())

	c.Track(AnalysisEvent{Score: 0.5})
	c.Track(AnalysisEvent{Score: 1})
	c.Close()

	require.Len(t, pub.events, 2)
	ev := pub.events[0].Value.(AnalysisEvent)
	assert.Equal(t, "analysis", pub.events[0].Key)
	assert.Equal(t, EventAnalysis, ev.Type)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestCollector_PublishErrorsAreSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 4, metrics.New(prometheus.NewRegistry()))
	c.Start(context.Background())
	c.Track(AnalysisEvent{})
	c.Close()
	assert.Len(t, pub.events, 1)
}

func TestCollector_DropsWhenFull(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := NewCollector(&recordingPublisher{}, 1, m)

	c.Track(AnalysisEvent{})
	c.Track(AnalysisEvent{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalyticsDropped))
}

func TestCollector_DrainsOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 8, metrics.New(prometheus.NewRegistry()))
	ctx, cancel := context.WithCancel(context.Background())
	c.Track(AnalysisEvent{})
	c.Track(AnalysisEvent{})
	cancel()
	c.Start(ctx)

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
	assert.Len(t, pub.events, 2)
}

func TestAggregator_Stats(t *testing.T) {
	a := NewAggregator()
	a.Record(AnalysisEvent{Type: EventAnalysis, JDSkills: 2, MatchedSkills: 2, Score: 1, CacheStatus: "miss", LatencyMs: 2, LLMRequested: true, LLMHint: true})
	a.Record(AnalysisEvent{Type: EventAnalysis, JDSkills: 3, MatchedSkills: 1, MissingSkills: []string{"docker", "aws"}, Score: 0.2, CacheStatus: "hit", LatencyMs: 4, LLMRequested: true})
	a.Record(AnalysisEvent{Type: EventAnalysis, MissingSkills: []string{"docker"}, CacheStatus: "disabled", LatencyMs: 6})

	s := a.Stats()
	assert.Equal(t, int64(3), s.TotalAnalyses)
	assert.Equal(t, int64(2), s.LLMRequested)
	assert.Equal(t, int64(1), s.LLMHints)
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(1), s.CacheMisses)
	assert.Equal(t, int64(1), s.PerfectMatches)
	assert.Equal(t, int64(1), s.NoSkillJobs)
	assert.InDelta(t, 0.4, s.AvgScore, 1e-9)
	assert.InDelta(t, 4.0, s.AvgLatencyMs, 1e-9)
	assert.Equal(t, 4.0, s.P50LatencyMs)
	assert.Equal(t, 6.0, s.P99LatencyMs)
	assert.Equal(t, []SkillCount{{"docker", 2}, {"aws", 1}}, s.TopMissingSkills)
}

func TestAggregator_LatencyWindowIsBounded(t *testing.T) {
	a := NewAggregator()
	for i := 0; i < maxLatencySamples+10; i++ {
		a.Record(AnalysisEvent{LatencyMs: float64(i)})
	}
	assert.Len(t, a.latencies, maxLatencySamples)
	assert.Equal(t, int64(maxLatencySamples+10), a.Stats().TotalAnalyses)
}

func TestAggregator_HandleMessage(t *testing.T) {
	a := NewAggregator()
	data, err := json.Marshal(AnalysisEvent{Type: EventAnalysis, Score: 0.5})
	require.NoError(t, err)

	assert.NoError(t, a.HandleMessage(context.Background(), nil, data))
	assert.NoError(t, a.HandleMessage(context.Background(), nil, []byte(`{"type":"other"}`)))
	assert.NoError(t, a.HandleMessage(context.Background(), nil, []byte(`garbage`)))

	assert.Equal(t, int64(1), a.Stats().TotalAnalyses)
}

func TestAggregator_AsPublisher(t *testing.T) {
	a := NewAggregator()
	c := NewCollector(a, 4, metrics.New(prometheus.NewRegistry()))
	c.Start(context.Background())
	c.Track(AnalysisEvent{Score: 1})
	c.Close()

	assert.Equal(t, int64(1), a.Stats().TotalAnalyses)
	assert.Error(t, a.Publish(context.Background(), kafka.Event{Value: "nope"}))
}
