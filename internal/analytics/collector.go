// Package analytics tracks completed analyses. A Collector buffers events and
// publishes them off the request path; an Aggregator folds them into the
// statistics served by GET /analytics.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
)

const eventKey = "analysis"

// Publisher delivers a single event. *kafka.Producer and *Aggregator both
// satisfy it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector accepts events without blocking and publishes them from a
// background goroutine.
type Collector struct {
	publisher Publisher
	eventCh   chan AnalysisEvent
	metrics   *metrics.Metrics
	logger    *slog.Logger
	done      chan struct{}
}

// NewCollector creates a Collector with room for bufferSize pending events.
func NewCollector(publisher Publisher, bufferSize int, m *metrics.Metrics) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan AnalysisEvent, bufferSize),
		metrics:   m,
		logger:    logger.WithComponent("analytics-collector"),
		done:      make(chan struct{}),
	}
}

// Start launches the publish loop. It stops when ctx is cancelled or Close
// is called, publishing whatever is still buffered.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues event, dropping it if the buffer is full.
func (c *Collector) Track(event AnalysisEvent) {
	if event.Type == "" {
		event.Type = EventAnalysis
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case c.eventCh <- event:
	default:
		c.metrics.AnalyticsDropped.Inc()
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the buffer to be published.
// Track must not be called afterwards.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event AnalysisEvent) {
	if err := c.publisher.Publish(ctx, kafka.Event{Key: eventKey, Value: event}); err != nil {
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(ctx, event)
		default:
			return
		}
	}
}
