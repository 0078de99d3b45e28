package job

import (
	"context"
	"log"
	"time"

	"market-mood/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// SentimentRefresher runs one fetch-or-fallback cycle across all sources.
type SentimentRefresher interface {
	RefreshAll(ctx context.Context) []*domain.Reading
}

// SentimentPoller re-runs the sentiment refresh cycle on a fixed wall-clock
// interval so the cache is always warm when the dashboard re-renders.
type SentimentPoller struct {
	tracer       trace.Tracer
	refresher    SentimentRefresher
	pollInterval time.Duration
}

func NewSentimentPoller(tracer trace.Tracer, refresher SentimentRefresher, pollIntervalSecs int) *SentimentPoller {
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = 30
	}
	return &SentimentPoller{
		tracer:       tracer,
		refresher:    refresher,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start blocks until ctx is cancelled. The first cycle runs immediately so
// the dashboard never waits a full interval for its first reading.
func (p *SentimentPoller) Start(ctx context.Context) {
	log.Println("Sentiment poller starting...")

	p.runOnce(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sentiment poller stopped")
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *SentimentPoller) runOnce(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "sentiment-poller.run-once")
	defer span.End()

	p.refresher.RefreshAll(ctx)
}
