package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"market-mood/internal/domain"
	"market-mood/internal/provider"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// defaultPollSecs mirrors the poller's default interval.
const defaultPollSecs = 30

// SentimentFetcher is one upstream indicator fetcher.
type SentimentFetcher interface {
	Source() domain.Source
	Fetch(ctx context.Context) (*domain.Reading, error)
}

// FallbackSource supplies a demo reading when the live fetch fails.
type FallbackSource interface {
	Reading(source domain.Source) *domain.Reading
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SentimentService orchestrates the fetch-or-fallback cycle and keeps the
// latest reading per source in Redis so every render has a value.
type SentimentService struct {
	tracer   trace.Tracer
	fetchers map[domain.Source]SentimentFetcher
	fallback FallbackSource
	redis    RedisClient
	cacheTTL time.Duration
}

// NewSentimentService derives the cache TTL from the poll interval (1.5x)
// so a cached reading always outlives the gap between refresh cycles.
func NewSentimentService(
	tracer trace.Tracer,
	fallback FallbackSource,
	redisClient RedisClient,
	pollIntervalSecs int,
	fetchers ...SentimentFetcher,
) *SentimentService {
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = defaultPollSecs
	}
	bySource := make(map[domain.Source]SentimentFetcher, len(fetchers))
	for _, f := range fetchers {
		bySource[f.Source()] = f
	}
	return &SentimentService{
		tracer:   tracer,
		fetchers: bySource,
		fallback: fallback,
		redis:    redisClient,
		cacheTTL: time.Duration(pollIntervalSecs) * time.Second * 3 / 2,
	}
}

// Refresh runs one fetch cycle for a source. A failed fetch is logged and
// replaced by the demo reading in the same cycle; the returned reading is
// never nil and its score is always on the gauge scale.
func (s *SentimentService) Refresh(ctx context.Context, source domain.Source) (*domain.Reading, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.refresh")
	defer span.End()

	if !source.IsValid() {
		return nil, fmt.Errorf("unsupported source: %s", source)
	}

	fetcher, ok := s.fetchers[source]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for source: %s", source)
	}

	reading, err := fetcher.Fetch(ctx)
	if err != nil {
		if fe, ok := provider.AsFetchError(err); ok {
			log.Printf("%s fetch failed (%s), serving demo data: %v", source, fe.Kind, fe.Err)
		} else {
			log.Printf("%s fetch failed, serving demo data: %v", source, err)
		}
		reading = s.fallback.Reading(source)
	}

	if s.redis != nil {
		if err := s.setReadingCache(ctx, reading); err != nil {
			log.Printf("redis cache write error for %s: %v", source, err)
		}
	}

	return reading, nil
}

// RefreshAll runs one cycle across every source in display order.
func (s *SentimentService) RefreshAll(ctx context.Context) []*domain.Reading {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.refresh-all")
	defer span.End()

	readings := make([]*domain.Reading, 0, len(domain.Sources))
	demo := 0
	for _, source := range domain.Sources {
		reading, err := s.Refresh(ctx, source)
		if err != nil {
			log.Printf("refresh %s: %v", source, err)
			continue
		}
		if reading.IsDemo {
			demo++
		}
		readings = append(readings, reading)
	}
	log.Printf("Refreshed %d sentiment readings (%d demo)", len(readings), demo)
	return readings
}

// Latest returns the most recent reading for a source, fetching live if
// the cache is empty or expired.
func (s *SentimentService) Latest(ctx context.Context, source domain.Source) (*domain.Reading, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.latest")
	defer span.End()

	if !source.IsValid() {
		return nil, fmt.Errorf("unsupported source: %s", source)
	}

	if s.redis != nil {
		cached, err := s.getReadingCache(ctx, source)
		if err != nil {
			log.Printf("redis cache read error for %s: %v", source, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	return s.Refresh(ctx, source)
}

// LatestAll returns the most recent reading for every source in display order.
func (s *SentimentService) LatestAll(ctx context.Context) ([]*domain.Reading, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.latest-all")
	defer span.End()

	readings := make([]*domain.Reading, 0, len(domain.Sources))
	for _, source := range domain.Sources {
		reading, err := s.Latest(ctx, source)
		if err != nil {
			return readings, err
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

func (s *SentimentService) setReadingCache(ctx context.Context, reading *domain.Reading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "sentiment:"+string(reading.Source), data, s.cacheTTL).Err()
}

func (s *SentimentService) getReadingCache(ctx context.Context, source domain.Source) (*domain.Reading, error) {
	data, err := s.redis.Get(ctx, "sentiment:"+string(source)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var reading domain.Reading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}
