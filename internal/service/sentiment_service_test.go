package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"market-mood/internal/domain"
	"market-mood/internal/provider"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func liveReading(source domain.Source, score float64) *domain.Reading {
	return &domain.Reading{
		Source:    source,
		Score:     score,
		Label:     domain.BandFor(source, score).Label,
		Timestamp: time.Now().UTC(),
	}
}

func newTestService(redisClient RedisClient, fetchers ...SentimentFetcher) *SentimentService {
	return NewSentimentService(testTracer, provider.NewDemoProvider(), redisClient, 30, fetchers...)
}

func TestCacheTTLTracksPollInterval(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{source: domain.SourceCNNFearGreed, reading: liveReading(domain.SourceCNNFearGreed, 72)}
	fakeRedis := newFakeRedis()
	svc := NewSentimentService(testTracer, provider.NewDemoProvider(), fakeRedis, 60, fetcher)

	if _, err := svc.Refresh(context.Background(), domain.SourceCNNFearGreed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1.5x the poll interval keeps the entry alive between cycles.
	if fakeRedis.lastTTL != 90*time.Second {
		t.Fatalf("expected 90s cache TTL for a 60s poll interval, got %v", fakeRedis.lastTTL)
	}

	svc = NewSentimentService(testTracer, provider.NewDemoProvider(), fakeRedis, 0, fetcher)
	if svc.cacheTTL != 45*time.Second {
		t.Fatalf("expected default 45s TTL, got %v", svc.cacheTTL)
	}
}

func TestRefreshCachesLiveReading(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{source: domain.SourceCNNFearGreed, reading: liveReading(domain.SourceCNNFearGreed, 72)}
	fakeRedis := newFakeRedis()
	svc := newTestService(fakeRedis, fetcher)

	got, err := svc.Refresh(context.Background(), domain.SourceCNNFearGreed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsDemo {
		t.Fatal("live reading must not be demo")
	}
	if got.Score != 72 || got.Label != "Greed" {
		t.Fatalf("unexpected reading: %+v", got)
	}
	if _, ok := fakeRedis.data["sentiment:cnn_fear_greed"]; !ok {
		t.Fatal("reading not cached")
	}
}

func TestRefreshFallsBackToDemoOnFetchError(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		source: domain.SourceNAAIM,
		err:    &provider.FetchError{Source: domain.SourceNAAIM, Kind: provider.ErrKindParse, Err: errors.New("layout changed")},
	}
	fakeRedis := newFakeRedis()
	svc := newTestService(fakeRedis, fetcher)

	got, err := svc.Refresh(context.Background(), domain.SourceNAAIM)
	if err != nil {
		t.Fatalf("fallback must not surface an error: %v", err)
	}
	if !got.IsDemo {
		t.Fatal("expected demo reading after fetch failure")
	}
	if got.Score < 0 || got.Score > 100 {
		t.Fatalf("demo score out of range: %.2f", got.Score)
	}
	if _, ok := fakeRedis.data["sentiment:naaim"]; !ok {
		t.Fatal("demo reading must still be cached")
	}
}

func TestRefreshUnknownSource(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	if _, err := svc.Refresh(context.Background(), domain.Source("vix")); err == nil {
		t.Fatal("expected error for unknown source")
	}
	if _, err := svc.Refresh(context.Background(), domain.SourceNAAIM); err == nil {
		t.Fatal("expected error when no fetcher is registered")
	}
}

func TestLatestPrefersCache(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{source: domain.SourceCNNFearGreed, reading: liveReading(domain.SourceCNNFearGreed, 10)}
	fakeRedis := newFakeRedis()

	cached := liveReading(domain.SourceCNNFearGreed, 64)
	data, _ := json.Marshal(cached)
	_ = fakeRedis.Set(context.Background(), "sentiment:cnn_fear_greed", data, 0)

	svc := newTestService(fakeRedis, fetcher)

	got, err := svc.Latest(context.Background(), domain.SourceCNNFearGreed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 64 {
		t.Fatalf("expected cached score 64, got %.2f", got.Score)
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetcher should not be called on cache hit, got %d calls", fetcher.calls)
	}
}

func TestLatestFetchesOnCacheMiss(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{source: domain.SourceCNNFearGreed, reading: liveReading(domain.SourceCNNFearGreed, 33)}
	fakeRedis := newFakeRedis()
	svc := newTestService(fakeRedis, fetcher)

	got, err := svc.Latest(context.Background(), domain.SourceCNNFearGreed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 33 || fetcher.calls != 1 {
		t.Fatalf("expected one live fetch, got score=%.2f calls=%d", got.Score, fetcher.calls)
	}
}

func TestRefreshAllKeepsDisplayOrder(t *testing.T) {
	t.Parallel()

	cnn := &stubFetcher{source: domain.SourceCNNFearGreed, reading: liveReading(domain.SourceCNNFearGreed, 72)}
	naaim := &stubFetcher{
		source: domain.SourceNAAIM,
		err:    &provider.FetchError{Source: domain.SourceNAAIM, Kind: provider.ErrKindNetwork, Err: errors.New("timeout")},
	}
	svc := newTestService(newFakeRedis(), cnn, naaim)

	readings := svc.RefreshAll(context.Background())
	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}
	if readings[0].Source != domain.SourceCNNFearGreed || readings[1].Source != domain.SourceNAAIM {
		t.Fatalf("unexpected order: %s, %s", readings[0].Source, readings[1].Source)
	}
	if readings[0].IsDemo || !readings[1].IsDemo {
		t.Fatalf("unexpected demo flags: %v %v", readings[0].IsDemo, readings[1].IsDemo)
	}
}

func TestLatestAllWorksWithoutRedis(t *testing.T) {
	t.Parallel()

	cnn := &stubFetcher{source: domain.SourceCNNFearGreed, reading: liveReading(domain.SourceCNNFearGreed, 55)}
	naaim := &stubFetcher{source: domain.SourceNAAIM, reading: liveReading(domain.SourceNAAIM, 84)}
	svc := newTestService(nil, cnn, naaim)

	readings, err := svc.LatestAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(readings) != 2 || cnn.calls != 1 || naaim.calls != 1 {
		t.Fatalf("expected one live fetch per source, got cnn=%d naaim=%d", cnn.calls, naaim.calls)
	}
}

type stubFetcher struct {
	source  domain.Source
	reading *domain.Reading
	err     error
	calls   int
}

func (s *stubFetcher) Source() domain.Source {
	return s.source
}

func (s *stubFetcher) Fetch(ctx context.Context) (*domain.Reading, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.reading, nil
}

type fakeRedis struct {
	data    map[string][]byte
	lastTTL time.Duration
	setErr  error
	getErr  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.lastTTL = expiration
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
