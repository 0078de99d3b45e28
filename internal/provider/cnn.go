package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"market-mood/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const cnnGraphDataURL = "https://production.dataviz.cnn.io/index/fearandgreed/graphdata"

// The CNN dataviz endpoint rejects the default Go user agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// cnnComponentKeys lists the seven sub-indicators in the order CNN
// publishes them. Iterating this list keeps component order stable
// regardless of JSON object key order.
var cnnComponentKeys = []string{
	"market_momentum_sp500",
	"stock_price_strength",
	"stock_price_breadth",
	"put_call_options",
	"market_volatility_vix",
	"junk_bond_demand",
	"safe_haven_demand",
}

// CNNFearGreedProvider fetches the composite Fear & Greed score and its
// seven sub-indicators from CNN's dataviz API.
type CNNFearGreedProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *Throttle
}

func NewCNNFearGreedProvider(tracer trace.Tracer, timeout time.Duration) *CNNFearGreedProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CNNFearGreedProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: cnnGraphDataURL,
		tracer:  tracer,
		limiter: NewThrottle(4, 15*time.Second),
	}
}

func (p *CNNFearGreedProvider) Source() domain.Source {
	return domain.SourceCNNFearGreed
}

type cnnIndicator struct {
	Score     float64 `json:"score"`
	Rating    string  `json:"rating"`
	Timestamp string  `json:"timestamp"`
}

type cnnGraphData struct {
	FearAndGreed struct {
		Score          float64 `json:"score"`
		Rating         string  `json:"rating"`
		Timestamp      string  `json:"timestamp"`
		PreviousClose  float64 `json:"previous_close"`
		Previous1Week  float64 `json:"previous_1_week"`
		Previous1Month float64 `json:"previous_1_month"`
		Previous1Year  float64 `json:"previous_1_year"`
	} `json:"fear_and_greed"`

	MarketMomentumSP500 *cnnIndicator `json:"market_momentum_sp500"`
	StockPriceStrength  *cnnIndicator `json:"stock_price_strength"`
	StockPriceBreadth   *cnnIndicator `json:"stock_price_breadth"`
	PutCallOptions      *cnnIndicator `json:"put_call_options"`
	MarketVolatilityVIX *cnnIndicator `json:"market_volatility_vix"`
	JunkBondDemand      *cnnIndicator `json:"junk_bond_demand"`
	SafeHavenDemand     *cnnIndicator `json:"safe_haven_demand"`
}

func (d *cnnGraphData) indicator(key string) *cnnIndicator {
	switch key {
	case "market_momentum_sp500":
		return d.MarketMomentumSP500
	case "stock_price_strength":
		return d.StockPriceStrength
	case "stock_price_breadth":
		return d.StockPriceBreadth
	case "put_call_options":
		return d.PutCallOptions
	case "market_volatility_vix":
		return d.MarketVolatilityVIX
	case "junk_bond_demand":
		return d.JunkBondDemand
	case "safe_haven_demand":
		return d.SafeHavenDemand
	default:
		return nil
	}
}

// Fetch retrieves and parses the latest reading. Every failure comes back
// as a *FetchError so the caller can fall back to demo data.
func (p *CNNFearGreedProvider) Fetch(ctx context.Context) (*domain.Reading, error) {
	_, span := p.tracer.Start(ctx, "cnn-feargreed.fetch")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, networkError(p.Source(), fmt.Errorf("throttle wait: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, networkError(p.Source(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, networkError(p.Source(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, networkError(p.Source(), fmt.Errorf("fear & greed API error %d: %s", resp.StatusCode, string(body)))
	}

	var payload cnnGraphData
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, parseError(p.Source(), fmt.Errorf("decode fear & greed response: %w", err))
	}

	fg := payload.FearAndGreed
	if fg.Score <= 0 && fg.Rating == "" {
		return nil, parseError(p.Source(), fmt.Errorf("fear & greed payload missing composite score"))
	}

	score := domain.ClampScore(fg.Score)

	components := make([]domain.Component, 0, len(cnnComponentKeys))
	for _, key := range cnnComponentKeys {
		ind := payload.indicator(key)
		if ind == nil {
			continue
		}
		components = append(components, domain.Component{
			Name:   key,
			Value:  domain.ClampScore(ind.Score),
			Rating: ind.Rating,
		})
	}

	history := []domain.Component{
		{Name: "previous_close", Value: domain.ClampScore(fg.PreviousClose)},
		{Name: "previous_1_week", Value: domain.ClampScore(fg.Previous1Week)},
		{Name: "previous_1_month", Value: domain.ClampScore(fg.Previous1Month)},
		{Name: "previous_1_year", Value: domain.ClampScore(fg.Previous1Year)},
	}

	ts := parseCNNTimestamp(fg.Timestamp)
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return &domain.Reading{
		Source:     p.Source(),
		Score:      score,
		Label:      domain.BandFor(p.Source(), score).Label,
		Components: components,
		History:    history,
		Timestamp:  ts,
		IsDemo:     false,
	}, nil
}

func parseCNNTimestamp(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
