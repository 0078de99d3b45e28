package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"market-mood/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/trace"
)

const naaimIndexURL = "https://naaim.org/programs/naaim-exposure-index/"

// naaimValueSelector targets the page element NAAIM publishes the current
// exposure number in. The selector stays narrow on purpose: scanning the
// page at large would accept a date or nav figure as the index, so a
// regenerated element id must surface as a parse failure instead.
const naaimValueSelector = "div#brxe-ymwzia, .naaim-exposure-index"

// Word boundaries keep the pattern from biting chunks out of years or
// other long digit runs on the page.
var naaimNumberPattern = regexp.MustCompile(`\b\d{1,3}(?:\.\d+)?\b`)

// NAAIMProvider scrapes the latest NAAIM Exposure Index number from the
// association's published page. The site has no JSON API.
type NAAIMProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *Throttle
}

func NewNAAIMProvider(tracer trace.Tracer, timeout time.Duration) *NAAIMProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NAAIMProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: naaimIndexURL,
		tracer:  tracer,
		limiter: NewThrottle(4, 15*time.Second),
	}
}

func (p *NAAIMProvider) Source() domain.Source {
	return domain.SourceNAAIM
}

// Fetch retrieves the page and extracts the current mean exposure.
// The raw exposure (survey scale, roughly -200..200) is kept as a
// component; the reading score is the exposure clamped to the gauge scale.
func (p *NAAIMProvider) Fetch(ctx context.Context) (*domain.Reading, error) {
	_, span := p.tracer.Start(ctx, "naaim.fetch")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, networkError(p.Source(), fmt.Errorf("throttle wait: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, networkError(p.Source(), err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, networkError(p.Source(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, networkError(p.Source(), fmt.Errorf("naaim page error %d: %s", resp.StatusCode, string(body)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, parseError(p.Source(), fmt.Errorf("parse naaim page: %w", err))
	}

	exposure, ok := extractExposure(doc)
	if !ok {
		return nil, parseError(p.Source(), fmt.Errorf("no exposure value found on naaim page"))
	}

	score := domain.ClampScore(exposure)
	return &domain.Reading{
		Source: p.Source(),
		Score:  score,
		Label:  domain.BandFor(p.Source(), score).Label,
		Components: []domain.Component{
			{Name: "exposure", Value: exposure},
		},
		Timestamp: time.Now().UTC(),
		IsDemo:    false,
	}, nil
}

// extractExposure scans candidate page elements for the first number that
// looks like an exposure percentage.
func extractExposure(doc *goquery.Document) (float64, bool) {
	var exposure float64
	found := false

	doc.Find(naaimValueSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return true
		}
		for _, match := range naaimNumberPattern.FindAllString(text, -1) {
			v, err := strconv.ParseFloat(match, 64)
			if err != nil {
				continue
			}
			if v >= 0 && v <= 200 {
				exposure = v
				found = true
				return false
			}
		}
		return true
	})

	return exposure, found
}
