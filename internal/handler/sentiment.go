package handler

import (
	"net/http"
	"strings"

	"market-mood/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ReadingView is a reading decorated with its gauge band for API consumers.
type ReadingView struct {
	domain.Reading
	SourceName string      `json:"source_name"`
	Band       domain.Band `json:"band"`
}

func newReadingView(r *domain.Reading) ReadingView {
	return ReadingView{
		Reading:    *r,
		SourceName: r.Source.DisplayName(),
		Band:       domain.BandFor(r.Source, r.Score),
	}
}

// parseSource maps a URL segment to a source, accepting short aliases.
func parseSource(v string) (domain.Source, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case string(domain.SourceCNNFearGreed), "cnn", "feargreed", "fear-greed":
		return domain.SourceCNNFearGreed, true
	case string(domain.SourceNAAIM):
		return domain.SourceNAAIM, true
	default:
		return "", false
	}
}

// GetAllSentiment godoc
// @Summary      Get latest readings for all indicators
// @Description  Returns the latest cached reading per source, demo-flagged when the live fetch failed
// @Tags         sentiment
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/sentiment [get]
func (h *Handler) GetAllSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-all-sentiment")
	defer span.End()

	readings, err := h.sentiment.LatestAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]ReadingView, 0, len(readings))
	for _, r := range readings {
		views = append(views, newReadingView(r))
	}
	c.JSON(http.StatusOK, gin.H{"readings": views})
}

// GetSentiment godoc
// @Summary      Get the latest reading for one indicator
// @Description  Returns the latest cached reading for a source
// @Tags         sentiment
// @Produce      json
// @Param        source  path  string  true  "Source (cnn_fear_greed or naaim)"
// @Success      200  {object}  handler.ReadingView
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/sentiment/{source} [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	source, ok := parseSource(c.Param("source"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported source: " + c.Param("source"),
			"supported_sources": domain.Sources,
		})
		return
	}
	span.SetAttributes(attribute.String("source", string(source)))

	reading, err := h.sentiment.Latest(ctx, source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newReadingView(reading))
}

// TriggerRefresh godoc
// @Summary      Force a refresh cycle now
// @Description  Re-runs the fetch-or-fallback cycle for every source and returns the fresh readings
// @Tags         sentiment
// @Produce      json
// @Param        X-API-Key  header  string  false  "API key (required when configured)"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/sentiment/refresh [post]
func (h *Handler) TriggerRefresh(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-refresh")
	defer span.End()

	readings := h.sentiment.RefreshAll(ctx)

	views := make([]ReadingView, 0, len(readings))
	demo := 0
	for _, r := range readings {
		if r.IsDemo {
			demo++
		}
		views = append(views, newReadingView(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"refreshed":     len(views),
		"demo_readings": demo,
		"readings":      views,
	})
}
