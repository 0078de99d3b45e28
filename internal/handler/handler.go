package handler

import (
	"market-mood/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer    trace.Tracer
	sentiment *service.SentimentService
	apiKey    string
}

func New(tracer trace.Tracer, sentiment *service.SentimentService, apiKey string) *Handler {
	return &Handler{
		tracer:    tracer,
		sentiment: sentiment,
		apiKey:    apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Dashboard)
	r.GET("/health", h.Health)
	r.GET("/api/sentiment", h.GetAllSentiment)
	r.GET("/api/sentiment/:source", h.GetSentiment)
	r.POST("/api/sentiment/refresh", APIKeyAuth(h.apiKey), h.TriggerRefresh)
}
