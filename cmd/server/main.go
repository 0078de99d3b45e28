package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-mood/internal/bot"
	"market-mood/internal/cache"
	"market-mood/internal/config"
	"market-mood/internal/handler"
	"market-mood/internal/job"
	"market-mood/internal/provider"
	"market-mood/internal/service"
	"market-mood/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "market-mood/docs"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initRedisFunc  = cache.InitRedis
	initTracerFunc = tracing.InitTracer
	newCNNFunc     = func(tracer trace.Tracer, timeout time.Duration) service.SentimentFetcher {
		return provider.NewCNNFearGreedProvider(tracer, timeout)
	}
	newNAAIMFunc = func(tracer trace.Tracer, timeout time.Duration) service.SentimentFetcher {
		return provider.NewNAAIMProvider(tracer, timeout)
	}
	newSentimentServiceFunc = service.NewSentimentService
	newSentimentPollerFunc  = job.NewSentimentPoller
	startPollerFunc         = func(p *job.SentimentPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc    = bot.StartTelegramBot
	newHandlerFunc          = handler.New
	newRouterFunc           = gin.Default
	setupSignalNotify       = signal.Notify
	waitForSignalFunc       = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc     = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc  = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Market Mood API
// @version         1.0
// @description     Market sentiment dashboard aggregating the CNN Fear & Greed Index and the NAAIM Exposure Index.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Redis
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create fetchers and the sentiment service
	fetchTimeout := time.Duration(cfg.FetchTimeoutSecs) * time.Second
	sentimentService := newSentimentServiceFunc(
		tracer,
		provider.NewDemoProvider(),
		cache.Client,
		cfg.SentimentPollSecs,
		newCNNFunc(tracer, fetchTimeout),
		newNAAIMFunc(tracer, fetchTimeout),
	)

	// Start sentiment poller (background goroutine, stopped by ctx cancel)
	poller := newSentimentPollerFunc(tracer, sentimentService, cfg.SentimentPollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(sentimentService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, sentimentService, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("market-mood"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
