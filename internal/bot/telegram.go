package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"market-mood/internal/domain"
	"market-mood/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(sentimentService *service.SentimentService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/feargreed", func(c tele.Context) error {
		return c.Send(readingMessage(sentimentService, domain.SourceCNNFearGreed))
	})

	b.Handle("/naaim", func(c tele.Context) error {
		return c.Send(readingMessage(sentimentService, domain.SourceNAAIM))
	})

	b.Handle("/mood", func(c tele.Context) error {
		lines := make([]string, 0, len(domain.Sources))
		for _, source := range domain.Sources {
			lines = append(lines, readingMessage(sentimentService, source))
		}
		return c.Send(strings.Join(lines, "\n\n"))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func readingMessage(sentimentService *service.SentimentService, source domain.Source) string {
	reading, err := sentimentService.Latest(context.Background(), source)
	if err != nil {
		return fmt.Sprintf("Error fetching %s: %v", source.DisplayName(), err)
	}
	msg := fmt.Sprintf(
		"%s\nScore: %.1f\nMood: %s\nUpdated: %s",
		reading.Source.DisplayName(), reading.Score, reading.Label,
		reading.Timestamp.UTC().Format("2006-01-02 15:04 UTC"),
	)
	if reading.IsDemo {
		msg += "\n(demo data, live fetch unavailable)"
	}
	return msg
}
