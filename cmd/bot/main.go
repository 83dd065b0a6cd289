package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/audio"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/bot"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/config"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/integrations/calendar"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/integrations/notion"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/transcribe"
)

func main() {
	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		log.Printf("[config] Warning: missing environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN environment variable required")
	}

	opts := bot.Options{
		Converter:   audio.NewConverter(cfg.FFmpegPath),
		Transcriber: transcribe.NewVosk(cfg.VoskModelPath),
	}

	if cfg.NotionConfigured() {
		opts.Notion = notion.NewClient(cfg.NotionToken, cfg.NotionDatabaseID)
	} else {
		log.Println("[config] Notion not configured, /task will be unavailable")
	}

	if cfg.CalendarConfigured() {
		client, err := calendar.NewClient(calendar.Config{
			CredentialsFile: cfg.GoogleCredentialsFile,
			CalendarID:      cfg.GoogleCalendarID,
		})
		if err != nil {
			log.Printf("[config] Warning: failed to create calendar client: %v", err)
		} else {
			log.Printf("[config] Google Calendar client ready for %s", client.CalendarID())
			opts.Calendar = client
		}
	} else {
		log.Println("[config] Google Calendar not configured, /calendar will be unavailable")
	}

	if _, err := os.Stat(cfg.VoskModelPath); os.IsNotExist(err) {
		log.Printf("[config] Warning: Vosk model not found at %s, voice transcription will not be available", cfg.VoskModelPath)
	}

	b, err := bot.New(cfg.TelegramToken, opts)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[main] Shutting down...")
		cancel()
	}()

	log.Println("[main] Starting bot...")
	b.Run(ctx)
	log.Println("[main] Goodbye!")
}
