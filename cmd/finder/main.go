package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/seanblong/repofinder/internal/config"
	"github.com/seanblong/repofinder/internal/finder"
	"github.com/seanblong/repofinder/internal/github"
	"github.com/seanblong/repofinder/internal/tui"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("finder", pflag.ExitOnError)

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}

	// the terminal belongs to the UI; logs only go to a file when asked
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file %s: %v", cfg.LogFile, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("Failed to close log file: %v", err)
			}
		}()
		out = f
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	logger.Info().Str("language", cfg.Language).Str("api_url", cfg.APIURL).Msg("starting repofinder tui")

	client, err := github.NewClient(&github.ClientConfig{
		APIURL:  cfg.APIURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create GitHub client: %v", err)
	}

	lang, _ := finder.ParseLanguage(cfg.Language)
	ctrl := finder.New(client, finder.WithLanguage(lang), finder.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tui.Run(ctx, tui.TUIConfig{
		Controller:   ctrl,
		GlamourStyle: cfg.GlamourStyle,
		Logger:       logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("tui exited")
		stop()
		log.Fatal(err)
	}
}
