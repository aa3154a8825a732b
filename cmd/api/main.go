package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/seanblong/repofinder/internal/config"
	"github.com/seanblong/repofinder/internal/finder"
	"github.com/seanblong/repofinder/internal/github"
	"github.com/seanblong/repofinder/internal/web"
	"github.com/spf13/pflag"
)

func main() {
	// Create flagset for configuration
	fs := pflag.NewFlagSet("repofinder-api", pflag.ExitOnError)

	// Load configuration
	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	// Set up logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Str("language", cfg.Language).Str("api_url", cfg.APIURL).Dur("timeout", cfg.Timeout).Str("log_level", cfg.LogLevel).Msg("starting repofinder api")

	client, err := github.NewClient(&github.ClientConfig{
		APIURL:  cfg.APIURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create GitHub client: %v", err)
	}

	// already validated by config.Load
	lang, _ := finder.ParseLanguage(cfg.Language)
	srv := web.NewServer(client, lang, cfg.Timeout, logger)

	address := fmt.Sprintf(":%d", cfg.Port)
	s := &http.Server{
		Addr:              address,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info().Str("addr", s.Addr).Msg("api server listening")
	log.Fatal(s.ListenAndServe())
}
