package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"reelfeed/config"
	"reelfeed/handlers"
	"reelfeed/internal/fetch"
	"reelfeed/services/discovery"
	"reelfeed/services/library"
	"reelfeed/services/recommend"
	"reelfeed/services/tmdb"
	"reelfeed/utils"
)

func main() {
	settingsPath := flag.String("settings", "data/settings.json", "path to the settings document")
	flag.Parse()

	cfg := config.NewManager(*settingsPath)
	settings, err := cfg.Load()
	if err != nil {
		log.Fatalf("[main] load settings: %v", err)
	}

	setupLogging(settings.Logging)

	librarySvc, err := library.NewService(settings.Data.Dir)
	if err != nil {
		log.Fatalf("[main] init library store: %v", err)
	}

	client := tmdb.NewClient(settings.TMDB.APIKey, fetch.NewClient(fetch.Config{}))
	if !client.HasCredentials() {
		log.Printf("[main] no TMDB credential configured, recommendations will come from the bundled dataset")
	}

	fallback := discovery.NewFallbackCache(afero.NewOsFs(), settings.Data.FallbackDataset)
	source := discovery.NewSource(client, fallback)
	recommendSvc := recommend.NewService(source, client, librarySvc)

	router := utils.NewRouter(
		handlers.NewRecommendationsHandler(recommendSvc),
		handlers.NewLibraryHandler(librarySvc),
	)

	server := &http.Server{
		Addr:              settings.Server.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[main] listening on %s", settings.Server.Listen)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("[main] server stopped: %v", err)
	}
}

// setupLogging routes the process log through a rotating file while
// keeping stderr output for development.
func setupLogging(settings config.LoggingSettings) {
	if settings.File == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   settings.File,
		MaxSize:    settings.MaxSizeMB,
		MaxBackups: settings.MaxBackups,
		MaxAge:     settings.MaxAgeDays,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
