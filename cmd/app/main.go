// Smoke Annotator - review wildfire smoke detections and draw boxes around them

package main

import (
	"context"
	"flag"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/config"
	"smoke-annotator/internal/dataset"
	"smoke-annotator/internal/gui"
	"smoke-annotator/internal/io"
	"smoke-annotator/internal/metrics"
	"smoke-annotator/internal/review"
	"smoke-annotator/internal/store"
)

const (
	AppName    = "Smoke Annotator"
	AppID      = "org.smoke-annotator.desktop"
	AppVersion = "1.0.0"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "annotator.yaml", "Path to the YAML configuration file")
	dataDir := flag.String("data", "", "Dataset directory, overrides data_dir from the config")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
		"config":     *configPath,
	}).Info("Starting Smoke Annotator")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	manifest, err := dataset.Load(cfg.DataDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load dataset")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	st, err := store.Open(ctx, store.Options{
		Backend: cfg.Store.Backend,
		Dir:     cfg.DataDir,
		Redis: store.RedisOptions{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			TTL:      cfg.Store.Redis.TTL,
		},
	}, logger)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to open annotation store")
	}

	m := metrics.New()
	var server *metrics.Server
	if cfg.Metrics.Enabled {
		server = metrics.NewServer(cfg.Metrics.Addr, m, logger)
		server.Start()
	}

	ws := review.NewWorkspace(review.Dependencies{
		Manifest: manifest,
		Images:   io.NewDatasetImages(manifest, io.NewImageLoader(logger)),
		Store:    st,
		Metrics:  m,
		Logger:   logger,
	}, review.Options{
		AutoAdvance:     cfg.Review.AutoAdvance,
		Timeout:         cfg.Store.Timeout,
		ZoomOptions:     cfg.Canvas.ZoomOptions(),
		ShowPredictions: cfg.Canvas.ShowPredictions,
		EngineOptions: []annotation.Option{
			annotation.WithUndoLimit(cfg.Canvas.UndoLimit),
			annotation.WithMinDrawPixels(cfg.Canvas.MinDrawPixels),
			annotation.WithSimilarityThreshold(cfg.Canvas.SimilarityThreshold),
		},
	})
	ws.SetScheduler(nil, fyne.Do)

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, ws, logger, *debugMode)
	mainApp.SetCloseCallback(func() {
		shutdown(logger, st, server)
	})
	mainApp.ShowAndRun(context.Background())

	logger.Info("Application shutting down gracefully")
	os.Exit(0)
}

func shutdown(logger *logrus.Logger, st store.Store, server *metrics.Server) {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	if err := st.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close annotation store")
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
