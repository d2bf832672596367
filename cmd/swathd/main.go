// Swathd is the swath planner daemon.
//
// It loads configuration, seeds a planning session and serves the HTTP and
// WebSocket API used by swathctl. Shutdown is handled gracefully on SIGINT
// or SIGTERM.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/large-farva/swath-planner/internal/app"
	"github.com/large-farva/swath-planner/internal/config"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "/etc/swath-planner/swath.toml", "Path to config TOML")
		bind       = pflag.String("bind", "", "HTTP bind address (overrides server.bind)")
		logLevel   = pflag.String("log-level", "", "Log level (overrides logging.level)")
	)
	pflag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warnf("config %s not found, using defaults", *configPath)
		cfg = config.Default()
	case err != nil:
		logger.Fatalf("config load failed: %v", err)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.Fatalf("bad log level: %v", err)
	}
	logger.SetLevel(lvl)

	a, err := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		ConfigPath: *configPath,
		Bind:       *bind,
	})
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("swathd failed: %v", err)
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}
