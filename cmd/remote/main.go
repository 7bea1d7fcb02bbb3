package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"smart-remote/config"
	"smart-remote/internal/application"
	"smart-remote/internal/domain"
	"smart-remote/internal/infra/httpapi"
	"smart-remote/internal/infra/mqtt"
	"smart-remote/internal/infra/smartthings"
)

func main() {
	fs := flag.NewFlagSet("smart-remote", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	logLevel := fs.String("log-level", "", "override log level (debug, info, warn, error)")

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("SMART_REMOTE")); err != nil {
		slog.Error("parsing flags", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	registry, err := buildRegistry(cfg.Devices)
	if err != nil {
		logger.Error("building device registry", "error", err)
		os.Exit(1)
	}

	timeout := parseDuration(logger, "api.timeout", cfg.API.Timeout, 15*time.Second)
	api := smartthings.NewClientWithHTTP(cfg.API.BaseURL, cfg.API.ServiceToken, &http.Client{Timeout: timeout})
	api.SetMediaType(cfg.API.MediaType)

	var publisher application.StatePublisher
	var bridge *mqtt.Bridge
	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         byte(cfg.MQTT.QoS),
		}, logger)
		if err != nil {
			logger.Error("connecting to MQTT broker", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		bridge = mqtt.NewBridge(client, cfg.MQTT.TopicPrefix, logger)
		publisher = bridge
	}

	remote := application.NewRemote(api, registry, publisher, application.RemoteOptions{
		TokenLifetime:    parseDuration(logger, "api.token_lifetime", cfg.API.TokenLifetime, domain.DefaultTokenLifetime),
		ReconcileDelay:   parseDuration(logger, "remote.reconcile_delay", cfg.Remote.ReconcileDelay, application.DefaultReconcileDelay),
		StatusClearDelay: parseDuration(logger, "remote.status_clear_delay", cfg.Remote.StatusClearDelay, application.DefaultStatusClearDelay),
	}, logger)

	var share application.ShareLink
	if cfg.Share.BaseURL != "" {
		share = application.NewShareLink(cfg.Share.BaseURL, registry.Primary().ID)
		logger.Info("share link", "url", share.URL, "qr_code", share.QRCodeURL)
	}

	server := httpapi.NewServer(cfg.HTTP.Addr, httpapi.Options{
		AuthToken:  cfg.HTTP.AuthToken,
		RateLimit:  cfg.HTTP.RateLimit,
		TrustProxy: cfg.HTTP.TrustProxy,
	}, remote, share, logger)
	if err := server.Start(ctx); err != nil {
		logger.Error("starting HTTP server", "error", err)
		os.Exit(1)
	}
	defer server.Stop()

	if bridge != nil {
		if err := bridge.Listen(ctx, remote); err != nil {
			logger.Error("subscribing to MQTT intents", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("starting smart remote",
		"primary", registry.Primary().ID,
		"lights", len(registry.Auxiliary()),
		"http_addr", cfg.HTTP.Addr,
		"mqtt", cfg.MQTT.Enabled,
	)

	// A failed start leaves the session in the failed phase; the HTTP and
	// MQTT surfaces stay up so it can be restarted.
	if err := remote.Start(ctx); err != nil {
		logger.Error("remote session failed", "error", err)
	}

	<-ctx.Done()
}

func buildRegistry(cfg config.DevicesConfig) (*domain.Registry, error) {
	primary := domain.DeviceRef{ID: cfg.Primary.ID, Name: cfg.Primary.Name, Label: cfg.Primary.Label}

	lights := make([]domain.DeviceRef, 0, len(cfg.Auxiliary))
	for _, d := range cfg.Auxiliary {
		lights = append(lights, domain.DeviceRef{ID: d.ID, Name: d.Name, Label: d.Label})
	}

	registry, err := domain.NewRegistry(primary, lights...)
	if err != nil {
		return nil, fmt.Errorf("devices: %w", err)
	}
	return registry, nil
}

func parseDuration(logger *slog.Logger, key, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("invalid duration, using default", "key", key, "value", value, "default", fallback, "error", err)
		return fallback
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		})
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}
