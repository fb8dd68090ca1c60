package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanshuy/vhost-server/internal/config"
	"github.com/yanshuy/vhost-server/internal/router"
	"github.com/yanshuy/vhost-server/internal/server"
	"github.com/yanshuy/vhost-server/internal/tlsutil"
)

func main() {
	configPath := flag.String("config", "vhost.conf.yaml", "path to the YAML configuration")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid log level %q: %v", *logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	opts := server.Options{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		Logger:       logger,
	}
	if cfg.TLS.Enabled() {
		opts.TLS, err = tlsutil.ServerConfig(cfg.TLS.Cert, cfg.TLS.Key)
		if err != nil {
			log.Fatalf("Error loading TLS material: %v", err)
		}
	}

	srv, err := server.Serve(cfg.Addr(), router.New(cfg, logger).Route, opts)
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
	defer srv.Close()

	hosts := make([]string, 0, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		hosts = append(hosts, h.Name)
	}
	logger.Info("server started",
		slog.String("addr", srv.Addr().String()),
		slog.Bool("tls", opts.TLS != nil),
		slog.Any("hosts", hosts),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("server gracefully stopped")
}
