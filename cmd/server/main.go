package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferrygo/wcfhttp/internal/api"
	"github.com/ferrygo/wcfhttp/internal/config"
	"github.com/ferrygo/wcfhttp/internal/forward"
	"github.com/ferrygo/wcfhttp/internal/wcf"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	cfgPath := flag.String("config", "", "Path to YAML config file")
	cb := flag.String("cb", "", "Message callback URL (overrides config)")
	wcfURL := flag.String("wcf", "", "Engine sidecar websocket URL (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *cb != "" {
		cfg.Forward.CallbackURL = *cb
	}
	if *wcfURL != "" {
		cfg.WCF.URL = *wcfURL
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Engine connection ─────────────────────────────────────────────────────
	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := wcf.Dial(dialCtx, cfg.WCF.URL, logger)
	dialCancel()
	if err != nil {
		slog.Error("failed to reach engine sidecar", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	self, err := conn.SelfWxid(ctx)
	if err != nil {
		slog.Error("failed to resolve local identity", "err", err)
		os.Exit(1)
	}
	slog.Info("engine connected", "wxid", self)

	// ── Delivery sink ─────────────────────────────────────────────────────────
	var sink forward.Sink
	switch {
	case cfg.Forward.CallbackURL != "":
		sink = forward.NewHTTPSink(cfg.Forward.CallbackURL)
		slog.Info("forwarding messages to callback", "url", cfg.Forward.CallbackURL)
	case cfg.Forward.AMQPURL != "":
		amqpSink, err := forward.NewAMQPSink(cfg.Forward.AMQPURL, cfg.Forward.AMQPExchange, logger)
		if err != nil {
			slog.Error("failed to connect amqp sink", "err", err)
			os.Exit(1)
		}
		defer amqpSink.Close()
		sink = amqpSink
		slog.Info("publishing messages to broker", "exchange", cfg.Forward.AMQPExchange)
	default:
		slog.Warn("no callback configured, messages will only be logged; set -cb or forward.callback_url")
	}

	// ── Forwarder ─────────────────────────────────────────────────────────────
	if err := conn.EnableReceiving(cfg.WCF.Pyq); err != nil {
		slog.Error("failed to enable message receiving", "err", err)
		os.Exit(1)
	}
	norm := forward.NewNormalizer(self, wcf.MentionsUser)
	fw := forward.New(conn, norm, sink, time.Duration(cfg.Forward.PollTimeoutMs)*time.Millisecond, logger)
	fw.Start(ctx)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(conn)
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)

	cancel() // stop the forwarder
	select {
	case <-fw.Done():
	case <-shutCtx.Done():
		slog.Warn("forwarder did not stop in time")
	}
	slog.Info("goodbye")
}
