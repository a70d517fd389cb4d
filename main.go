// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quickpoll/quickpoll/bridge"
	"github.com/quickpoll/quickpoll/cliparse"
	"github.com/quickpoll/quickpoll/engine"
	"github.com/quickpoll/quickpoll/event"
	"github.com/quickpoll/quickpoll/metrics"
	"github.com/quickpoll/quickpoll/router"
	"github.com/quickpoll/quickpoll/store"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("store initialization failed", "store", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("store ready", "store", cfg.StoreType)

	var pub event.Publisher = event.Nop()
	if cfg.KafkaBrokers != "" {
		pub = event.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		slog.Info("kafka vote events enabled", "topic", cfg.KafkaTopic)
	}
	defer pub.Close()

	m := metrics.NewVoteMetrics("quickpoll")
	eng := engine.New(repo, pub, m)
	br := bridge.New(repo)
	defer br.Close()

	mux := router.NewRouter(repo, eng, br, m, cfg)

	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		br.Close() // unblock stream loops before the listener drops
		server.Close()
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
