package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	_ = godotenv.Load()

	level := slog.LevelInfo
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		if err := level.UnmarshalText([]byte(value)); err != nil {
			fmt.Fprintln(os.Stderr, "invalid LOG_LEVEL:", value)
		}
	}
	slog.SetDefault(slog.New(NewLogHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	config_path := os.Getenv("CONFIG_PATH")
	if config_path == "" {
		config_path = "./config.yml"
	}
	config, err := ReadConfig(config_path)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "prepare" {
		if err := PrepareTransitTimes(ctx, config); err != nil {
			slog.Error("prepare failed", "error", err)
			os.Exit(1)
		}
		return
	}

	manager := NewNetworkManager(config)
	if err := manager.Load(ctx); err != nil {
		slog.Error("initial load failed", "error", err)
		os.Exit(1)
	}
	go _ReloadOnHangup(ctx, manager)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.Port),
		Handler: NewRouter(manager),
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()

	slog.Info("server listening", "port", config.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// SIGHUP rebuilds the network from the configured sources.
func _ReloadOnHangup(ctx context.Context, manager *NetworkManager) {
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hangup:
			slog.Info("reloading network")
			if err := manager.Load(ctx); err != nil {
				slog.Error("reload failed, keeping current network", "error", err)
			}
		}
	}
}
