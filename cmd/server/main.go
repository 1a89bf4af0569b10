/*
Package main is the entry point for the Roomcast chat server.

It is responsible for loading configuration, initializing the global logging
system, starting the TCP chat server and the ops HTTP endpoint, and gracefully
handling operating system interrupt signals (SIGINT, SIGTERM) to ensure a
smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomcast/internal/app/chat"
	"roomcast/internal/configs"
	"roomcast/internal/handler"
	"roomcast/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Int("ops_port", cfg.OpsPort).
		Dur("idle_timeout", cfg.IdleTimeout).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the chat server.
	srv := chat.NewServer(cfg)
	if err := srv.Start(); err != nil {
		logx.Fatal(err, "Chat server failed to start")
	}

	// Setup the ops HTTP endpoint.
	opsAddr := fmt.Sprintf(":%d", cfg.OpsPort)
	opsServer := &http.Server{
		Addr:         opsAddr,
		Handler:      handler.Router(srv, cfg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Ops endpoint starting on http://localhost%s", opsAddr))
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Ops endpoint failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Ops endpoint forced to shutdown")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Chat server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
