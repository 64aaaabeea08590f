package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chat-hub/internal"
	"chat-hub/moderation"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/transport"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer executes before the
// process exits and the wiring stays testable.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: internal.ParseLevel(config.LogLevel),
	}))

	// 2. Moderation
	words, err := moderation.LoadEmbedded()
	if err != nil {
		return exitRuntime, fmt.Errorf("wordlist loading failed: %w", err)
	}
	logger.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(words.Words), strings.Join(words.Languages, ",")))

	moderator, err := moderation.NewModerator(words.Words, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator build failed: %w", err)
	}

	// 3. Core state and coordination
	directory := runtime.NewDirectory()
	rooms := runtime.NewRooms(directory)
	messages := runtime.NewMessages(directory)

	// The hub and the router reference each other through the
	// coordinator, so wiring happens in two steps.
	var hub *transport.Hub
	coordinator := runtime.NewCoordinator(
		logger,
		directory,
		rooms,
		messages,
		nil, // router set below
		&moderator,
	)
	hub = transport.NewHub(logger, coordinator, config.SendBufferSize)
	coordinator.SetRouter(runtime.NewBroadcastRouter(logger, directory, hub))

	// 4. Supervised workers
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(workers.NewHealthMonitoringWorker(logger, config.MetricInterval, func() workers.HubStats {
		return workers.HubStats{
			Sessions: directory.SessionCount(),
			Rooms:    directory.RoomCount(),
		}
	}))
	go supervisor.Run(ctx)
	defer supervisor.Stop()

	// 5. HTTP surface
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: mux,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Hub listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitRuntime, err
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return exitRuntime, err
		}
	}

	return exitOK, nil
}
