package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"task-bot/engine"
	"task-bot/gateway"
	"task-bot/internal"
	"task-bot/moderation"
	"task-bot/notify"
	"task-bot/repositories"
	"task-bot/runtime"
	"task-bot/runtime/workers"
	"task-bot/telegram"
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
		fmt.Fprintf(os.Stderr, "Bot terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the bot lifecycle, and centralizes
// error reporting, so 'defer' statements (like the database close) always
// execute before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	censorRune, err := internal.CharacterRune(config.CensorChar)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Session database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Release the database lock and flush buffers before returning.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Collaborators: store, backend gateway, chat transport, moderation
	sessions := repositories.NewSessionRepository(db, config.SessionNamespace, logger)
	backend := gateway.NewClient(config.BackendBaseURL, config.BackendTimeout, logger)
	transport := telegram.NewClient(config.BotToken, config.TelegramTimeout, logger)

	moderator, err := buildModerator(config, censorRune)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}

	conversations := engine.NewEngine(sessions, backend, transport, logger)

	// 4. Runtime: supervisor, orchestrator, poller, heartbeat
	sup := workers.NewSupervisor(logger)
	orchestrator := runtime.NewOrchestrator(logger, sup, conversations, config.NumberOfWorkers, config.BufferSize)
	sup.Add(
		workers.NewPollerWorker(transport, orchestrator, config.PollTimeoutSec, logger),
		workers.NewHeartbeatWorker(logger, config.HeartbeatPeriod),
	)

	// 5. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting orchestrator...", "workers", config.NumberOfWorkers)
		orchestrator.Run(ctx)
	}()

	// 6. Mutation hook server, where the backend reports committed task changes
	dispatcher := notify.NewDispatcher(transport, moderator, logger)
	mux := http.NewServeMux()
	mux.Handle("/hooks/task", notify.NewHookHandler(dispatcher, hookSecret(config), logger))

	hookServer := &http.Server{Addr: config.HookAddr, Handler: mux}
	go func() {
		logger.Info("Starting mutation hook server", "address", config.HookAddr, "at", time.Now().UTC())
		if err := hookServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("hook server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	// The execution blocks here until either a signal is received or a server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hookServer.Shutdown(shutdownCtx)
	orchestrator.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildModerator(config internal.Config, censorRune rune) (*moderation.Moderator, error) {
	if config.BlockedWordsPath == "" {
		return nil, nil
	}
	words, err := moderation.LoadWords(config.BlockedWordsPath)
	if err != nil {
		return nil, err
	}
	return moderation.NewModerator(words, censorRune)
}

func hookSecret(config internal.Config) []byte {
	if config.HookSecret == "" {
		return nil
	}
	return []byte(config.HookSecret)
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
