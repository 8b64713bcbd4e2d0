package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benx421/banking-ledger/internal/config"
	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/handlers"
	"github.com/benx421/banking-ledger/internal/identifier"
	"github.com/benx421/banking-ledger/internal/lock"
	"github.com/benx421/banking-ledger/internal/service"
	"github.com/benx421/banking-ledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting ledger",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
		"redis_lock", cfg.Redis.Enabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var locker lock.Locker = lock.NopLocker{}
	if cfg.Redis.Enabled() {
		client, err := lock.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, &cfg.Redis, logger)
	}

	core := newLedger(cfg, database, locker, logger)

	runner := worker.NewDirectDebitRunner(core.movements, cfg.Ledger.DirectDebitInterval, logger)
	runnerDone := make(chan error, 1)
	go func() { runnerDone <- runner.Run(ctx) }()

	mux := http.NewServeMux()
	mux.Handle("GET /health", handlers.NewHealthHandler(database, logger))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down ledger...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if err := <-runnerDone; err != nil {
		logger.Error("direct debit runner failed", "error", err)
	}

	logger.Info("ledger stopped")
}

// ledger is the set of core services built by this process. Only movements is
// driven here, by the direct debit runner. accounts and cards have no caller in
// this binary: they are where a transport (HTTP or RPC) attaches, sharing the
// identifier generator with each other.
type ledger struct {
	accounts  service.AccountManager
	cards     service.CardIssuer
	movements *service.MovementService
}

func newLedger(cfg *config.Config, database *db.DB, locker lock.Locker, logger *slog.Logger) *ledger {
	generator := identifier.NewGenerator(rand.NewPCG(seed(), seed()), identifier.IbanFormat{
		Country:    cfg.Ledger.IbanCountry,
		BankCode:   cfg.Ledger.IbanBankCode,
		BranchCode: cfg.Ledger.IbanBranchCode,
	}, nil)

	return &ledger{
		accounts:  service.NewAccountService(database, generator, logger),
		cards:     service.NewCardService(database, generator, logger, cfg.Ledger.CardExpiryYears),
		movements: service.NewMovementService(database, locker, logger, cfg.Ledger.RevocationWindow),
	}
}

func seed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}
