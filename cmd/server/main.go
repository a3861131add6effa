package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riteshkumar/account-ledger/internal/config"
	"github.com/riteshkumar/account-ledger/internal/handler"
	"github.com/riteshkumar/account-ledger/internal/repository"
	"github.com/riteshkumar/account-ledger/internal/service"
)

func main() {
	// Load configuration
	config.LoadEnv(slog.Default())
	cfg := config.Load()

	// Initialise logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Initialise repo
	accountRepo := repository.NewAccountRepository()
	auditRepo := repository.NewAuditRepository()

	// Initialise services
	accountService := service.NewAccountService(accountRepo, auditRepo, logger)
	transactionService := service.NewTransactionService(accountRepo, auditRepo, logger)
	statementService := service.NewStatementService(time.Local, logger)

	// Initialise handlers
	router := handler.NewRouter(handler.RouterConfig{
		Accounts:       handler.NewAccountHandler(accountService, cfg.DeleteReturnsAccounts, logger),
		Transactions:   handler.NewTransactionHandler(transactionService, logger),
		Statements:     handler.NewStatementHandler(statementService, logger),
		Resolver:       handler.NewAccountResolver(accountService, cfg.AccountKeyHeader, logger),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		KeyHeader:      cfg.AccountKeyHeader,
		Logger:         logger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in a go routine
	go func() {
		logger.Info("starting server on port " + cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err.Error())
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
	}

	logger.Info("server exited gracefully")
}
