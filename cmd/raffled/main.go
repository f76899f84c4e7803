package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"raffle/internal/config"
	"raffle/internal/handlers"
	"raffle/internal/ledger"
	"raffle/internal/ledger/tonledger"
	"raffle/internal/logger"
	"raffle/internal/raffle"
	"raffle/internal/storage"
)

func main() {
	configuration, err := config.Load()
	if err != nil {
		fmt.Printf("configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(logger.Configuration{
		LogFile:   configuration.LogFile,
		ErrorFile: configuration.ErrorFile,
		Level:     configuration.LogLevel,
		Console:   configuration.LogConsole,
	})
	defer logger.Sync()

	store := storage.NewSqliteStorage(configuration.DatabasePath)

	var custody ledger.AssetCustody
	var value ledger.ValueTransfer

	switch configuration.Ledger {
	case config.LedgerTon:
		tonLedger, err := tonledger.New(tonledger.Configuration{
			Vault:          configuration.Vault,
			WalletMnemonic: configuration.WalletMnemonic,
			WalletVersion:  configuration.WalletVersion,
			Token:          configuration.TonapiToken,
		})
		if err != nil {
			logger.Fatal("cannot initialize ton ledger", zap.Error(err))
		}
		custody, value = tonLedger, tonLedger
		logger.Warn("ton ledger signs vault-outbound transfers only, " +
			"escrow deposits and ticket payments must be settled by the payers on chain")
	default:
		memory := ledger.NewMemory()
		custody, value = memory, memory
		logger.Warn("running on the in-memory ledger, transfers are not persisted")
	}

	service := raffle.NewService(store, custody, value, ledger.SystemClock{}, raffle.Params{
		Treasury:       configuration.Treasury,
		Vault:          configuration.Vault,
		FeePercent:     configuration.FeePercent,
		MaxTickets:     configuration.MaxTickets,
		MaxCollections: configuration.MaxCollections,
	})

	httpHandler := handlers.NewHTTPHandler(service)

	router := gin.Default()
	httpHandler.RegisterRoutes(router)

	logger.Info("raffle service starting",
		zap.String("listen address", configuration.ListenAddress),
		zap.String("ledger", configuration.Ledger),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(configuration.ListenAddress)
	}()

	select {
	case err := <-errCh:
		logger.Fatal("server stopped", zap.Error(err))
	case <-waitForInterrupt():
		logger.Info("interrupt signal received, shutting down")
	}
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
