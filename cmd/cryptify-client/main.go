package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cryptify-labs/cryptify-client/internal/api"
	"github.com/cryptify-labs/cryptify-client/internal/client"
	"github.com/cryptify-labs/cryptify-client/internal/config"
	"github.com/cryptify-labs/cryptify-client/internal/storage"
	"github.com/cryptify-labs/cryptify-client/wallet"

	"go.uber.org/zap"
)

// @title        Cryptify Client API
// @version      1.0
// @description  Wallet session, network guard and fund transfer API
// @host         localhost:8080
// @BasePath     /
func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if err := config.Init(); err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	// The key file password unlocks the wallet on connect. Without it the
	// client still serves read-only state with a "wallet unavailable" notice.
	if err := config.PromptForPassword(); err != nil {
		log.Warn("no key file password captured, wallet will be unavailable", zap.Error(err))
	}

	var provider wallet.Provider
	var registry wallet.Registry
	ethClient, err := client.NewEthClient(log)
	if err != nil {
		log.Warn("wallet provider unavailable", zap.Error(err))
	} else {
		provider = ethClient
		registry = ethClient
		defer ethClient.Close()
	}

	store := storage.NewFileStore(config.GetSessionFilePath())
	session := wallet.NewSessionStore(provider, store, log)
	fetcher := wallet.NewAccountFetcher(provider, registry, client.NewCoinGeckoClient(), log)
	guard := wallet.NewNetworkGuard(provider, config.GetTargetChainID(), config.GetAlertWindow(), log)
	submitter := wallet.NewTransferSubmitter(session, registry, fetcher, log)

	// Address changes drive everything downstream: chain validation runs
	// strictly after the address is set, fetches fan out without blocking
	// the caller.
	session.OnAddressChange(func(ctx context.Context, address string) {
		fetcher.SetAddress(address)
		if address == "" {
			return
		}
		if _, err := guard.Validate(ctx); err != nil {
			log.Warn("network validation failed", zap.Error(err))
		}
		go func() {
			if err := fetcher.Refresh(context.Background(), address); err != nil {
				log.Warn("account refresh failed", zap.Error(err))
			}
		}()
	})

	guard.Start()
	defer guard.Stop()

	if _, err := session.Restore(context.Background()); err != nil {
		log.Warn("failed to restore session", zap.Error(err))
	}

	router := api.SetupRouter(session, guard, fetcher, submitter)

	srv := &http.Server{
		Addr:    ":" + config.GetPort(),
		Handler: router,
	}

	go func() {
		log.Info("listening", zap.String("port", config.GetPort()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
}
