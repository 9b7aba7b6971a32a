package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credential-lease-platform/internal/config"
	"credential-lease-platform/internal/infra/logging"
	"credential-lease-platform/internal/infra/mailcode"
	"credential-lease-platform/internal/infra/metrics"
	red "credential-lease-platform/internal/infra/redis"
	"credential-lease-platform/internal/infra/web"
	"credential-lease-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Redis ----
	client, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer client.Close()

	// ---- Repositories ----
	codeRepo := red.NewCodeRepo(client)
	slotRepo := red.NewSlotRepo(client)
	credRepo := red.NewCredentialRepo(client)
	leaseRepo := red.NewLeaseRepo(client)
	settingsRepo := red.NewSettingsRepo(client)
	fetchWindow := red.NewFetchWindowStore(client)

	// ---- Adapters ----
	mailClient := mailcode.NewHTTPClient(cfg.MailCode)

	// ---- Use cases ----
	selector := usecase.NewCredentialSelector(credRepo)
	policy := usecase.RetryPolicy{
		MaxAttempts:  cfg.Redeem.MaxAttempts,
		WriteBackoff: cfg.Redeem.WriteBackoff,
		RaceBackoff:  cfg.Redeem.RaceBackoff,
	}
	redeemUC := usecase.NewRedeemUseCase(codeRepo, slotRepo, credRepo, leaseRepo, settingsRepo, selector, policy, logger)
	leaseUC := usecase.NewLeaseUseCase(leaseRepo, credRepo, settingsRepo, fetchWindow, mailClient, logger)
	adminUC := usecase.NewAdminUseCase(codeRepo, slotRepo, leaseRepo, logger)

	// ---- HTTP server ----
	auth := web.NewSessionManager(cfg.Admin.APIKey, !cfg.Runtime.Dev, "", cfg.Admin.SessionTTL)
	srv := web.NewServer(redeemUC, leaseUC, adminUC, auth, cfg.Admin.APIKey, cfg.Server.ClaimRatePerMin, client, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
