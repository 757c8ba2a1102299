package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/graceful"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/logging"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/metrics"
	apiserver "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/server"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/signer"
	sol "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/solana"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/status"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/transfer"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.Log.Format, cfg.Log.Level)

	metricsServer := metrics.StartMetricsServer(
		cfg.Metrics.Port,
		[]string{metrics.ServiceHTTP, metrics.ServicePipeline},
		logger,
	)

	cluster := sol.Cluster(cfg.Solana.Cluster)
	token, err := sol.USDCConfig(cluster)
	if err != nil {
		logger.Fatalf("failed to resolve token config: %v", err)
	}

	client, err := sol.NewClient(ctx, cfg.Solana.RpcURL)
	if err != nil {
		logger.Fatalf("failed to connect to Solana RPC: %v", err)
	}

	// Sanity-check the fixed token configuration against the chain.
	program, decimals, err := client.TokenMintInfo(ctx, token.Mint)
	if err != nil {
		logger.Warnf("could not verify tracked mint on chain: %v", err)
	} else {
		if decimals != token.Decimals {
			logger.Fatalf("tracked mint decimals mismatch: chain reports %d, configured %d", decimals, token.Decimals)
		}
		if !program.Equals(token.Program) {
			logger.Fatalf("tracked mint program mismatch: chain reports %s, configured %s", program, token.Program)
		}
	}

	verifier := sol.NewVerifier(client, token, logger)
	signingClient := signer.NewHTTPClient(cfg.Signer.URL, cfg.Signer.ApiKey, logger)

	statusCfg := status.DefaultConfig()
	statusCfg.MaxAttempts = cfg.Confirmation.MaxAttempts
	confirmer := status.NewStatus(client, statusCfg, logger)

	transferService := transfer.NewService(
		client,
		client,
		verifier,
		signingClient,
		confirmer,
		token,
		cluster,
		logger,
	)

	handler := apiserver.NewHandler(transferService, verifier, logger)
	srv := apiserver.New(cfg.Server.Port, handler, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Errorf("api server stopped: %v", err)
			cancel()
		}
	}()

	shutdownCtx, done := graceful.WaitForSignal(ctx)
	defer done()

	logger.Info("shutting down")
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Errorf("failed to stop api server: %v", err)
	}
	if err := metricsServer.Stop(shutdownCtx); err != nil {
		logger.Errorf("failed to stop metrics server: %v", err)
	}
}
