// Command ssa-server runs the social score attestation service: it
// aggregates reputation provider scores into a trust index and issues
// signed attestations and mint vouchers over HTTP.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Callmedas69/ssa-sub000/infrastructure/chain"
	"github.com/Callmedas69/ssa-sub000/infrastructure/middleware"
	"github.com/Callmedas69/ssa-sub000/infrastructure/providers"
	"github.com/Callmedas69/ssa-sub000/infrastructure/signing"
	"github.com/Callmedas69/ssa-sub000/internal/application"
	"github.com/Callmedas69/ssa-sub000/internal/attest"
	"github.com/Callmedas69/ssa-sub000/internal/scoring"
	"github.com/Callmedas69/ssa-sub000/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the service configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := application.LoadConfig(*configPath)
	if err != nil {
		logger.Error("loading configuration failed", "err", err)
		os.Exit(1)
	}

	descriptors, err := cfg.Descriptors()
	if err != nil {
		logger.Error("invalid provider configuration", "err", err)
		os.Exit(1)
	}
	registry, err := scoring.NewRegistry(descriptors)
	if err != nil {
		logger.Error("provider registry validation failed", "err", err)
		os.Exit(1)
	}

	metrics := middleware.NewPrometheusMetrics()

	adapters := providers.BuildAdapters(providers.Config{
		Passport:    adapterConfig(cfg, providers.PassportProviderID),
		Talent:      adapterConfig(cfg, providers.TalentProviderID),
		SocialID:    adapterConfig(cfg, providers.SocialIDProviderID),
		SocialGraph: adapterConfig(cfg, providers.SocialGraphProviderID),
		WebOfScore:  adapterConfig(cfg, providers.WebOfScoreProviderID),
	}, metrics)

	orchestrator := scoring.NewOrchestrator(registry, adapters, logger,
		scoring.WithMetrics(metrics))

	contract, err := chain.NewClient(cfg.Chain.RPCURL,
		common.HexToAddress(cfg.Chain.AttestatorAddress),
		common.HexToAddress(cfg.Chain.ProfileAddress))
	if err != nil {
		logger.Error("contract client init failed", "err", err)
		os.Exit(1)
	}
	defer contract.Close()

	signer, err := signing.NewLocalSigner(os.Getenv(cfg.Signer.PrivateKeyEnv),
		signing.Domain{ChainID: cfg.Chain.ChainID, VerifyingContract: cfg.Chain.AttestatorAddress},
		signing.Domain{ChainID: cfg.Chain.ChainID, VerifyingContract: cfg.Chain.ProfileAddress})
	if err != nil {
		logger.Error("signer init failed", "err", err, "env", cfg.Signer.PrivateKeyEnv)
		os.Exit(1)
	}
	logger.Info("signer ready", "address", signer.SignerAddress().Hex())

	issuer := attest.NewIssuer(registry, contract, signer, logger)
	vouchers := attest.NewVoucherIssuer(contract, signer, attest.NewNonceLedger(), logger)

	svc := application.NewService(orchestrator, registry, issuer, vouchers, logger)

	listen := cfg.Server.Listen
	if listen == "" {
		listen = ":8080"
	}
	app := server.New(svc, logger, cfg.Server.RequestsPerMinute)
	logger.Info("listening", "addr", listen)
	if err := app.Listen(listen); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// adapterConfig resolves one provider's base URL and credential from the
// configuration file and environment.
func adapterConfig(cfg *application.Config, providerID string) providers.AdapterConfig {
	for _, p := range cfg.Providers {
		if p.ID != providerID {
			continue
		}
		ac := providers.AdapterConfig{BaseURL: p.BaseURL}
		if p.APIKeyEnv != "" {
			ac.APIKey = os.Getenv(p.APIKeyEnv)
		}
		return ac
	}
	return providers.AdapterConfig{}
}
