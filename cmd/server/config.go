package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type config struct {
	Server       server
	Metrics      metricsConfig
	Log          logConfig
	Solana       solanaConfig
	Signer       signerConfig
	Confirmation confirmation
}

type server struct {
	Port string `default:"8080"`
}

type metricsConfig struct {
	Port string `default:"9090"`
}

type logConfig struct {
	Format string `default:"text"`
	Level  string `default:"info"`
}

type solanaConfig struct {
	Cluster string `default:"devnet"`
	RpcURL  string `default:"https://api.devnet.solana.com"`
}

type signerConfig struct {
	URL    string `required:"true"`
	ApiKey string
}

type confirmation struct {
	MaxAttempts int `default:"10"`
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
