// Command transfer runs a single sponsored transfer from the command line
// and prints the verified result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/logging"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/signer"
	sol "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/solana"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/status"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/transfer"
)

type config struct {
	Solana struct {
		Cluster string `default:"devnet"`
		RpcURL  string `default:"https://api.devnet.solana.com"`
	}
	Signer struct {
		URL    string `required:"true"`
		ApiKey string
	}
	Log struct {
		Format string `default:"text"`
		Level  string `default:"info"`
	}
}

func main() {
	amount := flag.String("amount", "", "amount in human units, e.g. 0.001")
	destination := flag.String("to", "", "destination address")
	asset := flag.String("asset", "SOL", "asset to transfer: SOL or USDC")
	from := flag.String("from", "", "signing address held by the wallet service")
	flag.Parse()

	if *amount == "" || *destination == "" || *from == "" {
		flag.Usage()
		os.Exit(2)
	}

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		logrus.Fatalf("failed to process env var: %v", err)
	}

	logger := logging.NewLogger(cfg.Log.Format, cfg.Log.Level)
	ctx := context.Background()

	cluster := sol.Cluster(cfg.Solana.Cluster)
	token, err := sol.USDCConfig(cluster)
	if err != nil {
		logger.Fatalf("failed to resolve token config: %v", err)
	}

	client, err := sol.NewClient(ctx, cfg.Solana.RpcURL)
	if err != nil {
		logger.Fatalf("failed to connect to Solana RPC: %v", err)
	}

	service := transfer.NewService(
		client,
		client,
		sol.NewVerifier(client, token, logger),
		signer.NewHTTPClient(cfg.Signer.URL, cfg.Signer.ApiKey, logger),
		status.NewStatus(client, status.DefaultConfig(), logger),
		token,
		cluster,
		logger,
	)

	result, err := service.Execute(ctx, transfer.Request{
		Amount:      *amount,
		Destination: *destination,
		Asset:       *asset,
		From:        *from,
	})
	if err != nil {
		logger.Fatalf("transfer failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}
