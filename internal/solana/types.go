package solana

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// AssetKind selects which asset a transfer moves.
type AssetKind string

const (
	AssetNative AssetKind = "native"
	AssetToken  AssetKind = "token"
)

// NativeDecimals is the lamport precision of SOL.
const NativeDecimals = 9

const NativeSymbol = "SOL"

// ParseAssetKind maps user-facing asset labels to an AssetKind. The token
// kind accepts the tracked token's symbol so API callers can pass "USDC".
func ParseAssetKind(s, tokenSymbol string) (AssetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sol", string(AssetNative):
		return AssetNative, nil
	case strings.ToLower(tokenSymbol), string(AssetToken), "spl":
		return AssetToken, nil
	default:
		return "", &UnsupportedAssetError{Kind: AssetKind(s)}
	}
}

// TokenConfig is the fixed configuration of the tracked fungible token.
// It is deployment configuration, never user input.
type TokenConfig struct {
	Symbol   string
	Mint     solana.PublicKey
	Program  solana.PublicKey
	Decimals uint8
}

// Cluster identifies the target Solana network.
type Cluster string

const (
	ClusterDevnet  Cluster = "devnet"
	ClusterMainnet Cluster = "mainnet-beta"
)

// ChainID returns the network identifier passed to the signing capability,
// e.g. "solana:devnet".
func (c Cluster) ChainID() string {
	return "solana:" + string(c)
}

// Well-known USDC mints per cluster.
var (
	USDCMintMainnet = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	USDCMintDevnet  = solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")
)

// USDCConfig returns the tracked-token configuration for a cluster. USDC is
// a legacy SPL token on both clusters, so the program is always the legacy
// token program.
func USDCConfig(cluster Cluster) (TokenConfig, error) {
	cfg := TokenConfig{
		Symbol:   "USDC",
		Program:  solana.TokenProgramID,
		Decimals: 6,
	}
	switch cluster {
	case ClusterMainnet:
		cfg.Mint = USDCMintMainnet
	case ClusterDevnet:
		cfg.Mint = USDCMintDevnet
	default:
		return TokenConfig{}, fmt.Errorf("solana: unknown cluster: %s", cluster)
	}
	return cfg, nil
}

// TransferIntent is a validated, normalized transfer request. Amount is in
// the asset's smallest unit; on-chain amounts are u64, so the resolver
// bounds-checks before producing one.
type TransferIntent struct {
	Kind        AssetKind
	Amount      uint64
	Destination solana.PublicKey
}

// LifetimeAnchor bounds how long an assembled transaction stays valid. It
// must be fetched immediately before assembly; a payload built on an expired
// anchor is permanently invalid.
type LifetimeAnchor struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// Balance is a transient snapshot of one asset held by an address. Mint is
// empty for the native asset. Amount is in human units.
type Balance struct {
	Asset     string `json:"asset"`
	Mint      string `json:"mint,omitempty"`
	Amount    string `json:"amount"`
	BaseUnits uint64 `json:"baseUnits"`
}
