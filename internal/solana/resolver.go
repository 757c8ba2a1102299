package solana

import (
	"github.com/gagliardetto/solana-go"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/util"
)

// Resolver normalizes raw transfer input into a validated TransferIntent.
// It is a pure function of its inputs and the fixed asset configuration.
type Resolver struct {
	token TokenConfig
}

func NewResolver(token TokenConfig) *Resolver {
	return &Resolver{token: token}
}

// Resolve validates rawAmount and rawDestination and converts the amount to
// the asset's smallest unit. Conversion is exact decimal arithmetic, so the
// precision ceiling is the u64 wire format, not float64.
func (r *Resolver) Resolve(rawAmount, rawDestination string, kind AssetKind) (TransferIntent, error) {
	decimals, err := r.decimalsFor(kind)
	if err != nil {
		return TransferIntent{}, err
	}

	base, err := util.ToBaseUnits(rawAmount, decimals)
	if err != nil {
		return TransferIntent{}, &ValidationError{Field: "amount", Reason: err.Error()}
	}
	if base.Sign() <= 0 {
		return TransferIntent{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !base.IsUint64() {
		return TransferIntent{}, &ValidationError{Field: "amount", Reason: "exceeds the maximum transferable amount"}
	}

	dest, err := solana.PublicKeyFromBase58(rawDestination)
	if err != nil {
		return TransferIntent{}, &ValidationError{Field: "destination", Reason: err.Error()}
	}

	return TransferIntent{
		Kind:        kind,
		Amount:      base.Uint64(),
		Destination: dest,
	}, nil
}

func (r *Resolver) decimalsFor(kind AssetKind) (int, error) {
	switch kind {
	case AssetNative:
		return NativeDecimals, nil
	case AssetToken:
		return int(r.token.Decimals), nil
	default:
		return 0, &UnsupportedAssetError{Kind: kind}
	}
}
