package solana

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/util"
)

// BalanceReader is the subset of Client the verifier needs.
type BalanceReader interface {
	NativeBalance(ctx context.Context, addr solana.PublicKey) (uint64, error)
	TokenBalanceByOwner(ctx context.Context, owner, mint solana.PublicKey) (uint64, error)
}

// Verifier snapshots an address's native and tracked-token balances and
// computes observed deltas. A failed read for one asset degrades to a zero
// balance for that asset so an unrelated RPC failure never masks a
// transfer's outcome; the degradation is logged, not propagated.
type Verifier struct {
	reader BalanceReader
	token  TokenConfig
	log    *logrus.Logger
}

func NewVerifier(reader BalanceReader, token TokenConfig, log *logrus.Logger) *Verifier {
	return &Verifier{
		reader: reader,
		token:  token,
		log:    log,
	}
}

// Snapshot reads both balances concurrently. It imposes no pacing; the
// orchestration layer is responsible for spacing snapshots around a
// submission.
func (v *Verifier) Snapshot(ctx context.Context, addr solana.PublicKey) []Balance {
	var native, tokenBal Balance

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		native = v.nativeBalance(gctx, addr)
		return nil
	})
	g.Go(func() error {
		tokenBal = v.tokenBalance(gctx, addr)
		return nil
	})
	_ = g.Wait()

	return []Balance{native, tokenBal}
}

// BalanceFor picks the balance relevant to an asset kind out of a snapshot.
func (v *Verifier) BalanceFor(snapshot []Balance, kind AssetKind) Balance {
	for _, b := range snapshot {
		if kind == AssetNative && b.Mint == "" {
			return b
		}
		if kind == AssetToken && b.Mint == v.token.Mint.String() {
			return b
		}
	}
	return Balance{Asset: v.assetLabel(kind), Amount: "0"}
}

// Diff returns after minus before in human units for the given asset kind.
func (v *Verifier) Diff(before, after []Balance, kind AssetKind) string {
	b := v.BalanceFor(before, kind)
	a := v.BalanceFor(after, kind)

	delta := new(big.Int).Sub(
		new(big.Int).SetUint64(a.BaseUnits),
		new(big.Int).SetUint64(b.BaseUnits),
	)
	return util.FromBaseUnits(delta, v.decimalsFor(kind))
}

func (v *Verifier) nativeBalance(ctx context.Context, addr solana.PublicKey) Balance {
	lamports, err := v.reader.NativeBalance(ctx, addr)
	if err != nil {
		qErr := &BalanceQueryError{Asset: NativeSymbol, Err: err}
		v.log.WithError(qErr).WithField("address", addr.String()).
			Warn("balance query failed, reporting zero")
		lamports = 0
	}

	return Balance{
		Asset:     NativeSymbol,
		Amount:    util.FromBaseUnits(new(big.Int).SetUint64(lamports), NativeDecimals),
		BaseUnits: lamports,
	}
}

func (v *Verifier) tokenBalance(ctx context.Context, owner solana.PublicKey) Balance {
	amount, err := v.reader.TokenBalanceByOwner(ctx, owner, v.token.Mint)
	if err != nil {
		qErr := &BalanceQueryError{Asset: v.token.Symbol, Err: err}
		v.log.WithError(qErr).WithField("address", owner.String()).
			Warn("balance query failed, reporting zero")
		amount = 0
	}

	return Balance{
		Asset:     v.token.Symbol,
		Mint:      v.token.Mint.String(),
		Amount:    util.FromBaseUnits(new(big.Int).SetUint64(amount), int(v.token.Decimals)),
		BaseUnits: amount,
	}
}

func (v *Verifier) assetLabel(kind AssetKind) string {
	if kind == AssetToken {
		return v.token.Symbol
	}
	return NativeSymbol
}

func (v *Verifier) decimalsFor(kind AssetKind) int {
	if kind == AssetToken {
		return int(v.token.Decimals)
	}
	return NativeDecimals
}
