package solana

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBalanceReader struct {
	native    uint64
	nativeErr error
	token     uint64
	tokenErr  error
}

func (s *stubBalanceReader) NativeBalance(context.Context, solana.PublicKey) (uint64, error) {
	return s.native, s.nativeErr
}

func (s *stubBalanceReader) TokenBalanceByOwner(context.Context, solana.PublicKey, solana.PublicKey) (uint64, error) {
	return s.token, s.tokenErr
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestVerifier_Snapshot(t *testing.T) {
	token := devnetToken(t)
	reader := &stubBalanceReader{native: 1_500_000_000, token: 2_000_000}
	verifier := NewVerifier(reader, token, quietLogger())

	snapshot := verifier.Snapshot(context.Background(), testDest)
	require.Len(t, snapshot, 2)

	native := verifier.BalanceFor(snapshot, AssetNative)
	assert.Equal(t, NativeSymbol, native.Asset)
	assert.Empty(t, native.Mint)
	assert.Equal(t, "1.5", native.Amount)
	assert.Equal(t, uint64(1_500_000_000), native.BaseUnits)

	tokenBal := verifier.BalanceFor(snapshot, AssetToken)
	assert.Equal(t, token.Symbol, tokenBal.Asset)
	assert.Equal(t, token.Mint.String(), tokenBal.Mint)
	assert.Equal(t, "2", tokenBal.Amount)
}

// A balance query failure for one asset is reported as a zero balance, not
// propagated as a snapshot failure.
func TestVerifier_SnapshotFailsSoft(t *testing.T) {
	token := devnetToken(t)
	reader := &stubBalanceReader{
		nativeErr: errors.New("rpc unavailable"),
		token:     3_000_000,
	}
	verifier := NewVerifier(reader, token, quietLogger())

	snapshot := verifier.Snapshot(context.Background(), testDest)
	require.Len(t, snapshot, 2)

	native := verifier.BalanceFor(snapshot, AssetNative)
	assert.Equal(t, "0", native.Amount)
	assert.Zero(t, native.BaseUnits)

	tokenBal := verifier.BalanceFor(snapshot, AssetToken)
	assert.Equal(t, "3", tokenBal.Amount)
}

func TestVerifier_Diff(t *testing.T) {
	token := devnetToken(t)
	verifier := NewVerifier(&stubBalanceReader{}, token, quietLogger())

	before := []Balance{
		{Asset: NativeSymbol, Amount: "0.004", BaseUnits: 4_000_000},
		{Asset: token.Symbol, Mint: token.Mint.String(), Amount: "10", BaseUnits: 10_000_000},
	}
	after := []Balance{
		{Asset: NativeSymbol, Amount: "0.005", BaseUnits: 5_000_000},
		{Asset: token.Symbol, Mint: token.Mint.String(), Amount: "9", BaseUnits: 9_000_000},
	}

	assert.Equal(t, "0.001", verifier.Diff(before, after, AssetNative))
	assert.Equal(t, "-1", verifier.Diff(before, after, AssetToken))
}
