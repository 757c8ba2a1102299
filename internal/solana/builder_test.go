package solana

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testFrom = solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
	testDest = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
)

func TestBuilder_Native(t *testing.T) {
	builder := NewBuilder(devnetToken(t))

	intent := TransferIntent{
		Kind:        AssetNative,
		Amount:      1_000_000,
		Destination: testDest,
	}

	instructions, err := builder.Build(intent, testFrom)
	require.NoError(t, err)
	require.Len(t, instructions, 1)

	inst := instructions[0]
	assert.Equal(t, solana.SystemProgramID, inst.ProgramID())

	accounts := inst.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, testFrom, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, testDest, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)

	// System transfer data: u32 LE instruction index (2) + u64 LE lamports
	data, err := inst.Data()
	require.NoError(t, err)
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[4:12]))
}

func TestBuilder_Token(t *testing.T) {
	token := devnetToken(t)
	builder := NewBuilder(token)

	intent := TransferIntent{
		Kind:        AssetToken,
		Amount:      1_000_000,
		Destination: testDest,
	}

	instructions, err := builder.Build(intent, testFrom)
	require.NoError(t, err)
	require.Len(t, instructions, 1)

	inst := instructions[0]
	assert.Equal(t, token.Program, inst.ProgramID())

	sourceATA, err := AssociatedTokenAddress(testFrom, token.Mint, token.Program)
	require.NoError(t, err)
	destATA, err := AssociatedTokenAddress(testDest, token.Mint, token.Program)
	require.NoError(t, err)

	accounts := inst.Accounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, sourceATA, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, token.Mint, accounts[1].PublicKey)
	assert.Equal(t, destATA, accounts[2].PublicKey)
	assert.True(t, accounts[2].IsWritable)
	assert.Equal(t, testFrom, accounts[3].PublicKey)
	assert.True(t, accounts[3].IsSigner)

	data, err := inst.Data()
	require.NoError(t, err)
	require.Len(t, data, 10)
	assert.Equal(t, byte(12), data[0])
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, token.Decimals, data[9])
}

func TestBuilder_UnsupportedAsset(t *testing.T) {
	builder := NewBuilder(devnetToken(t))

	_, err := builder.Build(TransferIntent{Kind: AssetKind("nft"), Amount: 1, Destination: testDest}, testFrom)
	require.Error(t, err)

	var uErr *UnsupportedAssetError
	assert.True(t, errors.As(err, &uErr))
}

// The destination's token-holding sub-account is derived without touching
// the network, so a destination that has never held the token still gets a
// valid, stable address.
func TestAssociatedTokenAddress_Deterministic(t *testing.T) {
	token := devnetToken(t)

	a1, err := AssociatedTokenAddress(testDest, token.Mint, token.Program)
	require.NoError(t, err)
	a2, err := AssociatedTokenAddress(testDest, token.Mint, token.Program)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.False(t, a1.IsZero())
	assert.NotEqual(t, testDest, a1)
}
