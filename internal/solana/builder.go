package solana

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// Builder turns a TransferIntent into the asset-specific instruction list.
// It marks the source as a required signer but never needs a private key;
// signing happens externally through the delegated signing capability.
// Everything here is pure computation, no RPC.
type Builder struct {
	token TokenConfig
}

func NewBuilder(token TokenConfig) *Builder {
	return &Builder{token: token}
}

// Build produces exactly one instruction per transfer.
func (b *Builder) Build(intent TransferIntent, feePayer solana.PublicKey) ([]solana.Instruction, error) {
	switch intent.Kind {
	case AssetNative:
		inst := system.NewTransferInstruction(
			intent.Amount,
			feePayer,
			intent.Destination,
		).Build()
		return []solana.Instruction{inst}, nil
	case AssetToken:
		inst, err := b.buildTokenTransfer(intent, feePayer)
		if err != nil {
			return nil, err
		}
		return []solana.Instruction{inst}, nil
	default:
		return nil, &UnsupportedAssetError{Kind: intent.Kind}
	}
}

// buildTokenTransfer emits a TransferChecked between the owners' derived
// token-holding sub-accounts. Passing decimals explicitly makes the token
// program reject a transfer whose precision does not match the mint.
func (b *Builder) buildTokenTransfer(intent TransferIntent, owner solana.PublicKey) (solana.Instruction, error) {
	sourceATA, err := AssociatedTokenAddress(owner, b.token.Mint, b.token.Program)
	if err != nil {
		return nil, fmt.Errorf("solana: failed to derive source ATA: %w", err)
	}

	destATA, err := AssociatedTokenAddress(intent.Destination, b.token.Mint, b.token.Program)
	if err != nil {
		return nil, fmt.Errorf("solana: failed to derive destination ATA: %w", err)
	}

	// TransferChecked data: discriminator (1 byte) + amount (8 bytes
	// little-endian) + decimals (1 byte)
	data := make([]byte, 10)
	data[0] = 12 // TransferChecked instruction discriminator
	binary.LittleEndian.PutUint64(data[1:9], intent.Amount)
	data[9] = b.token.Decimals

	return solana.NewInstruction(
		b.token.Program,
		[]*solana.AccountMeta{
			{PublicKey: sourceATA, IsSigner: false, IsWritable: true},
			{PublicKey: b.token.Mint, IsSigner: false, IsWritable: false},
			{PublicKey: destATA, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: false},
		},
		data,
	), nil
}
