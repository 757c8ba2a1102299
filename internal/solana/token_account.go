package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// FindAssociatedTokenAddress derives the token-holding sub-account for a
// wallet and mint under any token program (legacy SPL or Token-2022). The
// derivation is deterministic and never touches the network, so a
// destination ATA can be computed even when the account does not exist yet.
func FindAssociatedTokenAddress(wallet, mint, tokenProgram solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			wallet[:],
			tokenProgram[:],
			mint[:],
		},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

// AssociatedTokenAddress is FindAssociatedTokenAddress without the bump seed.
func AssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	a, _, err := FindAssociatedTokenAddress(owner, mint, tokenProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("solana: failed to derive associated token address: %w", err)
	}
	return a, nil
}
