package solana

import (
	"github.com/gagliardetto/solana-go"
)

// Assemble combines instructions, the fee payer and a lifetime anchor into
// the canonical serialized transaction payload handed to the signing
// capability. Instruction order is preserved exactly; identical inputs
// produce byte-identical output.
func Assemble(instructions []solana.Instruction, feePayer solana.PublicKey, anchor LifetimeAnchor) ([]byte, error) {
	tx, err := solana.NewTransaction(
		instructions,
		anchor.Blockhash,
		solana.TransactionPayer(feePayer),
	)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	payload, err := tx.MarshalBinary()
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	return payload, nil
}
