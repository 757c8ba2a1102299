package solana

import (
	"errors"
	"fmt"
)

// ErrTransactionFailed marks a submitted transaction the ledger recorded as
// failed. Unlike a transient status read failure, it is permanent.
var ErrTransactionFailed = errors.New("solana: transaction failed on chain")

// ValidationError reports malformed user input. It is surfaced before any
// instruction is built or network call made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("solana: invalid %s: %s", e.Field, e.Reason)
}

// UnsupportedAssetError reports an asset kind outside the supported set.
type UnsupportedAssetError struct {
	Kind AssetKind
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("solana: unsupported asset kind: %q", string(e.Kind))
}

// EncodingError reports that assembly could not produce a valid payload.
// No submission is attempted after one.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("solana: failed to encode transaction: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// BalanceQueryError reports a failed balance read for one asset. The
// verifier degrades it to a zero balance instead of failing the snapshot.
type BalanceQueryError struct {
	Asset string
	Err   error
}

func (e *BalanceQueryError) Error() string {
	return fmt.Sprintf("solana: failed to query %s balance: %v", e.Asset, e.Err)
}

func (e *BalanceQueryError) Unwrap() error { return e.Err }
