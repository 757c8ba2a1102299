// Package signer models the external delegated signing and submission
// capability. The orchestration layer depends only on the Signer interface,
// so alternate backends (hardware wallet, a different sponsorship provider)
// can be substituted without touching transaction construction.
package signer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SubmitRequest carries a serialized, unsigned transaction payload to the
// signing service. Sponsor asks the service to cover network fees instead of
// debiting the signer; this system never builds fee-payment instructions
// itself when sponsorship is requested.
type SubmitRequest struct {
	Transaction []byte
	Address     string
	Chain       string
	Sponsor     bool
}

// Submission is the result of a successful sign-and-send.
type Submission struct {
	Signature solana.Signature
}

type Signer interface {
	SignAndSend(ctx context.Context, req SubmitRequest) (Submission, error)
}

// SubmissionError reports that the signing capability failed or rejected the
// request. Resubmission requires a fresh lifetime anchor, so there is no
// automatic retry.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signer: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("signer: %s", e.Reason)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
