// Package status waits for a submitted transaction to be reflected in
// ledger state. Instead of a fixed post-submission sleep it polls the
// signature status with exponential backoff up to a bounded attempt count.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	sol "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/solana"
)

// StatusReader is the subset of the RPC client the poller needs.
type StatusReader interface {
	SignatureStatus(ctx context.Context, sig solana.Signature) (rpc.ConfirmationStatusType, error)
}

// ConfirmationTimeoutError reports that a transaction was still not
// finalized after the maximum number of polls.
type ConfirmationTimeoutError struct {
	Signature string
	Attempts  int
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("status: transaction %s not finalized after %d attempts", e.Signature, e.Attempts)
}

type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     int
}

func DefaultConfig() Config {
	return Config{
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
		MaxAttempts:     10,
	}
}

type Status struct {
	caller StatusReader
	cfg    Config
	log    *logrus.Logger
}

func NewStatus(caller StatusReader, cfg Config, log *logrus.Logger) *Status {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}
	return &Status{
		caller: caller,
		cfg:    cfg,
		log:    log,
	}
}

// WaitFinalized blocks until the signature reaches finalized commitment,
// the attempt budget runs out, or ctx is cancelled. A transient status read
// failure counts as an attempt rather than aborting the wait.
func (s *Status) WaitFinalized(ctx context.Context, sig solana.Signature) error {
	interval := s.cfg.InitialInterval

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		st, err := s.caller.SignatureStatus(ctx, sig)
		switch {
		case errors.Is(err, sol.ErrTransactionFailed):
			return err
		case err != nil:
			s.log.WithError(err).WithFields(logrus.Fields{
				"signature": sig.String(),
				"attempt":   attempt,
			}).Warn("signature status query failed")
		case st == rpc.ConfirmationStatusFinalized:
			return nil
		}

		interval *= 2
		if interval > s.cfg.MaxInterval {
			interval = s.cfg.MaxInterval
		}
	}

	return &ConfirmationTimeoutError{
		Signature: sig.String(),
		Attempts:  s.cfg.MaxAttempts,
	}
}
