// Package transfer orchestrates the sponsored transfer pipeline: resolve
// the intent, build instructions, assemble the payload, hand it to the
// delegated signing capability, then verify the effect by diffing recipient
// balances around confirmation.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/metrics"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/signer"
	sol "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/solana"
)

// AnchorSource fetches the freshness token a payload is assembled against.
type AnchorSource interface {
	LatestAnchor(ctx context.Context) (sol.LifetimeAnchor, error)
}

// AccountChecker reports on-chain account existence.
type AccountChecker interface {
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
}

// Confirmer blocks until a submitted signature is reflected in ledger state.
type Confirmer interface {
	WaitFinalized(ctx context.Context, sig solana.Signature) error
}

// Request is one user-submitted transfer. From is the user's signing
// address as reported by the wallet-provisioning service.
type Request struct {
	Amount      string `json:"amount"`
	Destination string `json:"destination"`
	Asset       string `json:"asset"`
	From        string `json:"from"`
}

// Result reports the outcome of a completed transfer.
type Result struct {
	ID        string      `json:"id"`
	State     State       `json:"state"`
	Signature string      `json:"signature"`
	Initial   sol.Balance `json:"initialBalance"`
	Final     sol.Balance `json:"finalBalance"`
	Delta     string      `json:"delta"`
}

// Service runs transfer attempts. Each attempt is an independent pipeline
// instance; the only state shared between concurrent attempts is the
// in-flight idempotency guard.
type Service struct {
	resolver  *sol.Resolver
	builder   *sol.Builder
	anchors   AnchorSource
	accounts  AccountChecker
	verifier  *sol.Verifier
	signer    signer.Signer
	confirmer Confirmer
	token     sol.TokenConfig
	cluster   sol.Cluster
	guard     *inflightGuard
	log       *logrus.Logger
}

func NewService(
	anchors AnchorSource,
	accounts AccountChecker,
	verifier *sol.Verifier,
	sgn signer.Signer,
	confirmer Confirmer,
	token sol.TokenConfig,
	cluster sol.Cluster,
	log *logrus.Logger,
) *Service {
	return &Service{
		resolver:  sol.NewResolver(token),
		builder:   sol.NewBuilder(token),
		anchors:   anchors,
		accounts:  accounts,
		verifier:  verifier,
		signer:    sgn,
		confirmer: confirmer,
		token:     token,
		cluster:   cluster,
		guard:     newInflightGuard(),
		log:       log,
	}
}

// Execute runs the pipeline to completion or failure. Nothing from a failed
// attempt is reusable: a retry starts over with fresh input and a fresh
// lifetime anchor.
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	id := uuid.New().String()
	log := s.log.WithFields(logrus.Fields{
		"transfer_id": id,
		"asset":       req.Asset,
		"destination": req.Destination,
	})

	result, err := s.run(ctx, id, log, req)
	if err != nil {
		metrics.ObserveTransfer(req.Asset, "failed", time.Since(started))
		if pErr, ok := err.(*Error); ok {
			metrics.ObserveFailureStage(string(pErr.Stage))
		}
		log.WithError(err).Error("transfer failed")
		return nil, err
	}

	metrics.ObserveTransfer(req.Asset, "done", time.Since(started))
	log.WithFields(logrus.Fields{
		"signature": result.Signature,
		"delta":     result.Delta,
	}).Info("transfer done")
	return result, nil
}

func (s *Service) run(ctx context.Context, id string, log *logrus.Entry, req Request) (*Result, error) {
	state := StateIdle
	fail := func(err error) (*Result, error) {
		return nil, &Error{Stage: state, Err: err}
	}

	kind, err := sol.ParseAssetKind(req.Asset, s.token.Symbol)
	if err != nil {
		return fail(err)
	}

	intent, err := s.resolver.Resolve(req.Amount, req.Destination, kind)
	if err != nil {
		return fail(err)
	}
	state = StateResolved

	from, err := solana.PublicKeyFromBase58(req.From)
	if err != nil {
		return fail(&sol.ValidationError{Field: "from", Reason: err.Error()})
	}

	instructions, err := s.builder.Build(intent, from)
	if err != nil {
		return fail(err)
	}
	state = StateInstructionsBuilt

	if kind == sol.AssetToken {
		s.noteDestinationATA(ctx, log, intent.Destination)
	}

	// The anchor is fetched immediately before assembly to minimize
	// expiry risk; a payload built on a stale anchor is permanently
	// invalid past its expiry height.
	anchor, err := s.anchors.LatestAnchor(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch lifetime anchor: %w", err))
	}

	payload, err := sol.Assemble(instructions, from, anchor)
	if err != nil {
		return fail(err)
	}
	state = StateAssembled

	key := idempotencyKey(intent, anchor)
	if err := s.guard.begin(key); err != nil {
		return fail(err)
	}
	defer s.guard.end(key)

	before := s.verifier.Snapshot(ctx, intent.Destination)

	submission, err := s.signer.SignAndSend(ctx, signer.SubmitRequest{
		Transaction: payload,
		Address:     req.From,
		Chain:       s.cluster.ChainID(),
		Sponsor:     true,
	})
	if err != nil {
		return fail(err)
	}
	state = StateSubmitted
	log.WithField("signature", submission.Signature.String()).Info("transaction submitted")

	state = StateConfirming
	if err := s.confirmer.WaitFinalized(ctx, submission.Signature); err != nil {
		return fail(err)
	}

	after := s.verifier.Snapshot(ctx, intent.Destination)

	return &Result{
		ID:        id,
		State:     StateDone,
		Signature: submission.Signature.String(),
		Initial:   s.verifier.BalanceFor(before, kind),
		Final:     s.verifier.BalanceFor(after, kind),
		Delta:     s.verifier.Diff(before, after, kind),
	}, nil
}

// noteDestinationATA flags a destination with no token-holding sub-account.
// The transfer still targets the derived address; whether the receiving
// program accepts it is decided on chain, and sponsorship covers fees, not
// rent for a new account.
func (s *Service) noteDestinationATA(ctx context.Context, log *logrus.Entry, destination solana.PublicKey) {
	ata, err := sol.AssociatedTokenAddress(destination, s.token.Mint, s.token.Program)
	if err != nil {
		return
	}
	exists, err := s.accounts.AccountExists(ctx, ata)
	if err != nil {
		log.WithError(err).Debug("could not check destination token account")
		return
	}
	if !exists {
		log.WithField("ata", ata.String()).Warn("destination has no token account for the tracked mint")
	}
}
