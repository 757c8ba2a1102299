package transfer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/signer"
	sol "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/solana"
)

const (
	testFromAddr = "Vote111111111111111111111111111111111111111"
	testDestAddr = "SysvarC1ock11111111111111111111111111111111"

	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

type stubAnchors struct {
	anchor sol.LifetimeAnchor
	err    error
}

func (s *stubAnchors) LatestAnchor(context.Context) (sol.LifetimeAnchor, error) {
	return s.anchor, s.err
}

type stubAccounts struct {
	exists bool
}

func (s *stubAccounts) AccountExists(context.Context, solana.PublicKey) (bool, error) {
	return s.exists, nil
}

// stubLedger backs the verifier and lets the signer stub mutate balances to
// simulate the transfer landing on chain.
type stubLedger struct {
	mu      sync.Mutex
	native  uint64
	token   uint64
	nativeE error
}

func (s *stubLedger) NativeBalance(context.Context, solana.PublicKey) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.native, s.nativeE
}

func (s *stubLedger) TokenBalanceByOwner(context.Context, solana.PublicKey, solana.PublicKey) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *stubLedger) credit(native, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.native += native
	s.token += token
}

type stubSigner struct {
	mu       sync.Mutex
	requests []signer.SubmitRequest
	sig      solana.Signature
	err      error
	onSign   func()
	block    chan struct{}
}

func (s *stubSigner) SignAndSend(ctx context.Context, req signer.SubmitRequest) (signer.Submission, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return signer.Submission{}, ctx.Err()
		}
	}
	if s.err != nil {
		return signer.Submission{}, s.err
	}
	if s.onSign != nil {
		s.onSign()
	}
	return signer.Submission{Signature: s.sig}, nil
}

func (s *stubSigner) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type stubConfirmer struct {
	err error
}

func (s *stubConfirmer) WaitFinalized(context.Context, solana.Signature) error {
	return s.err
}

type fixture struct {
	ledger    *stubLedger
	signer    *stubSigner
	confirmer *stubConfirmer
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	token, err := sol.USDCConfig(sol.ClusterDevnet)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ledger := &stubLedger{native: 4_000_000, token: 10_000_000}
	sgn := &stubSigner{}
	copy(sgn.sig[:], []byte("test-signature"))
	confirmer := &stubConfirmer{}

	anchors := &stubAnchors{anchor: sol.LifetimeAnchor{
		Blockhash:            solana.Hash(solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")),
		LastValidBlockHeight: 123,
	}}

	service := NewService(
		anchors,
		&stubAccounts{exists: true},
		sol.NewVerifier(ledger, token, logger),
		sgn,
		confirmer,
		token,
		sol.ClusterDevnet,
		logger,
	)

	return &fixture{
		ledger:    ledger,
		signer:    sgn,
		confirmer: confirmer,
		service:   service,
	}
}

func nativeRequest() Request {
	return Request{
		Amount:      "0.001",
		Destination: testDestAddr,
		Asset:       "SOL",
		From:        testFromAddr,
	}
}

func TestExecute_NativeTransfer(t *testing.T) {
	f := newFixture(t)
	f.signer.onSign = func() { f.ledger.credit(1_000_000, 0) }

	result, err := f.service.Execute(context.Background(), nativeRequest())
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, f.signer.sig.String(), result.Signature)
	assert.Equal(t, "0.004", result.Initial.Amount)
	assert.Equal(t, "0.005", result.Final.Amount)
	assert.Equal(t, "0.001", result.Delta)
	assert.NotEmpty(t, result.ID)

	require.Equal(t, 1, f.signer.calls())
	req := f.signer.requests[0]
	assert.True(t, req.Sponsor, "fees must be sponsored")
	assert.Equal(t, "solana:devnet", req.Chain)
	assert.Equal(t, testFromAddr, req.Address)
	assert.NotEmpty(t, req.Transaction)
}

func TestExecute_TokenTransfer(t *testing.T) {
	f := newFixture(t)
	f.signer.onSign = func() { f.ledger.credit(0, 1_000_000) }

	result, err := f.service.Execute(context.Background(), Request{
		Amount:      "1",
		Destination: testDestAddr,
		Asset:       "USDC",
		From:        testFromAddr,
	})
	require.NoError(t, err)

	assert.Equal(t, "10", result.Initial.Amount)
	assert.Equal(t, "11", result.Final.Amount)
	assert.Equal(t, "1", result.Delta)
	assert.NotEmpty(t, result.Initial.Mint)
}

func TestExecute_ValidationFailsBeforeAnySideEffect(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Execute(context.Background(), Request{
		Amount:      "0.001",
		Destination: "not-an-address",
		Asset:       "SOL",
		From:        testFromAddr,
	})
	require.Error(t, err)

	var vErr *sol.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Zero(t, f.signer.calls(), "nothing may be submitted after a validation failure")
}

func TestExecute_UnsupportedAsset(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Execute(context.Background(), Request{
		Amount:      "1",
		Destination: testDestAddr,
		Asset:       "DOGE",
		From:        testFromAddr,
	})
	require.Error(t, err)

	var uErr *sol.UnsupportedAssetError
	assert.True(t, errors.As(err, &uErr))
	assert.Zero(t, f.signer.calls())
}

func TestExecute_SubmissionFailure(t *testing.T) {
	f := newFixture(t)
	f.signer.err = &signer.SubmissionError{Reason: "sponsor quota exhausted"}

	_, err := f.service.Execute(context.Background(), nativeRequest())
	require.Error(t, err)

	var sErr *signer.SubmissionError
	assert.True(t, errors.As(err, &sErr))

	var pErr *Error
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, StateAssembled, pErr.Stage)
}

func TestExecute_DuplicateInFlightRejected(t *testing.T) {
	f := newFixture(t)
	f.signer.block = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.service.Execute(context.Background(), nativeRequest())
		firstDone <- err
	}()

	// Wait for the first attempt to reach the signer and hold its key.
	require.Eventually(t, func() bool { return f.signer.calls() == 1 }, testWait, testTick)

	_, err := f.service.Execute(context.Background(), nativeRequest())
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	close(f.signer.block)
	require.NoError(t, <-firstDone)

	// With the first attempt finished the same transfer may run again.
	f.signer.block = nil
	_, err = f.service.Execute(context.Background(), nativeRequest())
	require.NoError(t, err)
}

func TestExecute_ConfirmationTimeout(t *testing.T) {
	f := newFixture(t)
	f.confirmer.err = errors.New("not finalized in time")

	_, err := f.service.Execute(context.Background(), nativeRequest())
	require.Error(t, err)

	var pErr *Error
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, StateConfirming, pErr.Stage)
}

func TestIdempotencyKey(t *testing.T) {
	intent := sol.TransferIntent{
		Kind:        sol.AssetNative,
		Amount:      1_000_000,
		Destination: solana.MustPublicKeyFromBase58(testDestAddr),
	}
	anchor := sol.LifetimeAnchor{
		Blockhash:            solana.Hash(solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")),
		LastValidBlockHeight: 123,
	}

	assert.Equal(t, idempotencyKey(intent, anchor), idempotencyKey(intent, anchor))

	fresh := anchor
	fresh.LastValidBlockHeight = 124
	assert.NotEqual(t, idempotencyKey(intent, anchor), idempotencyKey(intent, fresh),
		"a fresh anchor is a new submission, not a duplicate")
}
