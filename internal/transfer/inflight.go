package transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	sol "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/solana"
)

// ErrDuplicateSubmission is returned when a transfer identical to one still
// in flight is submitted again.
var ErrDuplicateSubmission = errors.New("transfer: identical transfer already in flight")

// inflightGuard rejects duplicate concurrent submissions. The key is a hash
// of the intent plus the lifetime anchor, so an identical transfer built on
// a fresh anchor (a deliberate resend) is not blocked. Per-process only;
// see DESIGN.md for the scope decision.
type inflightGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{keys: make(map[string]struct{})}
}

func idempotencyKey(intent sol.TransferIntent, anchor sol.LifetimeAnchor) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%s|%d",
		intent.Kind,
		intent.Amount,
		intent.Destination.String(),
		anchor.Blockhash.String(),
		anchor.LastValidBlockHeight,
	)
	return hex.EncodeToString(h.Sum(nil))
}

func (g *inflightGuard) begin(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.keys[key]; ok {
		return ErrDuplicateSubmission
	}
	g.keys[key] = struct{}{}
	return nil
}

func (g *inflightGuard) end(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}
