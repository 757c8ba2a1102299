package solana

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client is a thin wrapper around the Solana JSON-RPC client exposing only
// the reads this service needs. Consumers depend on the narrow interfaces
// declared next to them, so everything built on Client is stub-testable.
type Client struct {
	rpc *rpc.Client
}

// NewClient connects to the RPC endpoint and verifies it responds.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient := rpc.New(rpcURL)

	_, err := rpcClient.GetVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("solana: failed to connect to RPC: %w", err)
	}

	return &Client{rpc: rpcClient}, nil
}

// LatestAnchor fetches the latest finalized blockhash and its expiry height.
func (c *Client) LatestAnchor(ctx context.Context) (LifetimeAnchor, error) {
	block, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return LifetimeAnchor{}, fmt.Errorf("solana: failed to get latest blockhash: %w", err)
	}

	return LifetimeAnchor{
		Blockhash:            block.Value.Blockhash,
		LastValidBlockHeight: block.Value.LastValidBlockHeight,
	}, nil
}

// NativeBalance returns an address's lamport balance.
func (c *Client) NativeBalance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	balance, err := c.rpc.GetBalance(ctx, addr, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("solana: failed to get balance: %w", err)
	}
	return balance.Value, nil
}

// TokenBalanceByOwner returns the owner's balance of the given mint by
// listing its token accounts. An owner with no token account holds zero.
func (c *Client) TokenBalanceByOwner(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentFinalized,
			Encoding:   solana.EncodingBase64,
		},
	)
	if err != nil {
		return 0, fmt.Errorf("solana: failed to get token accounts: %w", err)
	}

	var total uint64
	for _, item := range out.Value {
		var acc token.Account
		if err := acc.UnmarshalWithDecoder(bin.NewBinDecoder(item.Account.Data.GetBinary())); err != nil {
			return 0, fmt.Errorf("solana: failed to deserialize token account: %w", err)
		}
		total += acc.Amount
	}

	return total, nil
}

// AccountExists reports whether an account is present on chain.
func (c *Client) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	accountInfo, err := c.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("solana: failed to get account info: %w", err)
	}
	return accountInfo.Value != nil, nil
}

// TokenMintInfo queries the mint account to determine which token program
// owns it and the mint's decimals. Token-2022 may carry extension data, but
// the base Mint layout is identical to legacy SPL Token.
func (c *Client) TokenMintInfo(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	accountInfo, err := c.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("solana: failed to get mint account info: %w", err)
	}

	if accountInfo.Value == nil {
		return solana.PublicKey{}, 0, fmt.Errorf("solana: mint account not found: %s", mint)
	}

	owner := accountInfo.Value.Owner
	if owner != solana.TokenProgramID && owner != solana.Token2022ProgramID {
		return solana.PublicKey{}, 0, fmt.Errorf("solana: mint account is not owned by a token program: %s", owner)
	}

	var mintData token.Mint
	if err := mintData.UnmarshalWithDecoder(bin.NewBinDecoder(accountInfo.Value.Data.GetBinary())); err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("solana: failed to deserialize mint data: %w", err)
	}

	return owner, mintData.Decimals, nil
}

// SignatureStatus returns the confirmation status of a signature, or empty
// when the ledger does not know it yet.
func (c *Client) SignatureStatus(ctx context.Context, sig solana.Signature) (rpc.ConfirmationStatusType, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return "", fmt.Errorf("solana: failed to get signature status: %w", err)
	}

	if len(out.Value) == 0 || out.Value[0] == nil {
		return "", nil
	}

	st := out.Value[0]
	if st.Err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransactionFailed, st.Err)
	}

	return st.ConfirmationStatus, nil
}
