package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/signer"
	sol "github.com/Hunscuzzy/crunch-privy-sponsorship/internal/solana"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/status"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/transfer"
)

// TransferService runs one transfer attempt end to end.
type TransferService interface {
	Execute(ctx context.Context, req transfer.Request) (*transfer.Result, error)
}

// BalanceService snapshots an address's balances.
type BalanceService interface {
	Snapshot(ctx context.Context, addr solana.PublicKey) []sol.Balance
}

type Handler struct {
	transfers TransferService
	balances  BalanceService
	log       *logrus.Logger
}

func NewHandler(transfers TransferService, balances BalanceService, log *logrus.Logger) *Handler {
	return &Handler{
		transfers: transfers,
		balances:  balances,
		log:       log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// CreateTransfer executes a sponsored transfer and returns its verified
// outcome. A failed pipeline is reported with the stage it failed at; no
// partial success is ever presented as success.
func (h *Handler) CreateTransfer(c echo.Context) error {
	var req transfer.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	result, err := h.transfers.Execute(c.Request().Context(), req)
	if err != nil {
		return c.JSON(statusForError(err), errorResponseFor(err))
	}

	return c.JSON(http.StatusOK, result)
}

type balancesResponse struct {
	Address  string        `json:"address"`
	Balances []sol.Balance `json:"balances"`
}

// GetBalances returns the native and tracked-token balances of an address.
func (h *Handler) GetBalances(c echo.Context) error {
	addr, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid address"})
	}

	return c.JSON(http.StatusOK, balancesResponse{
		Address:  addr.String(),
		Balances: h.balances.Snapshot(c.Request().Context(), addr),
	})
}

func statusForError(err error) int {
	var (
		validationErr  *sol.ValidationError
		unsupportedErr *sol.UnsupportedAssetError
		encodingErr    *sol.EncodingError
		submissionErr  *signer.SubmissionError
		timeoutErr     *status.ConfirmationTimeoutError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &unsupportedErr):
		return http.StatusBadRequest
	case errors.Is(err, transfer.ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.As(err, &encodingErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &submissionErr):
		return http.StatusBadGateway
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorResponseFor(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}

	var pErr *transfer.Error
	if errors.As(err, &pErr) {
		resp.Stage = string(pErr.Stage)
		resp.Error = pErr.Err.Error()
	}

	return resp
}
