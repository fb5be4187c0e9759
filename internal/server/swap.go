package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/solflow/swap-gateway/internal/jupiter"
	"github.com/solflow/swap-gateway/internal/swap"
	"github.com/solflow/swap-gateway/internal/toggles"
)

// statusForKind maps pipeline failure kinds to HTTP status codes. The mapping
// is part of the API contract; clients branch on it.
func statusForKind(kind swap.Kind) int {
	switch kind {
	case swap.KindQuoteUnavailable:
		return http.StatusUnprocessableEntity
	case swap.KindUpstreamError, swap.KindInstructionResolution, swap.KindSubmissionError:
		return http.StatusBadGateway
	case swap.KindTransactionTooLarge:
		return http.StatusRequestEntityTooLarge
	case swap.KindSigningError:
		return http.StatusBadRequest
	case swap.KindSimulationError:
		return http.StatusUnprocessableEntity
	case swap.KindExpired:
		return http.StatusGatewayTimeout
	case swap.KindOnChainError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// failureResponse renders a pipeline failure, carrying the kind and any
// program logs so clients can diagnose simulation and on-chain errors.
func (h *Handlers) failureResponse(c echo.Context, err error) error {
	if f, ok := swap.AsFailure(err); ok {
		code := statusForKind(f.Kind)
		return c.JSON(code, ErrorResponse{
			Error: f.Err.Error(),
			Code:  code,
			Kind:  string(f.Kind),
			Logs:  f.Logs,
		})
	}
	return h.err(c, http.StatusInternalServerError, "swap failed", map[string]any{"err": err.Error()})
}

// Quote requests a quote from the aggregator for the given pair and amount.
func (h *Handlers) Quote(c echo.Context) error {
	if h.Quoter == nil {
		return h.err(c, http.StatusServiceUnavailable, "quoting is not configured", nil)
	}

	var req QuoteBody
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	req.InputMint = strings.TrimSpace(req.InputMint)
	req.OutputMint = strings.TrimSpace(req.OutputMint)
	req.Amount = strings.TrimSpace(req.Amount)

	if req.InputMint == "" {
		return h.err(c, http.StatusBadRequest, "invalid inputMint", map[string]any{"inputMint": "required"})
	}
	if req.OutputMint == "" {
		return h.err(c, http.StatusBadRequest, "invalid outputMint", map[string]any{"outputMint": "required"})
	}
	if req.InputMint == req.OutputMint {
		return h.err(c, http.StatusBadRequest, "invalid pair", map[string]any{"outputMint": "must differ from inputMint"})
	}
	amount, err := strconv.ParseUint(req.Amount, 10, 64)
	if err != nil || amount == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive integer"})
	}
	if req.SwapMode != "" && req.SwapMode != "ExactIn" && req.SwapMode != "ExactOut" {
		return h.err(c, http.StatusBadRequest, "invalid swapMode", map[string]any{"swapMode": "must be ExactIn or ExactOut"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	out, err := h.Quoter.Quote(ctx, jupiter.QuoteRequest{
		InputMint:        req.InputMint,
		OutputMint:       req.OutputMint,
		Amount:           req.Amount,
		SlippageBps:      req.SlippageBps,
		SwapMode:         req.SwapMode,
		OnlyDirectRoutes: req.OnlyDirectRoutes,
		MaxAccounts:      req.MaxAccounts,
	})
	if err != nil {
		if errors.Is(err, jupiter.ErrNoRoute) {
			code := statusForKind(swap.KindQuoteUnavailable)
			return c.JSON(code, ErrorResponse{
				Error: "no route for the requested pair and amount",
				Code:  code,
				Kind:  string(swap.KindQuoteUnavailable),
			})
		}
		code := statusForKind(swap.KindUpstreamError)
		return c.JSON(code, ErrorResponse{
			Error: "quote request failed",
			Code:  code,
			Kind:  string(swap.KindUpstreamError),
		})
	}

	return c.JSON(http.StatusOK, out)
}

// Swap executes a previously fetched quote. Responds 200 with the confirmed
// signature, or 202 when required token accounts must be created first.
func (h *Handlers) Swap(c echo.Context) error {
	if h.Swapper == nil {
		return h.err(c, http.StatusServiceUnavailable, "swapping is not configured", nil)
	}

	// Kill switch: execution can be paused fleet-wide without a redeploy.
	if h.Toggles != nil && h.Toggles.Enabled(c.Request().Context(), toggles.KeySwapPaused, false) {
		return h.err(c, http.StatusServiceUnavailable, "swap execution is paused", nil)
	}

	var req SwapBody
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if req.Quote == nil {
		return h.err(c, http.StatusBadRequest, "invalid quoteResponse", map[string]any{"quoteResponse": "required"})
	}
	if strings.TrimSpace(req.UserPrivateKey) == "" {
		return h.err(c, http.StatusBadRequest, "invalid userPrivateKey", map[string]any{"userPrivateKey": "required"})
	}

	// The engine bounds its own waits via the blockhash validity window, so
	// the handler timeout only caps the pre-broadcast stages generously.
	ctx, cancel := h.withTimeout(c.Request().Context(), 80*time.Second)
	defer cancel()

	out, err := h.Swapper.Swap(ctx, req.Quote, req.UserPrivateKey)
	req.UserPrivateKey = ""
	if err != nil {
		return h.failureResponse(c, err)
	}

	if out.NeedsTokenAccounts {
		missing := make([]MissingAccount, 0, len(out.MissingAccounts))
		for _, m := range out.MissingAccounts {
			missing = append(missing, MissingAccount{Mint: m.Mint, Address: m.Address})
		}
		return c.JSON(http.StatusAccepted, NeedsAccountsResponse{
			Status:          "needs_token_accounts",
			Message:         "sign and submit the transaction via /swap/create-token-accounts, then request a fresh quote",
			Transaction:     out.CreateAccountsTransaction,
			MissingAccounts: missing,
		})
	}

	return c.JSON(http.StatusOK, SwapResponse{Signature: out.Signature})
}

// CreateTokenAccounts broadcasts a client-signed account-creation transaction
// and waits for confirmation.
func (h *Handlers) CreateTokenAccounts(c echo.Context) error {
	if h.Swapper == nil {
		return h.err(c, http.StatusServiceUnavailable, "swapping is not configured", nil)
	}

	var req CreateAccountsBody
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(req.SignedTransaction) == "" {
		return h.err(c, http.StatusBadRequest, "invalid signedTransaction", map[string]any{"signedTransaction": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 80*time.Second)
	defer cancel()

	sig, err := h.Swapper.SubmitPrerequisite(ctx, req.SignedTransaction)
	if err != nil {
		return h.failureResponse(c, err)
	}

	return c.JSON(http.StatusOK, SwapResponse{Signature: sig})
}
