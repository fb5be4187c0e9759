package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoRoute means the aggregator found no usable route for the requested
// pair/amount (no liquidity). Distinct from transport-level failures.
var ErrNoRoute = errors.New("jupiter: no route for swap")

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.jup.ag/swap/v1"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("jupiter http %d", e.StatusCode)
	}
	return fmt.Sprintf("jupiter http %d: %s", e.StatusCode, b)
}

// apiError is the aggregator's structured error body.
type apiError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

func isNoRoute(status int, body []byte) bool {
	if status != http.StatusBadRequest && status != http.StatusNotFound {
		return false
	}
	var ae apiError
	if err := json.Unmarshal(body, &ae); err != nil {
		return false
	}
	code := strings.ToUpper(ae.ErrorCode + " " + ae.Error)
	return strings.Contains(code, "COULD_NOT_FIND_ANY_ROUTE") ||
		strings.Contains(code, "NO_ROUTE") ||
		strings.Contains(code, "NO ROUTES FOUND")
}

func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if strings.TrimSpace(req.InputMint) == "" {
		return nil, fmt.Errorf("inputMint is required")
	}
	if strings.TrimSpace(req.OutputMint) == "" {
		return nil, fmt.Errorf("outputMint is required")
	}
	if strings.TrimSpace(req.Amount) == "" {
		return nil, fmt.Errorf("amount is required")
	}

	q := url.Values{}
	q.Set("inputMint", req.InputMint)
	q.Set("outputMint", req.OutputMint)
	q.Set("amount", req.Amount)

	if req.SlippageBps != nil {
		q.Set("slippageBps", fmt.Sprintf("%d", *req.SlippageBps))
	}
	if req.SwapMode != "" {
		q.Set("swapMode", req.SwapMode)
	}
	if req.OnlyDirectRoutes != nil {
		q.Set("onlyDirectRoutes", fmt.Sprintf("%t", *req.OnlyDirectRoutes))
	}
	if req.MaxAccounts != nil {
		q.Set("maxAccounts", fmt.Sprintf("%d", *req.MaxAccounts))
	}

	u := c.BaseURL + "/quote?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if isNoRoute(res.StatusCode, body) {
			return nil, ErrNoRoute
		}
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out QuoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode jupiter quote response: %w", err)
	}
	amountOut, err := strconv.ParseUint(out.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote has invalid outAmount %q", out.OutAmount)
	}
	// A zero-output quote is unusable; surface it as no route rather than
	// letting it reach execution.
	if amountOut == 0 {
		return nil, ErrNoRoute
	}
	return &out, nil
}

// SwapInstructions asks the aggregator for the concrete instruction bundle
// that executes the given quote for the given payer.
func (c *Client) SwapInstructions(ctx context.Context, req SwapInstructionsRequest) (*InstructionSet, error) {
	if strings.TrimSpace(req.UserPublicKey) == "" {
		return nil, fmt.Errorf("userPublicKey is required")
	}
	if req.Quote == nil {
		return nil, fmt.Errorf("quote is required")
	}

	payload := map[string]any{
		"userPublicKey":           req.UserPublicKey,
		"quoteResponse":           req.Quote,
		"dynamicComputeUnitLimit": req.DynamicComputeUnitLimit,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode swap-instructions request: %w", err)
	}

	u := c.BaseURL + "/swap-instructions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out InstructionSet
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode swap-instructions response: %w", err)
	}
	if out.SwapInstruction == nil {
		return nil, fmt.Errorf("swap-instructions response is missing swapInstruction")
	}
	return &out, nil
}
