package swap

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/solflow/swap-gateway/internal/jupiter"
	"github.com/solflow/swap-gateway/internal/models"
	"github.com/solflow/swap-gateway/internal/storage"
	"github.com/solflow/swap-gateway/internal/wallet"
)

// Config holds execution parameters for the swap engine.
type Config struct {
	PriorityFeeMicroLamports uint64
	Commitment               string // confirmation commitment, e.g. "confirmed"

	SendMaxRetries       int // node-side rebroadcast budget for the swap path
	PrereqSendMaxRetries int // same for client-signed account-creation transactions

	ConfirmPollInterval time.Duration
}

// DefaultConfig returns sensible execution defaults.
func DefaultConfig() Config {
	return Config{
		PriorityFeeMicroLamports: 1000,
		Commitment:               "confirmed",
		SendMaxRetries:           2,
		PrereqSendMaxRetries:     5,
		ConfirmPollInterval:      500 * time.Millisecond,
	}
}

// Engine orchestrates the swap pipeline: instruction resolution, the
// prerequisite account gate, lookup table resolution, composition, and the
// sign/simulate/submit/confirm sequence. It owns no cross-request state;
// every attempt is scoped to one call.
type Engine struct {
	rpc        ChainRPC
	aggregator InstructionSource
	cache      storage.SwapCache // optional, best-effort
	store      storage.SwapStore // optional, best-effort
	logger     *logrus.Logger
	cfg        Config
}

func NewEngine(chain ChainRPC, aggregator InstructionSource, cfg Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}
	if cfg.ConfirmPollInterval <= 0 {
		cfg.ConfirmPollInterval = 500 * time.Millisecond
	}
	return &Engine{
		rpc:        chain,
		aggregator: aggregator,
		logger:     logger,
		cfg:        cfg,
	}
}

// WithSwapCache attaches a cache that receives confirmed swap records.
func (e *Engine) WithSwapCache(c storage.SwapCache) *Engine {
	e.cache = c
	return e
}

// WithSwapStore attaches a durable store that receives confirmed swap records.
func (e *Engine) WithSwapStore(s storage.SwapStore) *Engine {
	e.store = s
	return e
}

// Swap runs one full swap attempt for the given quote. The secret key is
// parsed, used for exactly one signature, and zeroed on every exit path.
//
// Terminal outcomes: Confirmed (Outcome.Signature set), NeedsTokenAccounts
// (unsigned creation transaction for the client to sign), or a *Failure.
// There is no retry-in-place; a failed attempt requires a fresh quote.
func (e *Engine) Swap(ctx context.Context, quote *jupiter.QuoteResponse, secretKey string) (*Outcome, error) {
	if quote == nil {
		return nil, failf(KindInstructionResolution, "quote is required")
	}

	priv, err := wallet.ParseSecretKey(secretKey)
	if err != nil {
		return nil, &Failure{Kind: KindSigningError, Err: err}
	}
	defer wallet.Zero(priv)

	payer := priv.PublicKey()
	log := e.logger.WithFields(logrus.Fields{
		"payer":      payer.String(),
		"inputMint":  quote.InputMint,
		"outputMint": quote.OutputMint,
	})

	// Resolve the quote into a concrete instruction bundle. Any upstream
	// complaint (including quote expiry) ends the attempt here.
	set, err := e.aggregator.SwapInstructions(ctx, jupiter.SwapInstructionsRequest{
		UserPublicKey:           payer.String(),
		Quote:                   quote,
		DynamicComputeUnitLimit: true,
	})
	if err != nil {
		return nil, failf(KindInstructionResolution, "failed to resolve swap instructions: %v", err)
	}

	// Prerequisite account gate: when token accounts are missing, the
	// pipeline terminates with an unsigned creation transaction instead of
	// proceeding to composition.
	check, err := e.checkPrerequisites(ctx, payer, quote)
	if err != nil {
		return nil, err
	}
	if len(check.Missing) > 0 {
		unsigned, err := e.buildCreateAccountsTransaction(ctx, payer, check.CreateIxs)
		if err != nil {
			return nil, err
		}
		log.WithField("missing", len(check.Missing)).Info("token accounts missing, returning creation transaction")
		return &Outcome{
			NeedsTokenAccounts:        true,
			CreateAccountsTransaction: unsigned,
			MissingAccounts:           check.Missing,
		}, nil
	}

	tables := e.resolveLookupTables(ctx, set.AddressLookupTableAddresses)

	bh, err := e.rpc.LatestBlockhash(ctx, e.cfg.Commitment)
	if err != nil {
		return nil, failf(KindUpstreamError, "failed to fetch blockhash: %v", err)
	}
	hash, err := solana.HashFromBase58(bh.Hash)
	if err != nil {
		return nil, failf(KindUpstreamError, "invalid blockhash from node: %v", err)
	}

	tx, err := composeSwapTransaction(payer, set, tables, hash, e.cfg.PriorityFeeMicroLamports)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &priv
		}
		return nil
	}); err != nil {
		return nil, failf(KindSigningError, "failed to sign transaction: %v", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, failf(KindSigningError, "failed to serialize signed transaction: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	// Simulation gate: a transaction that deterministically fails on-chain is
	// never broadcast.
	sim, err := e.rpc.Simulate(ctx, encoded)
	if err != nil {
		return nil, failf(KindUpstreamError, "simulation request failed: %v", err)
	}
	if !sim.Success {
		return nil, &Failure{
			Kind: KindSimulationError,
			Err:  fmt.Errorf("simulation failed: %s", sim.Err),
			Logs: sim.Logs,
		}
	}

	sig, err := e.rpc.SendRawTransaction(ctx, encoded, e.cfg.SendMaxRetries)
	if err != nil {
		return nil, failf(KindSubmissionError, "broadcast failed: %v", err)
	}
	log = log.WithField("signature", sig)
	log.Info("transaction submitted")

	// Once broadcast, the transaction is not retractable; confirmation
	// continues even if the caller disconnects, bounded by the blockhash
	// validity window rather than the request context.
	confirmCtx := context.WithoutCancel(ctx)
	if err := e.confirm(confirmCtx, sig, bh.LastValidBlockHeight); err != nil {
		if ctx.Err() != nil {
			log.WithError(err).Warn("caller gone before confirmation resolved")
		}
		return nil, err
	}

	log.Info("transaction confirmed")
	e.recordSwap(confirmCtx, sig, quote)

	return &Outcome{Signature: sig}, nil
}

// confirm polls for the signature's confirmation status until the commitment
// level is met, the blockhash validity window lapses (Expired), or the chain
// reports the transaction failed (OnChainError).
func (e *Engine) confirm(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	for {
		status, err := e.rpc.SignatureStatus(ctx, signature)
		if err != nil {
			return failf(KindUpstreamError, "confirmation status check failed: %v", err)
		}
		if status != nil {
			if status.Err != nil {
				return &Failure{
					Kind: KindOnChainError,
					Err:  fmt.Errorf("transaction %s failed on-chain: %v", signature, status.Err),
				}
			}
			if status.MeetsCommitment(e.cfg.Commitment) {
				return nil
			}
		}

		height, err := e.rpc.BlockHeight(ctx)
		if err != nil {
			return failf(KindUpstreamError, "block height check failed: %v", err)
		}
		if height > lastValidBlockHeight {
			return failf(KindExpired, "blockhash expired before confirmation of %s (height %d > %d)",
				signature, height, lastValidBlockHeight)
		}

		select {
		case <-ctx.Done():
			return failf(KindExpired, "confirmation aborted: %v", ctx.Err())
		case <-time.After(e.cfg.ConfirmPollInterval):
		}
	}
}

// SubmitPrerequisite broadcasts a client-signed account-creation transaction
// and waits for confirmation. The client owns the signing step, so there is
// no simulation here; this path never touches swap economics.
func (e *Engine) SubmitPrerequisite(ctx context.Context, signedTx string) (string, error) {
	tx, err := solana.TransactionFromBase64(signedTx)
	if err != nil {
		return "", failf(KindSubmissionError, "malformed transaction: %v", err)
	}

	signed := false
	for _, s := range tx.Signatures {
		if !s.IsZero() {
			signed = true
			break
		}
	}
	if !signed {
		return "", failf(KindSubmissionError, "transaction has no signatures")
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", failf(KindSubmissionError, "failed to serialize transaction: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	sig, err := e.rpc.SendRawTransaction(ctx, encoded, e.cfg.PrereqSendMaxRetries)
	if err != nil {
		return "", failf(KindSubmissionError, "broadcast failed: %v", err)
	}
	e.logger.WithField("signature", sig).Info("account-creation transaction submitted")

	// The client signed at an unknown time, so bound the wait by a freshly
	// fetched validity window.
	bh, err := e.rpc.LatestBlockhash(ctx, e.cfg.Commitment)
	if err != nil {
		return "", failf(KindSubmissionError, "failed to fetch confirmation window: %v", err)
	}
	if err := e.confirm(ctx, sig, bh.LastValidBlockHeight); err != nil {
		if f, ok := AsFailure(err); ok && f.Kind == KindOnChainError {
			return "", err
		}
		return "", failf(KindSubmissionError, "confirmation failed: %v", err)
	}

	return sig, nil
}

// recordSwap publishes the confirmed swap to the cache, pub/sub channel, and
// durable store. Best-effort: failures are logged, never surfaced.
func (e *Engine) recordSwap(ctx context.Context, signature string, quote *jupiter.QuoteResponse) {
	if e.cache == nil && e.store == nil {
		return
	}

	rec := &models.SwapRecord{
		Signature:      signature,
		Timestamp:      time.Now().UTC(),
		InputMint:      quote.InputMint,
		OutputMint:     quote.OutputMint,
		AmountIn:       parseUint(quote.InAmount),
		AmountOut:      parseUint(quote.OutAmount),
		SlippageBps:    quote.SlippageBps,
		PriceImpactPct: quote.PriceImpactPct,
	}

	if e.cache != nil {
		if err := e.cache.AddRecentSwap(ctx, rec); err != nil {
			e.logger.WithError(err).Warn("failed to cache swap record")
		}
		if err := e.cache.PublishSwap(ctx, rec); err != nil {
			e.logger.WithError(err).Warn("failed to publish swap record")
		}
	}
	if e.store != nil {
		if err := e.store.InsertSwap(ctx, rec); err != nil {
			e.logger.WithError(err).Warn("failed to store swap record")
		}
	}
}

func parseUint(s string) uint64 {
	n, _ := strconv.ParseUint(s, 10, 64)
	return n
}
