package swap

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Each stage returns exactly one kind so
// the HTTP layer can map failures to stable status codes.
type Kind string

const (
	KindQuoteUnavailable      Kind = "quote_unavailable"
	KindUpstreamError         Kind = "upstream_error"
	KindInstructionResolution Kind = "instruction_resolution_error"
	KindTransactionTooLarge   Kind = "transaction_too_large"
	KindSigningError          Kind = "signing_error"
	KindSimulationError       Kind = "simulation_error"
	KindSubmissionError       Kind = "submission_error"
	KindExpired               Kind = "expired"
	KindOnChainError          Kind = "on_chain_error"
)

// Failure is a typed pipeline error. Logs carries on-chain program logs when
// the node produced any (simulation and confirmed on-chain failures).
type Failure struct {
	Kind Kind
	Err  error
	Logs []string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func failf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
