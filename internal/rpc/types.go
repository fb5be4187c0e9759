package rpc

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// Blockhash is a recent blockhash together with the last block height at
// which a transaction referencing it may still be confirmed.
type Blockhash struct {
	Hash                 string
	LastValidBlockHeight uint64
}

// SimulationResult contains simulation output
type SimulationResult struct {
	Success       bool
	Err           string // on-chain error, empty when Success
	Logs          []string
	UnitsConsumed uint64
}

// SignatureStatus is one entry from getSignatureStatuses.
type SignatureStatus struct {
	Slot               uint64
	Confirmations      *int
	Err                interface{}
	ConfirmationStatus string // processed | confirmed | finalized
}

// MeetsCommitment reports whether the status satisfies the given commitment level.
func (s *SignatureStatus) MeetsCommitment(commitment string) bool {
	if s == nil {
		return false
	}
	switch commitment {
	case "processed":
		return s.ConfirmationStatus != ""
	case "confirmed":
		return s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized"
	case "finalized":
		return s.ConfirmationStatus == "finalized"
	default:
		return s.ConfirmationStatus != ""
	}
}
