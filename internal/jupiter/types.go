package jupiter

type QuoteRequest struct {
	InputMint  string
	OutputMint string
	Amount     string // raw integer as string (uint64)

	SlippageBps *uint16
	SwapMode    string // ExactIn | ExactOut

	OnlyDirectRoutes *bool
	MaxAccounts      *uint64
}

type QuoteResponse struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          uint16          `json:"slippageBps"`
	PlatformFee          *PlatformFee    `json:"platformFee,omitempty"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`

	ContextSlot uint64  `json:"contextSlot,omitempty"`
	TimeTaken   float64 `json:"timeTaken,omitempty"`
}

type PlatformFee struct {
	Amount string `json:"amount,omitempty"`
	FeeBps uint16 `json:"feeBps,omitempty"`
}

type RoutePlanStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  *uint8   `json:"percent,omitempty"`
	Bps      uint16   `json:"bps"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`

	FeeAmount *string `json:"feeAmount,omitempty"`
	FeeMint   *string `json:"feeMint,omitempty"`
}

// AccountMeta is one account reference inside an aggregator-provided instruction.
type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// Instruction is the aggregator's wire representation of a single instruction:
// program id, ordered account references, base64-encoded data payload.
type Instruction struct {
	ProgramID string        `json:"programId"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      string        `json:"data"`
}

type SwapInstructionsRequest struct {
	UserPublicKey string
	Quote         *QuoteResponse

	// DynamicComputeUnitLimit asks the aggregator to estimate the compute
	// unit limit instead of using a fixed ceiling.
	DynamicComputeUnitLimit bool
}

// InstructionSet is the full instruction bundle for one swap attempt.
// Created once from the aggregator response, read-only afterwards.
type InstructionSet struct {
	ComputeBudgetInstructions []Instruction `json:"computeBudgetInstructions"`
	SetupInstructions         []Instruction `json:"setupInstructions"`
	SwapInstruction           *Instruction  `json:"swapInstruction"`
	CleanupInstruction        *Instruction  `json:"cleanupInstruction"`

	AddressLookupTableAddresses []string `json:"addressLookupTableAddresses"`
}
