package toggles

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("toggle not found")

// KeySwapPaused halts swap execution when enabled. Quotes stay available so
// clients can still price while execution is paused.
const KeySwapPaused = "swap.paused"

type Toggle struct {
	Key       string    `json:"key"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}
