package storage

import (
	"context"
	"io"

	"github.com/solflow/swap-gateway/internal/models"
)

// SwapCache is the hot-path sink for confirmed swaps: a bounded recent list
// plus pub/sub fan-out to live subscribers.
type SwapCache interface {
	AddRecentSwap(ctx context.Context, swap *models.SwapRecord) error
	GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapRecord, error)
	PublishSwap(ctx context.Context, swap *models.SwapRecord) error
	Ping(ctx context.Context) error
	io.Closer
}

// SwapStore is the durable sink for confirmed swaps.
type SwapStore interface {
	InsertSwap(ctx context.Context, swap *models.SwapRecord) error
	Ping(ctx context.Context) error
	io.Closer
}
