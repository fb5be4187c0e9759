package storage

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/solflow/swap-gateway/internal/models"
)

// ClickHouseStore persists confirmed swaps for analytics and audit.
type ClickHouseStore struct {
	conn driver.Conn
}

func NewClickHouseStore(addr, database, username, password string) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

func (c *ClickHouseStore) InsertSwap(ctx context.Context, swap *models.SwapRecord) error {
	query := `
		INSERT INTO swaps (
			signature, timestamp, input_mint, output_mint,
			amount_in, amount_out, slippage_bps, price_impact_pct
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		swap.Signature,
		swap.Timestamp,
		swap.InputMint,
		swap.OutputMint,
		swap.AmountIn,
		swap.AmountOut,
		swap.SlippageBps,
		swap.PriceImpactPct,
	)
	if err != nil {
		return fmt.Errorf("failed to insert swap: %w", err)
	}

	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
