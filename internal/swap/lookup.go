package swap

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/sirupsen/logrus"
)

// resolveLookupTables fetches the on-chain state of each referenced lookup
// table. Fetches fan out concurrently; a missing or undecodable table is
// logged and dropped, never fatal — the composed transaction falls back to
// fully-qualified account references at the cost of size.
func (e *Engine) resolveLookupTables(ctx context.Context, addresses []string) map[solana.PublicKey]solana.PublicKeySlice {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(addresses))
	if len(addresses) == 0 {
		return tables
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, addr := range addresses {
		key, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			e.logger.WithField("table", addr).Warn("invalid lookup table address, dropping")
			continue
		}

		wg.Add(1)
		go func(key solana.PublicKey) {
			defer wg.Done()

			data, err := e.rpc.AccountData(ctx, key.String())
			if err != nil {
				e.logger.WithError(err).WithField("table", key.String()).Warn("lookup table fetch failed, dropping")
				return
			}
			if data == nil {
				e.logger.WithField("table", key.String()).Warn("lookup table not found on chain, dropping")
				return
			}

			state, err := addresslookuptable.DecodeAddressLookupTableState(data)
			if err != nil {
				e.logger.WithError(err).WithField("table", key.String()).Warn("lookup table decode failed, dropping")
				return
			}

			mu.Lock()
			tables[key] = state.Addresses
			mu.Unlock()
		}(key)
	}

	wg.Wait()

	e.logger.WithFields(logrus.Fields{
		"requested": len(addresses),
		"resolved":  len(tables),
	}).Debug("lookup tables resolved")

	return tables
}
