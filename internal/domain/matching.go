package domain

import "math"

// lotEpsilon is the remaining quantity below which a lot (or a holding) counts as empty.
const lotEpsilon = 1e-10

// Lot is a slice of bought quantity still waiting to be sold.
type Lot struct {
	Remaining       float64
	EntryPrice      float64
	EntryAt         string
	EntryFeePerUnit float64
}

// ClosedTrade is one realized match between a BUY lot and a SELL.
//
//	pnl = (exit - entry) * qty - qty*entryFeePerUnit - qty*exitFeePerUnit
type ClosedTrade struct {
	Asset      string
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	EntryAt    string
	ExitAt     string
	PnLEUR     float64
}

// LotBook keeps one FIFO queue of lots per asset.
type LotBook struct {
	queues map[string][]Lot
}

// NewLotBook creates an empty book.
func NewLotBook() *LotBook {
	return &LotBook{queues: make(map[string][]Lot)}
}

// Push appends a lot at the back of the asset's queue.
func (b *LotBook) Push(asset string, lot Lot) {
	b.queues[asset] = append(b.queues[asset], lot)
}

// Oldest returns a pointer to the oldest lot of asset, or nil when the queue is empty.
func (b *LotBook) Oldest(asset string) *Lot {
	q := b.queues[asset]
	if len(q) == 0 {
		return nil
	}
	return &q[0]
}

// PopOldest drops the oldest lot of asset.
func (b *LotBook) PopOldest(asset string) {
	q := b.queues[asset]
	if len(q) == 0 {
		return
	}
	b.queues[asset] = q[1:]
}

// MatchTrades realizes P&L with FIFO lot accounting per asset.
//
// trades MUST already be sorted ascending by created_at; no re-sort happens here.
// The result is in match order. A SELL larger than the open lots stops matching once
// the lots run out: no short lot is ever created for the excess.
func MatchTrades(trades []Trade) []ClosedTrade {
	book := NewLotBook()
	var closed []ClosedTrade

	for _, t := range trades {
		if t.IsInert() {
			continue
		}
		asset := t.AssetKey()

		switch t.Side {
		case SideBuy:
			book.Push(asset, Lot{
				Remaining:       t.Quantity,
				EntryPrice:      t.Price,
				EntryAt:         t.CreatedAt,
				EntryFeePerUnit: t.FeeEUR / t.Quantity,
			})

		case SideSell:
			exitFeePerUnit := t.FeeEUR / t.Quantity
			remaining := t.Quantity
			for remaining > lotEpsilon {
				lot := book.Oldest(asset)
				if lot == nil {
					break
				}
				qty := math.Min(lot.Remaining, remaining)
				closed = append(closed, ClosedTrade{
					Asset:      asset,
					Quantity:   qty,
					EntryPrice: lot.EntryPrice,
					ExitPrice:  t.Price,
					EntryAt:    lot.EntryAt,
					ExitAt:     t.CreatedAt,
					PnLEUR:     (t.Price-lot.EntryPrice)*qty - qty*lot.EntryFeePerUnit - qty*exitFeePerUnit,
				})
				lot.Remaining -= qty
				remaining -= qty
				if lot.Remaining <= lotEpsilon {
					book.PopOldest(asset)
				}
			}
		}
	}
	return closed
}
