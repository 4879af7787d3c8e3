// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package book

import (
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
)

// pairKey identifies one trading direction, X sold for Y.
type pairKey struct {
	sell, buy store.ID
}

// borrowerKey identifies one account's collateralized debt position on
// one debt asset; a borrower holds at most one call order per MIA.
type borrowerKey struct {
	borrower  account.AccountID
	debtAsset store.ID
}

// Book holds every limit, call, and settlement order, plus the ordered
// secondary indices spec.md 4.2 requires: limit orders by
// (sell_price DESC, id ASC) per pair, call orders by
// (debt_asset, collateralization ASC), and settlement orders by
// (settlement_asset, settlement_date ASC).
type Book struct {
	LimitOrders *store.Store[LimitOrder]
	CallOrders  *store.Store[CallOrder]
	SettleOrders *store.Store[SettleOrder]

	limitByPair map[pairKey]*store.Index[store.ID, *LimitOrder]
	callByDebt  map[store.ID]*store.Index[store.ID, *CallOrder]
	settleByAsset map[store.ID]*store.Index[store.ID, *SettleOrder]

	callByBorrower map[borrowerKey]store.ID
}

// NewBook creates an empty order book.
func NewBook() *Book {
	return &Book{
		LimitOrders:   store.New[LimitOrder](),
		CallOrders:    store.New[CallOrder](),
		SettleOrders:  store.New[SettleOrder](),
		limitByPair:   make(map[pairKey]*store.Index[store.ID, *LimitOrder]),
		callByDebt:    make(map[store.ID]*store.Index[store.ID, *CallOrder]),
		settleByAsset: make(map[store.ID]*store.Index[store.ID, *SettleOrder]),
		callByBorrower: make(map[borrowerKey]store.ID),
	}
}

// limitLess orders by sell_price descending (cheapest offer, i.e. least Y
// asked per X, first) then by ID ascending to break ties — never by hash
// or allocation order (spec.md 5), but ID here *is* allocation order,
// which is the deterministic, caller-supplied arrival order the spec
// permits ("ordering among operations in a block is exactly the order
// the caller supplies").
func limitLess(a, b *LimitOrder) bool {
	if !a.SellPrice.Equal(b.SellPrice) {
		return b.SellPrice.LessThan(a.SellPrice)
	}
	return a.ID < b.ID
}

func (bk *Book) limitIndex(sell, buy store.ID) *store.Index[store.ID, *LimitOrder] {
	key := pairKey{sell, buy}
	idx := bk.limitByPair[key]
	if idx == nil {
		idx = store.NewIndex[store.ID, *LimitOrder](limitLess)
		bk.limitByPair[key] = idx
	}
	return idx
}

// callLess orders by debt/collateral descending (highest debt per unit
// collateral, i.e. least collateralized and most at risk, first): a call's
// Collateralization() is debt/collateral, so the least collateralized
// position has the *largest* such ratio.
func callLess(a, b *CallOrder) bool {
	cmp := a.Collateralization()
	other := b.Collateralization()
	if !cmp.Equal(other) {
		return other.LessThan(cmp)
	}
	return a.ID < b.ID
}

func (bk *Book) callIndex(debtAsset store.ID) *store.Index[store.ID, *CallOrder] {
	idx := bk.callByDebt[debtAsset]
	if idx == nil {
		idx = store.NewIndex[store.ID, *CallOrder](callLess)
		bk.callByDebt[debtAsset] = idx
	}
	return idx
}

func settleLess(a, b *SettleOrder) bool {
	if a.SettlementDate != b.SettlementDate {
		return a.SettlementDate < b.SettlementDate
	}
	return a.ID < b.ID
}

func (bk *Book) settleIndex(settlementAsset store.ID) *store.Index[store.ID, *SettleOrder] {
	idx := bk.settleByAsset[settlementAsset]
	if idx == nil {
		idx = store.NewIndex[store.ID, *SettleOrder](settleLess)
		bk.settleByAsset[settlementAsset] = idx
	}
	return idx
}

// InsertLimit creates a limit order and indexes it.
func (bk *Book) InsertLimit(o LimitOrder) *LimitOrder {
	id := bk.LimitOrders.Create(func(id store.ID) LimitOrder { o.ID = id; return o })
	stored := bk.LimitOrders.Get(id)
	bk.limitIndex(stored.SellAsset, stored.BuyAsset).Insert(stored)
	return stored
}

// RemoveLimit deletes a limit order from both the table and its index.
func (bk *Book) RemoveLimit(o *LimitOrder) {
	bk.limitIndex(o.SellAsset, o.BuyAsset).Remove(o.ID)
	bk.LimitOrders.Remove(o.ID)
}

// BestLimit returns the best (cheapest) resting offer selling sellAsset
// for buyAsset, or nil if none.
func (bk *Book) BestLimit(sellAsset, buyAsset store.ID) *LimitOrder {
	o, ok := bk.limitIndex(sellAsset, buyAsset).Peek()
	if !ok {
		return nil
	}
	return o
}

// IsBestLimit reports whether o is strictly the best offer at its price
// key on its side of the book (spec.md 4.4.1's front-of-book test).
func (bk *Book) IsBestLimit(o *LimitOrder) bool {
	best := bk.BestLimit(o.SellAsset, o.BuyAsset)
	return best != nil && best.ID == o.ID
}

// InsertCall creates a call order and indexes it by collateralization and
// by (borrower, debt asset), the lookup call_order_update needs to find
// an account's existing position.
func (bk *Book) InsertCall(o CallOrder) *CallOrder {
	id := bk.CallOrders.Create(func(id store.ID) CallOrder { o.ID = id; return o })
	stored := bk.CallOrders.Get(id)
	bk.callIndex(stored.DebtAsset).Insert(stored)
	bk.callByBorrower[borrowerKey{stored.Borrower, stored.DebtAsset}] = id
	return stored
}

// RemoveCall deletes a call order from the table and both its indices.
func (bk *Book) RemoveCall(o *CallOrder) {
	bk.callIndex(o.DebtAsset).Remove(o.ID)
	delete(bk.callByBorrower, borrowerKey{o.Borrower, o.DebtAsset})
	bk.CallOrders.Remove(o.ID)
}

// FindCall returns borrower's existing call order on debtAsset, or nil
// if they have none.
func (bk *Book) FindCall(borrower account.AccountID, debtAsset store.ID) *CallOrder {
	id, ok := bk.callByBorrower[borrowerKey{borrower, debtAsset}]
	if !ok {
		return nil
	}
	return bk.CallOrders.Get(id)
}

// ReindexCall re-keys o after its collateralization has changed (a fill
// or target-ratio update); callers must call this immediately after any
// such mutation, per spec.md 5's "snapshot the key, mutate, lower_bound
// again" pattern.
func (bk *Book) ReindexCall(o *CallOrder) {
	idx := bk.callIndex(o.DebtAsset)
	if _, found := idx.Remove(o.ID); !found {
		log.Warnf("reindex of call order %d on asset %d found no prior entry in the collateralization index", o.ID, o.DebtAsset)
	}
	idx.Insert(o)
}

// BestCall returns the least-collateralized call order on debtAsset, or
// nil if none.
func (bk *Book) BestCall(debtAsset store.ID) *CallOrder {
	o, ok := bk.callIndex(debtAsset).Peek()
	if !ok {
		return nil
	}
	return o
}

// WalkCalls visits call orders on debtAsset in ascending collateralization
// order, stopping early if fn returns false.
func (bk *Book) WalkCalls(debtAsset store.ID, fn func(*CallOrder) bool) {
	bk.callIndex(debtAsset).Walk(fn)
}

// InsertSettle creates a force-settlement order and indexes it by date.
func (bk *Book) InsertSettle(o SettleOrder) *SettleOrder {
	id := bk.SettleOrders.Create(func(id store.ID) SettleOrder { o.ID = id; return o })
	stored := bk.SettleOrders.Get(id)
	bk.settleIndex(stored.SettlementAsset).Insert(stored)
	return stored
}

// RemoveSettle deletes a settlement order from both the table and its
// index.
func (bk *Book) RemoveSettle(o *SettleOrder) {
	bk.settleIndex(o.SettlementAsset).Remove(o.ID)
	bk.SettleOrders.Remove(o.ID)
}

// BestSettle returns the earliest-dated pending settlement order on
// settlementAsset, or nil if none.
func (bk *Book) BestSettle(settlementAsset store.ID) *SettleOrder {
	o, ok := bk.settleIndex(settlementAsset).Peek()
	if !ok {
		return nil
	}
	return o
}
