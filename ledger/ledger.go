// Package ledger keeps an append-only, hash-chained record of completed
// marketplace trades.
package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"farmeasy/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Journal durably stores blocks. Append must not return before the block
// is persisted.
type Journal interface {
	Load(ctx context.Context) ([]Block, error)
	Append(ctx context.Context, b Block) error
}

// TradeInput is what the marketplace supplies for a sale.
type TradeInput struct {
	FarmerID int64
	BuyerID  int64
	CropID   int64
	Quantity float64
	Price    float64
}

// TradeView is a trade together with the block that holds it.
type TradeView struct {
	BlockHash   string `json:"block_hash"`
	BlockIndex  int    `json:"block_index"`
	Transaction Trade  `json:"transaction"`
	Verified    bool   `json:"verified"`
}

// AuditReport is the outcome of a full chain check. BrokenAt is the first
// offending block index.
type AuditReport struct {
	Valid    bool   `json:"valid"`
	Height   int    `json:"height"`
	BrokenAt *int   `json:"broken_at,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Ledger is safe for concurrent use. Appends are serialised so every block
// links to the tip it was built on.
type Ledger struct {
	mu      sync.RWMutex
	blocks  []Block
	byHash  map[string]int
	journal Journal
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs overrides transaction id generation.
func WithIDs(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// Open loads the chain from journal, creating and persisting the genesis
// block when the journal is empty. A nil journal keeps the chain in memory.
// A loaded chain that fails validation is logged and kept as is.
func Open(ctx context.Context, journal Journal, log zerolog.Logger, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		byHash:  make(map[string]int),
		journal: journal,
		log:     log.With().Str("component", "ledger").Logger(),
		now:     time.Now,
		newID:   func() string { return "TX-" + uuid.NewString() },
	}
	for _, o := range opts {
		o(l)
	}

	if journal != nil {
		blocks, err := journal.Load(ctx)
		if err != nil {
			return nil, apperr.Persistence("load ledger", err)
		}
		for _, b := range blocks {
			l.push(b)
		}
	}

	if len(l.blocks) == 0 {
		if err := l.createGenesis(ctx); err != nil {
			return nil, err
		}
		l.log.Info().Str("hash", l.blocks[0].Hash).Msg("Created genesis block")
		return l, nil
	}

	if r := l.Audit(); !r.Valid {
		l.log.Error().Int("broken_at", *r.BrokenAt).Str("reason", r.Reason).Msg("Loaded ledger failed validation")
	} else {
		l.log.Info().Int("height", r.Height).Msg("Loaded ledger")
	}
	return l, nil
}

func (l *Ledger) timestamp() float64 {
	return float64(l.now().UnixNano()) / 1e9
}

func (l *Ledger) createGenesis(ctx context.Context) error {
	g := Block{
		Index:        0,
		Timestamp:    l.timestamp(),
		Transactions: []Trade{},
		PreviousHash: GenesisPreviousHash,
	}
	return l.seal(ctx, g)
}

// seal hashes b, persists it and makes it the tip. The tip is unchanged on
// failure.
func (l *Ledger) seal(ctx context.Context, b Block) error {
	h, err := ComputeHash(b)
	if err != nil {
		return err
	}
	b.Hash = h
	if l.journal != nil {
		if err := l.journal.Append(ctx, b); err != nil {
			return apperr.Persistence("append block", err)
		}
	}
	l.push(b)
	return nil
}

func (l *Ledger) push(b Block) {
	l.byHash[b.Hash] = len(l.blocks)
	l.blocks = append(l.blocks, b)
}

// AppendTrade stamps one trade into a new block on top of the current tip
// and returns a copy of that block.
func (l *Ledger) AppendTrade(ctx context.Context, in TradeInput) (Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.blocks) == 0 {
		return Block{}, fmt.Errorf("ledger has no genesis block")
	}
	total := in.Quantity * in.Price
	if fields := nonFinite(in.Quantity, in.Price, total); len(fields) > 0 {
		return Block{}, apperr.Validation("trade amounts must be finite", fields)
	}
	tip := l.blocks[len(l.blocks)-1]
	ts := l.timestamp()
	b := Block{
		Index:     tip.Index + 1,
		Timestamp: ts,
		Transactions: []Trade{{
			FarmerID:      in.FarmerID,
			BuyerID:       in.BuyerID,
			CropID:        in.CropID,
			Quantity:      in.Quantity,
			Price:         in.Price,
			TotalAmount:   total,
			Timestamp:     ts,
			TransactionID: l.newID(),
		}},
		PreviousHash: tip.Hash,
	}
	if err := l.seal(ctx, b); err != nil {
		return Block{}, err
	}
	out := l.blocks[len(l.blocks)-1].clone()
	l.log.Debug().Int("index", out.Index).Str("hash", out.Hash).Msg("Appended trade block")
	return out, nil
}

// nonFinite names the trade amounts that cannot be hashed.
func nonFinite(quantity, price, total float64) map[string]string {
	fields := map[string]string{}
	for name, v := range map[string]float64{"quantity": quantity, "price": price, "total_amount": total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			fields[name] = "must be a finite number"
		}
	}
	return fields
}

// ValidateChain reports whether every block's stored hash matches its
// contents and links to its predecessor.
func (l *Ledger) ValidateChain() bool {
	return l.Audit().Valid
}

// Audit checks the whole chain and reports the first broken block. It
// never modifies the chain.
func (l *Ledger) Audit() AuditReport {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r := AuditReport{Valid: true, Height: len(l.blocks)}
	fail := func(i int, reason string) AuditReport {
		r.Valid = false
		r.BrokenAt = &i
		r.Reason = reason
		return r
	}
	for i, b := range l.blocks {
		if b.Index != i {
			return fail(i, fmt.Sprintf("index %d at position %d", b.Index, i))
		}
		if i == 0 {
			if b.PreviousHash != GenesisPreviousHash {
				return fail(0, "genesis previous_hash is not \"0\"")
			}
			continue
		}
		h, err := ComputeHash(b)
		if err != nil || h != b.Hash {
			return fail(i, "hash does not match contents")
		}
		if b.PreviousHash != l.blocks[i-1].Hash {
			return fail(i, "previous_hash does not match prior block")
		}
	}
	return r
}

// FindByHash returns the block with hash h.
func (l *Ledger) FindByHash(h string) (Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byHash[h]
	if !ok {
		return Block{}, false
	}
	return l.blocks[i].clone(), true
}

// TradesFor returns, in chain order, every trade where userID is the
// farmer or the buyer.
func (l *Ledger) TradesFor(userID int64) []TradeView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []TradeView{}
	for _, b := range l.blocks {
		for _, tx := range b.Transactions {
			if tx.FarmerID == userID || tx.BuyerID == userID {
				out = append(out, TradeView{
					BlockHash:   b.Hash,
					BlockIndex:  b.Index,
					Transaction: tx,
					Verified:    true,
				})
			}
		}
	}
	return out
}

// Blocks returns a deep copy of the chain.
func (l *Ledger) Blocks() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Block, len(l.blocks))
	for i, b := range l.blocks {
		out[i] = b.clone()
	}
	return out
}

// Height is the number of blocks including genesis.
func (l *Ledger) Height() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}
