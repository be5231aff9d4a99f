package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"farmeasy/apperr"
	"farmeasy/database"
	"farmeasy/database/dbtest"
	"farmeasy/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("TX-%d", n)
	}
}

func openMemory(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), nil, logger.Nop(), WithClock(fixedClock()), WithIDs(seqIDs()))
	require.NoError(t, err)
	return l
}

func trade(farmer, buyer int64) TradeInput {
	return TradeInput{FarmerID: farmer, BuyerID: buyer, CropID: 3, Quantity: 100, Price: 25.5}
}

func TestGenesis(t *testing.T) {
	l := openMemory(t)
	require.Equal(t, 1, l.Height())

	g := l.Blocks()[0]
	assert.Equal(t, 0, g.Index)
	assert.Equal(t, GenesisPreviousHash, g.PreviousHash)
	assert.Empty(t, g.Transactions)
	assert.Equal(t, 0, g.Nonce)
	assert.Len(t, g.Hash, 64)
	assert.True(t, l.ValidateChain())
}

func TestAppendTradeLinksChain(t *testing.T) {
	l := openMemory(t)
	const n = 5
	for i := 0; i < n; i++ {
		b, err := l.AppendTrade(context.Background(), trade(1, 2))
		require.NoError(t, err)
		require.Len(t, b.Transactions, 1)
		assert.Equal(t, 2550.0, b.Transactions[0].TotalAmount)
		assert.Equal(t, b.Timestamp, b.Transactions[0].Timestamp)
	}

	blocks := l.Blocks()
	require.Len(t, blocks, n+1)
	for i := 1; i <= n; i++ {
		assert.Equal(t, i, blocks[i].Index)
		assert.Equal(t, blocks[i-1].Hash, blocks[i].PreviousHash)
		h, err := ComputeHash(blocks[i])
		require.NoError(t, err)
		assert.Equal(t, h, blocks[i].Hash)
	}
	assert.True(t, l.ValidateChain())
}

func TestTamperingIsDetected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *Ledger)
		broken int
	}{
		{"transaction quantity", func(l *Ledger) { l.blocks[2].Transactions[0].Quantity = 1 }, 2},
		{"dropped transaction", func(l *Ledger) { l.blocks[1].Transactions = nil }, 1},
		{"relinked block", func(l *Ledger) { l.blocks[3].PreviousHash = l.blocks[1].Hash }, 3},
		{"rewritten hash", func(l *Ledger) { l.blocks[1].Hash = "deadbeef" }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := openMemory(t)
			for i := 0; i < 3; i++ {
				_, err := l.AppendTrade(context.Background(), trade(1, 2))
				require.NoError(t, err)
			}
			tt.mutate(l)

			assert.False(t, l.ValidateChain())
			r := l.Audit()
			require.NotNil(t, r.BrokenAt)
			assert.Equal(t, tt.broken, *r.BrokenAt)
			assert.Equal(t, 4, r.Height)
		})
	}
}

func TestBlocksAreCopies(t *testing.T) {
	l := openMemory(t)
	_, err := l.AppendTrade(context.Background(), trade(1, 2))
	require.NoError(t, err)

	blocks := l.Blocks()
	blocks[1].Transactions[0].Price = 0
	b, ok := l.FindByHash(blocks[1].Hash)
	require.True(t, ok)
	b.Transactions[0].Quantity = 0

	assert.True(t, l.ValidateChain())
}

func TestFindByHashAndTradesFor(t *testing.T) {
	l := openMemory(t)
	ctx := context.Background()
	b1, err := l.AppendTrade(ctx, trade(1, 2))
	require.NoError(t, err)
	_, err = l.AppendTrade(ctx, trade(3, 4))
	require.NoError(t, err)
	b3, err := l.AppendTrade(ctx, trade(2, 5))
	require.NoError(t, err)

	found, ok := l.FindByHash(b1.Hash)
	require.True(t, ok)
	assert.Equal(t, b1, found)
	_, ok = l.FindByHash("nope")
	assert.False(t, ok)

	views := l.TradesFor(2)
	require.Len(t, views, 2)
	assert.Equal(t, b1.Hash, views[0].BlockHash)
	assert.Equal(t, b3.Hash, views[1].BlockHash)
	assert.Equal(t, 3, views[1].BlockIndex)
	assert.True(t, views[0].Verified)
	assert.Equal(t, "TX-1", views[0].Transaction.TransactionID)

	assert.Empty(t, l.TradesFor(99))
}

func TestConcurrentAppendsNeverFork(t *testing.T) {
	l, err := Open(context.Background(), nil, logger.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.AppendTrade(context.Background(), trade(int64(i), 100))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	blocks := l.Blocks()
	require.Len(t, blocks, 21)
	seen := make(map[string]bool)
	for _, b := range blocks {
		assert.False(t, seen[b.PreviousHash], "two blocks share previous_hash %s", b.PreviousHash)
		seen[b.PreviousHash] = true
	}
	assert.True(t, l.ValidateChain())
}

func TestCanonicalHashSortsKeys(t *testing.T) {
	raw, err := canonicalJSON(hashedFields{Index: 1, Timestamp: 1.5, Transactions: []Trade{}, PreviousHash: "0"})
	require.NoError(t, err)
	assert.Equal(t, `{"index":1,"nonce":0,"previous_hash":"0","timestamp":1.5,"transactions":[]}`, string(raw))
}

type failingJournal struct {
	blocks []Block
	fail   bool
}

func (f *failingJournal) Load(context.Context) ([]Block, error) { return f.blocks, nil }

func (f *failingJournal) Append(_ context.Context, b Block) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.blocks = append(f.blocks, b)
	return nil
}

func TestJournalFailureLeavesTipUnchanged(t *testing.T) {
	j := &failingJournal{}
	l, err := Open(context.Background(), j, logger.Nop())
	require.NoError(t, err)
	_, err = l.AppendTrade(context.Background(), trade(1, 2))
	require.NoError(t, err)

	j.fail = true
	_, err = l.AppendTrade(context.Background(), trade(1, 2))
	var pe *apperr.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, l.Height())

	j.fail = false
	b, err := l.AppendTrade(context.Background(), trade(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Index)
	assert.True(t, l.ValidateChain())
}

func TestNonFiniteTradeIsRejected(t *testing.T) {
	l, err := Open(context.Background(), nil, logger.Nop())
	require.NoError(t, err)

	for name, in := range map[string]TradeInput{
		"overflowing total": {FarmerID: 1, BuyerID: 2, CropID: 3, Quantity: 1e200, Price: 1e200},
		"nan price":         {FarmerID: 1, BuyerID: 2, CropID: 3, Quantity: 1, Price: math.NaN()},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := l.AppendTrade(context.Background(), in)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, "total_amount")
		})
	}
	assert.Equal(t, 1, l.Height())
	assert.True(t, l.ValidateChain())
}

func TestSQLJournalReopen(t *testing.T) {
	db := dbtest.NewTestDB(t, database.SchemaLedger)
	ctx := context.Background()

	l, err := Open(ctx, NewSQLJournal(db.Conn()), logger.Nop())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := l.AppendTrade(ctx, trade(7, 8))
		require.NoError(t, err)
	}
	want := l.Blocks()

	reopened, err := Open(ctx, NewSQLJournal(db.Conn()), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, want, reopened.Blocks())
	assert.True(t, reopened.ValidateChain())

	_, err = reopened.AppendTrade(ctx, trade(7, 8))
	require.NoError(t, err)
	assert.Equal(t, 5, reopened.Height())
}

func TestAuditJobReports(t *testing.T) {
	l := openMemory(t)
	_, err := l.AppendTrade(context.Background(), trade(1, 2))
	require.NoError(t, err)

	var got AuditReport
	job := NewAuditJob(l, logger.Nop(), func(r AuditReport) { got = r })
	assert.Equal(t, "ledger_audit", job.Name())

	require.NoError(t, job.Run())
	assert.True(t, got.Valid)

	l.blocks[1].Transactions[0].Price = 1
	require.NoError(t, job.Run())
	assert.False(t, got.Valid)
	assert.Equal(t, 1, *got.BrokenAt)
	assert.Equal(t, 1.0, l.blocks[1].Transactions[0].Price, "audit never repairs")
}
