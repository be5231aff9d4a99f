package market

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmeasy/apperr"
	"farmeasy/catalog"
	"farmeasy/database"
	"farmeasy/database/dbtest"
	"farmeasy/ledger"
	"farmeasy/logger"
	"farmeasy/models"
	"farmeasy/store"
)

type recorder struct {
	mu   sync.Mutex
	msgs map[string]string
}

func (r *recorder) Send(_ context.Context, to, msg string) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.msgs == nil {
		r.msgs = map[string]string{}
	}
	r.msgs[to] = msg
	return true, "ok"
}

type brokenChain struct{}

func (brokenChain) AppendTrade(context.Context, ledger.TradeInput) (ledger.Block, error) {
	return ledger.Block{}, apperr.Persistence("append block", errors.New("disk full"))
}

type fixture struct {
	store  *store.Store
	ledger *ledger.Ledger
	sms    *recorder
	svc    *Service
	farmer models.User
	buyer  models.User
	crop   models.Crop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.New(dbtest.NewTestDB(t, database.SchemaApp).Conn(), logger.Nop())
	l, err := ledger.Open(ctx, nil, logger.Nop())
	require.NoError(t, err)

	f := &fixture{store: st, ledger: l, sms: &recorder{}}
	f.svc = NewService(st, l, f.sms, logger.Nop())
	f.farmer = models.User{Username: "farmer", Email: "farmer@example.com", PasswordHash: "x", Phone: "+911111111111"}
	f.buyer = models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, &f.farmer))
	require.NoError(t, st.CreateUser(ctx, &f.buyer))
	f.crop, err = st.GetOrCreateCrop(ctx, store.CropFromProfile(catalog.Default(), "rice"))
	require.NoError(t, err)
	return f
}

func (f *fixture) list(t *testing.T) models.Listing {
	t.Helper()
	l, err := f.svc.List(t.Context(), f.farmer.ID, ListInput{CropID: f.crop.ID, Quantity: 10, Price: 25})
	require.NoError(t, err)
	return l
}

func TestListAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	l := f.list(t)

	assert.Equal(t, models.ListingPending, l.Status)
	assert.Equal(t, 250.0, l.TotalAmount)
	assert.Equal(t, DefaultQuality, l.Quality)
	assert.Equal(t, DefaultLocation, l.Location)

	products, err := f.svc.Products(t.Context())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "rice", products[0].CropName)
	assert.Equal(t, "farmer", products[0].FarmerName)
}

func TestListValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		in    ListInput
		field string
	}{
		{"missing crop", ListInput{Quantity: 1, Price: 1}, "crop_id"},
		{"zero quantity", ListInput{CropID: f.crop.ID, Price: 1}, "quantity"},
		{"negative price", ListInput{CropID: f.crop.ID, Quantity: 1, Price: -3}, "price"},
		{"huge quantity", ListInput{CropID: f.crop.ID, Quantity: 1e200, Price: 1}, "quantity"},
		{"huge price", ListInput{CropID: f.crop.ID, Quantity: 1, Price: 1e200}, "price"},
		{"infinite quantity", ListInput{CropID: f.crop.ID, Quantity: math.Inf(1), Price: 1}, "quantity"},
		{"nan price", ListInput{CropID: f.crop.ID, Quantity: 1, Price: math.NaN()}, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.List(t.Context(), f.farmer.ID, tt.in)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	_, err := f.svc.List(t.Context(), f.farmer.ID, ListInput{CropID: 999, Quantity: 1, Price: 1})
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestLargestListingCanBeBought(t *testing.T) {
	f := newFixture(t)
	l, err := f.svc.List(t.Context(), f.farmer.ID, ListInput{CropID: f.crop.ID, Quantity: MaxQuantity, Price: MaxPrice})
	require.NoError(t, err)

	rc, err := f.svc.Buy(t.Context(), f.buyer, l.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity*MaxPrice, rc.Block.Transactions[0].TotalAmount)
	assert.True(t, f.ledger.ValidateChain())

	products, err := f.svc.Products(t.Context())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestBuyStampsLedger(t *testing.T) {
	f := newFixture(t)
	l := f.list(t)

	rc, err := f.svc.Buy(t.Context(), f.buyer, l.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ListingCompleted, rc.Listing.Status)
	require.NotNil(t, rc.Listing.BuyerID)
	assert.Equal(t, f.buyer.ID, *rc.Listing.BuyerID)
	assert.Equal(t, rc.Block.Hash, rc.Listing.BlockchainHash)
	assert.Equal(t, 1, rc.Block.Index)
	require.Len(t, rc.Block.Transactions, 1)
	assert.Equal(t, 250.0, rc.Block.Transactions[0].TotalAmount)

	stored, err := f.store.ListingByID(t.Context(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, rc.Block.Hash, stored.BlockchainHash)

	found, ok := f.ledger.FindByHash(rc.Block.Hash)
	require.True(t, ok)
	assert.Equal(t, f.farmer.ID, found.Transactions[0].FarmerID)
	assert.True(t, f.ledger.ValidateChain())

	assert.Contains(t, f.sms.msgs[f.farmer.Phone], "buyer bought 10.00 kg of Rice")

	orders, err := f.svc.MyOrders(t.Context(), f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, orders.Purchases, 1)
	assert.Empty(t, orders.Sales)

	products, err := f.svc.Products(t.Context())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestBuyRejections(t *testing.T) {
	f := newFixture(t)
	l := f.list(t)

	_, err := f.svc.Buy(t.Context(), f.buyer, 12345)
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = f.svc.Buy(t.Context(), f.farmer, l.ID)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cannot buy your own product", ce.Reason)

	_, err = f.svc.Buy(t.Context(), f.buyer, l.ID)
	require.NoError(t, err)

	_, err = f.svc.Buy(t.Context(), f.buyer, l.ID)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "product not available", ce.Reason)
	assert.Equal(t, 2, f.ledger.Height())
}

func TestBuyRollsBackWhenLedgerFails(t *testing.T) {
	f := newFixture(t)
	l := f.list(t)
	svc := NewService(f.store, brokenChain{}, f.sms, logger.Nop())

	_, err := svc.Buy(t.Context(), f.buyer, l.ID)
	var pe *apperr.PersistenceError
	require.ErrorAs(t, err, &pe)

	stored, err := f.store.ListingByID(t.Context(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingPending, stored.Status)
	assert.Nil(t, stored.BuyerID)
	assert.Empty(t, f.sms.msgs)
}

func TestConcurrentBuyersOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	l := f.list(t)

	buyers := make([]models.User, 4)
	for i := range buyers {
		buyers[i] = models.User{Username: "b" + string(rune('a'+i)), Email: string(rune('a'+i)) + "@example.com", PasswordHash: "x"}
		require.NoError(t, f.store.CreateUser(t.Context(), &buyers[i]))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	for i, b := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Buy(context.Background(), b, l.ID)
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var ce *apperr.ConflictError
		assert.ErrorAs(t, err, &ce)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 2, f.ledger.Height())
}
