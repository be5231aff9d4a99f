// Package market implements the produce marketplace: farmers list crops,
// buyers purchase them, and every sale is stamped into the trade ledger.
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"farmeasy/apperr"
	"farmeasy/ledger"
	"farmeasy/models"
	"farmeasy/notify"
	"farmeasy/store"
)

// Placeholders used when a listing omits quality or location.
const (
	DefaultQuality  = "Grade A"
	DefaultLocation = "India"
)

// Listing caps. Their product stays well inside float64 range, so every
// total can be hashed into the ledger.
const (
	MaxQuantity = 1e6 // kg
	MaxPrice    = 1e6 // per kg
)

const notifyTimeout = 10 * time.Second

// Chain is the part of the ledger a purchase needs.
type Chain interface {
	AppendTrade(ctx context.Context, in ledger.TradeInput) (ledger.Block, error)
}

type ListInput struct {
	CropID   int64   `json:"crop_id"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Quality  string  `json:"quality"`
	Location string  `json:"location"`
}

// Receipt is returned to the buyer of a listing.
type Receipt struct {
	Listing models.Listing `json:"transaction"`
	Block   ledger.Block   `json:"block"`
}

type Orders struct {
	Purchases []models.Order `json:"purchases"`
	Sales     []models.Order `json:"sales"`
}

type Service struct {
	store    *store.Store
	chain    Chain
	notifier notify.Notifier
	log      zerolog.Logger
}

func NewService(st *store.Store, chain Chain, n notify.Notifier, log zerolog.Logger) *Service {
	return &Service{
		store:    st,
		chain:    chain,
		notifier: n,
		log:      log.With().Str("component", "market").Logger(),
	}
}

// List puts a crop up for sale.
func (s *Service) List(ctx context.Context, farmerID int64, in ListInput) (models.Listing, error) {
	fields := map[string]string{}
	if in.CropID <= 0 {
		fields["crop_id"] = "required"
	}
	if !(in.Quantity > 0) || in.Quantity > MaxQuantity {
		fields["quantity"] = fmt.Sprintf("must be greater than 0 and at most %g", MaxQuantity)
	}
	if !(in.Price > 0) || in.Price > MaxPrice {
		fields["price"] = fmt.Sprintf("must be greater than 0 and at most %g", MaxPrice)
	}
	if len(fields) > 0 {
		return models.Listing{}, apperr.Validation("invalid listing", fields)
	}
	if _, err := s.store.CropByID(ctx, in.CropID); err != nil {
		return models.Listing{}, err
	}

	l := models.Listing{
		FarmerID: farmerID,
		CropID:   in.CropID,
		Quantity: in.Quantity,
		Price:    in.Price,
		Quality:  orDefault(in.Quality, DefaultQuality),
		Location: orDefault(in.Location, DefaultLocation),
	}
	if err := s.store.CreateListing(ctx, &l); err != nil {
		return models.Listing{}, err
	}
	s.log.Info().Int64("listing_id", l.ID).Int64("farmer_id", farmerID).Int64("crop_id", l.CropID).Msg("listing created")
	return l, nil
}

func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	return s.store.Products(ctx)
}

func (s *Service) MyOrders(ctx context.Context, userID int64) (Orders, error) {
	purchases, sales, err := s.store.Orders(ctx, userID)
	if err != nil {
		return Orders{}, err
	}
	return Orders{Purchases: purchases, Sales: sales}, nil
}

// Buy completes a pending listing for buyer. The status change, the ledger
// block and the stored block hash succeed or fail together; a listing
// claimed concurrently by another buyer yields a ConflictError.
func (s *Service) Buy(ctx context.Context, buyer models.User, listingID int64) (Receipt, error) {
	l, err := s.store.ListingByID(ctx, listingID)
	if err != nil {
		return Receipt{}, err
	}
	if l.Status != models.ListingPending {
		return Receipt{}, apperr.Conflict("product not available", nil)
	}
	if l.FarmerID == buyer.ID {
		return Receipt{}, apperr.Conflict("cannot buy your own product", nil)
	}

	var rc Receipt
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		done, err := tx.CompleteListing(ctx, listingID, buyer.ID)
		if err != nil {
			return err
		}
		block, err := s.chain.AppendTrade(ctx, ledger.TradeInput{
			FarmerID: done.FarmerID,
			BuyerID:  buyer.ID,
			CropID:   done.CropID,
			Quantity: done.Quantity,
			Price:    done.Price,
		})
		if err != nil {
			return err
		}
		if err := tx.SetListingHash(ctx, listingID, block.Hash); err != nil {
			return err
		}
		done.BlockchainHash = block.Hash
		rc = Receipt{Listing: done, Block: block}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	s.log.Info().
		Int64("listing_id", listingID).
		Int64("buyer_id", buyer.ID).
		Int("block_index", rc.Block.Index).
		Str("hash", rc.Block.Hash).
		Msg("purchase completed")
	s.notifyFarmer(ctx, buyer, rc)
	return rc, nil
}

func (s *Service) notifyFarmer(ctx context.Context, buyer models.User, rc Receipt) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	farmer, err := s.store.UserByID(nctx, rc.Listing.FarmerID)
	if err != nil || farmer.Phone == "" {
		s.log.Debug().Err(err).Int64("farmer_id", rc.Listing.FarmerID).Msg("farmer not reachable, skipping purchase sms")
		return
	}
	cropName := ""
	if c, err := s.store.CropByID(nctx, rc.Listing.CropID); err == nil {
		cropName = c.Name
	}
	msg := notify.PurchaseReceipt(buyer.Username, cropName, rc.Listing.Quantity, rc.Listing.TotalAmount, rc.Block.Hash)
	if ok, info := s.notifier.Send(nctx, farmer.Phone, msg); !ok {
		s.log.Warn().Int64("farmer_id", farmer.ID).Str("reason", info).Msg("purchase sms not delivered")
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
