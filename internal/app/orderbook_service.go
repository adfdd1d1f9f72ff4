package app

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
	"github.com/cimillas/ticket-exchange/internal/settlement"
)

// OrderBookService is the secondary market for credits. Listed credits sit
// in platform custody and are sold oldest listing first at a price that rises
// with the share of supply being bought.
type OrderBookService struct {
	deps   Deps
	policy Policy
}

func NewOrderBookService(deps Deps, policy Policy) *OrderBookService {
	return &OrderBookService{deps: deps.withDefaults(), policy: policy}
}

// List moves quantity credits from the caller into custody. The caller must
// have approved the platform for at least quantity beforehand.
func (s *OrderBookService) List(ctx context.Context, caller string, quantity int64) (domain.Listing, error) {
	if quantity <= 0 {
		return domain.Listing{}, domain.ErrInvalidQuantity
	}

	var result domain.Listing
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		balance, err := s.deps.Credits.BalanceOf(ctx, caller)
		if err != nil {
			return err
		}
		if balance < quantity {
			return domain.ErrInsufficientCredits
		}
		if err := s.deps.Credits.TransferFrom(ctx, domain.PlatformIdentity, caller, domain.PlatformIdentity, quantity); err != nil {
			return err
		}
		listing, err := s.deps.Listings.CreateListing(ctx, domain.Listing{
			Seller:    caller,
			Initial:   quantity,
			Remaining: quantity,
			Active:    true,
			CreatedAt: s.deps.Clock.Now(),
		})
		if err != nil {
			return err
		}
		box.add(domain.Notification{
			Kind:      domain.NotificationListingCreated,
			ListingID: listing.ID,
			Actor:     caller,
			Quantity:  quantity,
		})
		result = listing
		return nil
	})
	if err != nil {
		return domain.Listing{}, err
	}

	s.deps.Logger.Info("listing created",
		"listing_id", result.ID,
		"seller", caller,
		"quantity", quantity,
	)
	return result, nil
}

// Unlist withdraws a listing and returns its unsold credits to the seller.
func (s *OrderBookService) Unlist(ctx context.Context, caller string, listingID int64) (domain.Listing, error) {
	var result domain.Listing
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		listing, err := s.deps.Listings.GetListing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.Seller != caller {
			return domain.ErrNotListingSeller
		}
		if !listing.Active {
			return domain.ErrListingInactive
		}
		returned := listing.Remaining
		if err := s.deps.Credits.Transfer(ctx, domain.PlatformIdentity, caller, returned); err != nil {
			return err
		}
		listing.Active = false
		listing.Remaining = 0
		if err := s.deps.Listings.UpdateListing(ctx, listing); err != nil {
			return err
		}
		box.add(domain.Notification{
			Kind:      domain.NotificationListingDelisted,
			ListingID: listingID,
			Actor:     caller,
			Quantity:  returned,
		})
		result = listing
		return nil
	})
	if err != nil {
		return domain.Listing{}, err
	}
	return result, nil
}

type Quote struct {
	Quantity  int64
	Supply    int64
	UnitPrice int64
	Cost      int64
}

// CheckCurrentPrice quotes quantity credits against the active supply.
func (s *OrderBookService) CheckCurrentPrice(ctx context.Context, quantity int64) (Quote, error) {
	var quote Quote
	err := s.deps.Store.WithTx(ctx, func(ctx context.Context) error {
		q, err := s.quote(ctx, quantity)
		quote = q
		return err
	})
	return quote, err
}

func (s *OrderBookService) quote(ctx context.Context, quantity int64) (Quote, error) {
	supply, err := s.deps.Listings.ActiveSupply(ctx)
	if err != nil {
		return Quote{}, err
	}
	price, err := s.policy.Pricing.MarginalPrice(quantity, supply)
	if err != nil {
		return Quote{}, err
	}
	cost, err := product(quantity, price)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Quantity: quantity, Supply: supply, UnitPrice: price, Cost: cost}, nil
}

// Fill is the part of a purchase taken from one listing.
type Fill struct {
	ListingID  int64
	Seller     string
	Quantity   int64
	Proceeds   int64
	Payout     int64
	Commission int64
}

type TokenPurchase struct {
	Quote  Quote
	Fills  []Fill
	Change int64
}

// PurchaseTokens buys quantity credits at the current price, walking listings
// in the order they were created.
func (s *OrderBookService) PurchaseTokens(ctx context.Context, caller string, quantity, value int64) (TokenPurchase, error) {
	var result TokenPurchase
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		quote, err := s.quote(ctx, quantity)
		if err != nil {
			return err
		}
		if value < quote.Cost {
			return domain.ErrInsufficientValue
		}

		listings, err := s.deps.Listings.ListListings(ctx)
		if err != nil {
			return err
		}
		fills := make([]Fill, 0, 1)
		need := quantity
		for _, listing := range listings {
			if need == 0 {
				break
			}
			if !listing.Active || listing.Remaining == 0 {
				continue
			}
			take := min(listing.Remaining, need)
			fill, err := s.fill(ctx, caller, listing, take, quote.UnitPrice)
			if err != nil {
				return err
			}
			need -= take
			fills = append(fills, fill)
			box.add(domain.Notification{
				Kind:         domain.NotificationTokensPurchased,
				ListingID:    listing.ID,
				Actor:        caller,
				Counterparty: listing.Seller,
				Quantity:     take,
				Amount:       fill.Payout,
			})
		}
		if need > 0 {
			return domain.ErrInsufficientSupply
		}

		result = TokenPurchase{Quote: quote, Fills: fills, Change: value - quote.Cost}
		return nil
	})
	if err != nil {
		return TokenPurchase{}, err
	}

	s.deps.Logger.Info("tokens purchased",
		"buyer", caller,
		"quantity", quantity,
		"unit_price", result.Quote.UnitPrice,
		"fills", len(result.Fills),
	)
	return result, nil
}

func (s *OrderBookService) fill(ctx context.Context, buyer string, listing domain.Listing, take, unitPrice int64) (Fill, error) {
	proceeds := take * unitPrice
	payout, commission := settlement.Split(proceeds, s.policy.OrderBookCommissionBPS)

	if err := s.deps.Vault.Transfer(ctx, buyer, listing.Seller, payout); err != nil {
		return Fill{}, err
	}
	if err := s.deps.Vault.Transfer(ctx, buyer, domain.AccountTreasury, commission); err != nil {
		return Fill{}, err
	}
	if err := s.deps.Credits.Transfer(ctx, domain.PlatformIdentity, buyer, take); err != nil {
		return Fill{}, err
	}

	listing.Remaining -= take
	if listing.Remaining == 0 {
		listing.Active = false
	}
	if err := s.deps.Listings.UpdateListing(ctx, listing); err != nil {
		return Fill{}, err
	}
	return Fill{
		ListingID:  listing.ID,
		Seller:     listing.Seller,
		Quantity:   take,
		Proceeds:   proceeds,
		Payout:     payout,
		Commission: commission,
	}, nil
}

// Listings returns every listing ever created, oldest first.
func (s *OrderBookService) Listings(ctx context.Context) ([]domain.Listing, error) {
	return s.deps.Listings.ListListings(ctx)
}
