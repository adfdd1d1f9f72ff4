package app

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/allocation"
	"github.com/cimillas/ticket-exchange/internal/domain"
)

// BidService accepts and revises sealed bids while bidding is open.
type BidService struct {
	deps   Deps
	policy Policy
}

func NewBidService(deps Deps, policy Policy) *BidService {
	return &BidService{deps: deps.withDefaults(), policy: policy}
}

// SubmitBid escrows quantity*price of value and burns stake credits. Any value
// beyond the escrow never leaves the caller.
func (s *BidService) SubmitBid(ctx context.Context, caller string, eventID int64, quantity int, stake, value int64) (domain.Bid, error) {
	if stake < 0 {
		return domain.Bid{}, domain.ErrInvalidStake
	}

	var result domain.Bid
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		event, err := s.deps.Events.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.State != domain.EventStateBiddingOpen {
			return domain.ErrBiddingNotOpen
		}
		if quantity < 1 {
			return domain.ErrInvalidQuantity
		}
		if quantity > s.policy.BulkLimit {
			return domain.ErrBulkLimitExceeded
		}
		escrow, err := product(int64(quantity), event.Price)
		if err != nil {
			return err
		}
		if value < escrow {
			return domain.ErrInsufficientEscrow
		}
		credits, err := s.deps.Credits.BalanceOf(ctx, caller)
		if err != nil {
			return err
		}
		if credits < stake {
			return domain.ErrInsufficientStake
		}

		bid, err := s.deps.Bids.CreateBid(ctx, domain.Bid{
			Bidder:    caller,
			EventID:   eventID,
			Quantity:  quantity,
			Stake:     stake,
			Escrow:    escrow,
			CreatedAt: s.deps.Clock.Now(),
		})
		if err != nil {
			return err
		}
		if err := s.deps.Vault.Transfer(ctx, caller, domain.BidEscrowAccount(eventID), escrow); err != nil {
			return err
		}
		if err := s.deps.Credits.Burn(ctx, domain.PlatformIdentity, caller, stake); err != nil {
			return err
		}

		box.add(domain.Notification{
			Kind:     domain.NotificationBidPlaced,
			EventID:  eventID,
			Actor:    caller,
			Quantity: int64(quantity),
			Amount:   stake,
		})
		result = bid
		return nil
	})
	if err != nil {
		return domain.Bid{}, err
	}

	s.deps.Logger.Info("bid placed",
		"event_id", eventID,
		"bidder", caller,
		"quantity", quantity,
		"stake", stake,
		"seq", result.Seq,
	)
	return result, nil
}

// ReviseBidStake changes the stake of the caller's active bid. The bid keeps
// its sequence number, so only its stake rank can change.
func (s *BidService) ReviseBidStake(ctx context.Context, caller string, eventID int64, newStake int64) (domain.Bid, error) {
	if newStake < 0 {
		return domain.Bid{}, domain.ErrInvalidStake
	}

	var result domain.Bid
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		event, err := s.deps.Events.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.State != domain.EventStateBiddingOpen {
			return domain.ErrBiddingNotOpen
		}
		bid, err := s.deps.Bids.GetActiveBid(ctx, eventID, caller)
		if err != nil {
			return err
		}

		switch delta := newStake - bid.Stake; {
		case delta > 0:
			credits, err := s.deps.Credits.BalanceOf(ctx, caller)
			if err != nil {
				return err
			}
			if credits < delta {
				return domain.ErrInsufficientStake
			}
			if err := s.deps.Credits.Burn(ctx, domain.PlatformIdentity, caller, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := s.deps.Credits.Mint(ctx, domain.PlatformIdentity, caller, -delta); err != nil {
				return err
			}
		}

		bid.Stake = newStake
		if err := s.deps.Bids.UpdateBid(ctx, bid); err != nil {
			return err
		}
		box.add(domain.Notification{
			Kind:     domain.NotificationBidUpdated,
			EventID:  eventID,
			Actor:    caller,
			Quantity: int64(bid.Quantity),
			Amount:   newStake,
		})
		result = bid
		return nil
	})
	if err != nil {
		return domain.Bid{}, err
	}
	return result, nil
}

func (s *BidService) GetBid(ctx context.Context, eventID int64, bidder string) (domain.Bid, error) {
	return s.deps.Bids.GetActiveBid(ctx, eventID, bidder)
}

// BidOutcome is what one bidder received when bidding closed.
type BidOutcome struct {
	Bidder         string
	Requested      int
	TicketIDs      []int64
	CurrencyRefund int64
	StakeRefund    int64
	StakeConsumed  int64
}

type CloseBiddingResult struct {
	Event    domain.Event
	Outcomes []BidOutcome
}

// resolveBids grants tickets to the event's active bids in priority order and
// settles each bid's escrow and stake. It must run inside the close transaction.
func resolveBids(ctx context.Context, deps Deps, event *domain.Event, box *outbox) ([]BidOutcome, error) {
	bids, err := deps.Bids.ListActiveBids(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, nil
	}

	candidates := make([]allocation.Bid, 0, len(bids))
	byBidder := make(map[string]domain.Bid, len(bids))
	for _, b := range bids {
		candidates = append(candidates, allocation.Bid{
			Bidder:   b.Bidder,
			Quantity: b.Quantity,
			Stake:    b.Stake,
			Seq:      b.Seq,
		})
		byBidder[b.Bidder] = b
	}

	escrow := domain.BidEscrowAccount(event.ID)
	revenue := domain.RevenueAccount(event.ID)
	outcomes := make([]BidOutcome, 0, len(bids))

	for _, grant := range allocation.Resolve(candidates, event.Remaining()) {
		bidder := grant.Bid.Bidder
		outcome := BidOutcome{
			Bidder:        bidder,
			Requested:     grant.Bid.Quantity,
			StakeRefund:   grant.StakeRefund,
			StakeConsumed: grant.StakeConsumed,
		}

		for i := 0; i < grant.Granted; i++ {
			ticket, err := deps.Tickets.MintTicket(ctx, bidder, event.ID)
			if err != nil {
				return nil, err
			}
			if err := deps.Events.AddPurchase(ctx, domain.Purchase{
				TicketID: ticket.ID,
				EventID:  event.ID,
				Buyer:    bidder,
				Paid:     event.Price,
			}); err != nil {
				return nil, err
			}
			outcome.TicketIDs = append(outcome.TicketIDs, ticket.ID)
		}

		sold := int64(grant.Granted) * event.Price
		if err := deps.Vault.Transfer(ctx, escrow, revenue, sold); err != nil {
			return nil, err
		}
		outcome.CurrencyRefund = int64(grant.Unmet) * event.Price
		if err := deps.Vault.Transfer(ctx, escrow, bidder, outcome.CurrencyRefund); err != nil {
			return nil, err
		}
		if err := deps.Credits.Mint(ctx, domain.PlatformIdentity, bidder, grant.StakeRefund); err != nil {
			return nil, err
		}

		bid := byBidder[bidder]
		bid.Active = false
		if err := deps.Bids.UpdateBid(ctx, bid); err != nil {
			return nil, err
		}

		event.TicketsSold += grant.Granted
		event.Revenue += sold
		if grant.Granted > 0 {
			box.add(domain.Notification{
				Kind:      domain.NotificationTicketPurchased,
				EventID:   event.ID,
				Actor:     bidder,
				Quantity:  int64(grant.Granted),
				Amount:    sold,
				TicketIDs: outcome.TicketIDs,
			})
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
