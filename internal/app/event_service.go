package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cimillas/ticket-exchange/internal/domain"
	"github.com/cimillas/ticket-exchange/internal/settlement"
)

// EventService drives the event lifecycle: listing, the bidding round, the
// seller's end of sales and the owner's final confirmation.
type EventService struct {
	deps   Deps
	policy Policy
}

func NewEventService(deps Deps, policy Policy) *EventService {
	return &EventService{deps: deps.withDefaults(), policy: policy}
}

type ListEventInput struct {
	Title    string
	Venue    string
	StartsAt time.Time
	Capacity int
	Price    int64
}

// ListEvent lists a new event, escrowing value as the seller's deposit.
func (s *EventService) ListEvent(ctx context.Context, caller string, in ListEventInput, value int64) (domain.Event, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Venue) == "" {
		return domain.Event{}, domain.ErrTitleRequired
	}
	if in.Capacity <= 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}
	if in.Price <= 0 {
		return domain.Event{}, domain.ErrInvalidPrice
	}

	now := s.deps.Clock.Now()
	var result domain.Event

	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		verified, err := s.deps.Trust.IsVerifiedSeller(ctx, caller)
		if err != nil {
			return err
		}
		if !verified {
			return domain.ErrNotVerifiedSeller
		}
		if !in.StartsAt.After(now) {
			return domain.ErrEventDateInPast
		}
		required, err := settlement.RequiredDeposit(in.Capacity, in.Price, s.policy.DepositUnit)
		if err != nil {
			return domain.ErrAmountTooLarge
		}
		if value < required {
			return domain.ErrInsufficientDeposit
		}

		event, err := s.deps.Events.CreateEvent(ctx, domain.Event{
			Title:     strings.TrimSpace(in.Title),
			Venue:     strings.TrimSpace(in.Venue),
			StartsAt:  in.StartsAt.UTC(),
			Capacity:  in.Capacity,
			Price:     in.Price,
			Seller:    caller,
			Deposit:   value,
			State:     domain.EventStateListed,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := s.deps.Vault.Transfer(ctx, caller, domain.DepositAccount(event.ID), value); err != nil {
			return err
		}

		box.add(domain.Notification{
			Kind:     domain.NotificationEventListed,
			EventID:  event.ID,
			Actor:    caller,
			Quantity: int64(event.Capacity),
			Amount:   value,
		})
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.deps.Logger.Info("event listed",
		"event_id", result.ID,
		"seller", caller,
		"capacity", result.Capacity,
		"price", result.Price,
		"deposit", result.Deposit,
	)
	return result, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	return s.deps.Events.GetEvent(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.deps.Events.ListEvents(ctx)
}

// OpenBidding starts the sealed bidding round.
func (s *EventService) OpenBidding(ctx context.Context, caller string, eventID int64) (domain.Event, error) {
	var result domain.Event
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		event, err := s.sellerEvent(ctx, caller, eventID)
		if err != nil {
			return err
		}
		if err := transition(&event, domain.EventStateBiddingOpen); err != nil {
			return err
		}
		if err := s.deps.Events.UpdateEvent(ctx, event); err != nil {
			return err
		}
		box.add(domain.Notification{Kind: domain.NotificationBiddingOpened, EventID: eventID, Actor: caller})
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return result, nil
}

// CloseBidding ends the bidding round and resolves every active bid into
// tickets and refunds as part of the same transition.
func (s *EventService) CloseBidding(ctx context.Context, caller string, eventID int64) (CloseBiddingResult, error) {
	var result CloseBiddingResult
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		event, err := s.sellerEvent(ctx, caller, eventID)
		if err != nil {
			return err
		}
		if err := transition(&event, domain.EventStateBiddingClosed); err != nil {
			return err
		}

		outcomes, err := resolveBids(ctx, s.deps, &event, box)
		if err != nil {
			return err
		}
		if err := s.deps.Events.UpdateEvent(ctx, event); err != nil {
			return err
		}

		granted := 0
		for _, o := range outcomes {
			granted += len(o.TicketIDs)
		}
		box.add(domain.Notification{
			Kind:     domain.NotificationBiddingClosed,
			EventID:  eventID,
			Actor:    caller,
			Quantity: int64(granted),
		})
		result = CloseBiddingResult{Event: event, Outcomes: outcomes}
		return nil
	})
	if err != nil {
		return CloseBiddingResult{}, err
	}

	s.deps.Logger.Info("bidding closed",
		"event_id", eventID,
		"bids", len(result.Outcomes),
		"tickets_sold", result.Event.TicketsSold,
	)
	return result, nil
}

// EndEvent is the seller's end of sales. It is only accepted once the event's
// start time has passed, which closes the fixed-price and refund window.
func (s *EventService) EndEvent(ctx context.Context, caller string, eventID int64) (domain.Event, error) {
	var result domain.Event
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		event, err := s.deps.Events.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.Seller != caller {
			return domain.ErrNotSeller
		}
		if err := transition(&event, domain.EventStateSellerEnded); err != nil {
			return err
		}
		if s.deps.Clock.Now().Before(event.StartsAt) {
			return domain.ErrEventNotStarted
		}
		if err := s.deps.Events.UpdateEvent(ctx, event); err != nil {
			return err
		}
		box.add(domain.Notification{Kind: domain.NotificationSellerEnded, EventID: eventID, Actor: caller})
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return result, nil
}

// SettlementResult describes where an event's escrowed currency went.
type SettlementResult struct {
	Event            domain.Event
	SellerPayout     int64
	Commission       int64
	DepositReturned  int64
	DepositForfeited int64
	Refunds          map[string]int64
	Rewards          map[string]int64
}

// ConfirmEvent is the platform owner's final decision on an ended event.
// Success pays the seller and rewards ticket holders; failure refunds buyers
// and forfeits the deposit.
func (s *EventService) ConfirmEvent(ctx context.Context, caller string, eventID int64, success bool) (SettlementResult, error) {
	if !s.policy.isAdmin(caller) {
		return SettlementResult{}, domain.ErrNotAdmin
	}

	var result SettlementResult
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		event, err := s.deps.Events.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}

		target := domain.EventStateOwnerEndedFailure
		if success {
			target = domain.EventStateOwnerEndedSuccess
		}
		if err := transition(&event, target); err != nil {
			return err
		}

		if success {
			result, err = s.settleSuccess(ctx, &event, caller, box)
		} else {
			result, err = s.settleFailure(ctx, &event, caller, box)
		}
		if err != nil {
			return err
		}
		if err := s.deps.Events.UpdateEvent(ctx, event); err != nil {
			return err
		}
		result.Event = event
		return nil
	})
	if err != nil {
		return SettlementResult{}, err
	}

	s.deps.Logger.Info("event settled",
		"event_id", eventID,
		"state", result.Event.State,
		"seller_payout", result.SellerPayout,
		"commission", result.Commission,
	)
	return result, nil
}

func (s *EventService) settleSuccess(ctx context.Context, event *domain.Event, caller string, box *outbox) (SettlementResult, error) {
	out := settlement.Success(event.Revenue, event.Deposit, s.policy.CommissionBPS)
	revenue := domain.RevenueAccount(event.ID)

	if err := s.deps.Vault.Transfer(ctx, revenue, event.Seller, out.SellerPayout); err != nil {
		return SettlementResult{}, err
	}
	if err := s.deps.Vault.Transfer(ctx, revenue, domain.AccountTreasury, out.Commission); err != nil {
		return SettlementResult{}, err
	}
	if err := s.deps.Vault.Transfer(ctx, domain.DepositAccount(event.ID), event.Seller, out.DepositBack); err != nil {
		return SettlementResult{}, err
	}

	rewards, err := s.rewardHolders(ctx, event, box)
	if err != nil {
		return SettlementResult{}, err
	}
	event.Revenue = 0
	event.Rewarded = true

	box.add(domain.Notification{
		Kind:         domain.NotificationOwnerEndedSuccess,
		EventID:      event.ID,
		Actor:        caller,
		Counterparty: event.Seller,
		Amount:       out.SellerPayout + out.DepositBack,
	})
	return SettlementResult{
		SellerPayout:    out.SellerPayout,
		Commission:      out.Commission,
		DepositReturned: out.DepositBack,
		Rewards:         rewards,
	}, nil
}

// rewardHolders mints one credit per ticket to every holder outside platform custody.
func (s *EventService) rewardHolders(ctx context.Context, event *domain.Event, box *outbox) (map[string]int64, error) {
	if event.Rewarded {
		return nil, domain.ErrInvalidTransition
	}
	tickets, err := s.deps.Tickets.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	rewards := make(map[string]int64)
	for _, t := range tickets {
		if t.Owner == domain.PlatformIdentity {
			continue
		}
		rewards[t.Owner]++
	}
	for _, holder := range sortedKeys(rewards) {
		if err := s.deps.Credits.Mint(ctx, domain.PlatformIdentity, holder, rewards[holder]); err != nil {
			return nil, err
		}
		box.add(domain.Notification{
			Kind:     domain.NotificationCreditsRewarded,
			EventID:  event.ID,
			Actor:    holder,
			Quantity: rewards[holder],
		})
	}
	return rewards, nil
}

func (s *EventService) settleFailure(ctx context.Context, event *domain.Event, caller string, box *outbox) (SettlementResult, error) {
	purchases, err := s.deps.Events.ListPurchases(ctx, event.ID)
	if err != nil {
		return SettlementResult{}, err
	}
	payments := make([]settlement.Payment, 0, len(purchases))
	for _, p := range purchases {
		payments = append(payments, settlement.Payment{Buyer: p.Buyer, Paid: p.Paid})
	}
	out := settlement.Failure(event.Revenue, event.Deposit, payments)
	revenue := domain.RevenueAccount(event.ID)

	for _, buyer := range sortedKeys(out.Refunds) {
		if err := s.deps.Vault.Transfer(ctx, revenue, buyer, out.Refunds[buyer]); err != nil {
			return SettlementResult{}, err
		}
	}
	for _, p := range purchases {
		if _, _, err := s.deps.Events.RemovePurchase(ctx, p.TicketID); err != nil {
			return SettlementResult{}, err
		}
	}
	if err := s.deps.Vault.Transfer(ctx, revenue, domain.AccountTreasury, out.Commission); err != nil {
		return SettlementResult{}, err
	}
	if err := s.deps.Vault.Transfer(ctx, domain.DepositAccount(event.ID), domain.AccountTreasury, out.Forfeited); err != nil {
		return SettlementResult{}, err
	}
	event.Revenue = 0

	box.add(domain.Notification{
		Kind:         domain.NotificationOwnerEndedFailure,
		EventID:      event.ID,
		Actor:        caller,
		Counterparty: event.Seller,
		Amount:       out.Forfeited,
	})
	return SettlementResult{
		Commission:       out.Commission,
		DepositForfeited: out.Forfeited,
		Refunds:          out.Refunds,
	}, nil
}

// sellerEvent loads an event that caller sells and is still verified to sell.
func (s *EventService) sellerEvent(ctx context.Context, caller string, eventID int64) (domain.Event, error) {
	event, err := s.deps.Events.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event.Seller != caller {
		return domain.Event{}, domain.ErrNotSeller
	}
	verified, err := s.deps.Trust.IsVerifiedSeller(ctx, caller)
	if err != nil {
		return domain.Event{}, err
	}
	if !verified {
		return domain.Event{}, domain.ErrNotVerifiedSeller
	}
	return event, nil
}

func transition(event *domain.Event, to domain.EventState) error {
	if !domain.CanTransition(event.State, to) {
		return domain.ErrInvalidTransition
	}
	event.State = to
	return nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
