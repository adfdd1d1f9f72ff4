package app

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
	"github.com/cimillas/ticket-exchange/internal/settlement"
)

// SalesService runs the fixed-price window that follows the bidding round.
type SalesService struct {
	deps   Deps
	policy Policy
}

func NewSalesService(deps Deps, policy Policy) *SalesService {
	return &SalesService{deps: deps.withDefaults(), policy: policy}
}

type PurchaseResult struct {
	TicketIDs []int64
	Paid      int64
	// Change is the part of the offered value that was not taken.
	Change int64
}

// BuyTickets sells quantity tickets at the event price, reissuing refunded
// tickets before minting new ones.
func (s *SalesService) BuyTickets(ctx context.Context, caller string, eventID int64, quantity int, value int64) (PurchaseResult, error) {
	var result PurchaseResult
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		event, err := s.deps.Events.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.State != domain.EventStateBiddingClosed {
			return domain.ErrSalesNotOpen
		}
		if quantity < 1 {
			return domain.ErrInvalidQuantity
		}
		if quantity > s.policy.BulkLimit {
			return domain.ErrBulkLimitExceeded
		}
		if quantity > event.Remaining() {
			return domain.ErrInsufficientTickets
		}
		cost, err := product(int64(quantity), event.Price)
		if err != nil {
			return err
		}
		if value < cost {
			return domain.ErrInsufficientPayment
		}

		if err := s.deps.Vault.Transfer(ctx, caller, domain.RevenueAccount(eventID), cost); err != nil {
			return err
		}
		ids := make([]int64, 0, quantity)
		for i := 0; i < quantity; i++ {
			id, err := s.issueTicket(ctx, caller, eventID)
			if err != nil {
				return err
			}
			if err := s.deps.Events.AddPurchase(ctx, domain.Purchase{
				TicketID: id,
				EventID:  eventID,
				Buyer:    caller,
				Paid:     event.Price,
			}); err != nil {
				return err
			}
			ids = append(ids, id)
		}

		event.TicketsSold += quantity
		event.Revenue += cost
		if err := s.deps.Events.UpdateEvent(ctx, event); err != nil {
			return err
		}

		box.add(domain.Notification{
			Kind:      domain.NotificationTicketPurchased,
			EventID:   eventID,
			Actor:     caller,
			Quantity:  int64(quantity),
			Amount:    cost,
			TicketIDs: ids,
		})
		result = PurchaseResult{TicketIDs: ids, Paid: cost, Change: value - cost}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	s.deps.Logger.Info("tickets purchased",
		"event_id", eventID,
		"buyer", caller,
		"quantity", quantity,
		"paid", result.Paid,
	)
	return result, nil
}

func (s *SalesService) issueTicket(ctx context.Context, buyer string, eventID int64) (int64, error) {
	id, ok, err := s.deps.Events.PopPooledTicket(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if ok {
		if err := s.deps.Tickets.Transfer(ctx, domain.PlatformIdentity, id, buyer); err != nil {
			return 0, err
		}
		return id, nil
	}
	ticket, err := s.deps.Tickets.MintTicket(ctx, buyer, eventID)
	if err != nil {
		return 0, err
	}
	return ticket.ID, nil
}

type RefundResult struct {
	TicketID int64
	Refunded int64
}

// RefundTicket pays back half the ticket price for a ticket its holder has
// already returned to platform custody.
func (s *SalesService) RefundTicket(ctx context.Context, caller string, ticketID int64) (RefundResult, error) {
	var result RefundResult
	err := s.deps.run(ctx, func(ctx context.Context, box *outbox) error {
		ticket, err := s.deps.Tickets.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		event, err := s.deps.Events.GetEvent(ctx, ticket.EventID)
		if err != nil {
			return err
		}
		if event.State != domain.EventStateBiddingClosed {
			return domain.ErrSalesNotOpen
		}
		if ticket.Owner != domain.PlatformIdentity {
			return domain.ErrTicketNotInCustody
		}
		if ticket.PreviousOwner != caller {
			return domain.ErrNotTicketReturner
		}
		pooled, err := s.deps.Events.IsPooled(ctx, event.ID, ticketID)
		if err != nil {
			return err
		}
		if pooled {
			return domain.ErrTicketInPool
		}

		amount := settlement.RefundAmount(event.Price)
		if err := s.deps.Vault.Transfer(ctx, domain.RevenueAccount(event.ID), caller, amount); err != nil {
			return err
		}
		if err := s.deps.Events.PushPooledTicket(ctx, event.ID, ticketID); err != nil {
			return err
		}
		if _, _, err := s.deps.Events.RemovePurchase(ctx, ticketID); err != nil {
			return err
		}
		event.TicketsSold--
		event.Revenue -= amount
		if err := s.deps.Events.UpdateEvent(ctx, event); err != nil {
			return err
		}

		box.add(domain.Notification{
			Kind:      domain.NotificationTicketRefunded,
			EventID:   event.ID,
			Actor:     caller,
			Quantity:  1,
			Amount:    amount,
			TicketIDs: []int64{ticketID},
		})
		result = RefundResult{TicketID: ticketID, Refunded: amount}
		return nil
	})
	if err != nil {
		return RefundResult{}, err
	}
	return result, nil
}

// TransferTicket hands a ticket the caller holds to another identity,
// including platform custody ahead of a refund.
func (s *SalesService) TransferTicket(ctx context.Context, caller string, ticketID int64, to string) (domain.Ticket, error) {
	var result domain.Ticket
	err := s.deps.run(ctx, func(ctx context.Context, _ *outbox) error {
		if err := s.deps.Tickets.Transfer(ctx, caller, ticketID, to); err != nil {
			return err
		}
		ticket, err := s.deps.Tickets.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return result, nil
}

func (s *SalesService) GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	return s.deps.Tickets.GetTicket(ctx, ticketID)
}
