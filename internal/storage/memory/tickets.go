package memory

import (
	"context"
	"sort"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

type TicketRegistry struct {
	store *Store
}

func NewTicketRegistry(store *Store) *TicketRegistry {
	return &TicketRegistry{store: store}
}

func (r *TicketRegistry) MintTicket(ctx context.Context, owner string, eventID int64) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.store.do(ctx, func(st *state, t *tx) error {
		setValue(t, &st.nextTicketID, st.nextTicketID+1)
		ticket = domain.Ticket{ID: st.nextTicketID, EventID: eventID, Owner: owner}
		setKey(t, st.tickets, ticket.ID, ticket)
		return nil
	})
	return ticket, err
}

func (r *TicketRegistry) Transfer(ctx context.Context, from string, ticketID int64, to string) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		ticket, ok := st.tickets[ticketID]
		if !ok {
			return domain.ErrTicketNotFound
		}
		if ticket.Owner != from {
			return domain.ErrNotTicketOwner
		}
		ticket.PreviousOwner = ticket.Owner
		ticket.Owner = to
		setKey(t, st.tickets, ticketID, ticket)
		return nil
	})
}

func (r *TicketRegistry) OwnerOf(ctx context.Context, ticketID int64) (string, error) {
	ticket, err := r.GetTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}
	return ticket.Owner, nil
}

func (r *TicketRegistry) GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		found, ok := st.tickets[ticketID]
		if !ok {
			return domain.ErrTicketNotFound
		}
		ticket = found
		return nil
	})
	return ticket, err
}

func (r *TicketRegistry) ListByEvent(ctx context.Context, eventID int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		for _, ticket := range st.tickets {
			if ticket.EventID == eventID {
				out = append(out, ticket)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}
