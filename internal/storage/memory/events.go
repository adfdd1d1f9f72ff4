package memory

import (
	"context"
	"sort"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

type EventRepository struct {
	store *Store
}

func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	err := r.store.do(ctx, func(st *state, t *tx) error {
		setValue(t, &st.nextEventID, st.nextEventID+1)
		event.ID = st.nextEventID
		setKey(t, st.events, event.ID, event)
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	var event domain.Event
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		e, ok := st.events[id]
		if !ok {
			return domain.ErrEventNotFound
		}
		event = e
		return nil
	})
	return event, err
}

func (r *EventRepository) UpdateEvent(ctx context.Context, event domain.Event) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		if _, ok := st.events[event.ID]; !ok {
			return domain.ErrEventNotFound
		}
		setKey(t, st.events, event.ID, event)
		return nil
	})
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		events = make([]domain.Event, 0, len(st.events))
		for _, e := range st.events {
			events = append(events, e)
		}
		return nil
	})
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, err
}

func (r *EventRepository) AddPurchase(ctx context.Context, p domain.Purchase) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		setKey(t, st.purchases, p.TicketID, p)
		return nil
	})
}

func (r *EventRepository) RemovePurchase(ctx context.Context, ticketID int64) (domain.Purchase, bool, error) {
	var (
		p     domain.Purchase
		found bool
	)
	err := r.store.do(ctx, func(st *state, t *tx) error {
		p, found = st.purchases[ticketID]
		deleteKey(t, st.purchases, ticketID)
		return nil
	})
	return p, found, err
}

func (r *EventRepository) ListPurchases(ctx context.Context, eventID int64) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		for _, p := range st.purchases {
			if p.EventID == eventID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TicketID < out[j].TicketID })
	return out, err
}

func (r *EventRepository) PushPooledTicket(ctx context.Context, eventID, ticketID int64) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		pool := append(append([]int64(nil), st.pools[eventID]...), ticketID)
		setKey(t, st.pools, eventID, pool)
		return nil
	})
}

func (r *EventRepository) PopPooledTicket(ctx context.Context, eventID int64) (int64, bool, error) {
	var (
		id int64
		ok bool
	)
	err := r.store.do(ctx, func(st *state, t *tx) error {
		pool := st.pools[eventID]
		if len(pool) == 0 {
			return nil
		}
		id, ok = pool[0], true
		setKey(t, st.pools, eventID, append([]int64(nil), pool[1:]...))
		return nil
	})
	return id, ok, err
}

func (r *EventRepository) IsPooled(ctx context.Context, eventID, ticketID int64) (bool, error) {
	var pooled bool
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		for _, id := range st.pools[eventID] {
			if id == ticketID {
				pooled = true
				return nil
			}
		}
		return nil
	})
	return pooled, err
}
