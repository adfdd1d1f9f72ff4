package domain

import "time"

// Event is a listed event together with its lifecycle state and sale totals.
type Event struct {
	ID          int64
	Title       string
	Venue       string
	StartsAt    time.Time
	Capacity    int
	Price       int64
	Seller      string
	Deposit     int64
	State       EventState
	TicketsSold int
	// Revenue is the sale currency currently held for the event, net of refunds.
	Revenue   int64
	Rewarded  bool
	CreatedAt time.Time
}

// Remaining reports how many tickets can still be sold.
func (e Event) Remaining() int {
	return e.Capacity - e.TicketsSold
}

// Purchase records what a buyer paid for one ticket.
type Purchase struct {
	TicketID int64
	EventID  int64
	Buyer    string
	Paid     int64
}
