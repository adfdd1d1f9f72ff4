package domain

import "time"

// Bid is a sealed bid for tickets, ranked by stake then by submission order.
type Bid struct {
	Bidder   string
	EventID  int64
	Quantity int
	Stake    int64
	// Escrow is the currency held against the bid; always Quantity * event price.
	Escrow    int64
	Seq       int64
	Active    bool
	CreatedAt time.Time
}
