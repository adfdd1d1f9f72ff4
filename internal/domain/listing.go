package domain

import "time"

// Listing is an offer of credits on the order book. Listings are never removed.
type Listing struct {
	ID        int64
	Seller    string
	Initial   int64
	Remaining int64
	Active    bool
	CreatedAt time.Time
}
