package domain

import "time"

type NotificationKind string

const (
	NotificationEventListed       NotificationKind = "event.listed"
	NotificationBiddingOpened     NotificationKind = "bidding.opened"
	NotificationBidPlaced         NotificationKind = "bid.placed"
	NotificationBidUpdated        NotificationKind = "bid.updated"
	NotificationBiddingClosed     NotificationKind = "bidding.closed"
	NotificationTicketPurchased   NotificationKind = "ticket.purchased"
	NotificationTicketRefunded    NotificationKind = "ticket.refunded"
	NotificationSellerEnded       NotificationKind = "event.seller_ended"
	NotificationOwnerEndedSuccess NotificationKind = "event.owner_ended_success"
	NotificationOwnerEndedFailure NotificationKind = "event.owner_ended_failure"
	NotificationListingCreated    NotificationKind = "listing.created"
	NotificationListingDelisted   NotificationKind = "listing.delisted"
	NotificationTokensPurchased   NotificationKind = "tokens.purchased"
	NotificationCreditsRewarded   NotificationKind = "credits.rewarded"
)

// Notification is emitted for external observers after an operation commits.
type Notification struct {
	ID           string           `json:"id" cbor:"1,keyasint"`
	Kind         NotificationKind `json:"kind" cbor:"2,keyasint"`
	EventID      int64            `json:"event_id,omitempty" cbor:"3,keyasint,omitempty"`
	ListingID    int64            `json:"listing_id,omitempty" cbor:"4,keyasint,omitempty"`
	Actor        string           `json:"actor,omitempty" cbor:"5,keyasint,omitempty"`
	Counterparty string           `json:"counterparty,omitempty" cbor:"6,keyasint,omitempty"`
	Quantity     int64            `json:"quantity,omitempty" cbor:"7,keyasint,omitempty"`
	Amount       int64            `json:"amount,omitempty" cbor:"8,keyasint,omitempty"`
	TicketIDs    []int64          `json:"ticket_ids,omitempty" cbor:"9,keyasint,omitempty"`
	At           time.Time        `json:"at" cbor:"10,keyasint"`
}
