package app

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// TxRunner runs fn as one serialized unit: either every mutation made through
// the repositories inside fn survives, or none does.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id int64) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)

	AddPurchase(ctx context.Context, p domain.Purchase) error
	RemovePurchase(ctx context.Context, ticketID int64) (domain.Purchase, bool, error)
	ListPurchases(ctx context.Context, eventID int64) ([]domain.Purchase, error)

	PushPooledTicket(ctx context.Context, eventID, ticketID int64) error
	PopPooledTicket(ctx context.Context, eventID int64) (int64, bool, error)
	IsPooled(ctx context.Context, eventID, ticketID int64) (bool, error)
}

type BidRepository interface {
	// CreateBid stores bid with the next sequence number and returns it.
	CreateBid(ctx context.Context, bid domain.Bid) (domain.Bid, error)
	GetActiveBid(ctx context.Context, eventID int64, bidder string) (domain.Bid, error)
	UpdateBid(ctx context.Context, bid domain.Bid) error
	ListActiveBids(ctx context.Context, eventID int64) ([]domain.Bid, error)
}

type ListingRepository interface {
	CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error)
	GetListing(ctx context.Context, id int64) (domain.Listing, error)
	UpdateListing(ctx context.Context, l domain.Listing) error
	// ListListings returns every listing, active or not, in insertion order.
	ListListings(ctx context.Context) ([]domain.Listing, error)
	ActiveSupply(ctx context.Context) (int64, error)
}

// Vault holds currency balances for identities and platform accounts.
type Vault interface {
	Balance(ctx context.Context, account string) (int64, error)
	Transfer(ctx context.Context, from, to string, amount int64) error
	Fund(ctx context.Context, account string, amount int64) error
	Total(ctx context.Context) (int64, error)
}

// CreditLedger is the fungible credit collaborator.
type CreditLedger interface {
	BalanceOf(ctx context.Context, id string) (int64, error)
	TotalSupply(ctx context.Context) (int64, error)
	Mint(ctx context.Context, minter, to string, amount int64) error
	Burn(ctx context.Context, minter, from string, amount int64) error
	Transfer(ctx context.Context, from, to string, amount int64) error
	TransferFrom(ctx context.Context, spender, from, to string, amount int64) error
	Approve(ctx context.Context, owner, spender string, amount int64) error
	Allowance(ctx context.Context, owner, spender string) (int64, error)
	AddMinter(ctx context.Context, id string) error
	IsMinter(ctx context.Context, id string) (bool, error)
}

// TicketRegistry is the ticket ownership collaborator.
type TicketRegistry interface {
	MintTicket(ctx context.Context, owner string, eventID int64) (domain.Ticket, error)
	Transfer(ctx context.Context, from string, ticketID int64, to string) error
	OwnerOf(ctx context.Context, ticketID int64) (string, error)
	GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Ticket, error)
}

// TrustRegistry is the identity verification collaborator.
type TrustRegistry interface {
	IsVerifiedSeller(ctx context.Context, id string) (bool, error)
	IsCertified(ctx context.Context, id string) (bool, error)
	Certify(ctx context.Context, id string) error
	Uncertify(ctx context.Context, id string) error
	Verify(ctx context.Context, id, verifier string) error
	Identity(ctx context.Context, id string) (domain.Identity, error)
}

// Publisher delivers committed notifications to observers.
type Publisher interface {
	Publish(ctx context.Context, notifications []domain.Notification) error
}
