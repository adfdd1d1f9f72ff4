package domain

import "errors"

// Kind classifies a failure so callers can map it without matching reasons.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthorization
	KindState
	KindValue
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindValue:
		return "value"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified failure with a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// KindOf reports the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrNotVerifiedSeller  = newError(KindAuthorization, "you are not a verified seller")
	ErrNotSeller          = newError(KindAuthorization, "only the seller of this event can perform this action")
	ErrNotAdmin           = newError(KindAuthorization, "only the platform owner can perform this action")
	ErrNotCertified       = newError(KindAuthorization, "account not certified")
	ErrNotMinter          = newError(KindAuthorization, "caller is not an authorized minter")
	ErrNotListingSeller   = newError(KindAuthorization, "only the seller of this listing can delist it")
	ErrNotTicketOwner     = newError(KindAuthorization, "caller does not own this ticket")
	ErrNotTicketReturner  = newError(KindAuthorization, "ticket was not returned by caller")
	ErrBiddingNotOpen     = newError(KindState, "bidding is not open for this event")
	ErrSalesNotOpen       = newError(KindState, "ticket sales are not open for this event")
	ErrInvalidTransition  = newError(KindState, "event state does not allow this action")
	ErrEventNotStarted    = newError(KindState, "event has not taken place yet")
	ErrBidAlreadyPlaced   = newError(KindState, "bid already placed for this event; revise the stake instead")
	ErrListingInactive    = newError(KindState, "listing is not active")
	ErrTicketNotInCustody = newError(KindState, "ticket must be transferred to the platform before refund")
	ErrTicketInPool       = newError(KindState, "ticket has already been refunded")

	ErrInsufficientDeposit   = newError(KindValue, "insufficient deposits. need deposit minimum (capacity * price)/2 * 50000 to list event")
	ErrBulkLimitExceeded     = newError(KindValue, "you have passed the maximum bulk purchase limit")
	ErrInvalidQuantity       = newError(KindValue, "invalid quantity")
	ErrInvalidAmount         = newError(KindValue, "amount must be positive")
	ErrAmountTooLarge        = newError(KindValue, "amount is too large")
	ErrInvalidStake          = newError(KindValue, "stake must not be negative")
	ErrInvalidCapacity       = newError(KindValue, "capacity must be positive")
	ErrInvalidPrice          = newError(KindValue, "ticket price must be positive")
	ErrTitleRequired         = newError(KindValue, "event title and venue are required")
	ErrEventDateInPast       = newError(KindValue, "event date must be in the future")
	ErrInsufficientPayment   = newError(KindValue, "buyer has insufficient currency to buy tickets")
	ErrInsufficientEscrow    = newError(KindValue, "bid value does not cover quantity * ticket price")
	ErrInsufficientStake     = newError(KindValue, "insufficient credits to stake")
	ErrInsufficientTickets   = newError(KindValue, "not enough tickets left")
	ErrInsufficientCredits   = newError(KindValue, "insufficient credit balance")
	ErrInsufficientAllowance = newError(KindValue, "insufficient allowance")
	ErrInsufficientFunds     = newError(KindValue, "insufficient funds")
	ErrInsufficientSupply    = newError(KindValue, "quantity exceeds listed supply")
	ErrNoSupply              = newError(KindValue, "no active listings")
	ErrInsufficientValue     = newError(KindValue, "sent value is less than quantity * current price")
	ErrInsufficientReserve   = newError(KindValue, "credit reserve cannot cover redemption")
	ErrValueTooSmall         = newError(KindValue, "sent value does not buy any credits")
	ErrIdentityRequired      = newError(KindValue, "identity is required")

	ErrEventNotFound   = newError(KindNotFound, "event not found")
	ErrBidNotFound     = newError(KindNotFound, "no active bid for this event")
	ErrListingNotFound = newError(KindNotFound, "listing not found")
	ErrTicketNotFound  = newError(KindNotFound, "ticket not found")
)
