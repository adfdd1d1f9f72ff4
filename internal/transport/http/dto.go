package http

import (
	"time"

	"github.com/cimillas/ticket-exchange/internal/app"
	"github.com/cimillas/ticket-exchange/internal/domain"
)

type eventResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"starts_at"`
	Capacity    int       `json:"capacity"`
	Price       int64     `json:"price"`
	Seller      string    `json:"seller"`
	Deposit     int64     `json:"deposit"`
	State       string    `json:"state"`
	TicketsSold int       `json:"tickets_sold"`
	Remaining   int       `json:"remaining"`
	Revenue     int64     `json:"revenue"`
	Rewarded    bool      `json:"rewarded"`
	CreatedAt   time.Time `json:"created_at"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Venue:       e.Venue,
		StartsAt:    e.StartsAt,
		Capacity:    e.Capacity,
		Price:       e.Price,
		Seller:      e.Seller,
		Deposit:     e.Deposit,
		State:       string(e.State),
		TicketsSold: e.TicketsSold,
		Remaining:   e.Remaining(),
		Revenue:     e.Revenue,
		Rewarded:    e.Rewarded,
		CreatedAt:   e.CreatedAt,
	}
}

type bidResponse struct {
	EventID  int64  `json:"event_id"`
	Bidder   string `json:"bidder"`
	Quantity int    `json:"quantity"`
	Stake    int64  `json:"stake"`
	Escrow   int64  `json:"escrow"`
	Seq      int64  `json:"seq"`
	Active   bool   `json:"active"`
}

func toBidResponse(b domain.Bid) bidResponse {
	return bidResponse{
		EventID:  b.EventID,
		Bidder:   b.Bidder,
		Quantity: b.Quantity,
		Stake:    b.Stake,
		Escrow:   b.Escrow,
		Seq:      b.Seq,
		Active:   b.Active,
	}
}

type bidOutcomeResponse struct {
	Bidder         string  `json:"bidder"`
	Requested      int     `json:"requested"`
	TicketIDs      []int64 `json:"ticket_ids"`
	CurrencyRefund int64   `json:"currency_refund"`
	StakeRefund    int64   `json:"stake_refund"`
	StakeConsumed  int64   `json:"stake_consumed"`
}

type closeBiddingResponse struct {
	Event    eventResponse        `json:"event"`
	Outcomes []bidOutcomeResponse `json:"outcomes"`
}

func toCloseBiddingResponse(res app.CloseBiddingResult) closeBiddingResponse {
	out := closeBiddingResponse{
		Event:    toEventResponse(res.Event),
		Outcomes: make([]bidOutcomeResponse, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		ids := o.TicketIDs
		if ids == nil {
			ids = []int64{}
		}
		out.Outcomes = append(out.Outcomes, bidOutcomeResponse{
			Bidder:         o.Bidder,
			Requested:      o.Requested,
			TicketIDs:      ids,
			CurrencyRefund: o.CurrencyRefund,
			StakeRefund:    o.StakeRefund,
			StakeConsumed:  o.StakeConsumed,
		})
	}
	return out
}

type settlementResponse struct {
	Event            eventResponse    `json:"event"`
	SellerPayout     int64            `json:"seller_payout"`
	Commission       int64            `json:"commission"`
	DepositReturned  int64            `json:"deposit_returned"`
	DepositForfeited int64            `json:"deposit_forfeited"`
	Refunds          map[string]int64 `json:"refunds,omitempty"`
	Rewards          map[string]int64 `json:"rewards,omitempty"`
}

func toSettlementResponse(res app.SettlementResult) settlementResponse {
	return settlementResponse{
		Event:            toEventResponse(res.Event),
		SellerPayout:     res.SellerPayout,
		Commission:       res.Commission,
		DepositReturned:  res.DepositReturned,
		DepositForfeited: res.DepositForfeited,
		Refunds:          res.Refunds,
		Rewards:          res.Rewards,
	}
}

type purchaseResponse struct {
	TicketIDs []int64 `json:"ticket_ids"`
	Paid      int64   `json:"paid"`
	Change    int64   `json:"change"`
}

type refundResponse struct {
	TicketID int64 `json:"ticket_id"`
	Refunded int64 `json:"refunded"`
}

type ticketResponse struct {
	ID            int64  `json:"id"`
	EventID       int64  `json:"event_id"`
	Owner         string `json:"owner"`
	PreviousOwner string `json:"previous_owner,omitempty"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{ID: t.ID, EventID: t.EventID, Owner: t.Owner, PreviousOwner: t.PreviousOwner}
}

type listingResponse struct {
	ID        int64     `json:"id"`
	Seller    string    `json:"seller"`
	Initial   int64     `json:"initial"`
	Remaining int64     `json:"remaining"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toListingResponse(l domain.Listing) listingResponse {
	return listingResponse{
		ID:        l.ID,
		Seller:    l.Seller,
		Initial:   l.Initial,
		Remaining: l.Remaining,
		Active:    l.Active,
		CreatedAt: l.CreatedAt,
	}
}

type quoteResponse struct {
	Quantity  int64 `json:"quantity"`
	Supply    int64 `json:"supply"`
	UnitPrice int64 `json:"unit_price"`
	Cost      int64 `json:"cost"`
}

func toQuoteResponse(q app.Quote) quoteResponse {
	return quoteResponse{Quantity: q.Quantity, Supply: q.Supply, UnitPrice: q.UnitPrice, Cost: q.Cost}
}

type fillResponse struct {
	ListingID  int64  `json:"listing_id"`
	Seller     string `json:"seller"`
	Quantity   int64  `json:"quantity"`
	Proceeds   int64  `json:"proceeds"`
	Payout     int64  `json:"payout"`
	Commission int64  `json:"commission"`
}

type tokenPurchaseResponse struct {
	Quote  quoteResponse  `json:"quote"`
	Fills  []fillResponse `json:"fills"`
	Change int64          `json:"change"`
}

func toTokenPurchaseResponse(p app.TokenPurchase) tokenPurchaseResponse {
	out := tokenPurchaseResponse{
		Quote:  toQuoteResponse(p.Quote),
		Fills:  make([]fillResponse, 0, len(p.Fills)),
		Change: p.Change,
	}
	for _, f := range p.Fills {
		out.Fills = append(out.Fills, fillResponse(f))
	}
	return out
}

type creditPurchaseResponse struct {
	Credits int64 `json:"credits"`
	Paid    int64 `json:"paid"`
	Change  int64 `json:"change"`
}

type creditAccountResponse struct {
	ID        string `json:"id"`
	Balance   int64  `json:"balance"`
	Allowance int64  `json:"allowance"`
}

type identityResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Verifier  string `json:"verifier,omitempty"`
	Certified bool   `json:"certified"`
}

func toIdentityResponse(i domain.Identity) identityResponse {
	return identityResponse{ID: i.ID, Status: string(i.Status), Verifier: i.Verifier, Certified: i.Certified}
}

type balanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}
