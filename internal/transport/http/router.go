package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cimillas/ticket-exchange/internal/app"
)

// RouterConfig holds what the HTTP surface needs from the rest of the service.
type RouterConfig struct {
	Marketplace *app.Marketplace
	Auth        *Authenticator
	// Stream serves GET /stream; nil leaves the route unregistered.
	Stream      http.Handler
	// Ready backs the readiness half of GET /health; nil reports live only.
	Ready       func(context.Context) error
	Logger      *slog.Logger
	CORSOrigins []string
}

type handlers struct {
	m      *app.Marketplace
	logger *slog.Logger
}

// NewRouter builds the marketplace API. Reads are public; every write runs as
// the bearer token's subject.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{m: cfg.Marketplace, logger: logger}
	auth := cfg.Auth.Require

	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.HandleFunc("/health", HealthHandler(cfg.Ready)).Methods(http.MethodGet)
	if cfg.Stream != nil {
		r.Handle("/stream", cfg.Stream).Methods(http.MethodGet)
	}

	r.HandleFunc("/events", h.listEvents).Methods(http.MethodGet)
	r.Handle("/events", auth(http.HandlerFunc(h.createEvent))).Methods(http.MethodPost)
	r.HandleFunc("/events/{id}", h.getEvent).Methods(http.MethodGet)
	r.Handle("/events/{id}/bidding/open", auth(http.HandlerFunc(h.openBidding))).Methods(http.MethodPost)
	r.Handle("/events/{id}/bidding/close", auth(http.HandlerFunc(h.closeBidding))).Methods(http.MethodPost)
	r.Handle("/events/{id}/bids", auth(http.HandlerFunc(h.submitBid))).Methods(http.MethodPost)
	r.Handle("/events/{id}/bids", auth(http.HandlerFunc(h.reviseBid))).Methods(http.MethodPatch)
	r.HandleFunc("/events/{id}/bids/{bidder}", h.getBid).Methods(http.MethodGet)
	r.Handle("/events/{id}/tickets", auth(http.HandlerFunc(h.buyTickets))).Methods(http.MethodPost)
	r.Handle("/events/{id}/end", auth(http.HandlerFunc(h.endEvent))).Methods(http.MethodPost)
	r.Handle("/events/{id}/confirm", auth(http.HandlerFunc(h.confirmEvent))).Methods(http.MethodPost)

	r.HandleFunc("/tickets/{id}", h.getTicket).Methods(http.MethodGet)
	r.Handle("/tickets/{id}/refund", auth(http.HandlerFunc(h.refundTicket))).Methods(http.MethodPost)
	r.Handle("/tickets/{id}/transfer", auth(http.HandlerFunc(h.transferTicket))).Methods(http.MethodPost)

	r.HandleFunc("/orderbook/listings", h.listListings).Methods(http.MethodGet)
	r.Handle("/orderbook/listings", auth(http.HandlerFunc(h.createListing))).Methods(http.MethodPost)
	r.Handle("/orderbook/listings/{id}", auth(http.HandlerFunc(h.deleteListing))).Methods(http.MethodDelete)
	r.HandleFunc("/orderbook/price", h.currentPrice).Methods(http.MethodGet)
	r.Handle("/orderbook/purchases", auth(http.HandlerFunc(h.purchaseTokens))).Methods(http.MethodPost)

	r.Handle("/credits/buy", auth(http.HandlerFunc(h.buyCredits))).Methods(http.MethodPost)
	r.Handle("/credits/redeem", auth(http.HandlerFunc(h.redeemCredits))).Methods(http.MethodPost)
	r.Handle("/credits/approve", auth(http.HandlerFunc(h.approveCredits))).Methods(http.MethodPost)
	r.Handle("/credits/transfer", auth(http.HandlerFunc(h.transferCredits))).Methods(http.MethodPost)
	r.HandleFunc("/credits/supply", h.creditSupply).Methods(http.MethodGet)
	r.HandleFunc("/credits/{id}", h.creditAccount).Methods(http.MethodGet)

	r.Handle("/identities/{id}/certify", auth(http.HandlerFunc(h.certify))).Methods(http.MethodPost)
	r.Handle("/identities/{id}/uncertify", auth(http.HandlerFunc(h.uncertify))).Methods(http.MethodPost)
	r.Handle("/identities/{id}/verify", auth(http.HandlerFunc(h.verify))).Methods(http.MethodPost)
	r.HandleFunc("/identities/{id}", h.identity).Methods(http.MethodGet)

	r.Handle("/funds/{id}", auth(http.HandlerFunc(h.fund))).Methods(http.MethodPost)
	r.HandleFunc("/funds/{id}", h.balance).Methods(http.MethodGet)

	return CORS(cfg.CORSOrigins, RequestLogger(r, logger))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
		return 0, false
	}
	return id, true
}
