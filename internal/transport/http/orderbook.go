package http

import (
	"net/http"
	"strconv"
)

type createListingRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *handlers) createListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	listing, err := h.m.OrderBook.List(r.Context(), callerFrom(r.Context()), req.Quantity)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

func (h *handlers) deleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	listing, err := h.m.OrderBook.Unlist(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *handlers) listListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.m.OrderBook.Listings(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	resp := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, toListingResponse(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) currentPrice(w http.ResponseWriter, r *http.Request) {
	quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidQuery, "quantity must be an integer")
		return
	}
	quote, err := h.m.OrderBook.CheckCurrentPrice(r.Context(), quantity)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(quote))
}

type purchaseTokensRequest struct {
	Quantity int64 `json:"quantity"`
	Value    int64 `json:"value"`
}

func (h *handlers) purchaseTokens(w http.ResponseWriter, r *http.Request) {
	var req purchaseTokensRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.m.OrderBook.PurchaseTokens(r.Context(), callerFrom(r.Context()), req.Quantity, req.Value)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenPurchaseResponse(res))
}
