package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cimillas/ticket-exchange/internal/app"
)

type createEventRequest struct {
	Title    string    `json:"title"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"starts_at"`
	Capacity int       `json:"capacity"`
	Price    int64     `json:"price"`
	// Value is the deposit the seller sends with the listing.
	Value int64 `json:"value"`
}

func (h *handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	event, err := h.m.Events.ListEvent(r.Context(), callerFrom(r.Context()), app.ListEventInput{
		Title:    req.Title,
		Venue:    req.Venue,
		StartsAt: req.StartsAt,
		Capacity: req.Capacity,
		Price:    req.Price,
	}, req.Value)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.m.Events.ListEvents(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	resp := make([]eventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, toEventResponse(event))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	event, err := h.m.Events.GetEvent(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *handlers) openBidding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	event, err := h.m.Events.OpenBidding(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *handlers) closeBidding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.m.Events.CloseBidding(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCloseBiddingResponse(res))
}

func (h *handlers) endEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	event, err := h.m.Events.EndEvent(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

type confirmEventRequest struct {
	Success *bool `json:"success"`
}

func (h *handlers) confirmEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req confirmEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Success == nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "success is required")
		return
	}
	res, err := h.m.Events.ConfirmEvent(r.Context(), callerFrom(r.Context()), id, *req.Success)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(res))
}

type submitBidRequest struct {
	Quantity int   `json:"quantity"`
	Stake    int64 `json:"stake"`
	Value    int64 `json:"value"`
}

func (h *handlers) submitBid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req submitBidRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bid, err := h.m.Bids.SubmitBid(r.Context(), callerFrom(r.Context()), id, req.Quantity, req.Stake, req.Value)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBidResponse(bid))
}

type reviseBidRequest struct {
	Stake int64 `json:"stake"`
}

func (h *handlers) reviseBid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req reviseBidRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bid, err := h.m.Bids.ReviseBidStake(r.Context(), callerFrom(r.Context()), id, req.Stake)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBidResponse(bid))
}

func (h *handlers) getBid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bid, err := h.m.Bids.GetBid(r.Context(), id, mux.Vars(r)["bidder"])
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBidResponse(bid))
}
