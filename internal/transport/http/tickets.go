package http

import "net/http"

type buyTicketsRequest struct {
	Quantity int   `json:"quantity"`
	Value    int64 `json:"value"`
}

func (h *handlers) buyTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req buyTicketsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.m.Sales.BuyTickets(r.Context(), callerFrom(r.Context()), id, req.Quantity, req.Value)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchaseResponse{TicketIDs: res.TicketIDs, Paid: res.Paid, Change: res.Change})
}

func (h *handlers) getTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ticket, err := h.m.Sales.GetTicket(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketResponse(ticket))
}

func (h *handlers) refundTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.m.Sales.RefundTicket(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, refundResponse{TicketID: res.TicketID, Refunded: res.Refunded})
}

type transferTicketRequest struct {
	To string `json:"to"`
}

func (h *handlers) transferTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req transferTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "to is required")
		return
	}
	ticket, err := h.m.Sales.TransferTicket(r.Context(), callerFrom(r.Context()), id, req.To)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketResponse(ticket))
}
