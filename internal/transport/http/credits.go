package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

type buyCreditsRequest struct {
	Value int64 `json:"value"`
}

func (h *handlers) buyCredits(w http.ResponseWriter, r *http.Request) {
	var req buyCreditsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.m.Credits.BuyCredits(r.Context(), callerFrom(r.Context()), req.Value)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, creditPurchaseResponse{Credits: res.Credits, Paid: res.Paid, Change: res.Change})
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (h *handlers) redeemCredits(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller := callerFrom(r.Context())
	paid, err := h.m.Credits.RedeemCredits(r.Context(), caller, req.Amount)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Account: caller, Balance: paid})
}

type approveRequest struct {
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

func (h *handlers) approveCredits(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller := callerFrom(r.Context())
	if err := h.m.Credits.Approve(r.Context(), caller, req.Spender, req.Amount); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.writeCreditAccount(w, r, caller)
}

type transferCreditsRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

func (h *handlers) transferCredits(w http.ResponseWriter, r *http.Request) {
	var req transferCreditsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "to is required")
		return
	}
	caller := callerFrom(r.Context())
	if err := h.m.Credits.Transfer(r.Context(), caller, req.To, req.Amount); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.writeCreditAccount(w, r, caller)
}

func (h *handlers) creditAccount(w http.ResponseWriter, r *http.Request) {
	h.writeCreditAccount(w, r, mux.Vars(r)["id"])
}

func (h *handlers) writeCreditAccount(w http.ResponseWriter, r *http.Request, id string) {
	acct, err := h.m.Credits.Account(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, creditAccountResponse{ID: acct.ID, Balance: acct.Balance, Allowance: acct.Allowance})
}

func (h *handlers) creditSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := h.m.Credits.TotalSupply(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_supply": supply})
}
