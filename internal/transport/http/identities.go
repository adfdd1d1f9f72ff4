package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

type identityUpdate func(ctx context.Context, caller, id string) (domain.Identity, error)

func (h *handlers) updateIdentity(w http.ResponseWriter, r *http.Request, fn identityUpdate) {
	ident, err := fn(r.Context(), callerFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toIdentityResponse(ident))
}

func (h *handlers) certify(w http.ResponseWriter, r *http.Request) {
	h.updateIdentity(w, r, h.m.Identity.Certify)
}

func (h *handlers) uncertify(w http.ResponseWriter, r *http.Request) {
	h.updateIdentity(w, r, h.m.Identity.Uncertify)
}

// verify runs as the caller acting as verifier for the path identity.
func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	h.updateIdentity(w, r, h.m.Identity.Verify)
}

func (h *handlers) identity(w http.ResponseWriter, r *http.Request) {
	ident, err := h.m.Identity.Identity(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toIdentityResponse(ident))
}

func (h *handlers) fund(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account := mux.Vars(r)["id"]
	bal, err := h.m.Funds.Fund(r.Context(), callerFrom(r.Context()), account, req.Amount)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Account: account, Balance: bal})
}

func (h *handlers) balance(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["id"]
	bal, err := h.m.Funds.Balance(r.Context(), account)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Account: account, Balance: bal})
}
