package memory

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// TrustRegistry keeps verification and certification flags per identity.
type TrustRegistry struct {
	store *Store
}

func NewTrustRegistry(store *Store) *TrustRegistry {
	return &TrustRegistry{store: store}
}

func (r *TrustRegistry) IsVerifiedSeller(ctx context.Context, id string) (bool, error) {
	ident, err := r.Identity(ctx, id)
	if err != nil {
		return false, err
	}
	return ident.Status == domain.TrustStatusVerified, nil
}

func (r *TrustRegistry) IsCertified(ctx context.Context, id string) (bool, error) {
	ident, err := r.Identity(ctx, id)
	if err != nil {
		return false, err
	}
	return ident.Certified, nil
}

func (r *TrustRegistry) Certify(ctx context.Context, id string) error {
	return r.update(ctx, id, func(ident *domain.Identity) error {
		ident.Certified = true
		return nil
	})
}

func (r *TrustRegistry) Uncertify(ctx context.Context, id string) error {
	return r.update(ctx, id, func(ident *domain.Identity) error {
		ident.Certified = false
		return nil
	})
}

// Verify marks id as a verified seller; verifier must be certified.
func (r *TrustRegistry) Verify(ctx context.Context, id, verifier string) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		if !lookupIdentity(st, verifier).Certified {
			return domain.ErrNotCertified
		}
		ident := lookupIdentity(st, id)
		ident.Status = domain.TrustStatusVerified
		ident.Verifier = verifier
		setKey(t, st.identities, id, ident)
		return nil
	})
}

func (r *TrustRegistry) Identity(ctx context.Context, id string) (domain.Identity, error) {
	var ident domain.Identity
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		ident = lookupIdentity(st, id)
		return nil
	})
	return ident, err
}

func (r *TrustRegistry) update(ctx context.Context, id string, fn func(*domain.Identity) error) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		ident := lookupIdentity(st, id)
		if err := fn(&ident); err != nil {
			return err
		}
		setKey(t, st.identities, id, ident)
		return nil
	})
}

func lookupIdentity(st *state, id string) domain.Identity {
	if ident, ok := st.identities[id]; ok {
		return ident
	}
	return domain.Identity{ID: id, Status: domain.TrustStatusUnverified}
}
