package app

import (
	"context"
	"strings"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// IdentityService manages who may verify sellers and who is a verified seller.
type IdentityService struct {
	deps   Deps
	policy Policy
}

func NewIdentityService(deps Deps, policy Policy) *IdentityService {
	return &IdentityService{deps: deps.withDefaults(), policy: policy}
}

func (s *IdentityService) Certify(ctx context.Context, caller, id string) (domain.Identity, error) {
	return s.adminUpdate(ctx, caller, id, s.deps.Trust.Certify)
}

func (s *IdentityService) Uncertify(ctx context.Context, caller, id string) (domain.Identity, error) {
	return s.adminUpdate(ctx, caller, id, s.deps.Trust.Uncertify)
}

func (s *IdentityService) adminUpdate(ctx context.Context, caller, id string, fn func(context.Context, string) error) (domain.Identity, error) {
	if !s.policy.isAdmin(caller) {
		return domain.Identity{}, domain.ErrNotAdmin
	}
	if strings.TrimSpace(id) == "" {
		return domain.Identity{}, domain.ErrIdentityRequired
	}
	var ident domain.Identity
	err := s.deps.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := fn(ctx, id); err != nil {
			return err
		}
		var err error
		ident, err = s.deps.Trust.Identity(ctx, id)
		return err
	})
	if err != nil {
		return domain.Identity{}, err
	}
	s.deps.Logger.Info("identity updated", "id", id, "certified", ident.Certified, "by", caller)
	return ident, nil
}

// Verify marks id as a verified seller on the caller's authority. The caller
// must be certified.
func (s *IdentityService) Verify(ctx context.Context, caller, id string) (domain.Identity, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Identity{}, domain.ErrIdentityRequired
	}
	var ident domain.Identity
	err := s.deps.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.deps.Trust.Verify(ctx, id, caller); err != nil {
			return err
		}
		var err error
		ident, err = s.deps.Trust.Identity(ctx, id)
		return err
	})
	if err != nil {
		return domain.Identity{}, err
	}
	s.deps.Logger.Info("seller verified", "id", id, "verifier", caller)
	return ident, nil
}

func (s *IdentityService) Identity(ctx context.Context, id string) (domain.Identity, error) {
	return s.deps.Trust.Identity(ctx, id)
}

// FundsService is the administrative currency faucet.
type FundsService struct {
	deps   Deps
	policy Policy
}

func NewFundsService(deps Deps, policy Policy) *FundsService {
	return &FundsService{deps: deps.withDefaults(), policy: policy}
}

// Fund creates amount currency in account. It is the only operation that
// changes the total amount of currency.
func (s *FundsService) Fund(ctx context.Context, caller, account string, amount int64) (int64, error) {
	if !s.policy.isAdmin(caller) {
		return 0, domain.ErrNotAdmin
	}
	if strings.TrimSpace(account) == "" {
		return 0, domain.ErrIdentityRequired
	}
	var balance int64
	err := s.deps.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.deps.Vault.Fund(ctx, account, amount); err != nil {
			return err
		}
		var err error
		balance, err = s.deps.Vault.Balance(ctx, account)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.deps.Logger.Info("account funded", "account", account, "amount", amount, "by", caller)
	return balance, nil
}

func (s *FundsService) Balance(ctx context.Context, account string) (int64, error) {
	return s.deps.Vault.Balance(ctx, account)
}
