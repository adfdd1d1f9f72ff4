package app

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// CreditService sells credits for currency at a fixed unit price and buys
// them back out of the same reserve.
type CreditService struct {
	deps   Deps
	policy Policy
}

func NewCreditService(deps Deps, policy Policy) *CreditService {
	return &CreditService{deps: deps.withDefaults(), policy: policy}
}

type CreditPurchase struct {
	Credits int64
	Paid    int64
	Change  int64
}

// BuyCredits mints value/CreditUnitPrice credits to the caller. Only the
// whole-credit part of value is taken.
func (s *CreditService) BuyCredits(ctx context.Context, caller string, value int64) (CreditPurchase, error) {
	if s.policy.CreditUnitPrice <= 0 || value < s.policy.CreditUnitPrice {
		return CreditPurchase{}, domain.ErrValueTooSmall
	}
	credits := value / s.policy.CreditUnitPrice
	paid := credits * s.policy.CreditUnitPrice

	err := s.deps.run(ctx, func(ctx context.Context, _ *outbox) error {
		if err := s.deps.Vault.Transfer(ctx, caller, domain.AccountCreditReserve, paid); err != nil {
			return err
		}
		return s.deps.Credits.Mint(ctx, domain.PlatformIdentity, caller, credits)
	})
	if err != nil {
		return CreditPurchase{}, err
	}

	s.deps.Logger.Info("credits bought", "buyer", caller, "credits", credits, "paid", paid)
	return CreditPurchase{Credits: credits, Paid: paid, Change: value - paid}, nil
}

// RedeemCredits burns amount credits and pays their unit price back.
func (s *CreditService) RedeemCredits(ctx context.Context, caller string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	payout, err := product(amount, s.policy.CreditUnitPrice)
	if err != nil {
		return 0, err
	}

	err = s.deps.run(ctx, func(ctx context.Context, _ *outbox) error {
		if err := s.deps.Credits.Burn(ctx, domain.PlatformIdentity, caller, amount); err != nil {
			return err
		}
		reserve, err := s.deps.Vault.Balance(ctx, domain.AccountCreditReserve)
		if err != nil {
			return err
		}
		if reserve < payout {
			return domain.ErrInsufficientReserve
		}
		return s.deps.Vault.Transfer(ctx, domain.AccountCreditReserve, caller, payout)
	})
	if err != nil {
		return 0, err
	}
	return payout, nil
}

func (s *CreditService) Approve(ctx context.Context, caller, spender string, amount int64) error {
	return s.deps.Store.WithTx(ctx, func(ctx context.Context) error {
		return s.deps.Credits.Approve(ctx, caller, spender, amount)
	})
}

func (s *CreditService) Transfer(ctx context.Context, caller, to string, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.deps.Store.WithTx(ctx, func(ctx context.Context) error {
		return s.deps.Credits.Transfer(ctx, caller, to, amount)
	})
}

type CreditAccount struct {
	ID      string
	Balance int64
	// Allowance is what the platform may pull from this account for listings.
	Allowance int64
}

func (s *CreditService) Account(ctx context.Context, id string) (CreditAccount, error) {
	var acct CreditAccount
	err := s.deps.Store.WithTx(ctx, func(ctx context.Context) error {
		balance, err := s.deps.Credits.BalanceOf(ctx, id)
		if err != nil {
			return err
		}
		allowance, err := s.deps.Credits.Allowance(ctx, id, domain.PlatformIdentity)
		if err != nil {
			return err
		}
		acct = CreditAccount{ID: id, Balance: balance, Allowance: allowance}
		return nil
	})
	return acct, err
}

func (s *CreditService) TotalSupply(ctx context.Context) (int64, error) {
	return s.deps.Credits.TotalSupply(ctx)
}
