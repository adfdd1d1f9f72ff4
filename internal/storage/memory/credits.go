package memory

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// CreditLedger is the fungible credit ledger with an explicit minter allowlist.
type CreditLedger struct {
	store *Store
}

func NewCreditLedger(store *Store) *CreditLedger {
	return &CreditLedger{store: store}
}

func (l *CreditLedger) BalanceOf(ctx context.Context, id string) (int64, error) {
	var bal int64
	err := l.store.do(ctx, func(st *state, _ *tx) error {
		bal = st.credits[id]
		return nil
	})
	return bal, err
}

func (l *CreditLedger) TotalSupply(ctx context.Context) (int64, error) {
	var supply int64
	err := l.store.do(ctx, func(st *state, _ *tx) error {
		supply = st.creditSupply
		return nil
	})
	return supply, err
}

func (l *CreditLedger) Mint(ctx context.Context, minter, to string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	return l.store.do(ctx, func(st *state, t *tx) error {
		if !st.minters[minter] {
			return domain.ErrNotMinter
		}
		if amount == 0 {
			return nil
		}
		setKey(t, st.credits, to, st.credits[to]+amount)
		setValue(t, &st.creditSupply, st.creditSupply+amount)
		return nil
	})
}

func (l *CreditLedger) Burn(ctx context.Context, minter, from string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	return l.store.do(ctx, func(st *state, t *tx) error {
		if !st.minters[minter] {
			return domain.ErrNotMinter
		}
		if amount == 0 {
			return nil
		}
		if err := addBalance(t, st.credits, from, -amount, domain.ErrInsufficientCredits); err != nil {
			return err
		}
		setValue(t, &st.creditSupply, st.creditSupply-amount)
		return nil
	})
}

func (l *CreditLedger) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	return l.store.do(ctx, func(st *state, t *tx) error {
		return moveCredits(st, t, from, to, amount)
	})
}

// TransferFrom moves credits on behalf of from, spending spender's allowance.
func (l *CreditLedger) TransferFrom(ctx context.Context, spender, from, to string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	return l.store.do(ctx, func(st *state, t *tx) error {
		key := allowanceKey{owner: from, spender: spender}
		if st.allowances[key] < amount {
			return domain.ErrInsufficientAllowance
		}
		if err := moveCredits(st, t, from, to, amount); err != nil {
			return err
		}
		setKey(t, st.allowances, key, st.allowances[key]-amount)
		return nil
	})
}

func (l *CreditLedger) Approve(ctx context.Context, owner, spender string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	return l.store.do(ctx, func(st *state, t *tx) error {
		setKey(t, st.allowances, allowanceKey{owner: owner, spender: spender}, amount)
		return nil
	})
}

func (l *CreditLedger) Allowance(ctx context.Context, owner, spender string) (int64, error) {
	var amount int64
	err := l.store.do(ctx, func(st *state, _ *tx) error {
		amount = st.allowances[allowanceKey{owner: owner, spender: spender}]
		return nil
	})
	return amount, err
}

func (l *CreditLedger) AddMinter(ctx context.Context, id string) error {
	return l.store.do(ctx, func(st *state, t *tx) error {
		setKey(t, st.minters, id, true)
		return nil
	})
}

func (l *CreditLedger) IsMinter(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := l.store.do(ctx, func(st *state, _ *tx) error {
		ok = st.minters[id]
		return nil
	})
	return ok, err
}

func moveCredits(st *state, t *tx, from, to string, amount int64) error {
	if amount == 0 || from == to {
		if st.credits[from] < amount {
			return domain.ErrInsufficientCredits
		}
		return nil
	}
	if err := addBalance(t, st.credits, from, -amount, domain.ErrInsufficientCredits); err != nil {
		return err
	}
	setKey(t, st.credits, to, st.credits[to]+amount)
	return nil
}
