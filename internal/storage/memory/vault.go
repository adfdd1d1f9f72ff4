package memory

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// Vault keeps currency balances. Only Fund creates currency; everything else
// moves it between accounts.
type Vault struct {
	store *Store
}

func NewVault(store *Store) *Vault {
	return &Vault{store: store}
}

func (v *Vault) Balance(ctx context.Context, account string) (int64, error) {
	var bal int64
	err := v.store.do(ctx, func(st *state, _ *tx) error {
		bal = st.balances[account]
		return nil
	})
	return bal, err
}

func (v *Vault) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	if amount == 0 || from == to {
		return nil
	}
	return v.store.do(ctx, func(st *state, t *tx) error {
		if st.balances[from] < amount {
			return domain.ErrInsufficientFunds
		}
		setKey(t, st.balances, from, st.balances[from]-amount)
		setKey(t, st.balances, to, st.balances[to]+amount)
		return nil
	})
}

func (v *Vault) Fund(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return v.store.do(ctx, func(st *state, t *tx) error {
		return addBalance(t, st.balances, account, amount, domain.ErrInvalidAmount)
	})
}

// Total sums every balance; it only changes through Fund.
func (v *Vault) Total(ctx context.Context) (int64, error) {
	var total int64
	err := v.store.do(ctx, func(st *state, _ *tx) error {
		for _, b := range st.balances {
			total += b
		}
		return nil
	})
	return total, err
}
