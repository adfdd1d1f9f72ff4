package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

var errBoom = errors.New("boom")

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	vault := NewVault(store)
	events := NewEventRepository(store)
	require.NoError(t, vault.Fund(ctx, "alice", 100))

	err := store.WithTx(ctx, func(ctx context.Context) error {
		if err := vault.Transfer(ctx, "alice", "bob", 60); err != nil {
			return err
		}
		if _, err := events.CreateEvent(ctx, domain.Event{Title: "gala"}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	bal, err := vault.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)
	bal, err = vault.Balance(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)

	list, err := events.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// the id counter was rolled back too.
	event, err := events.CreateEvent(ctx, domain.Event{Title: "gala"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), event.ID)
}

func TestStore_WithTxRollsBackOnPanic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	vault := NewVault(store)
	require.NoError(t, vault.Fund(ctx, "alice", 100))

	assert.Panics(t, func() {
		_ = store.WithTx(ctx, func(ctx context.Context) error {
			_ = vault.Transfer(ctx, "alice", "bob", 40)
			panic("kaboom")
		})
	})

	bal, err := vault.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	// the lock was released.
	require.NoError(t, vault.Transfer(ctx, "alice", "bob", 1))
}

func TestStore_NestedWithTxJoinsOuter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	vault := NewVault(store)
	require.NoError(t, vault.Fund(ctx, "alice", 100))

	err := store.WithTx(ctx, func(ctx context.Context) error {
		inner := store.WithTx(ctx, func(ctx context.Context) error {
			return vault.Transfer(ctx, "alice", "bob", 30)
		})
		require.NoError(t, inner)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	bal, err := vault.Balance(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}

func TestStore_TransactionsOfOtherStoresAreNotJoined(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, b := NewStore(), NewStore()
	vaultB := NewVault(b)

	err := a.WithTx(ctx, func(ctx context.Context) error {
		return vaultB.Fund(ctx, "alice", 10)
	})
	require.NoError(t, err)

	bal, err := vaultB.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal)
}

func TestStore_ConcurrentTransfersConserveTotal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	vault := NewVault(store)
	require.NoError(t, vault.Fund(ctx, "alice", 1000))
	require.NoError(t, vault.Fund(ctx, "bob", 1000))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.WithTx(ctx, func(ctx context.Context) error {
				return vault.Transfer(ctx, "alice", "bob", 7)
			})
		}()
		go func() {
			defer wg.Done()
			_ = store.WithTx(ctx, func(ctx context.Context) error {
				return vault.Transfer(ctx, "bob", "alice", 5)
			})
		}()
	}
	wg.Wait()

	total, err := vault.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), total)
}
