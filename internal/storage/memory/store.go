package memory

import (
	"context"
	"sync"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

type bidKey struct {
	eventID int64
	bidder  string
}

type allowanceKey struct {
	owner   string
	spender string
}

type state struct {
	events      map[int64]domain.Event
	nextEventID int64
	purchases   map[int64]domain.Purchase
	pools       map[int64][]int64

	bids     map[bidKey]domain.Bid
	bidOrder map[int64][]string
	nextSeq  int64

	tickets      map[int64]domain.Ticket
	nextTicketID int64

	listings      map[int64]domain.Listing
	listingOrder  []int64
	nextListingID int64

	balances map[string]int64

	credits      map[string]int64
	allowances   map[allowanceKey]int64
	minters      map[string]bool
	creditSupply int64

	identities map[string]domain.Identity
}

// Store is the shared in-memory state behind the repositories.
type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: &state{
		events:     make(map[int64]domain.Event),
		purchases:  make(map[int64]domain.Purchase),
		pools:      make(map[int64][]int64),
		bids:       make(map[bidKey]domain.Bid),
		bidOrder:   make(map[int64][]string),
		tickets:    make(map[int64]domain.Ticket),
		listings:   make(map[int64]domain.Listing),
		balances:   make(map[string]int64),
		credits:    make(map[string]int64),
		allowances: make(map[allowanceKey]int64),
		minters:    make(map[string]bool),
		identities: make(map[string]domain.Identity),
	}}
}

type txKey struct{}

type tx struct {
	store *Store
	undo  []func()
}

func (t *tx) record(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// WithTx runs fn with the store locked. Nested calls join the outer unit.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t := s.txFromContext(ctx); t != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s}
	txCtx := context.WithValue(ctx, txKey{}, t)
	defer func() {
		if r := recover(); r != nil {
			t.rollback()
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		t.rollback()
		return err
	}
	return nil
}

func (s *Store) txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	if t == nil || t.store != s {
		return nil
	}
	return t
}

// do runs fn against the state, joining the caller's transaction if there is one.
func (s *Store) do(ctx context.Context, fn func(st *state, t *tx) error) error {
	if t := s.txFromContext(ctx); t != nil {
		return fn(s.st, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st, nil)
}

func setKey[K comparable, V any](t *tx, m map[K]V, k K, v V) {
	prev, existed := m[k]
	t.record(func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

func deleteKey[K comparable, V any](t *tx, m map[K]V, k K) {
	prev, existed := m[k]
	if !existed {
		return
	}
	t.record(func() { m[k] = prev })
	delete(m, k)
}

func setValue[V any](t *tx, ptr *V, v V) {
	prev := *ptr
	t.record(func() { *ptr = prev })
	*ptr = v
}

// addBalance moves a signed delta into a balance map, refusing to go negative.
func addBalance(t *tx, m map[string]int64, key string, delta int64, insufficient error) error {
	next := m[key] + delta
	if next < 0 {
		return insufficient
	}
	setKey(t, m, key, next)
	return nil
}
