package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cimillas/ticket-exchange/internal/clock"
	"github.com/cimillas/ticket-exchange/internal/domain"
	"github.com/cimillas/ticket-exchange/internal/settlement"
	"github.com/cimillas/ticket-exchange/internal/storage/memory"
)

const (
	testAdmin    = "admin"
	testVerifier = "verifier"
	testSeller   = "seller"
	testPrice    = int64(100)
)

type recordingPublisher struct {
	mu  sync.Mutex
	got []domain.Notification
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, notifications []domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, notifications...)
	return p.err
}

func (p *recordingPublisher) kinds() []domain.NotificationKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(p.got))
	for _, n := range p.got {
		out = append(out, n.Kind)
	}
	return out
}

type harness struct {
	t     *testing.T
	ctx   context.Context
	clock *clock.Manual
	store *memory.Store
	deps  Deps
	pub   *recordingPublisher
	m     *Marketplace
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, opts ...func(*Policy)) *harness {
	t.Helper()

	store := memory.NewStore()
	pub := &recordingPublisher{}
	clk := clock.NewManual(testNow)
	deps := Deps{
		Store:     store,
		Events:    memory.NewEventRepository(store),
		Bids:      memory.NewBidRepository(store),
		Listings:  memory.NewListingRepository(store),
		Vault:     memory.NewVault(store),
		Credits:   memory.NewCreditLedger(store),
		Tickets:   memory.NewTicketRegistry(store),
		Trust:     memory.NewTrustRegistry(store),
		Publisher: pub,
		Clock:     clk,
	}
	policy := DefaultPolicy()
	policy.Admins = []string{testAdmin}
	for _, opt := range opts {
		opt(&policy)
	}

	ctx := context.Background()
	m, err := NewMarketplace(ctx, deps, policy)
	require.NoError(t, err)

	h := &harness{t: t, ctx: ctx, clock: clk, store: store, deps: deps, pub: pub, m: m}
	_, err = m.Identity.Certify(ctx, testAdmin, testVerifier)
	require.NoError(t, err)
	h.verify(testSeller)
	return h
}

func (h *harness) verify(id string) {
	h.t.Helper()
	_, err := h.m.Identity.Verify(h.ctx, testVerifier, id)
	require.NoError(h.t, err)
}

func (h *harness) fund(id string, amount int64) {
	h.t.Helper()
	_, err := h.m.Funds.Fund(h.ctx, testAdmin, id, amount)
	require.NoError(h.t, err)
}

func (h *harness) credits(id string, n int64) {
	h.t.Helper()
	h.fund(id, n*DefaultCreditUnitPrice)
	_, err := h.m.Credits.BuyCredits(h.ctx, id, n*DefaultCreditUnitPrice)
	require.NoError(h.t, err)
}

func (h *harness) balance(id string) int64 {
	h.t.Helper()
	bal, err := h.deps.Vault.Balance(h.ctx, id)
	require.NoError(h.t, err)
	return bal
}

func (h *harness) creditBalance(id string) int64 {
	h.t.Helper()
	bal, err := h.deps.Credits.BalanceOf(h.ctx, id)
	require.NoError(h.t, err)
	return bal
}

func (h *harness) total() int64 {
	h.t.Helper()
	total, err := h.deps.Vault.Total(h.ctx)
	require.NoError(h.t, err)
	return total
}

func requiredDeposit(t *testing.T, capacity int) int64 {
	t.Helper()
	deposit, err := settlement.RequiredDeposit(capacity, testPrice, DefaultDepositUnit)
	require.NoError(t, err)
	return deposit
}

func (h *harness) listEvent(capacity int) domain.Event {
	h.t.Helper()
	deposit := requiredDeposit(h.t, capacity)
	h.fund(testSeller, deposit)
	event, err := h.m.Events.ListEvent(h.ctx, testSeller, ListEventInput{
		Title:    "Spring Gala",
		Venue:    "Main Hall",
		StartsAt: testNow.Add(48 * time.Hour),
		Capacity: capacity,
		Price:    testPrice,
	}, deposit)
	require.NoError(h.t, err)
	return event
}

func (h *harness) openEvent(capacity int) domain.Event {
	h.t.Helper()
	event := h.listEvent(capacity)
	_, err := h.m.Events.OpenBidding(h.ctx, testSeller, event.ID)
	require.NoError(h.t, err)
	return event
}

func (h *harness) bid(bidder string, eventID int64, quantity int, stake int64) domain.Bid {
	h.t.Helper()
	value := int64(quantity) * testPrice
	h.fund(bidder, value)
	if stake > 0 {
		h.credits(bidder, stake)
	}
	bid, err := h.m.Bids.SubmitBid(h.ctx, bidder, eventID, quantity, stake, value)
	require.NoError(h.t, err)
	return bid
}

// closedEvent runs an event through bidding with no bids, leaving every
// ticket for the fixed-price window.
func (h *harness) closedEvent(capacity int) domain.Event {
	h.t.Helper()
	event := h.openEvent(capacity)
	res, err := h.m.Events.CloseBidding(h.ctx, testSeller, event.ID)
	require.NoError(h.t, err)
	return res.Event
}

func (h *harness) buy(buyer string, eventID int64, quantity int) PurchaseResult {
	h.t.Helper()
	cost := int64(quantity) * testPrice
	h.fund(buyer, cost)
	res, err := h.m.Sales.BuyTickets(h.ctx, buyer, eventID, quantity, cost)
	require.NoError(h.t, err)
	return res
}

func (h *harness) endEvent(eventID int64) {
	h.t.Helper()
	h.clock.Advance(72 * time.Hour)
	_, err := h.m.Events.EndEvent(h.ctx, testSeller, eventID)
	require.NoError(h.t, err)
}

func TestNewMarketplace_RegistersPlatformMinter(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ok, err := h.deps.Credits.IsMinter(h.ctx, domain.PlatformIdentity)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMarketplace_FullLifecycleSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	event := h.openEvent(5)
	h.bid("alice", event.ID, 2, 3)
	h.bid("bob", event.ID, 1, 1)

	closed, err := h.m.Events.CloseBidding(h.ctx, testSeller, event.ID)
	require.NoError(t, err)
	require.Equal(t, domain.EventStateBiddingClosed, closed.Event.State)
	require.Equal(t, 3, closed.Event.TicketsSold)

	h.buy("carol", event.ID, 2)
	h.endEvent(event.ID)

	before := h.total()
	res, err := h.m.Events.ConfirmEvent(h.ctx, testAdmin, event.ID, true)
	require.NoError(t, err)
	require.Equal(t, domain.EventStateOwnerEndedSuccess, res.Event.State)
	require.True(t, res.Event.Rewarded)
	require.Equal(t, before, h.total())

	require.Equal(t, map[string]int64{"alice": 2, "bob": 1, "carol": 2}, res.Rewards)
	require.Equal(t, int64(2), h.creditBalance("alice"))
	require.Equal(t, int64(2), h.creditBalance("carol"))

	require.Contains(t, h.pub.kinds(), domain.NotificationOwnerEndedSuccess)
	require.Contains(t, h.pub.kinds(), domain.NotificationCreditsRewarded)
}

func TestMarketplace_RevenueSplit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	event := h.closedEvent(4)
	h.buy("alice", event.ID, 4)
	h.endEvent(event.ID)

	deposit := requiredDeposit(t, 4)
	require.Equal(t, int64(0), h.balance(testSeller))

	res, err := h.m.Events.ConfirmEvent(h.ctx, testAdmin, event.ID, true)
	require.NoError(t, err)

	revenue := 4 * testPrice
	require.Equal(t, revenue*95/100, res.SellerPayout)
	require.Equal(t, revenue*5/100, res.Commission)
	require.Equal(t, res.SellerPayout+res.Commission, revenue)
	require.Equal(t, deposit+revenue*95/100, h.balance(testSeller))
	require.Equal(t, revenue*5/100, h.balance(domain.AccountTreasury))
	require.Equal(t, int64(0), h.balance(domain.RevenueAccount(event.ID)))
	require.Equal(t, int64(0), h.balance(domain.DepositAccount(event.ID)))
}

func TestMarketplace_FailureRefundsBuyers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	event := h.closedEvent(4)
	h.buy("alice", event.ID, 2)
	bob := h.buy("bob", event.ID, 1)

	// bob returns the ticket and gets half back; the other half stays with the event.
	_, err := h.m.Sales.TransferTicket(h.ctx, "bob", bob.TicketIDs[0], domain.PlatformIdentity)
	require.NoError(t, err)
	_, err = h.m.Sales.RefundTicket(h.ctx, "bob", bob.TicketIDs[0])
	require.NoError(t, err)
	h.endEvent(event.ID)

	deposit := requiredDeposit(t, 4)
	res, err := h.m.Events.ConfirmEvent(h.ctx, testAdmin, event.ID, false)
	require.NoError(t, err)
	require.Equal(t, domain.EventStateOwnerEndedFailure, res.Event.State)
	require.False(t, res.Event.Rewarded)

	require.Equal(t, map[string]int64{"alice": 2 * testPrice}, res.Refunds)
	require.Equal(t, 2*testPrice, h.balance("alice"))
	require.Equal(t, testPrice/2, h.balance("bob"))
	require.Equal(t, deposit+testPrice/2, h.balance(domain.AccountTreasury))
	require.Equal(t, int64(0), h.balance(testSeller))
	require.Equal(t, int64(0), h.creditBalance("alice"))
}

func TestEventService_ListEvent(t *testing.T) {
	t.Parallel()

	input := ListEventInput{
		Title:    "Spring Gala",
		Venue:    "Main Hall",
		StartsAt: testNow.Add(24 * time.Hour),
		Capacity: 10,
		Price:    testPrice,
	}
	required := requiredDeposit(t, 10)

	cases := []struct {
		name   string
		caller string
		mutate func(*ListEventInput)
		value  int64
		want   error
	}{
		{name: "unverified seller", caller: "mallory", value: required, want: domain.ErrNotVerifiedSeller},
		{name: "short deposit", caller: testSeller, value: required - 1, want: domain.ErrInsufficientDeposit},
		{name: "past date", caller: testSeller, value: required, mutate: func(in *ListEventInput) { in.StartsAt = testNow.Add(-time.Hour) }, want: domain.ErrEventDateInPast},
		{name: "zero capacity", caller: testSeller, value: required, mutate: func(in *ListEventInput) { in.Capacity = 0 }, want: domain.ErrInvalidCapacity},
		{name: "zero price", caller: testSeller, value: required, mutate: func(in *ListEventInput) { in.Price = 0 }, want: domain.ErrInvalidPrice},
		{name: "blank title", caller: testSeller, value: required, mutate: func(in *ListEventInput) { in.Title = "  " }, want: domain.ErrTitleRequired},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.fund(tc.caller, tc.value)
			in := input
			if tc.mutate != nil {
				tc.mutate(&in)
			}
			_, err := h.m.Events.ListEvent(h.ctx, tc.caller, in, tc.value)
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, tc.value, h.balance(tc.caller))

			events, err := h.m.Events.ListEvents(h.ctx)
			require.NoError(t, err)
			require.Empty(t, events)
		})
	}

	t.Run("exact reason for a short deposit", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		_, err := h.m.Events.ListEvent(h.ctx, testSeller, input, 0)
		require.EqualError(t, err, "insufficient deposits. need deposit minimum (capacity * price)/2 * 50000 to list event")
	})

	t.Run("rejects a deposit that overflows", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		in := input
		in.Capacity = 1
		in.Price = 1 << 50
		_, err := h.m.Events.ListEvent(h.ctx, testSeller, in, 0)
		require.ErrorIs(t, err, domain.ErrAmountTooLarge)
		require.Equal(t, domain.KindValue, domain.KindOf(err))

		events, err := h.m.Events.ListEvents(h.ctx)
		require.NoError(t, err)
		require.Empty(t, events)
		require.Equal(t, int64(0), h.balance(domain.DepositAccount(1)))
	})

	t.Run("escrows the full value as deposit", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.fund(testSeller, required+500)
		event, err := h.m.Events.ListEvent(h.ctx, testSeller, input, required+500)
		require.NoError(t, err)
		require.Equal(t, int64(1), event.ID)
		require.Equal(t, domain.EventStateListed, event.State)
		require.Equal(t, required+500, event.Deposit)
		require.Equal(t, required+500, h.balance(domain.DepositAccount(event.ID)))
		require.Equal(t, int64(0), h.balance(testSeller))
	})
}

func TestEventService_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("only the seller opens bidding", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		event := h.listEvent(2)
		_, err := h.m.Events.OpenBidding(h.ctx, "mallory", event.ID)
		require.ErrorIs(t, err, domain.ErrNotSeller)
	})

	t.Run("repeated transition is a state error", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		event := h.openEvent(2)
		_, err := h.m.Events.OpenBidding(h.ctx, testSeller, event.ID)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		require.Equal(t, domain.KindState, domain.KindOf(err))
	})

	t.Run("unknown event", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		_, err := h.m.Events.OpenBidding(h.ctx, testSeller, 42)
		require.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("seller cannot end before the event starts", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		event := h.closedEvent(2)
		_, err := h.m.Events.EndEvent(h.ctx, testSeller, event.ID)
		require.ErrorIs(t, err, domain.ErrEventNotStarted)

		got, err := h.m.Events.GetEvent(h.ctx, event.ID)
		require.NoError(t, err)
		require.Equal(t, domain.EventStateBiddingClosed, got.State)
	})

	t.Run("seller cannot end while bidding is open", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		event := h.openEvent(2)
		h.clock.Advance(72 * time.Hour)
		_, err := h.m.Events.EndEvent(h.ctx, testSeller, event.ID)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("only admins confirm", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		event := h.closedEvent(2)
		h.endEvent(event.ID)
		_, err := h.m.Events.ConfirmEvent(h.ctx, testSeller, event.ID, true)
		require.ErrorIs(t, err, domain.ErrNotAdmin)
	})

	t.Run("confirm only once", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		event := h.closedEvent(2)
		h.endEvent(event.ID)
		_, err := h.m.Events.ConfirmEvent(h.ctx, testAdmin, event.ID, true)
		require.NoError(t, err)
		_, err = h.m.Events.ConfirmEvent(h.ctx, testAdmin, event.ID, false)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestMarketplace_RollbackLeavesNoTrace(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	event := h.openEvent(3)
	h.credits("alice", 2)

	before := h.pub.kinds()
	// the bid is stored and then the escrow transfer fails: the bid must go too.
	_, err := h.m.Bids.SubmitBid(h.ctx, "alice", event.ID, 1, 2, testPrice)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.Equal(t, int64(0), h.balance("alice"))
	require.Equal(t, int64(2), h.creditBalance("alice"))
	require.Equal(t, int64(0), h.balance(domain.BidEscrowAccount(event.ID)))
	require.Equal(t, before, h.pub.kinds())

	_, err = h.m.Bids.GetBid(h.ctx, event.ID, "alice")
	require.ErrorIs(t, err, domain.ErrBidNotFound)
}

func TestMarketplace_PublishFailureDoesNotUndoCommit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.pub.err = errors.New("broker down")
	event := h.listEvent(2)

	got, err := h.m.Events.GetEvent(h.ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, domain.EventStateListed, got.State)
}
