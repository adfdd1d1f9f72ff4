package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/cimillas/ticket-exchange/internal/clock"
	"github.com/cimillas/ticket-exchange/internal/domain"
	"github.com/cimillas/ticket-exchange/internal/pricing"
	"github.com/cimillas/ticket-exchange/internal/settlement"
)

// Deps are the collaborators shared by every marketplace service. Services
// built from one Deps value by NewMarketplace publish in commit order.
type Deps struct {
	Store     TxRunner
	Events    EventRepository
	Bids      BidRepository
	Listings  ListingRepository
	Vault     Vault
	Credits   CreditLedger
	Tickets   TicketRegistry
	Trust     TrustRegistry
	Publisher Publisher
	Clock     clock.Clock
	Logger    *slog.Logger

	order *commitOrder
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.NewSystem()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.order == nil {
		d.order = newCommitOrder()
	}
	return d
}

// Policy holds the marketplace's fixed economic parameters.
type Policy struct {
	BulkLimit int
	// DepositUnit scales the (capacity*price)/2 listing deposit.
	DepositUnit            int64
	CommissionBPS          int64
	OrderBookCommissionBPS int64
	Pricing                pricing.Schedule
	// CreditUnitPrice is the currency paid per credit bought from the platform.
	CreditUnitPrice int64
	Admins          []string
}

const (
	DefaultBulkLimit              = 4
	DefaultDepositUnit            = 50000
	DefaultCommissionBPS          = 500
	DefaultOrderBookCommissionBPS = 1000
	DefaultBasePrice              = 50000
	DefaultPriceIncrement         = 1000
	DefaultCreditUnitPrice        = 50000
)

func DefaultPolicy() Policy {
	return Policy{
		BulkLimit:              DefaultBulkLimit,
		DepositUnit:            DefaultDepositUnit,
		CommissionBPS:          DefaultCommissionBPS,
		OrderBookCommissionBPS: DefaultOrderBookCommissionBPS,
		Pricing:                pricing.Schedule{Base: DefaultBasePrice, Increment: DefaultPriceIncrement},
		CreditUnitPrice:        DefaultCreditUnitPrice,
	}
}

func (p Policy) isAdmin(id string) bool {
	for _, admin := range p.Admins {
		if admin == id {
			return true
		}
	}
	return false
}

// product multiplies a quantity by a unit amount, rejecting results that do
// not fit in an int64.
func product(quantity, unit int64) (int64, error) {
	v, err := settlement.Mul(quantity, unit)
	if err != nil {
		return 0, domain.ErrAmountTooLarge
	}
	return v, nil
}

// outbox collects notifications inside a transaction; they are published
// only once the transaction has committed.
type outbox struct {
	clock clock.Clock
	items []domain.Notification
}

func (o *outbox) add(n domain.Notification) {
	n.ID = uuid.NewString()
	n.At = o.clock.Now()
	o.items = append(o.items, n)
}

// commitOrder hands out publication turns. A turn is taken inside the
// transaction, so turns follow commit order even though publishing happens
// after the store is released.
type commitOrder struct {
	mu   sync.Mutex
	cond *sync.Cond
	next uint64
	turn uint64
}

func newCommitOrder() *commitOrder {
	o := &commitOrder{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

func (o *commitOrder) take() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	t := o.next
	o.next++
	return t
}

// await blocks until every earlier turn is done.
func (o *commitOrder) await(t uint64) {
	o.mu.Lock()
	for o.turn != t {
		o.cond.Wait()
	}
	o.mu.Unlock()
}

func (o *commitOrder) done() {
	o.mu.Lock()
	o.turn++
	o.cond.Broadcast()
	o.mu.Unlock()
}

// run executes fn atomically and publishes what it emitted, after every
// operation that committed before it has published.
func (d Deps) run(ctx context.Context, fn func(ctx context.Context, box *outbox) error) error {
	box := &outbox{clock: d.Clock}
	var (
		turn   uint64
		queued bool
	)
	err := d.Store.WithTx(ctx, func(txCtx context.Context) error {
		box.items = box.items[:0]
		if err := fn(txCtx, box); err != nil {
			return err
		}
		if len(box.items) > 0 && d.Publisher != nil && !queued {
			turn, queued = d.order.take(), true
		}
		return nil
	})
	if !queued {
		return err
	}
	d.order.await(turn)
	defer d.order.done()
	if err != nil || len(box.items) == 0 {
		return err
	}
	if err := d.Publisher.Publish(ctx, box.items); err != nil {
		d.Logger.Warn("publish notifications failed",
			"count", len(box.items),
			"error", err,
		)
	}
	return nil
}
