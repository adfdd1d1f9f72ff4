package app

import (
	"context"
	"fmt"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// Marketplace bundles the services that share one store and policy.
type Marketplace struct {
	Events    *EventService
	Bids      *BidService
	Sales     *SalesService
	OrderBook *OrderBookService
	Credits   *CreditService
	Identity  *IdentityService
	Funds     *FundsService
}

// NewMarketplace wires every service and registers the platform as the
// credit ledger's minter.
func NewMarketplace(ctx context.Context, deps Deps, policy Policy) (*Marketplace, error) {
	deps = deps.withDefaults()
	if err := deps.Store.WithTx(ctx, func(ctx context.Context) error {
		return deps.Credits.AddMinter(ctx, domain.PlatformIdentity)
	}); err != nil {
		return nil, fmt.Errorf("register platform minter: %w", err)
	}
	return &Marketplace{
		Events:    NewEventService(deps, policy),
		Bids:      NewBidService(deps, policy),
		Sales:     NewSalesService(deps, policy),
		OrderBook: NewOrderBookService(deps, policy),
		Credits:   NewCreditService(deps, policy),
		Identity:  NewIdentityService(deps, policy),
		Funds:     NewFundsService(deps, policy),
	}, nil
}
