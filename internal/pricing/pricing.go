// Package pricing computes the order book's load-sensitive marginal price.
package pricing

import "github.com/cimillas/ticket-exchange/internal/domain"

// Schedule is the price curve: Base at or below 1% of listed supply, plus
// Increment for every further whole percent.
type Schedule struct {
	Base      int64
	Increment int64
}

// PercentOfPool is floor(quantity*100/supply), never below 1.
func PercentOfPool(quantity, supply int64) int64 {
	if supply <= 0 {
		return 1
	}
	pct := quantity * 100 / supply
	if pct < 1 {
		return 1
	}
	return pct
}

// MarginalPrice returns the per-unit price for buying quantity units out of
// supply currently listed units.
func (s Schedule) MarginalPrice(quantity, supply int64) (int64, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	if supply <= 0 {
		return 0, domain.ErrNoSupply
	}
	if quantity > supply {
		return 0, domain.ErrInsufficientSupply
	}
	return s.Base + (PercentOfPool(quantity, supply)-1)*s.Increment, nil
}

// Cost is quantity units at the marginal price.
func (s Schedule) Cost(quantity, supply int64) (int64, error) {
	price, err := s.MarginalPrice(quantity, supply)
	if err != nil {
		return 0, err
	}
	return price * quantity, nil
}
