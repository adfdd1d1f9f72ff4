// Package settlement holds the integer arithmetic behind deposits, revenue
// splits and commissions. Every split is exact: the parts always add back up
// to the amount that was split.
package settlement

import (
	"errors"
	"math"
	"math/bits"
)

// ErrOverflow reports a product that does not fit in an int64.
var ErrOverflow = errors.New("amount overflows int64")

// BasisPoints is one hundred percent expressed in basis points.
const BasisPoints = 10000

// Split divides amount into a payout and a commission of commissionBPS basis
// points. The commission is rounded down; the payout takes the remainder.
func Split(amount, commissionBPS int64) (payout, commission int64) {
	if amount <= 0 {
		return 0, 0
	}
	commission = amount * commissionBPS / BasisPoints
	return amount - commission, commission
}

// Mul multiplies two non-negative amounts, failing with ErrOverflow instead
// of wrapping.
func Mul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrOverflow
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(lo), nil
}

// RequiredDeposit is (capacity*price)/2 scaled by the deposit unit.
func RequiredDeposit(capacity int, price, unit int64) (int64, error) {
	gross, err := Mul(int64(capacity), price)
	if err != nil {
		return 0, err
	}
	return Mul(gross/2, unit)
}

// RefundAmount is what a returned ticket pays back: half the ticket price.
func RefundAmount(price int64) int64 {
	return price / 2
}

// Outcome is the final distribution of an event's escrowed currency.
type Outcome struct {
	SellerPayout int64
	Commission   int64
	DepositBack  int64
	Forfeited    int64
	// Refunds are purchase refunds keyed by buyer.
	Refunds map[string]int64
}

// Success settles an event that took place: the seller receives revenue minus
// commission and the full deposit.
func Success(revenue, deposit, commissionBPS int64) Outcome {
	payout, commission := Split(revenue, commissionBPS)
	return Outcome{
		SellerPayout: payout,
		Commission:   commission,
		DepositBack:  deposit,
	}
}

// Payment is one outstanding ticket purchase.
type Payment struct {
	Buyer string
	Paid  int64
}

// Failure settles a cancelled event: every outstanding payment is refunded in
// full, the deposit and whatever revenue is left go to the platform.
func Failure(revenue, deposit int64, payments []Payment) Outcome {
	refunds := make(map[string]int64)
	var refunded int64
	for _, p := range payments {
		refunds[p.Buyer] += p.Paid
		refunded += p.Paid
	}
	leftover := revenue - refunded
	if leftover < 0 {
		leftover = 0
	}
	return Outcome{
		Commission: leftover,
		Forfeited:  deposit,
		Refunds:    refunds,
	}
}
