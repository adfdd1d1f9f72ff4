package settlement

import (
	"errors"
	"math"
	"testing"
)

func TestSplit_Conserves(t *testing.T) {
	t.Parallel()

	for amount := int64(0); amount < 2000; amount += 7 {
		for _, bps := range []int64{0, 500, 1000, 3333, 10000} {
			payout, commission := Split(amount, bps)
			if payout+commission != amount {
				t.Fatalf("split(%d, %d) = %d + %d, want sum %d", amount, bps, payout, commission, amount)
			}
			if commission < 0 || payout < 0 {
				t.Fatalf("split(%d, %d) produced negative part", amount, bps)
			}
		}
	}
}

func TestSuccess_RevenueSplit(t *testing.T) {
	t.Parallel()

	const price = 65
	revenue := int64(4 * price)
	out := Success(revenue, 8100000, 500)

	if out.Commission != revenue*5/100 {
		t.Fatalf("expected commission %d, got %d", revenue*5/100, out.Commission)
	}
	if out.SellerPayout != revenue-revenue*5/100 {
		t.Fatalf("expected payout %d, got %d", revenue-revenue*5/100, out.SellerPayout)
	}
	if out.DepositBack != 8100000 {
		t.Fatalf("expected deposit back, got %d", out.DepositBack)
	}
}

func TestFailure_RefundsPayments(t *testing.T) {
	t.Parallel()

	out := Failure(250, 1000, []Payment{
		{Buyer: "a", Paid: 100},
		{Buyer: "b", Paid: 100},
		{Buyer: "a", Paid: 20},
	})

	if out.Refunds["a"] != 120 || out.Refunds["b"] != 100 {
		t.Fatalf("unexpected refunds: %+v", out.Refunds)
	}
	if out.Commission != 30 {
		t.Fatalf("expected leftover revenue 30 to platform, got %d", out.Commission)
	}
	if out.Forfeited != 1000 {
		t.Fatalf("expected deposit forfeited, got %d", out.Forfeited)
	}
}

func TestRequiredDeposit(t *testing.T) {
	t.Parallel()

	// 5 tickets at 65: (325/2)*50000 with integer division first.
	got, err := RequiredDeposit(5, 65, 50000)
	if err != nil {
		t.Fatalf("required deposit: %v", err)
	}
	if got != 162*50000 {
		t.Fatalf("expected %d, got %d", 162*50000, got)
	}
}

func TestRequiredDeposit_Overflow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		capacity int
		price    int64
		unit     int64
	}{
		{name: "scaled by unit", capacity: 1, price: 1 << 50, unit: 50000},
		{name: "capacity times price", capacity: 1 << 20, price: 1 << 62, unit: 1},
		{name: "max price", capacity: 2, price: math.MaxInt64, unit: 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := RequiredDeposit(tc.capacity, tc.price, tc.unit)
			if !errors.Is(err, ErrOverflow) {
				t.Fatalf("expected ErrOverflow, got %d, %v", got, err)
			}
		})
	}
}

func TestMul(t *testing.T) {
	t.Parallel()

	if got, err := Mul(4, 1<<60); err != nil || got != 1<<62 {
		t.Fatalf("Mul(4, 1<<60) = %d, %v", got, err)
	}
	if got, err := Mul(math.MaxInt64, 1); err != nil || got != math.MaxInt64 {
		t.Fatalf("Mul(max, 1) = %d, %v", got, err)
	}
	if _, err := Mul(1<<32, 1<<31); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow at 2^63, got %v", err)
	}
	if _, err := Mul(-1, 5); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected negative operand rejected, got %v", err)
	}
}
