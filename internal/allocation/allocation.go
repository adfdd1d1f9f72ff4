package allocation

import "sort"

// Bid is the part of a bid that matters for ranking and granting.
type Bid struct {
	Bidder   string
	Quantity int
	Stake    int64
	Seq      int64
}

// Grant is the outcome for a single bid.
type Grant struct {
	Bid     Bid
	Granted int
	// Unmet is the requested quantity that could not be granted.
	Unmet         int
	StakeRefund   int64
	StakeConsumed int64
}

// Order returns the bids in priority order without modifying the input.
func Order(bids []Bid) []Bid {
	ordered := append([]Bid(nil), bids...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Stake != ordered[j].Stake {
			return ordered[i].Stake > ordered[j].Stake
		}
		return ordered[i].Seq < ordered[j].Seq
	})
	return ordered
}

// Resolve grants up to capacity tickets across bids and returns one grant per
// bid in priority order. Bids processed after capacity runs out are granted
// nothing and refunded in full.
func Resolve(bids []Bid, capacity int) []Grant {
	if capacity < 0 {
		capacity = 0
	}
	ordered := Order(bids)
	grants := make([]Grant, 0, len(ordered))
	remaining := capacity
	for _, bid := range ordered {
		granted := bid.Quantity
		if granted > remaining {
			granted = remaining
		}
		if granted < 0 {
			granted = 0
		}
		remaining -= granted

		unmet := bid.Quantity - granted
		refund := StakeRefund(bid.Stake, bid.Quantity, unmet)
		grants = append(grants, Grant{
			Bid:           bid,
			Granted:       granted,
			Unmet:         unmet,
			StakeRefund:   refund,
			StakeConsumed: bid.Stake - refund,
		})
	}
	return grants
}

// StakeRefund is the share of stake attributable to the unmet quantity,
// rounded down so the consumed part absorbs any remainder.
func StakeRefund(stake int64, quantity, unmet int) int64 {
	if quantity <= 0 || unmet <= 0 || stake <= 0 {
		return 0
	}
	if unmet >= quantity {
		return stake
	}
	return stake * int64(unmet) / int64(quantity)
}

// Granted sums the tickets granted across grants.
func Granted(grants []Grant) int {
	total := 0
	for _, g := range grants {
		total += g.Granted
	}
	return total
}
