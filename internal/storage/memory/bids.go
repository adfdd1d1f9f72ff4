package memory

import (
	"context"
	"sort"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

type BidRepository struct {
	store *Store
}

func NewBidRepository(store *Store) *BidRepository {
	return &BidRepository{store: store}
}

func (r *BidRepository) CreateBid(ctx context.Context, bid domain.Bid) (domain.Bid, error) {
	err := r.store.do(ctx, func(st *state, t *tx) error {
		key := bidKey{eventID: bid.EventID, bidder: bid.Bidder}
		if existing, ok := st.bids[key]; ok && existing.Active {
			return domain.ErrBidAlreadyPlaced
		}
		setValue(t, &st.nextSeq, st.nextSeq+1)
		bid.Seq = st.nextSeq
		bid.Active = true
		setKey(t, st.bids, key, bid)
		order := append(append([]string(nil), st.bidOrder[bid.EventID]...), bid.Bidder)
		setKey(t, st.bidOrder, bid.EventID, order)
		return nil
	})
	if err != nil {
		return domain.Bid{}, err
	}
	return bid, nil
}

func (r *BidRepository) GetActiveBid(ctx context.Context, eventID int64, bidder string) (domain.Bid, error) {
	var bid domain.Bid
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		b, ok := st.bids[bidKey{eventID: eventID, bidder: bidder}]
		if !ok || !b.Active {
			return domain.ErrBidNotFound
		}
		bid = b
		return nil
	})
	return bid, err
}

func (r *BidRepository) UpdateBid(ctx context.Context, bid domain.Bid) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		key := bidKey{eventID: bid.EventID, bidder: bid.Bidder}
		if _, ok := st.bids[key]; !ok {
			return domain.ErrBidNotFound
		}
		setKey(t, st.bids, key, bid)
		return nil
	})
}

func (r *BidRepository) ListActiveBids(ctx context.Context, eventID int64) ([]domain.Bid, error) {
	var out []domain.Bid
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		seen := make(map[string]bool)
		for _, bidder := range st.bidOrder[eventID] {
			if seen[bidder] {
				continue
			}
			seen[bidder] = true
			if b, ok := st.bids[bidKey{eventID: eventID, bidder: bidder}]; ok && b.Active {
				out = append(out, b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, err
}
