package memory

import (
	"context"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

type ListingRepository struct {
	store *Store
}

func NewListingRepository(store *Store) *ListingRepository {
	return &ListingRepository{store: store}
}

func (r *ListingRepository) CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	err := r.store.do(ctx, func(st *state, t *tx) error {
		setValue(t, &st.nextListingID, st.nextListingID+1)
		l.ID = st.nextListingID
		setKey(t, st.listings, l.ID, l)
		setValue(t, &st.listingOrder, append(st.listingOrder[:len(st.listingOrder):len(st.listingOrder)], l.ID))
		return nil
	})
	if err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (r *ListingRepository) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	var l domain.Listing
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		found, ok := st.listings[id]
		if !ok {
			return domain.ErrListingNotFound
		}
		l = found
		return nil
	})
	return l, err
}

func (r *ListingRepository) UpdateListing(ctx context.Context, l domain.Listing) error {
	return r.store.do(ctx, func(st *state, t *tx) error {
		if _, ok := st.listings[l.ID]; !ok {
			return domain.ErrListingNotFound
		}
		setKey(t, st.listings, l.ID, l)
		return nil
	})
}

func (r *ListingRepository) ListListings(ctx context.Context) ([]domain.Listing, error) {
	var out []domain.Listing
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		out = make([]domain.Listing, 0, len(st.listingOrder))
		for _, id := range st.listingOrder {
			out = append(out, st.listings[id])
		}
		return nil
	})
	return out, err
}

func (r *ListingRepository) ActiveSupply(ctx context.Context) (int64, error) {
	var total int64
	err := r.store.do(ctx, func(st *state, _ *tx) error {
		for _, id := range st.listingOrder {
			if l := st.listings[id]; l.Active {
				total += l.Remaining
			}
		}
		return nil
	})
	return total, err
}
