package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// TrustRepository persists the identity registry. Every write is a single
// statement, so it needs no transaction of its own.
type TrustRepository struct {
	pool *pgxpool.Pool
}

func NewTrustRepository(pool *pgxpool.Pool) *TrustRepository {
	return &TrustRepository{pool: pool}
}

func (r *TrustRepository) Identity(ctx context.Context, id string) (domain.Identity, error) {
	const query = `
SELECT status, verifier, certified
FROM identities
WHERE id = $1`
	ident := domain.Identity{ID: id, Status: domain.TrustStatusUnverified}
	var status string
	err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&status, &ident.Verifier, &ident.Certified)
	if errors.Is(err, pgx.ErrNoRows) {
		return ident, nil
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("get identity: %w", err)
	}
	ident.Status = domain.TrustStatus(status)
	return ident, nil
}

func (r *TrustRepository) IsVerifiedSeller(ctx context.Context, id string) (bool, error) {
	ident, err := r.Identity(ctx, id)
	if err != nil {
		return false, err
	}
	return ident.Status == domain.TrustStatusVerified, nil
}

func (r *TrustRepository) IsCertified(ctx context.Context, id string) (bool, error) {
	ident, err := r.Identity(ctx, id)
	if err != nil {
		return false, err
	}
	return ident.Certified, nil
}

func (r *TrustRepository) Certify(ctx context.Context, id string) error {
	return r.setCertified(ctx, id, true)
}

func (r *TrustRepository) Uncertify(ctx context.Context, id string) error {
	return r.setCertified(ctx, id, false)
}

func (r *TrustRepository) setCertified(ctx context.Context, id string, certified bool) error {
	const stmt = `
INSERT INTO identities (id, certified)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE
SET certified = EXCLUDED.certified, updated_at = NOW()`
	if _, err := conn(ctx, r.pool).Exec(ctx, stmt, id, certified); err != nil {
		return fmt.Errorf("set certified: %w", err)
	}
	return nil
}

// Verify marks id as a verified seller if verifier is certified at the time
// the statement runs.
func (r *TrustRepository) Verify(ctx context.Context, id, verifier string) error {
	const stmt = `
INSERT INTO identities (id, status, verifier)
SELECT $1, 'verified', $2
WHERE EXISTS (SELECT 1 FROM identities WHERE id = $2 AND certified)
ON CONFLICT (id) DO UPDATE
SET status = 'verified', verifier = EXCLUDED.verifier, updated_at = NOW()`
	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, id, verifier)
	if err != nil {
		return fmt.Errorf("verify identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotCertified
	}
	return nil
}
