package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/ticket-exchange/internal/audit"
	"github.com/cimillas/ticket-exchange/internal/domain"
)

var ErrJournalConflict = errors.New("audit journal sequence already written")

// JournalRepository stores audit journal records.
type JournalRepository struct {
	pool *pgxpool.Pool
}

func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Append writes records in one transaction; a sequence number that already
// exists means another writer extended the chain first.
func (r *JournalRepository) Append(ctx context.Context, records []audit.Record) error {
	const stmt = `
INSERT INTO audit_journal (seq, prev, hash, kind, payload)
VALUES ($1, $2, $3, $4, $5)`
	return withTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		for _, rec := range records {
			_, err := q.Exec(ctx, stmt, int64(rec.Seq), rec.Prev[:], rec.Hash[:], string(rec.Kind), rec.Payload)
			if err != nil {
				if isUniqueViolation(err) {
					return ErrJournalConflict
				}
				return fmt.Errorf("append journal record %d: %w", rec.Seq, err)
			}
		}
		return nil
	})
}

func (r *JournalRepository) Last(ctx context.Context) (audit.Record, bool, error) {
	const query = `
SELECT seq, prev, hash, kind, payload
FROM audit_journal
ORDER BY seq DESC
LIMIT 1`
	rec, err := scanRecord(conn(ctx, r.pool).QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return audit.Record{}, false, nil
	}
	if err != nil {
		return audit.Record{}, false, fmt.Errorf("last journal record: %w", err)
	}
	return rec, true, nil
}

func (r *JournalRepository) Records(ctx context.Context) ([]audit.Record, error) {
	const query = `
SELECT seq, prev, hash, kind, payload
FROM audit_journal
ORDER BY seq ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal record: %w", err)
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate journal: %w", rows.Err())
	}
	return records, nil
}

func scanRecord(row pgx.Row) (audit.Record, error) {
	var (
		rec        audit.Record
		seq        int64
		prev, hash []byte
		kind       string
	)
	if err := row.Scan(&seq, &prev, &hash, &kind, &rec.Payload); err != nil {
		return audit.Record{}, err
	}
	if len(prev) != len(rec.Prev) || len(hash) != len(rec.Hash) {
		return audit.Record{}, fmt.Errorf("journal record %d has malformed hashes", seq)
	}
	rec.Seq = uint64(seq)
	copy(rec.Prev[:], prev)
	copy(rec.Hash[:], hash)
	rec.Kind = domain.NotificationKind(kind)
	return rec, nil
}
