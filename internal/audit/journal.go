// Package audit keeps a tamper-evident journal of committed notifications.
//
// Each record carries the CBOR encoding of its entry and a BLAKE3 hash over
// the previous record's hash and that encoding, so rewriting or dropping any
// record breaks every hash after it. Records are numbered in the order
// Publish is called; the marketplace calls it in commit order.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

var ErrBrokenChain = errors.New("audit chain broken")

// Entry is the hashed content of one journal record.
type Entry struct {
	Seq          uint64              `cbor:"1,keyasint"`
	Prev         Hash                `cbor:"2,keyasint"`
	Notification domain.Notification `cbor:"3,keyasint"`
}

// Record is an entry as stored: its encoding and the resulting chain hash.
type Record struct {
	Seq     uint64
	Prev    Hash
	Hash    Hash
	Kind    domain.NotificationKind
	Payload []byte
}

// Sink stores journal records in sequence order.
type Sink interface {
	Append(ctx context.Context, records []Record) error
	// Last returns the record with the highest sequence number.
	Last(ctx context.Context) (Record, bool, error)
	Records(ctx context.Context) ([]Record, error)
}

// Journal appends notifications to a sink as a hash chain. It satisfies the
// marketplace Publisher interface.
type Journal struct {
	mu   sync.Mutex
	sink Sink
	seq  uint64
	head Hash
}

// Open resumes the chain from the sink's last record.
func Open(ctx context.Context, sink Sink) (*Journal, error) {
	last, ok, err := sink.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal head: %w", err)
	}
	j := &Journal{sink: sink}
	if ok {
		j.seq = last.Seq
		j.head = last.Hash
	}
	return j, nil
}

func (j *Journal) Publish(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	seq, head := j.seq, j.head
	records := make([]Record, 0, len(notifications))
	for _, n := range notifications {
		seq++
		payload, err := encMode.Marshal(Entry{Seq: seq, Prev: head, Notification: n})
		if err != nil {
			return fmt.Errorf("encode journal entry %d: %w", seq, err)
		}
		rec := Record{Seq: seq, Prev: head, Hash: link(head, payload), Kind: n.Kind, Payload: payload}
		records = append(records, rec)
		head = rec.Hash
	}

	if err := j.sink.Append(ctx, records); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	j.seq, j.head = seq, head
	return nil
}

// Head returns the sequence number and hash of the newest record.
func (j *Journal) Head() (uint64, Hash) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq, j.head
}

// Verify walks records from the start of the chain and returns the decoded
// entries, or ErrBrokenChain at the first record that does not link.
func Verify(records []Record) ([]Entry, error) {
	var prev Hash
	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		want := uint64(i + 1)
		if rec.Seq != want || rec.Prev != prev {
			return nil, fmt.Errorf("%w: record %d does not follow %d", ErrBrokenChain, rec.Seq, want-1)
		}
		if link(prev, rec.Payload) != rec.Hash {
			return nil, fmt.Errorf("%w: record %d hash mismatch", ErrBrokenChain, rec.Seq)
		}
		var entry Entry
		if err := decMode.Unmarshal(rec.Payload, &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry %d: %w", rec.Seq, err)
		}
		if entry.Seq != rec.Seq || entry.Prev != rec.Prev {
			return nil, fmt.Errorf("%w: record %d payload disagrees with its header", ErrBrokenChain, rec.Seq)
		}
		entries = append(entries, entry)
		prev = rec.Hash
	}
	return entries, nil
}

// VerifySink loads and verifies every record in sink.
func VerifySink(ctx context.Context, sink Sink) ([]Entry, error) {
	records, err := sink.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return Verify(records)
}
