package persist

import (
	"context"
	"fmt"

	"github.com/l1jgo/whalecs/ecs"
)

// JournalEntry is one recorded world mutation.
type JournalEntry struct {
	Op        string // "create", "emplace", "remove", "destroy"
	Entity    ecs.Entity
	Component string // empty for create/destroy
	Payload   []byte // encoded component for emplace, nil otherwise
}

// JournalRepo batches mutation-journal writes. Systems queue entries
// during a tick and the driver flushes them in one transaction after the
// tick;
// a failed flush leaves the batch unwritten for the caller to retry or
// drop.
type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Append atomically writes a batch of journal entries.
func (r *JournalRepo) Append(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		var component any
		if e.Component != "" {
			component = e.Component
		}
		var payload any
		if e.Payload != nil {
			payload = e.Payload
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO mutation_journal (op, entity, component, payload)
			 VALUES ($1, $2, $3, $4)`,
			e.Op, int32(e.Entity), component, payload,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// MarkProcessed marks all outstanding journal entries as processed,
// called after a successful snapshot covers them.
func (r *JournalRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE mutation_journal SET processed = TRUE WHERE NOT processed`,
	)
	return err
}

// Prune deletes processed entries, keeping the journal bounded.
func (r *JournalRepo) Prune(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM mutation_journal WHERE processed`,
	)
	return err
}
