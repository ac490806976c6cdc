package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/l1jgo/whalecs/ecs"
	"github.com/l1jgo/whalecs/internal/codec"
)

// SnapshotRepo saves and restores whole worlds. Components serialise
// through the codec registry; unregistered types are skipped with a
// warning at save time and fail the load (a snapshot referencing a name
// the registry no longer knows is unusable).
type SnapshotRepo struct {
	db  *DB
	reg *codec.Registry
}

func NewSnapshotRepo(db *DB, reg *codec.Registry) *SnapshotRepo {
	return &SnapshotRepo{db: db, reg: reg}
}

// Save writes every live entity and its registered components in a
// single transaction, returning the snapshot ID.
func (r *SnapshotRepo) Save(ctx context.Context, name string, w *ecs.World) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO snapshots (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("snapshot insert: %w", err)
	}

	for _, e := range w.All() {
		for _, c := range w.Components(e) {
			compName, payload, err := r.reg.Encode(c)
			if err != nil {
				r.db.log.Warn("snapshot skips unregistered component",
					zap.Int32("entity", int32(e)),
					zap.String("type", fmt.Sprintf("%T", c)))
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO snapshot_components (snapshot_id, entity, component, payload)
				 VALUES ($1, $2, $3, $4)`,
				id, int32(e), compName, payload,
			); err != nil {
				return 0, fmt.Errorf("snapshot component insert: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("snapshot commit: %w", err)
	}
	return id, nil
}

// Load restores a snapshot into the world, preserving entity IDs via
// Insert. The world should usually be empty; colliding entities keep
// components of types the snapshot does not mention.
func (r *SnapshotRepo) Load(ctx context.Context, id int64, w *ecs.World) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT entity, component, payload
		 FROM snapshot_components
		 WHERE snapshot_id = $1
		 ORDER BY entity`, id)
	if err != nil {
		return fmt.Errorf("snapshot query: %w", err)
	}
	defer rows.Close()

	flush := func(e ecs.Entity, comps []any) error {
		if len(comps) == 0 {
			return nil
		}
		if err := w.Insert(e, comps...); err != nil {
			return fmt.Errorf("snapshot insert entity %d: %w", e, err)
		}
		return nil
	}

	current := ecs.Null
	var comps []any
	for rows.Next() {
		var entity int32
		var compName string
		var payload []byte
		if err := rows.Scan(&entity, &compName, &payload); err != nil {
			return fmt.Errorf("snapshot scan: %w", err)
		}
		c, err := r.reg.Decode(compName, payload)
		if err != nil {
			return fmt.Errorf("snapshot entity %d: %w", entity, err)
		}
		if e := ecs.Entity(entity); e != current {
			if err := flush(current, comps); err != nil {
				return err
			}
			current = e
			comps = comps[:0]
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("snapshot rows: %w", err)
	}
	return flush(current, comps)
}

// LatestID returns the most recent snapshot ID for name, or 0 when none
// exists.
func (r *SnapshotRepo) LatestID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id FROM snapshots WHERE name = $1 ORDER BY created_at DESC LIMIT 1`,
		name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("snapshot latest: %w", err)
	}
	return id, nil
}
