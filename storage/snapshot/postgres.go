package snapshot

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	upsertSnapshot = `
		INSERT INTO snapshots (key, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	insertHistory = `INSERT INTO snapshot_history (key, data) VALUES ($1, $2)`
)

// PostgresStore keeps the collections in the snapshots table and appends every save to
// snapshot_history.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

type snapshotRow struct {
	Key  string `db:"key"`
	Data []byte `db:"data"`
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) (map[string][]byte, error) {
	var rows []snapshotRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, data FROM snapshots`); err != nil {
		return nil, errors.Wrap(err, "selecting snapshots")
	}
	data := make(map[string][]byte, len(rows))
	for _, r := range rows {
		data[r.Key] = r.Data
	}
	return data, nil
}

func (s *PostgresStore) Save(ctx context.Context, data map[string][]byte) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for key, b := range data {
		if _, err = tx.ExecContext(ctx, upsertSnapshot, key, string(b)); err != nil {
			return errors.Wrapf(err, "saving %s", key)
		}
		if _, err = tx.ExecContext(ctx, insertHistory, key, string(b)); err != nil {
			return errors.Wrapf(err, "saving %s history", key)
		}
	}
	return errors.Wrap(tx.Commit(), "committing snapshots")
}

func (s *PostgresStore) Close() error { return s.db.Close() }
