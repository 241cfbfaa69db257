package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

// PGRepo stores the snapshot in Postgres, one row per console profile.
// Shared gateways use it so every instance resumes the same session.
type PGRepo struct {
	db      *sqlx.DB
	profile string
}

func NewPGRepo(db *sqlx.DB, profile string) *PGRepo {
	return &PGRepo{db: db, profile: profile}
}

// EnsureTable creates the console_sessions table if it does not exist.
// Fields:
// - profile varchar(64) PRIMARY KEY
// - snapshot jsonb
// - updated_at timestamptz
func (r *PGRepo) EnsureTable(ctx context.Context) error {
	var tblName sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT to_regclass('public.console_sessions')").Scan(&tblName); err != nil {
		return err
	}
	if tblName.Valid {
		return nil
	}
	const ddl = `CREATE TABLE console_sessions (
		profile varchar(64) PRIMARY KEY,
		snapshot jsonb NOT NULL DEFAULT '{}'::jsonb,
		updated_at timestamptz NOT NULL DEFAULT NOW()
	)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *PGRepo) Load(ctx context.Context) (entity.Snapshot, error) {
	var s entity.Snapshot
	var raw []byte
	err := r.db.GetContext(ctx, &raw, `SELECT snapshot FROM console_sessions WHERE profile = $1`, r.profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return entity.Snapshot{}, err
	}
	return s, nil
}

func (r *PGRepo) Save(ctx context.Context, s entity.Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	const q = `INSERT INTO console_sessions (profile, snapshot, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (profile) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = NOW()`
	_, err = r.db.ExecContext(ctx, q, r.profile, raw)
	return err
}

func (r *PGRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM console_sessions WHERE profile = $1`, r.profile)
	return err
}
