// Package store persists the bridge state that should survive restarts:
// strategy preferences, the local model catalog, and control API keys.
// The in-memory mirrors remain authoritative while the process lives.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS strategy_preferences (
  component TEXT PRIMARY KEY,
  override TEXT NOT NULL DEFAULT 'auto',
  target TEXT NOT NULL DEFAULT 'latency',
  updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS model_catalog (
  model_id TEXT PRIMARY KEY,
  component TEXT NOT NULL,
  local_path TEXT NOT NULL DEFAULT '',
  present INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS api_keys (
  key_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  prefix TEXT NOT NULL,
  hashed_key TEXT NOT NULL,
  created_at DATETIME NOT NULL,
  last_used_at DATETIME
);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	return err
}

// PreferenceRecord is a persisted strategy preference.
type PreferenceRecord struct {
	Component string
	Override  string
	Target    string
	UpdatedAt time.Time
}

// UpsertPreference writes a preference, replacing any previous row.
func (s *Store) UpsertPreference(ctx context.Context, p PreferenceRecord) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO strategy_preferences(component, override, target, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(component) DO UPDATE SET override=excluded.override, target=excluded.target, updated_at=excluded.updated_at;
`, p.Component, p.Override, p.Target, p.UpdatedAt)
	return err
}

// GetPreference reads one preference row; ok is false when none exists.
func (s *Store) GetPreference(ctx context.Context, componentType string) (PreferenceRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT component, override, target, updated_at FROM strategy_preferences WHERE component=?;
`, componentType)
	var p PreferenceRecord
	if err := row.Scan(&p.Component, &p.Override, &p.Target, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return PreferenceRecord{}, false, nil
		}
		return PreferenceRecord{}, false, err
	}
	return p, true, nil
}

// ListPreferences returns every persisted preference.
func (s *Store) ListPreferences(ctx context.Context) ([]PreferenceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT component, override, target, updated_at FROM strategy_preferences ORDER BY component;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PreferenceRecord
	for rows.Next() {
		var p PreferenceRecord
		if err := rows.Scan(&p.Component, &p.Override, &p.Target, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePreference removes a preference row if present.
func (s *Store) DeletePreference(ctx context.Context, componentType string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM strategy_preferences WHERE component=?;", componentType)
	return err
}

// ModelRecord is a persisted model catalog row.
type ModelRecord struct {
	ModelID   string
	Component string
	LocalPath string
	Present   bool
	UpdatedAt time.Time
}

// UpsertModel writes a catalog row, replacing any previous one.
func (s *Store) UpsertModel(ctx context.Context, m ModelRecord) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO model_catalog(model_id, component, local_path, present, updated_at)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(model_id) DO UPDATE SET component=excluded.component, local_path=excluded.local_path, present=excluded.present, updated_at=excluded.updated_at;
`, m.ModelID, m.Component, m.LocalPath, boolToInt(m.Present), m.UpdatedAt)
	return err
}

// GetModel reads one catalog row; ok is false when none exists.
func (s *Store) GetModel(ctx context.Context, modelID string) (ModelRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT model_id, component, local_path, present, updated_at FROM model_catalog WHERE model_id=?;
`, modelID)
	var (
		m       ModelRecord
		present int
	)
	if err := row.Scan(&m.ModelID, &m.Component, &m.LocalPath, &present, &m.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return ModelRecord{}, false, nil
		}
		return ModelRecord{}, false, err
	}
	m.Present = present != 0
	return m, true, nil
}

// ListModels returns every catalog row.
func (s *Store) ListModels(ctx context.Context) ([]ModelRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT model_id, component, local_path, present, updated_at FROM model_catalog ORDER BY model_id;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ModelRecord
	for rows.Next() {
		var (
			m       ModelRecord
			present int
		)
		if err := rows.Scan(&m.ModelID, &m.Component, &m.LocalPath, &present, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Present = present != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

// HasLocalModel reports whether any present model is catalogued for the
// component type. Feeds the strategy snapshot probe.
func (s *Store) HasLocalModel(ctx context.Context, componentType string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(1) FROM model_catalog WHERE component=? AND present=1;
`, componentType)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteModel removes a catalog row if present.
func (s *Store) DeleteModel(ctx context.Context, modelID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM model_catalog WHERE model_id=?;", modelID)
	return err
}

// APIKeyRecord is a persisted control API key.
type APIKeyRecord struct {
	ID         string
	Name       string
	Prefix     string
	HashedKey  string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// CreateAPIKey inserts a new key record.
func (s *Store) CreateAPIKey(ctx context.Context, record APIKeyRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO api_keys(key_id, name, prefix, hashed_key, created_at)
VALUES(?, ?, ?, ?, ?);
`, record.ID, record.Name, record.Prefix, record.HashedKey, record.CreatedAt)
	return err
}

// GetAPIKeyByHash looks a key up by its hash; ok is false when unknown.
func (s *Store) GetAPIKeyByHash(ctx context.Context, hashedKey string) (APIKeyRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT key_id, name, prefix, hashed_key, created_at, last_used_at FROM api_keys WHERE hashed_key=?;
`, hashedKey)
	var r APIKeyRecord
	if err := row.Scan(&r.ID, &r.Name, &r.Prefix, &r.HashedKey, &r.CreatedAt, &r.LastUsedAt); err != nil {
		if err == sql.ErrNoRows {
			return APIKeyRecord{}, false, nil
		}
		return APIKeyRecord{}, false, err
	}
	return r, true, nil
}

// ListAPIKeys returns every key record, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]APIKeyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT key_id, name, prefix, hashed_key, created_at, last_used_at FROM api_keys ORDER BY created_at DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []APIKeyRecord
	for rows.Next() {
		var r APIKeyRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Prefix, &r.HashedKey, &r.CreatedAt, &r.LastUsedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TouchAPIKey records the last use of a key.
func (s *Store) TouchAPIKey(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at=? WHERE key_id=?;", at, id)
	return err
}

// DeleteAPIKey removes a key record if present.
func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM api_keys WHERE key_id=?;", id)
	return err
}

const adminPasswordKey = "admin_password_hash"

// SetAdminPasswordHash stores the bcrypt hash gating key management.
func (s *Store) SetAdminPasswordHash(ctx context.Context, hash string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings(key, value) VALUES(?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value;
`, adminPasswordKey, hash)
	return err
}

// AdminPasswordHash reads the stored admin password hash; ok is false when
// none has been set.
func (s *Store) AdminPasswordHash(ctx context.Context) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key=?;", adminPasswordKey)
	var hash string
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return hash, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
