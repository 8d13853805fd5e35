package store

import (
	"context"
	"database/sql"
	"fmt"

	"gotacheck/internal/domain"
)

// Setting keys. The credential and the selected model are the only state
// the application persists.
const (
	keyAPIKey        = "openrouter_api_key"
	keySelectedModel = "selected_model"
)

// SettingsStore persists user settings in a SQLite key-value table.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value for key, or "" when the key has never been set.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// Set stores or replaces the value for key.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// APIKey returns the stored OpenRouter credential, or "" when none is
// configured.
func (s *SettingsStore) APIKey(ctx context.Context) (string, error) {
	return s.Get(ctx, keyAPIKey)
}

func (s *SettingsStore) SetAPIKey(ctx context.Context, apiKey string) error {
	return s.Set(ctx, keyAPIKey, apiKey)
}

// SelectedModel returns the user's chosen model, falling back to the
// catalog default when nothing is stored or the stored id is no longer in
// the catalog.
func (s *SettingsStore) SelectedModel(ctx context.Context) (domain.AIModel, error) {
	id, err := s.Get(ctx, keySelectedModel)
	if err != nil {
		return domain.AIModel{}, err
	}
	if model, ok := domain.ModelByID(id); ok {
		return model, nil
	}
	return domain.DefaultModel(), nil
}

// SetSelectedModel stores the chosen model after validating it against the
// catalog.
func (s *SettingsStore) SetSelectedModel(ctx context.Context, id string) error {
	if _, ok := domain.ModelByID(id); !ok {
		return fmt.Errorf("unknown model %q", id)
	}
	return s.Set(ctx, keySelectedModel, id)
}
