package database

import (
	"database/sql"
	"fmt"
)

var _ KVRepository = (*KVRepositoryImpl)(nil)

// KVRepositoryImpl stores string keys and values in the kv_store table.
type KVRepositoryImpl struct {
	db *DB
}

func NewKVRepository(db *DB) *KVRepositoryImpl {
	return &KVRepositoryImpl{db: db}
}

// Get returns the value for key, or "" when the key is absent.
func (r *KVRepositoryImpl) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (r *KVRepositoryImpl) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (r *KVRepositoryImpl) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}
