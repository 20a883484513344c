package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aminulnv/Year-In-Review/internal/database"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

const kvTable = "kv_slot"

// KVRepository stores key-value slots as records of the kv_slot table, one
// record per key. It implements storage.Storage.
type KVRepository struct {
	db database.Database
}

// NewKVRepository creates a new key-value repository
func NewKVRepository(db database.Database) *KVRepository {
	return &KVRepository{db: db}
}

var (
	_ storage.Storage = (*KVRepository)(nil)
	_ storage.Lister  = (*KVRepository)(nil)
)

// Get returns the stored value, or storage.ErrNotFound.
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM type::thing($tb, $key)`
	vars := map[string]interface{}{"tb": kvTable, "key": key}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}

	rec, ok := result.(map[string]interface{})
	if !ok {
		return nil, storage.ErrNotFound
	}
	v, ok := rec["value"].(string)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return []byte(v), nil
}

// Set writes the value, creating the record if needed.
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `
		UPSERT type::thing($tb, $key) CONTENT {
			key: $key,
			value: $value,
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"tb":    kvTable,
		"key":   key,
		"value": string(value),
	}
	if err := r.db.Execute(ctx, query, vars); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the record. Removing a missing key is not an error.
func (r *KVRepository) Remove(ctx context.Context, key string) error {
	query := `DELETE type::thing($tb, $key)`
	vars := map[string]interface{}{"tb": kvTable, "key": key}
	if err := r.db.Execute(ctx, query, vars); err != nil {
		return fmt.Errorf("kv remove %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in order.
func (r *KVRepository) Keys(ctx context.Context) ([]string, error) {
	results, err := r.db.Query(ctx, `SELECT key FROM kv_slot ORDER BY key`, nil)
	if err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	rows, ok := extractQueryResults(results)
	if !ok {
		return []string{}, nil
	}
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			if k := getString(m, "key"); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}
