package store

import (
	"context"
	"slices"

	"sales-analytics/internal/models"
)

// MemoryStore serves a fixed set of rows. Sessions get their own copy.
type MemoryStore struct {
	rows []models.Transaction
}

func NewMemoryStore(rows []models.Transaction) *MemoryStore {
	return &MemoryStore{rows: slices.Clone(rows)}
}

func (s *MemoryStore) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memorySession{rows: slices.Clone(s.rows)}, nil
}

func (s *MemoryStore) Close() error { return nil }

type memorySession struct {
	rows []models.Transaction
}

func (s *memorySession) Transactions(ctx context.Context) ([]models.Transaction, error) {
	return s.rows, nil
}

func (s *memorySession) Count(ctx context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *memorySession) Close() error { return nil }
