package repository

import (
	"context"

	"gorm.io/gorm"

	domainRepo "github.com/ramuneri/tillpoint-api/internal/domain/repository"
)

type txKey struct{}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over the given database handle.
func NewTxManager(db *gorm.DB) domainRepo.TxManager {
	return &gormTxManager{db: db}
}

// WithinTx opens a database transaction, stashes it in the context and runs
// fn. Repositories built in this package pick the transaction up via
// dbFrom, so every read and write inside fn shares one atomic unit of work.
func (m *gormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the ambient transaction if the context carries one, the
// repository's own handle otherwise.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
