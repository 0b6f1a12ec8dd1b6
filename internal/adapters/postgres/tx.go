package repo

import (
	"context"

	"gorm.io/gorm"
)

// TxManager opens one transaction around a lifecycle operation's
// read-check-write sequence. Commit on nil, rollback on error.
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type txManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager { return &txManager{db: db} }

func (m *txManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
