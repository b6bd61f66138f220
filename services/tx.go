package services

import (
	"context"
	"database/sql"
)

// TxRunner abstracts transaction management so orchestration services can be
// exercised in tests without a live database.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}
