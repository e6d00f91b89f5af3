package repository

import "context"

// TxManager runs a function inside a single database transaction. The
// transaction is carried in the returned context; every repository call made
// with that context joins it. If fn returns an error the transaction is
// rolled back in full before the error is propagated.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
