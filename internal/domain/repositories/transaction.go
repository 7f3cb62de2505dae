package repositories

import "context"

// TxFn is a function executed inside a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a database transaction. The
// transaction is stored in the context so repositories join it automatically.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
