package memstore

import (
	"context"

	"github.com/go-petr/pet-wallet/internal/domain"
)

// TransactionRepo exposes the transaction side of a Store.
type TransactionRepo struct {
	s *Store
}

// Transactions returns the transaction repository backed by s.
func (s *Store) Transactions() *TransactionRepo {
	return &TransactionRepo{s: s}
}

// Record applies the transaction amount to its wallet.
func (r *TransactionRepo) Record(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionResult, error) {
	return r.s.Record(ctx, arg)
}

// Amend changes the amount of the recorded transaction.
func (r *TransactionRepo) Amend(ctx context.Context, arg domain.AmendTransactionParams) (domain.TransactionResult, error) {
	return r.s.Amend(ctx, arg)
}

// Get returns the transaction with the given id.
func (r *TransactionRepo) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return r.s.GetTransaction(ctx, id)
}

// List returns transactions matching the given filters.
func (r *TransactionRepo) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	return r.s.ListTransactions(ctx, arg)
}
