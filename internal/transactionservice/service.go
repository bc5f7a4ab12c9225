// Package transactionservice manages business logic layer of transactions.
package transactionservice

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/moneypkg"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Record(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionResult, error)
	Amend(ctx context.Context, arg domain.AmendTransactionParams) (domain.TransactionResult, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// Publisher delivers committed transaction events.
type Publisher interface {
	Publish(ctx context.Context, event domain.TransactionEvent) error
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo      Repo
	publisher Publisher
}

// New returns transaction service struct to manage transaction bussines logic.
func New(tr Repo, p Publisher) *Service {
	return &Service{
		repo:      tr,
		publisher: p,
	}
}

// Create validates the transaction and records it against its wallet.
func (s *Service) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	arg.TxID = strings.TrimSpace(arg.TxID)
	if arg.TxID == "" {
		return domain.TransactionResult{}, domain.ErrEmptyTxid
	}

	amount, err := moneypkg.Normalize(arg.Amount)
	if err != nil {
		l.Info().Err(err).Str("amount", arg.Amount).Send()
		return domain.TransactionResult{}, domain.ErrInvalidAmount
	}

	arg.Amount = amount

	result, err := s.repo.Record(ctx, arg)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	s.publish(ctx, domain.EventTransactionRecorded, result)

	return result, nil
}

// Amend validates the new amount and applies it to the recorded transaction.
func (s *Service) Amend(ctx context.Context, arg domain.AmendTransactionParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	amount, err := moneypkg.Normalize(arg.Amount)
	if err != nil {
		l.Info().Err(err).Str("amount", arg.Amount).Send()
		return domain.TransactionResult{}, domain.ErrInvalidAmount
	}

	arg.Amount = amount

	result, err := s.repo.Amend(ctx, arg)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	s.publish(ctx, domain.EventTransactionAmended, result)

	return result, nil
}

// Get returns the transaction with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of transactions.
func (s *Service) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	if arg.Amount != nil {
		a, err := moneypkg.Normalize(*arg.Amount)
		if err != nil {
			return nil, domain.ErrInvalidAmount
		}

		arg.Amount = &a
	}

	return s.repo.List(ctx, arg)
}

// publish sends the event of an already committed mutation. Failures are only
// logged since the mutation itself is durable at this point.
func (s *Service) publish(ctx context.Context, kind string, result domain.TransactionResult) {
	if s.publisher == nil {
		return
	}

	event := domain.TransactionEvent{
		Kind:          kind,
		Transaction:   result.Transaction,
		WalletBalance: result.Wallet.Balance,
		OccurredAt:    time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", kind).Int64("transaction_id", result.Transaction.ID).Msg("publish event")
	}
}
