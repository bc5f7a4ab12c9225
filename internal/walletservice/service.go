// Package walletservice manages business logic layer of wallets.
package walletservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/moneypkg"
)

// Repo provides data access layer interface needed by wallet service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package walletservice
type Repo interface {
	Create(ctx context.Context, label, balance string) (domain.Wallet, error)
	Get(ctx context.Context, id int64) (domain.Wallet, error)
	List(ctx context.Context, arg domain.ListWalletsParams) ([]domain.Wallet, error)
}

// Service facilitates wallet service layer logic.
type Service struct {
	repo Repo
}

// New returns wallet service struct to manage wallet bussines logic.
func New(wr Repo) *Service {
	return &Service{
		repo: wr,
	}
}

// Create validates the label and the initial balance and then creates the wallet.
//
// An empty balance creates the wallet with zero balance.
func (s *Service) Create(ctx context.Context, label, balance string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	label = strings.TrimSpace(label)
	if label == "" {
		return domain.Wallet{}, domain.ErrEmptyLabel
	}

	if balance == "" {
		balance = "0"
	}

	b, err := moneypkg.Parse(balance)
	if err != nil {
		l.Info().Err(err).Str("balance", balance).Send()
		return domain.Wallet{}, domain.ErrInvalidAmount
	}

	if b.IsNegative() {
		return domain.Wallet{}, domain.ErrNegativeBalance
	}

	return s.repo.Create(ctx, label, moneypkg.Format(b))
}

// Get returns the wallet with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Wallet, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of wallets.
func (s *Service) List(ctx context.Context, arg domain.ListWalletsParams) ([]domain.Wallet, error) {
	if arg.Balance != nil {
		b, err := moneypkg.Normalize(*arg.Balance)
		if err != nil {
			return nil, domain.ErrInvalidAmount
		}

		arg.Balance = &b
	}

	return s.repo.List(ctx, arg)
}
