// Package walletrepo manages repository layer of wallets.
package walletrepo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
)

const balanceCheckConstraint = "wallets_balance_check"

// RepoPGS facilitates wallet repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns wallet RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    wallets (label, balance)
VALUES
    ($1, $2)
RETURNING id, label, balance, created_at
`

// Create creates the wallet and then returns it.
func (r *RepoPGS) Create(ctx context.Context, label, balance string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, label, balance)

	var w domain.Wallet

	err := row.Scan(
		&w.ID,
		&w.Label,
		&w.Balance,
		&w.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == balanceCheckConstraint {
			return domain.Wallet{}, domain.ErrNegativeBalance
		}

		return domain.Wallet{}, errorspkg.ErrInternal
	}

	return w, nil
}

const getQuery = `
SELECT
	id, label, balance, created_at
FROM wallets
WHERE id = $1
`

// Get returns the wallet with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Wallet, error) {
	return r.get(ctx, getQuery, id)
}

const getForUpdateQuery = getQuery + `FOR UPDATE
`

// GetForUpdate returns the wallet with the given id and locks its row until
// the end of the surrounding database transaction.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.Wallet, error) {
	return r.get(ctx, getForUpdateQuery, id)
}

func (r *RepoPGS) get(ctx context.Context, query string, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, query, id)

	var w domain.Wallet

	err := row.Scan(
		&w.ID,
		&w.Label,
		&w.Balance,
		&w.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			l.Info().Err(err).Int64("wallet_id", id).Send()
			return domain.Wallet{}, domain.ErrWalletNotFound
		}

		l.Error().Err(err).Send()

		return domain.Wallet{}, errorspkg.ErrInternal
	}

	return w, nil
}

const addBalanceQuery = `
UPDATE wallets
SET balance = balance + $1
WHERE id = $2
RETURNING id, label, balance, created_at
`

// AddBalance changes the wallet's balance by amount and returns the changed wallet.
func (r *RepoPGS) AddBalance(ctx context.Context, amount string, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, id)

	var w domain.Wallet

	err := row.Scan(
		&w.ID,
		&w.Label,
		&w.Balance,
		&w.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return domain.Wallet{}, domain.ErrWalletNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == balanceCheckConstraint {
			return domain.Wallet{}, domain.ErrInsufficientBalance
		}

		return domain.Wallet{}, errorspkg.ErrInternal
	}

	return w, nil
}

const deleteQuery = `
DELETE FROM wallets
WHERE id = $1
`

// Delete removes the wallet with the given id together with its transactions.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

var orderColumns = map[string]string{
	domain.WalletOrderID:      "id",
	domain.WalletOrderLabel:   "label",
	domain.WalletOrderBalance: "balance",
}

const listQuery = `
SELECT
	id, label, balance, created_at
FROM wallets
`

// List returns wallets matching the given filters in the requested order.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListWalletsParams) ([]domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	column, ok := orderColumns[arg.Ordering.Field]
	if !ok {
		return nil, domain.ErrInvalidOrdering
	}

	var f dbpkg.Filter

	if arg.Label != nil {
		f.Eq("label", *arg.Label)
	}

	if arg.Balance != nil {
		f.Eq("balance", *arg.Balance)
	}

	query := listQuery + f.Where() + "\n" + f.OrderBy(column, arg.Ordering.Desc, "id") + "\n" + f.Page(arg.Limit, arg.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.Args()...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Wallet{}

	if err := sqlx.StructScan(rows, &items); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
