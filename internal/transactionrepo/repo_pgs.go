// Package transactionrepo manages repository layer of transactions.
//
// Besides plain persistence it implements the balance mutation: recording or
// amending a transaction and changing its wallet's balance happen within a
// single database transaction that holds the wallet row lock.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/walletrepo"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/moneypkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an already started database transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS wiht connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (wallet_id, txid, amount)
VALUES
    ($1, $2, $3)
RETURNING id, wallet_id, txid, amount, created_at
`

// Create inserts the transaction row and then returns it.
//
// It does not touch the wallet balance, use Record for that.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.WalletID, arg.TxID, arg.Amount)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&t.TxID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_txid_key":
				l.Info().Err(err).Str("txid", arg.TxID).Send()
				return domain.Transaction{}, domain.ErrDuplicateTxid
			case "transactions_wallet_id_fkey":
				l.Info().Err(err).Int64("wallet_id", arg.WalletID).Send()
				return domain.Transaction{}, domain.ErrWalletNotFound
			}
		}

		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, wallet_id, txid, amount, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return r.get(ctx, getQuery, id)
}

const getForUpdateQuery = getQuery + `FOR UPDATE
`

func (r *RepoPGS) get(ctx context.Context, query string, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, query, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&t.TxID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			l.Info().Err(err).Int64("transaction_id", id).Send()
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

const setAmountQuery = `
UPDATE transactions
SET amount = $1
WHERE id = $2
RETURNING id, wallet_id, txid, amount, created_at
`

func (r *RepoPGS) setAmount(ctx context.Context, id int64, amount string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, setAmountQuery, amount, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&t.TxID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

var orderColumns = map[string]string{
	domain.TransactionOrderID:          "t.id",
	domain.TransactionOrderWalletLabel: "w.label",
	domain.TransactionOrderTxID:        "t.txid",
	domain.TransactionOrderAmount:      "t.amount",
}

const listQuery = `
SELECT
	t.id, t.wallet_id, t.txid, t.amount, t.created_at
FROM transactions t
JOIN wallets w ON w.id = t.wallet_id
`

// List returns transactions matching the given filters in the requested order.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	column, ok := orderColumns[arg.Ordering.Field]
	if !ok {
		return nil, domain.ErrInvalidOrdering
	}

	var f dbpkg.Filter

	if arg.TxID != nil {
		f.Eq("t.txid", *arg.TxID)
	}

	if arg.WalletID != nil {
		f.Eq("t.wallet_id", *arg.WalletID)
	}

	if arg.WalletLabel != nil {
		f.Eq("w.label", *arg.WalletLabel)
	}

	if arg.Amount != nil {
		f.Eq("t.amount", *arg.Amount)
	}

	query := listQuery + f.Where() + "\n" + f.OrderBy(column, arg.Ordering.Desc, "t.id") + "\n" + f.Page(arg.Limit, arg.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.Args()...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	if err := sqlx.StructScan(rows, &items); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// Record applies the transaction amount to its wallet.
//
// It locks the wallet row, rejects the mutation if the balance would become
// negative, inserts the transaction and updates the balance within a single
// database transaction. Nothing is persisted on error.
func (r *RepoPGS) Record(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	amount, err := moneypkg.Parse(arg.Amount)
	if err != nil {
		return domain.TransactionResult{}, domain.ErrInvalidAmount
	}

	var result domain.TransactionResult

	err = r.execTx(ctx, func(walletRepo *walletrepo.RepoPGS, txRepo *RepoPGS) error {
		wallet, err := walletRepo.GetForUpdate(ctx, arg.WalletID)
		if err != nil {
			return err
		}

		if err := checkBalance(wallet.Balance, amount); err != nil {
			return err
		}

		result.Transaction, err = txRepo.Create(ctx, arg)
		if err != nil {
			return err
		}

		result.Wallet, err = walletRepo.AddBalance(ctx, moneypkg.Format(amount), arg.WalletID)

		return err
	})

	if err != nil {
		l.Info().Err(err).Msgf("Record(ctx, %+v) rejected", arg)
		return domain.TransactionResult{}, err
	}

	return result, nil
}

// Amend changes the amount of the recorded transaction and adjusts its wallet
// balance by the difference between the new and the old amount.
//
// Locks are taken in wallet, transaction order as Record does.
func (r *RepoPGS) Amend(ctx context.Context, arg domain.AmendTransactionParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	newAmount, err := moneypkg.Parse(arg.Amount)
	if err != nil {
		return domain.TransactionResult{}, domain.ErrInvalidAmount
	}

	// wallet_id never changes, so it is safe to resolve it before locking.
	current, err := r.Get(ctx, arg.ID)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	var result domain.TransactionResult

	err = r.execTx(ctx, func(walletRepo *walletrepo.RepoPGS, txRepo *RepoPGS) error {
		wallet, err := walletRepo.GetForUpdate(ctx, current.WalletID)
		if err != nil {
			return err
		}

		locked, err := txRepo.get(ctx, getForUpdateQuery, arg.ID)
		if err != nil {
			return err
		}

		oldAmount, err := decimal.NewFromString(locked.Amount)
		if err != nil {
			l.Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		delta := newAmount.Sub(oldAmount)

		if err := checkBalance(wallet.Balance, delta); err != nil {
			return err
		}

		result.Transaction, err = txRepo.setAmount(ctx, arg.ID, moneypkg.Format(newAmount))
		if err != nil {
			return err
		}

		result.Wallet, err = walletRepo.AddBalance(ctx, moneypkg.Format(delta), wallet.ID)

		return err
	})

	if err != nil {
		l.Info().Err(err).Msgf("Amend(ctx, %+v) rejected", arg)
		return domain.TransactionResult{}, err
	}

	return result, nil
}

func checkBalance(balance string, delta decimal.Decimal) error {
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return errorspkg.ErrInternal
	}

	if b.Add(delta).IsNegative() {
		return domain.ErrInsufficientBalance
	}

	return nil
}

// execTx executes fn with repositories bound to a new database transaction.
//
// The transaction is committed if fn returns nil and rolled back otherwise.
func (r *RepoPGS) execTx(ctx context.Context, fn func(*walletrepo.RepoPGS, *RepoPGS) error) error {
	l := zerolog.Ctx(ctx)

	if r.conn == nil {
		l.Error().Msg("balance mutation requires a connection, got a transaction-bound repo")
		return errorspkg.ErrInternal
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(walletrepo.NewRepoPGS(tx), NewTxRepoPGS(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
