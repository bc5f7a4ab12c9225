// Package memstore is an in-memory wallet ledger.
//
// It implements the same repository contracts as the Postgres repositories.
// Balance mutations on one wallet are serialized by the wallet's own mutex,
// so mutations on different wallets never wait for each other. Row maps are
// sync.Maps, list scans do not block writers.
package memstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/moneypkg"
)

// Driver is the DB_DRIVER value selecting the in-memory store.
const Driver = "memory"

type wallet struct {
	id        int64
	label     string
	createdAt time.Time

	// mu guards balance and deleted, and serializes mutations of the
	// wallet's transactions.
	mu      sync.Mutex
	balance decimal.Decimal
	deleted bool
}

// snapshot returns the wallet state or false if the wallet was deleted.
func (w *wallet) snapshot() (domain.Wallet, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.deleted {
		return domain.Wallet{}, false
	}

	return w.domainLocked(), true
}

// domainLocked must be called with w.mu held.
func (w *wallet) domainLocked() domain.Wallet {
	return domain.Wallet{
		ID:        w.id,
		Label:     w.label,
		Balance:   moneypkg.Format(w.balance),
		CreatedAt: w.createdAt,
	}
}

// transaction is immutable once stored. Amend stores a changed copy.
type transaction struct {
	id        int64
	walletID  int64
	txid      string
	amount    decimal.Decimal
	createdAt time.Time
}

func (t *transaction) domain() domain.Transaction {
	return domain.Transaction{
		ID:        t.id,
		WalletID:  t.walletID,
		TxID:      t.txid,
		Amount:    moneypkg.Format(t.amount),
		CreatedAt: t.createdAt,
	}
}

// Store holds wallets and transactions in memory.
type Store struct {
	wallets      sync.Map // int64 -> *wallet
	transactions sync.Map // int64 -> *transaction
	txids        sync.Map // string -> struct{}

	lastWalletID atomic.Int64
	lastTxID     atomic.Int64

	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *Store) wallet(id int64) (*wallet, bool) {
	v, ok := s.wallets.Load(id)
	if !ok {
		return nil, false
	}

	return v.(*wallet), true
}

func (s *Store) transaction(id int64) (*transaction, bool) {
	v, ok := s.transactions.Load(id)
	if !ok {
		return nil, false
	}

	return v.(*transaction), true
}

// Create creates the wallet and then returns it.
func (s *Store) Create(ctx context.Context, label, balance string) (domain.Wallet, error) {
	b, err := moneypkg.Parse(balance)
	if err != nil {
		return domain.Wallet{}, domain.ErrInvalidAmount
	}

	if b.IsNegative() {
		return domain.Wallet{}, domain.ErrNegativeBalance
	}

	w := &wallet{
		id:        s.lastWalletID.Add(1),
		label:     label,
		balance:   b,
		createdAt: s.now(),
	}
	res := w.domainLocked()

	s.wallets.Store(w.id, w)

	return res, nil
}

// Get returns the wallet with the given id.
func (s *Store) Get(ctx context.Context, id int64) (domain.Wallet, error) {
	w, ok := s.wallet(id)
	if !ok {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}

	res, ok := w.snapshot()
	if !ok {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}

	return res, nil
}

// Delete removes the wallet with the given id together with its transactions
// and frees their txids.
func (s *Store) Delete(ctx context.Context, id int64) error {
	w, ok := s.wallet(id)
	if !ok {
		return domain.ErrWalletNotFound
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.deleted {
		return domain.ErrWalletNotFound
	}

	w.deleted = true
	s.wallets.Delete(id)

	s.transactions.Range(func(k, v any) bool {
		if t := v.(*transaction); t.walletID == id {
			s.transactions.Delete(k)
			s.txids.Delete(t.txid)
		}

		return true
	})

	return nil
}

// List returns wallets matching the given filters in the requested order.
func (s *Store) List(ctx context.Context, arg domain.ListWalletsParams) ([]domain.Wallet, error) {
	var balance *decimal.Decimal

	if arg.Balance != nil {
		b, err := moneypkg.Parse(*arg.Balance)
		if err != nil {
			return []domain.Wallet{}, nil
		}

		balance = &b
	}

	res := []domain.Wallet{}

	s.wallets.Range(func(_, v any) bool {
		w := v.(*wallet)

		if arg.Label != nil && w.label != *arg.Label {
			return true
		}

		cur, ok := w.snapshot()
		if !ok {
			return true
		}

		if balance != nil && !decimal.RequireFromString(cur.Balance).Equal(*balance) {
			return true
		}

		res = append(res, cur)

		return true
	})

	var less func(a, b domain.Wallet) int

	switch arg.Ordering.Field {
	case domain.WalletOrderID:
		less = func(a, b domain.Wallet) int { return compareInt(a.ID, b.ID) }
	case domain.WalletOrderLabel:
		less = func(a, b domain.Wallet) int { return compareString(a.Label, b.Label) }
	case domain.WalletOrderBalance:
		less = func(a, b domain.Wallet) int { return compareDecimal(a.Balance, b.Balance) }
	default:
		return nil, domain.ErrInvalidOrdering
	}

	sort.Slice(res, func(i, j int) bool {
		c := less(res[i], res[j])
		if arg.Ordering.Desc {
			c = -c
		}

		if c == 0 {
			return res[i].ID < res[j].ID
		}

		return c < 0
	})

	return paginate(res, arg.Limit, arg.Offset), nil
}

// Record applies the transaction amount to its wallet.
//
// The txid reservation, the transaction insert and the balance change happen
// under the wallet's mutex, so a rejected call leaves the store unchanged.
func (s *Store) Record(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	amount, err := moneypkg.Parse(arg.Amount)
	if err != nil {
		return domain.TransactionResult{}, domain.ErrInvalidAmount
	}

	w, ok := s.wallet(arg.WalletID)
	if !ok {
		return domain.TransactionResult{}, domain.ErrWalletNotFound
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// The wallet could have been deleted while waiting for the lock.
	if w.deleted {
		return domain.TransactionResult{}, domain.ErrWalletNotFound
	}

	newBalance := w.balance.Add(amount)
	if newBalance.IsNegative() {
		l.Info().Err(domain.ErrInsufficientBalance).Msgf("Record(ctx, %+v) rejected", arg)
		return domain.TransactionResult{}, domain.ErrInsufficientBalance
	}

	if _, exists := s.txids.LoadOrStore(arg.TxID, struct{}{}); exists {
		l.Info().Err(domain.ErrDuplicateTxid).Msgf("Record(ctx, %+v) rejected", arg)
		return domain.TransactionResult{}, domain.ErrDuplicateTxid
	}

	t := &transaction{
		id:        s.lastTxID.Add(1),
		walletID:  w.id,
		txid:      arg.TxID,
		amount:    amount,
		createdAt: s.now(),
	}

	w.balance = newBalance
	s.transactions.Store(t.id, t)

	return domain.TransactionResult{Transaction: t.domain(), Wallet: w.domainLocked()}, nil
}

// Amend changes the amount of the recorded transaction and adjusts its wallet
// balance by the difference between the new and the old amount.
func (s *Store) Amend(ctx context.Context, arg domain.AmendTransactionParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	newAmount, err := moneypkg.Parse(arg.Amount)
	if err != nil {
		return domain.TransactionResult{}, domain.ErrInvalidAmount
	}

	// walletID never changes, so it is safe to resolve it before locking.
	t, ok := s.transaction(arg.ID)
	if !ok {
		return domain.TransactionResult{}, domain.ErrTransactionNotFound
	}

	w, ok := s.wallet(t.walletID)
	if !ok {
		return domain.TransactionResult{}, domain.ErrTransactionNotFound
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.deleted {
		return domain.TransactionResult{}, domain.ErrTransactionNotFound
	}

	// Reload, another amend could have replaced it while waiting for the lock.
	t, ok = s.transaction(arg.ID)
	if !ok {
		return domain.TransactionResult{}, domain.ErrTransactionNotFound
	}

	newBalance := w.balance.Add(newAmount.Sub(t.amount))
	if newBalance.IsNegative() {
		l.Info().Err(domain.ErrInsufficientBalance).Msgf("Amend(ctx, %+v) rejected", arg)
		return domain.TransactionResult{}, domain.ErrInsufficientBalance
	}

	amended := *t
	amended.amount = newAmount

	w.balance = newBalance
	s.transactions.Store(amended.id, &amended)

	return domain.TransactionResult{Transaction: amended.domain(), Wallet: w.domainLocked()}, nil
}

// GetTransaction returns the transaction with the given id.
func (s *Store) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	t, ok := s.transaction(id)
	if !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}

	return t.domain(), nil
}

type transactionRow struct {
	domain.Transaction
	walletLabel string
}

// ListTransactions returns transactions matching the given filters in the requested order.
func (s *Store) ListTransactions(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	var amount *decimal.Decimal

	if arg.Amount != nil {
		a, err := moneypkg.Parse(*arg.Amount)
		if err != nil {
			return []domain.Transaction{}, nil
		}

		amount = &a
	}

	rows := []transactionRow{}

	s.transactions.Range(func(_, v any) bool {
		t := v.(*transaction)

		// Skips rows of a wallet being deleted.
		w, ok := s.wallet(t.walletID)
		if !ok {
			return true
		}

		switch {
		case arg.TxID != nil && t.txid != *arg.TxID,
			arg.WalletID != nil && t.walletID != *arg.WalletID,
			arg.WalletLabel != nil && w.label != *arg.WalletLabel,
			amount != nil && !t.amount.Equal(*amount):
			return true
		}

		rows = append(rows, transactionRow{Transaction: t.domain(), walletLabel: w.label})

		return true
	})

	var less func(a, b transactionRow) int

	switch arg.Ordering.Field {
	case domain.TransactionOrderID:
		less = func(a, b transactionRow) int { return compareInt(a.ID, b.ID) }
	case domain.TransactionOrderWalletLabel:
		less = func(a, b transactionRow) int { return compareString(a.walletLabel, b.walletLabel) }
	case domain.TransactionOrderTxID:
		less = func(a, b transactionRow) int { return compareString(a.TxID, b.TxID) }
	case domain.TransactionOrderAmount:
		less = func(a, b transactionRow) int { return compareDecimal(a.Amount, b.Amount) }
	default:
		return nil, domain.ErrInvalidOrdering
	}

	sort.Slice(rows, func(i, j int) bool {
		c := less(rows[i], rows[j])
		if arg.Ordering.Desc {
			c = -c
		}

		if c == 0 {
			return rows[i].ID < rows[j].ID
		}

		return c < 0
	})

	res := make([]domain.Transaction, len(rows))
	for i, r := range rows {
		res[i] = r.Transaction
	}

	return paginate(res, arg.Limit, arg.Offset), nil
}

func paginate[T any](items []T, limit, offset int32) []T {
	if int(offset) >= len(items) {
		return []T{}
	}

	end := int(offset) + int(limit)
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end]
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}

// compareDecimal compares formatted amounts produced by the store itself.
func compareDecimal(a, b string) int {
	return decimal.RequireFromString(a).Cmp(decimal.RequireFromString(b))
}
