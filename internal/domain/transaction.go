package domain

import (
	"errors"
	"time"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateTxid indicates that a transaction with the given txid already exists.
	ErrDuplicateTxid = errors.New("transaction with this txid already exists")
	// ErrEmptyTxid indicates that the txid is empty.
	ErrEmptyTxid = errors.New("txid must not be empty")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance indicates that the wallet balance would become negative.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Transaction holds a signed amount applied to a wallet.
type Transaction struct {
	ID        int64     `json:"id" db:"id"`
	WalletID  int64     `json:"wallet_id" db:"wallet_id"`
	TxID      string    `json:"txid" db:"txid"`
	Amount    string    `json:"amount" db:"amount"` // can be negative or positive
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateTransactionParams is the input data to record a transaction.
type CreateTransactionParams struct {
	WalletID int64  `json:"wallet_id"`
	TxID     string `json:"txid"`
	Amount   string `json:"amount"`
}

// AmendTransactionParams is the input data to change the amount of a recorded transaction.
type AmendTransactionParams struct {
	ID     int64  `json:"id"`
	Amount string `json:"amount"`
}

// TransactionResult is the result of a balance mutation.
type TransactionResult struct {
	Transaction Transaction `json:"transaction"`
	Wallet      Wallet      `json:"wallet"`
}

// Transaction fields allowed in the ordering parameter.
const (
	TransactionOrderID          = "id"
	TransactionOrderWalletLabel = "wallet_label"
	TransactionOrderTxID        = "txid"
	TransactionOrderAmount      = "amount"
)

// ListTransactionsParams is the input data to list transactions.
//
// Nil filters are not applied.
type ListTransactionsParams struct {
	TxID        *string
	WalletID    *int64
	WalletLabel *string
	Amount      *string
	Ordering    Ordering
	Limit       int32
	Offset      int32
}
