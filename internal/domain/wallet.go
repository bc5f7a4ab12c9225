// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrWalletNotFound indicates that the wallet is not found.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrEmptyLabel indicates that the wallet label is empty.
	ErrEmptyLabel = errors.New("label must not be empty")
	// ErrNegativeBalance indicates that the initial wallet balance is negative.
	ErrNegativeBalance = errors.New("balance must not be negative")
)

// Wallet holds a non-negative balance.
type Wallet struct {
	ID        int64     `json:"id" db:"id"`
	Label     string    `json:"label" db:"label"`
	Balance   string    `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Wallet fields allowed in the ordering parameter.
const (
	WalletOrderID      = "id"
	WalletOrderLabel   = "label"
	WalletOrderBalance = "balance"
)

// ListWalletsParams is the input data to list wallets.
//
// Nil filters are not applied.
type ListWalletsParams struct {
	Label    *string
	Balance  *string
	Ordering Ordering
	Limit    int32
	Offset   int32
}
