// Package helpers provides seed helpers shared by integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/transactionrepo"
	"github.com/go-petr/pet-wallet/internal/walletrepo"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/randompkg"
)

// SeedWallet creates Wallet with a random label and the given balance.
func SeedWallet(t *testing.T, db dbpkg.SQLInterface, balance string) domain.Wallet {
	t.Helper()

	label := randompkg.Label()

	wallet, err := walletrepo.NewRepoPGS(db).Create(context.Background(), label, balance)
	if err != nil {
		t.Fatalf("walletRepo.Create(context.Background(), %v, %v) returned error: %v", label, balance, err)
	}

	return wallet
}

// SeedTransaction inserts Transaction row without changing the wallet balance.
func SeedTransaction(t *testing.T, db dbpkg.SQLInterface, walletID int64, amount string) domain.Transaction {
	t.Helper()

	arg := domain.CreateTransactionParams{
		WalletID: walletID,
		TxID:     randompkg.TxID(),
		Amount:   amount,
	}

	transaction, err := transactionrepo.NewTxRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return transaction
}
