//go:build integration

package httpserver_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/integrationtest"
	"github.com/go-petr/pet-wallet/internal/integrationtest/helpers"
)

func TestCreateTransactionAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	wallet := helpers.SeedWallet(t, server.DB, "100")

	code, res := createTransaction(t, server, wallet.ID, "T1", "-50")
	require.Equal(t, http.StatusCreated, code, res.Error)
	require.Equal(t, "50.00", res.Data.Wallet.Balance)

	code, res = createTransaction(t, server, wallet.ID, "T2", "-50.01")
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, domain.ErrInsufficientBalance.Error(), res.Error)

	code, res = createTransaction(t, server, wallet.ID, "T1", "1")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, domain.ErrDuplicateTxid.Error(), res.Error)

	code, got := do[walletData](t, server, http.MethodGet, fmt.Sprintf("/wallets/%d", wallet.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "50.00", got.Data.Wallet.Balance)
}
