package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-wallet/cmd/httpserver"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/memstore"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupServer(t *testing.T, opts ...httpserver.Option) *httpserver.Server {
	t.Helper()

	config := configpkg.Config{
		DBDriver:       memstore.Driver,
		PageSize:       10,
		MaxPageSize:    1000,
		IdempotencyTTL: time.Minute,
	}

	server, err := httpserver.New(nil, zerolog.Nop(), config, opts...)
	if err != nil {
		t.Fatalf("httpserver.New(nil, logger, %+v) returned error: %v", config, err)
	}

	return server
}

type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

func do[T any](t *testing.T, server http.Handler, method, path string, body any, header ...string) (int, envelope[T]) {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}

		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	var res envelope[T]
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return recorder.Code, res
}

type walletData struct {
	Wallet domain.Wallet `json:"wallet"`
}

type walletsData struct {
	Wallets    []domain.Wallet `json:"wallets"`
	PageNumber int32           `json:"page_number"`
	PageLength int32           `json:"page_length"`
}

type transactionsData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

func createWallet(t *testing.T, server http.Handler, balance string) domain.Wallet {
	t.Helper()

	code, res := do[walletData](t, server, http.MethodPost, "/wallets", gin.H{"label": "main", "balance": balance})
	require.Equal(t, http.StatusCreated, code, res.Error)

	return res.Data.Wallet
}

func createTransaction(t *testing.T, server http.Handler, walletID int64, txid, amount string) (int, envelope[domain.TransactionResult]) {
	t.Helper()

	return do[domain.TransactionResult](t, server, http.MethodPost, "/transactions",
		gin.H{"wallet_id": walletID, "txid": txid, "amount": amount})
}

func TestWalletLifecycle(t *testing.T) {
	server := setupServer(t)

	wallet := createWallet(t, server, "100")
	require.Equal(t, "100.00", wallet.Balance)

	code, res := createTransaction(t, server, wallet.ID, "T1", "-50")
	require.Equal(t, http.StatusCreated, code, res.Error)
	require.Equal(t, "50.00", res.Data.Wallet.Balance)
	require.Equal(t, "-50.00", res.Data.Transaction.Amount)

	code, res = createTransaction(t, server, wallet.ID, "T2", "-100")
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, domain.ErrInsufficientBalance.Error(), res.Error)

	code, res = createTransaction(t, server, wallet.ID, "T1", "5")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, domain.ErrDuplicateTxid.Error(), res.Error)

	code, res = createTransaction(t, server, wallet.ID+100, "T3", "5")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, domain.ErrWalletNotFound.Error(), res.Error)

	code, got := do[walletData](t, server, http.MethodGet, fmt.Sprintf("/wallets/%d", wallet.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "50.00", got.Data.Wallet.Balance)
}

func TestAmendTransaction(t *testing.T) {
	server := setupServer(t)

	wallet := createWallet(t, server, "100")

	code, res := createTransaction(t, server, wallet.ID, "T1", "-50")
	require.Equal(t, http.StatusCreated, code, res.Error)

	path := fmt.Sprintf("/transactions/%d", res.Data.Transaction.ID)

	code, res = do[domain.TransactionResult](t, server, http.MethodPatch, path, gin.H{"amount": "-20"})
	require.Equal(t, http.StatusOK, code, res.Error)
	require.Equal(t, "-20.00", res.Data.Transaction.Amount)
	require.Equal(t, "80.00", res.Data.Wallet.Balance)

	code, res = do[domain.TransactionResult](t, server, http.MethodPatch, path, gin.H{"amount": "-200"})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, domain.ErrInsufficientBalance.Error(), res.Error)

	code, tr := do[struct {
		Transaction domain.Transaction `json:"transaction"`
	}](t, server, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "-20.00", tr.Data.Transaction.Amount)

	code, res = do[domain.TransactionResult](t, server, http.MethodPatch, "/transactions/1000", gin.H{"amount": "1"})
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, domain.ErrTransactionNotFound.Error(), res.Error)
}

func TestConcurrentDebits(t *testing.T) {
	server := setupServer(t)

	wallet := createWallet(t, server, "100")

	var wg sync.WaitGroup

	codes := make([]int, 2)

	for i := range codes {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			b, _ := json.Marshal(gin.H{"wallet_id": wallet.ID, "txid": fmt.Sprintf("T%d", i), "amount": "-60"})
			req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(b))
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)
			codes[i] = recorder.Code
		}(i)
	}

	wg.Wait()

	require.ElementsMatch(t, []int{http.StatusCreated, http.StatusUnprocessableEntity}, codes)

	code, got := do[walletData](t, server, http.MethodGet, fmt.Sprintf("/wallets/%d", wallet.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "40.00", got.Data.Wallet.Balance)
}

func TestListing(t *testing.T) {
	server := setupServer(t)

	w1 := createWallet(t, server, "10")
	w2 := createWallet(t, server, "30")
	w3 := createWallet(t, server, "20")

	code, res := do[walletsData](t, server, http.MethodGet, "/wallets?ordering=-balance&page_length=2", nil)
	require.Equal(t, http.StatusOK, code, res.Error)
	require.Len(t, res.Data.Wallets, 2)
	require.Equal(t, w2.ID, res.Data.Wallets[0].ID)
	require.Equal(t, w3.ID, res.Data.Wallets[1].ID)
	require.Equal(t, int32(1), res.Data.PageNumber)
	require.Equal(t, int32(2), res.Data.PageLength)

	code, res = do[walletsData](t, server, http.MethodGet, "/wallets?ordering=-balance&page_length=2&page_number=2", nil)
	require.Equal(t, http.StatusOK, code, res.Error)
	require.Len(t, res.Data.Wallets, 1)
	require.Equal(t, w1.ID, res.Data.Wallets[0].ID)

	code, res = do[walletsData](t, server, http.MethodGet, "/wallets?ordering=created_at", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, domain.ErrInvalidOrdering.Error(), res.Error)

	for i, w := range []domain.Wallet{w1, w2, w3} {
		code, _ := createTransaction(t, server, w.ID, fmt.Sprintf("T%d", i), "-5")
		require.Equal(t, http.StatusCreated, code)
	}

	code, txs := do[transactionsData](t, server, http.MethodGet, fmt.Sprintf("/transactions?wallet=%d", w2.ID), nil)
	require.Equal(t, http.StatusOK, code, txs.Error)
	require.Len(t, txs.Data.Transactions, 1)
	require.Equal(t, w2.ID, txs.Data.Transactions[0].WalletID)

	code, txs = do[transactionsData](t, server, http.MethodGet, "/transactions?amount=-5&ordering=-id", nil)
	require.Equal(t, http.StatusOK, code, txs.Error)
	require.Len(t, txs.Data.Transactions, 3)
	require.Equal(t, w3.ID, txs.Data.Transactions[0].WalletID)
}

func TestIdempotentCreate(t *testing.T) {
	mr := miniredis.RunT(t)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	server := setupServer(t, httpserver.WithCache(cache))

	wallet := createWallet(t, server, "100")

	body := gin.H{"wallet_id": wallet.ID, "txid": "T1", "amount": "-10"}

	code, first := do[domain.TransactionResult](t, server, http.MethodPost, "/transactions", body,
		middleware.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, code, first.Error)

	code, second := do[domain.TransactionResult](t, server, http.MethodPost, "/transactions", body,
		middleware.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, code, second.Error)
	require.Equal(t, first.Data, second.Data)

	code, got := do[walletData](t, server, http.MethodGet, fmt.Sprintf("/wallets/%d", wallet.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "90.00", got.Data.Wallet.Balance)
}

func TestNewRequiresConnection(t *testing.T) {
	_, err := httpserver.New(nil, zerolog.Nop(), configpkg.Config{DBDriver: "postgres"})
	require.Error(t, err)
}
