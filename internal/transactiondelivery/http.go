// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/pagepkg"
	"github.com/go-petr/pet-wallet/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionResult, error)
	Amend(ctx context.Context, arg domain.AmendTransactionParams) (domain.TransactionResult, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service     Service
	pageSize    int32
	maxPageSize int32
}

// NewHandler returns transaction handler.
func NewHandler(ts Service, pageSize, maxPageSize int32) Handler {
	return Handler{
		service:     ts,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type responseResult struct {
	Data domain.TransactionResult `json:"data,omitempty"`
}

func errorStatus(err error) int {
	switch err {
	case domain.ErrEmptyTxid, domain.ErrInvalidAmount, domain.ErrInvalidOrdering, domain.ErrDuplicateTxid:
		return http.StatusBadRequest
	case domain.ErrWalletNotFound, domain.ErrTransactionNotFound:
		return http.StatusNotFound
	case domain.ErrInsufficientBalance:
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func writeError(gctx *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(status, web.Error(err))
}

type createRequest struct {
	WalletID int64  `json:"wallet_id" binding:"required,min=1"`
	TxID     string `json:"txid" binding:"required,max=255"`
	Amount   string `json:"amount" binding:"required,amount"`
}

// Create handles http request to record transaction.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	result, err := h.service.Create(ctx, domain.CreateTransactionParams{
		WalletID: req.WalletID,
		TxID:     req.TxID,
		Amount:   req.Amount,
	})
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, responseResult{Data: result})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type amendRequest struct {
	Amount string `json:"amount" binding:"required,amount"`
}

// Amend handles http request to change transaction amount.
func (h *Handler) Amend(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	var req amendRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	result, err := h.service.Amend(ctx, domain.AmendTransactionParams{ID: uri.ID, Amount: req.Amount})
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseResult{Data: result})
}

// Get handles http request to get transaction.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	transaction, err := h.service.Get(ctx, req.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{transaction}})
}

type listRequest struct {
	PageNumber  int32   `form:"page_number" binding:"omitempty,min=1,max=1000000"`
	PageLength  int32   `form:"page_length" binding:"omitempty,min=1"`
	TxID        *string `form:"txid"`
	WalletID    *int64  `form:"wallet"`
	WalletLabel *string `form:"wallet_label"`
	Amount      *string `form:"amount"`
	Ordering    string  `form:"ordering"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
	pagepkg.Page
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to list transactions.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	ordering, err := domain.ParseOrdering(req.Ordering,
		domain.TransactionOrderID,
		domain.TransactionOrderWalletLabel,
		domain.TransactionOrderTxID,
		domain.TransactionOrderAmount,
	)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	page := pagepkg.New(req.PageNumber, req.PageLength, h.pageSize, h.maxPageSize)

	transactions, err := h.service.List(ctx, domain.ListTransactionsParams{
		TxID:        req.TxID,
		WalletID:    req.WalletID,
		WalletLabel: req.WalletLabel,
		Amount:      req.Amount,
		Ordering:    ordering,
		Limit:       page.Limit(),
		Offset:      page.Offset(),
	})
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{Transactions: transactions, Page: page}})
}
