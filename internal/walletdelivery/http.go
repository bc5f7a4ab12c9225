// Package walletdelivery manages delivery layer of wallets.
package walletdelivery

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

// Service provides service layer interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Service interface {
	Create(ctx context.Context, label, balance string) (domain.Wallet, error)
	Get(ctx context.Context, id int64) (domain.Wallet, error)
	List(ctx context.Context, arg domain.ListWalletsParams) ([]domain.Wallet, error)
}

// Handler facilitates wallet delivery layer logic.
type Handler struct {
	service     Service
	pageSize    int32
	maxPageSize int32
}

// NewHandler returns wallet handler.
func NewHandler(ws Service, pageSize, maxPageSize int32) Handler {
	return Handler{
		service:     ws,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

type data struct {
	Wallet domain.Wallet `json:"wallet"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func errorStatus(err error) int {
	switch err {
	case domain.ErrEmptyLabel, domain.ErrInvalidAmount, domain.ErrNegativeBalance, domain.ErrInvalidOrdering:
		return http.StatusBadRequest
	case domain.ErrWalletNotFound:
		return http.StatusNotFound
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
	Label   string `json:"label" binding:"required,max=255"`
	Balance string `json:"balance" binding:"omitempty,amount"`
}

// Create handles http request to create wallet.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	wallet, err := h.service.Create(ctx, req.Label, req.Balance)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{wallet}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get wallet.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	wallet, err := h.service.Get(ctx, req.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{wallet}})
}

type listRequest struct {
	PageNumber int32   `form:"page_number" binding:"omitempty,min=1,max=1000000"`
	PageLength int32   `form:"page_length" binding:"omitempty,min=1"`
	Label      *string `form:"label"`
	Balance    *string `form:"balance"`
	Ordering   string  `form:"ordering"`
}

type dataWallets struct {
	Wallets []domain.Wallet `json:"wallets"`
	pagepkg.Page
}
type responseWallets struct {
	Data dataWallets `json:"data,omitempty"`
}

// List handles http request to list wallets.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	ordering, err := domain.ParseOrdering(req.Ordering, domain.WalletOrderID, domain.WalletOrderLabel, domain.WalletOrderBalance)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	page := pagepkg.New(req.PageNumber, req.PageLength, h.pageSize, h.maxPageSize)

	wallets, err := h.service.List(ctx, domain.ListWalletsParams{
		Label:    req.Label,
		Balance:  req.Balance,
		Ordering: ordering,
		Limit:    page.Limit(),
		Offset:   page.Offset(),
	})
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseWallets{Data: dataWallets{Wallets: wallets, Page: page}})
}
