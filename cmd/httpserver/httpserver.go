// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/eventpublisher"
	"github.com/go-petr/pet-wallet/internal/memstore"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/internal/transactiondelivery"
	"github.com/go-petr/pet-wallet/internal/transactionrepo"
	"github.com/go-petr/pet-wallet/internal/transactionservice"
	"github.com/go-petr/pet-wallet/internal/walletdelivery"
	"github.com/go-petr/pet-wallet/internal/walletrepo"
	"github.com/go-petr/pet-wallet/internal/walletservice"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/moneypkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

type options struct {
	cache     *redis.Client
	publisher transactionservice.Publisher
}

// Option configures optional server dependencies.
type Option func(*options)

// WithCache enables Idempotency-Key handling backed by the given redis client.
func WithCache(c *redis.Client) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithPublisher sets the publisher of transaction events.
func WithPublisher(p transactionservice.Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// New creates Server type with instantiated domains and routes.
//
// conn is not used and may be nil when config.DBDriver is memstore.Driver.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config, opts ...Option) (*Server, error) {
	o := options{publisher: eventpublisher.Log{}}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		walletRepo      walletservice.Repo
		transactionRepo transactionservice.Repo
	)

	switch config.DBDriver {
	case memstore.Driver:
		store := memstore.New()
		walletRepo = store
		transactionRepo = store.Transactions()
	default:
		if conn == nil {
			return nil, errors.New("database connection is required")
		}

		walletRepo = walletrepo.NewRepoPGS(conn)
		transactionRepo = transactionrepo.NewRepoPGS(conn)
	}

	walletService := walletservice.New(walletRepo)
	transactionService := transactionservice.New(transactionRepo, o.publisher)

	walletHandler := walletdelivery.NewHandler(walletService, config.PageSize, config.MaxPageSize)
	transactionHandler := transactiondelivery.NewHandler(transactionService, config.PageSize, config.MaxPageSize)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	if o.cache != nil {
		engine.Use(middleware.Idempotency(o.cache, config.IdempotencyTTL))
	}

	engine.POST("/wallets", walletHandler.Create)
	engine.GET("/wallets", walletHandler.List)
	engine.GET("/wallets/:id", walletHandler.Get)

	engine.POST("/transactions", transactionHandler.Create)
	engine.GET("/transactions", transactionHandler.List)
	engine.GET("/transactions/:id", transactionHandler.Get)
	engine.PATCH("/transactions/:id", transactionHandler.Amend)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("amount", moneypkg.ValidAmount)
		if err != nil {
			return nil, errors.New("cannot register amount validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
