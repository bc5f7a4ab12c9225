// Package main runs the wallet API to manage wallets and their transactions.
package main

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-wallet/cmd/httpserver"
	"github.com/go-petr/pet-wallet/internal/eventpublisher"
	"github.com/go-petr/pet-wallet/internal/memstore"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/pkg/cachepkg"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	var db *sql.DB

	if config.DBDriver != memstore.Driver {
		db, err = dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}
		defer db.Close()
	}

	var opts []httpserver.Option

	if config.RedisURL != "" {
		cache, err := cachepkg.Setup(context.Background(), config.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to redis")
		}
		defer cache.Close()

		opts = append(opts, httpserver.WithCache(cache))
	}

	if brokers := config.Brokers(); len(brokers) > 0 {
		publisher := eventpublisher.NewKafka(brokers, config.KafkaTopic)
		defer publisher.Close()

		opts = append(opts, httpserver.WithPublisher(publisher))
	}

	server, err := httpserver.New(db, logger, config, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("driver", config.DBDriver).Msg("WALLET API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
