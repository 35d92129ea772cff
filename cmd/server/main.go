package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nftmarket/auction-engine/internal/adapter/cache"
	"github.com/nftmarket/auction-engine/internal/adapter/in_memory"
	"github.com/nftmarket/auction-engine/internal/adapter/pg"
	httpapi "github.com/nftmarket/auction-engine/internal/api/http"
	"github.com/nftmarket/auction-engine/internal/config"
	"github.com/nftmarket/auction-engine/internal/core"
	"github.com/nftmarket/auction-engine/internal/port"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	var repo port.Repository
	if cfg.PostgresDSN != "" {
		pgRepo, err := pg.NewPgRepo(ctx, cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to Postgres")
		}
		defer pgRepo.Close(ctx)
		repo = pgRepo
	} else {
		log.Warn("no Postgres DSN configured, using in-memory repository")
		repo = in_memory.NewMemoryRepo()
	}

	var (
		snapCache port.Cache
		sink      port.EventSink
	)
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		snapCache = redisCache
		sink = cache.NewEventPublisher(redisCache.Underlying(), log)
	} else {
		log.Warn("no Redis address configured, using in-memory cache")
		snapCache = in_memory.NewCache()
		sink = in_memory.NewRecordingSink()
	}

	ledger := in_memory.NewLedger()
	registry := in_memory.NewRegistry()

	market := core.NewMarket(cfg.Market, ledger, registry, in_memory.WallClock{}, repo, snapCache, sink, log)
	if err := market.LoadFromRepository(ctx); err != nil {
		log.WithError(err).Fatal("failed to restore market state")
	}

	server := httpapi.NewHTTPServer(market)
	log.WithField("addr", cfg.HTTPAddr).Info("starting HTTP server")
	if err := server.Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("HTTP server failed")
	}
}
