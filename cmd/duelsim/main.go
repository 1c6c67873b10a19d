// Package main runs batches of autopilot duels against the configured stores.
// It loads the weapon catalog and status definitions, builds the duel service
// and reports outcomes by weapon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Havocprime/Lowlife-New/internal/config"
	"github.com/Havocprime/Lowlife-New/internal/game/duel"
	"github.com/Havocprime/Lowlife-New/internal/game/status"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
	"github.com/Havocprime/Lowlife-New/internal/observability"
	duelrepo "github.com/Havocprime/Lowlife-New/internal/repositories/duels"
	"github.com/Havocprime/Lowlife-New/internal/services/duels"
	"github.com/Havocprime/Lowlife-New/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	count := flag.Int("duels", 100, "number of duels to run")
	concurrency := flag.Int("concurrency", 8, "duels run at once")
	health := flag.Int("health", 30, "starting health of every combatant")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("loading .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *count < 0 || *concurrency < 1 || *health < 1 {
		log.Fatalf("duels must be >= 0, concurrency and health >= 1")
	}

	logger, err := observability.NewLogger("duelsim", cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := weapon.LoadDir(cfg.Duel.WeaponsDir)
	if err != nil {
		logger.Fatal("loading weapons", zap.Error(err))
	}
	statuses := status.DefaultRegistry()
	if cfg.Duel.StatusesFile != "" {
		if statuses, err = status.LoadFile(cfg.Duel.StatusesFile); err != nil {
			logger.Fatal("loading statuses", zap.Error(err))
		}
	}
	logger.Info("rules loaded",
		zap.Int("weapons", cat.Len()),
		zap.Strings("bands", cat.Bands()),
		zap.Int("statuses", len(statuses.All())),
	)

	repo := duelrepo.NewInMemoryRepository()
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("connecting to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		repo = duelrepo.NewRedisRepository(&duelrepo.RedisRepoConfig{Client: client, TTL: cfg.Redis.ActiveTTL})
		logger.Info("using redis for active duels", zap.String("addr", cfg.Redis.Addr))
	}

	var archive duels.Archive
	if cfg.Database.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("archive database unhealthy", zap.Error(err))
		}
		archive = pool.Archive()
	}

	svc := duels.NewService(&duels.ServiceConfig{
		Repository:   repo,
		Archive:      archive,
		Catalog:      cat,
		Statuses:     statuses,
		Logger:       logger,
		StartingBand: cfg.Duel.StartingBand,
		MaxTurns:     cfg.Duel.MaxTurns,
		TurnLimit:    duel.TurnLimitPolicy(cfg.Duel.TurnLimit),
	})

	r, err := newRoster(cat, *health)
	if err != nil {
		logger.Fatal("building roster", zap.Error(err))
	}
	t, err := simulate(ctx, svc, cat, r, *count, *concurrency, logger)
	if err != nil {
		logger.Error("simulation stopped", zap.Error(err), zap.Int("completed", t.Duels))
	}

	report(t)
	logger.Info("simulation finished",
		zap.Int("duels", t.Duels),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		os.Exit(1)
	}
}

func report(t *tally) {
	ids := make([]string, 0, len(t.Wins))
	for id := range t.Wins {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if t.Wins[ids[i]] != t.Wins[ids[j]] {
			return t.Wins[ids[i]] > t.Wins[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		fmt.Fprintf(os.Stdout, "%-10s %5d wins\n", id, t.Wins[id])
	}
	avg := 0.0
	if t.Duels > 0 {
		avg = float64(t.Turns) / float64(t.Duels)
	}
	fmt.Fprintf(os.Stdout, "draws %d  aborted %d  duels %d  avg turns %.1f\n", t.Draws, t.Aborted, t.Duels, avg)
}
