// Closer is the one-shot round closure job. Run it from a scheduler or by
// hand: it closes the given round (or the current open round) once it has a
// full set of participants, then exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frankieli/lotto_pool/internal/config"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/beacon"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/lock"
	lottodb "github.com/frankieli/lotto_pool/internal/modules/lotto/repository/db"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/usecase"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

func main() {
	roundID := flag.Uint64("round", 0, "Round id to close (0 = current open round)")
	dsn := flag.String("dsn", "", "Postgres DSN (overrides env config)")
	background := flag.Bool("d", false, "Run in background mode (disable console logging)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadLottoConfig()

	logger.InitWithFile(cfg.Server.LogFile, cfg.Server.LogLevel, "json", !*background)
	defer logger.Flush()

	if *dsn == "" {
		*dsn = cfg.DSN()
	}

	db, err := gorm.Open(postgres.Open(*dsn), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("failed to get database instance")
	}
	defer sqlDB.Close()

	ledger := lottodb.NewLedgerRepository(db)

	entry, err := decimal.NewFromString(cfg.EntryAmountBTC)
	if err != nil {
		logger.FatalGlobal().Err(err).Str("entry_amount", cfg.EntryAmountBTC).Msg("invalid entry amount")
	}
	settings := usecase.DefaultSettings(cfg.DepositAddress, cfg.AdminFeeAddress)
	settings.EntryAmount = entry

	var locker lock.CloseLocker
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		})
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, 30*time.Second)
	}

	source := beacon.NewBlockstreamSource(cfg.Beacon.BaseURL, cfg.Beacon.Timeout)
	registry := usecase.NewRegistry(ledger, cfg.DepositAddress)
	closer := usecase.NewCloser(ledger, source, registry, locker, settings)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	id := *roundID
	if id == 0 {
		current, err := registry.CurrentRound(ctx)
		if err != nil {
			logger.FatalGlobal().Err(err).Msg("no open round to close")
		}
		id = current.ID
	}

	result, err := closer.CloseRound(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientParticipants) {
			// Normal for a scheduled run: the round is not full yet.
			logger.InfoGlobal().Uint64("round_id", id).Err(err).Msg("round not ready to close")
			return
		}
		logger.ErrorGlobal().Err(err).Uint64("round_id", id).Msg("closure failed")
		if result != nil {
			// The draw committed; only post-closure steps failed.
			logger.ErrorGlobal().
				Uint64("round_id", result.RoundID).
				Str("winner_address", result.WinnerAddress).
				Msg("round is closed, run the reconciler to repair settlement")
		}
		logger.Flush()
		os.Exit(1)
	}

	logger.InfoGlobal().
		Uint64("round_id", result.RoundID).
		Str("beacon_hash", result.BeaconHash).
		Str("winner_address", result.WinnerAddress).
		Str("prize_amount", result.PrizeAmount.String()).
		Str("fee_amount", result.FeeAmount.String()).
		Uint64("next_round_id", result.NextRoundID).
		Msg("round closed")
}
