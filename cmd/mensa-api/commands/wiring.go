package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Keksclan/goMensaSquirrel/breaker"
	"github.com/Keksclan/goMensaSquirrel/config"
	"github.com/Keksclan/goMensaSquirrel/durable"
	"github.com/Keksclan/goMensaSquirrel/durable/mongostore"
	"github.com/Keksclan/goMensaSquirrel/durable/redisstore"
	"github.com/Keksclan/goMensaSquirrel/durable/sqlitestore"
	"github.com/Keksclan/goMensaSquirrel/retry"
	"go.trai.ch/zerr"
)

// connectRetry bounds how long startup waits for a durable backend.
var connectRetry = retry.Config{
	MaxAttempts: 5,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
	Jitter:      0.2,
}

// openStore connects the configured backend, retrying transient failures,
// and guards it with a circuit breaker. It returns nil when no driver is
// configured.
func openStore(ctx context.Context, cfg config.Durable, log *slog.Logger) (*durable.Guarded, error) {
	if cfg.Driver == config.DriverNone {
		log.Warn("no durable store configured, running without one")
		return nil, nil
	}

	rc := connectRetry
	rc.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("could not connect to durable store, retrying",
			"driver", cfg.Driver, "attempt", attempt, "delay", delay, "error", err)
	}

	log.Info("connecting to durable store", "driver", cfg.Driver)
	store, err := retry.Do(ctx, rc, func(ctx context.Context) (durable.Store, error) {
		return dial(ctx, cfg)
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "connect durable store"), "driver", cfg.Driver)
	}
	log.Info("connected to durable store", "driver", cfg.Driver)

	return durable.Guard(store, breaker.DefaultConfig(), breaker.OnStateChange(func(from, to breaker.State) {
		log.Warn("durable store breaker changed state", "from", from.String(), "to", to.String())
	})), nil
}

func dial(ctx context.Context, cfg config.Durable) (durable.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.URL, cfg.Database)
	case config.DriverRedis:
		s := redisstore.New(cfg.RedisAddr, "", 0)
		if err := s.Ping(ctx); err != nil {
			return nil, errors.Join(err, s.Close(ctx))
		}
		return s, nil
	case config.DriverSQLite:
		return sqlitestore.Open(ctx, cfg.SQLitePath)
	}
	return nil, zerr.With(config.ErrUnknownDriver, "driver", cfg.Driver)
}
