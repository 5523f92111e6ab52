package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/suPer8Hu/audios-sac-extract/internal/config"
	"github.com/suPer8Hu/audios-sac-extract/internal/db"
	"github.com/suPer8Hu/audios-sac-extract/internal/extract"
	"github.com/suPer8Hu/audios-sac-extract/internal/genesys"
	"github.com/suPer8Hu/audios-sac-extract/internal/logger"
	"github.com/suPer8Hu/audios-sac-extract/internal/metrics"
	"github.com/suPer8Hu/audios-sac-extract/internal/notify"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/rabbitmq"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/redisstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type app struct {
	cfg     config.Config
	loc     *time.Location
	log     *zap.Logger
	db      *gorm.DB
	reg     *prometheus.Registry
	metrics *metrics.Run
	svc     *extract.Service

	closers []func() error
}

// base opens the logger and the database for cfg.
func base(cfg config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE %q: %w", cfg.Timezone, err)
	}
	log, err := logger.New(cfg.LogLevel, loc)
	if err != nil {
		return nil, err
	}
	if cfg.DBDSN == "" {
		return nil, config.MissingKey("DB_DSN")
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN, cfg.DBSchema, log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, loc: loc, log: log, db: gdb}
	a.closers = append(a.closers, func() error { return db.Close(gdb) })
	return a, nil
}

// bootstrap wires everything a run needs.
func bootstrap(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	a, err := base(cfg)
	if err != nil {
		return nil, err
	}
	log := a.log
	log.Info("configuration loaded", zap.Any("config", a.cfg.Masked()))

	client, err := genesys.NewClient(genesys.Options{
		Environment:  a.cfg.GenesysEnvironment,
		ClientID:     a.cfg.GenesysClientID,
		ClientSecret: a.cfg.GenesysClientSecret,
		RateLimit:    a.cfg.GenesysRateLimit,
	}, log)
	if err != nil {
		a.close()
		return nil, err
	}

	a.reg = prometheus.NewRegistry()
	a.metrics = metrics.New(a.reg, log)

	deps := extract.Deps{
		Catalog:  client,
		Jobs:     store.NewJobRepo(a.db),
		Batches:  store.NewBatchRepo(a.db),
		Audios:   store.NewAudioRepo(a.db),
		Notifier: notify.New(a.cfg.NotifyURL, a.cfg.Recipients(), a.cfg.EmailMessage, a.loc, log),
		Metrics:  a.metrics,
		Log:      log,
	}

	if a.cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(a.cfg.RabbitURL, a.cfg.RabbitQueue)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		deps.Publisher = pub
		a.closers = append(a.closers, pub.Close)
		log.Info("batch events enabled", zap.String("queue", a.cfg.RabbitQueue))
	}

	if a.cfg.RedisAddr != "" {
		rds := redisstore.New(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rds.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = rds.Close()
			a.close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		deps.Locker = rds
		a.closers = append(a.closers, rds.Close)
		log.Info("run lock enabled", zap.String("redis", a.cfg.RedisAddr))
	}

	a.svc = extract.NewService(deps, extract.Options{
		QueueID:        a.cfg.GenesysQueueID,
		BatchSize:      a.cfg.BatchSize,
		ResolveWorkers: a.cfg.ResolveWorkers,
		Dedupe:         a.cfg.Dedupe,
		Location:       a.loc,
		LockTTL:        a.cfg.LockTTL,
	})
	return a, nil
}

// runAndPush runs one extraction and pushes its metrics when a gateway is
// configured. A push failure is only logged.
func (a *app) runAndPush(ctx context.Context) error {
	err := a.svc.Run(ctx)
	if a.cfg.PushgatewayURL != "" {
		if perr := a.metrics.Push(context.WithoutCancel(ctx), a.cfg.PushgatewayURL); perr != nil {
			a.log.Warn("push metrics", zap.Error(perr))
		}
	}
	return err
}

func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("shutdown", zap.Error(err))
	}
	_ = a.log.Sync()
}
