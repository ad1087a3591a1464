package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nhle/fintrack/internal/credential"
	"github.com/nhle/fintrack/internal/logging"
	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
	"github.com/nhle/fintrack/internal/source/finance"
	"github.com/nhle/fintrack/internal/store"
)

// runtime holds the wired components shared by every command.
type runtime struct {
	cfg      *model.AppConfig
	cfgPath  string
	category model.Category
	kv       store.KV
	remote   *finance.Adapter
	local    *notify.LocalStore
	agg      *notify.Aggregator
	log      logrus.FieldLogger
}

// loadEnv reads .env from the working directory when present.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// bootstrap loads configuration and opens every dependency. Call close
// on the result when done.
func bootstrap(ctx context.Context) (*runtime, error) {
	if err := loadEnv(); err != nil {
		return nil, err
	}

	category, err := model.ParseCategory(global.Category)
	if err != nil {
		return nil, err
	}

	path := global.Config
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if global.LogLevel != "" {
		cfg.Log.Level = global.LogLevel
	}
	if err := logging.Init(cfg.Log); err != nil {
		return nil, err
	}
	log := logging.For("main")

	kv, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	token, err := credential.APIToken()
	if err != nil {
		log.WithError(err).Warn("API token unavailable, continuing unauthenticated")
	}

	remote := finance.NewAdapter(cfg.API, cfg.Breaker, token, logging.For("finance"))
	local := notify.NewLocalStore(kv, logging.For("local"))
	agg := notify.New(remote, local, notify.Options{
		SeedDemo:                  cfg.Notifications.SeedDemo,
		LargeTransactionThreshold: cfg.Notifications.LargeTransactionThreshold,
		FeedOptions:               remote.FeedOptions,
		Logger:                    logging.For("aggregator"),
	})

	log.WithFields(logrus.Fields{
		"api":      cfg.API.BaseURL,
		"storage":  cfg.Storage.Backend,
		"category": category,
	}).Info("fintrack started")

	return &runtime{
		cfg:      cfg,
		cfgPath:  path,
		category: category,
		kv:       kv,
		remote:   remote,
		local:    local,
		agg:      agg,
		log:      log,
	}, nil
}

// probe checks that the finance API answers with api settings, using
// the currently stored token.
func (rt *runtime) probe(ctx context.Context, api model.APIConfig) error {
	token, err := credential.APIToken()
	if err != nil {
		return err
	}
	a := finance.NewAdapter(api, rt.cfg.Breaker, token, logging.For("probe"))
	if _, err := a.Summary(ctx); err != nil {
		return err
	}
	return nil
}

func (rt *runtime) close() {
	if err := rt.kv.Close(); err != nil {
		rt.log.WithError(err).Warn("closing store")
	}
}
