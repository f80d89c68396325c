package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"steeple/internal/config"
	"steeple/internal/healthcheck"
	"steeple/internal/logging"
	"steeple/internal/reconcile"
	"steeple/internal/runstore"
	"steeple/internal/services/publishing"
	"steeple/internal/services/videocatalog"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// runEnvironment holds everything a reconciliation command needs. Close
// releases the run lock and the store.
type runEnvironment struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   reconcile.Deps
	lock   *runstore.Lock
}

func (e *runEnvironment) Close() {
	if e.lock != nil {
		_ = e.lock.Release()
	}
	if e.deps.Store != nil {
		_ = e.deps.Store.Close()
	}
}

// openRunEnvironment wires clients, store, and logger, and takes the run
// lock so two reconciliation processes never race each other.
func (c *commandContext) openRunEnvironment() (*runEnvironment, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	lock, err := runstore.NewLock(cfg)
	if err != nil {
		return nil, err
	}
	if err := lock.Acquire(); err != nil {
		return nil, err
	}

	store, err := runstore.Open(cfg)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}

	pub, err := publishing.New(cfg.Publishing.AppID, cfg.Publishing.Secret,
		cfg.Publishing.BaseURL, cfg.Publishing.ChannelID)
	if err != nil {
		_ = lock.Release()
		_ = store.Close()
		return nil, err
	}
	catalog, err := videocatalog.New(cfg.VideoCatalog.APIKey,
		cfg.VideoCatalog.BaseURL, cfg.VideoCatalog.ChannelID)
	if err != nil {
		_ = lock.Release()
		_ = store.Close()
		return nil, err
	}

	return &runEnvironment{
		cfg:    cfg,
		logger: logger,
		deps: reconcile.Deps{
			Publishing: pub,
			Catalog:    catalog,
			Store:      store,
			Pinger:     healthcheck.NewPinger(cfg),
			Logger:     logger,
		},
		lock: lock,
	}, nil
}

// openStore opens the run store without taking the lock, for read-only
// inspection commands.
func (c *commandContext) openStore() (*runstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return runstore.Open(cfg)
}
