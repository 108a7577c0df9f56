package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmlauncher/internal/config"
	"llmlauncher/internal/dispatch"
	"llmlauncher/internal/instances"
	"llmlauncher/internal/launcher"
	"llmlauncher/internal/registry"
)

// flagValues holds persistent flag values; only flags the user set override
// the resolved configuration.
type flagValues struct {
	familiesDir string
	store       string
	storePath   string
	redisAddr   string
	logLevel    string
	concurrency int
	timeout     int
}

type app struct {
	version    string
	out        io.Writer
	errOut     io.Writer
	configPath string
	flags      flagValues

	cfg config.Config
	log zerolog.Logger
}

// setup resolves defaults, config file, environment and flags, in that order.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if a.version != "" && cfg.Version == config.Default().Version {
		cfg.Version = a.version
	}
	f := cmd.Flags()
	if f.Changed("families-dir") {
		cfg.FamiliesDir = a.flags.familiesDir
	}
	if f.Changed("store") {
		cfg.Store = a.flags.store
	}
	if f.Changed("store-path") {
		cfg.StorePath = a.flags.storePath
	}
	if f.Changed("redis-addr") {
		cfg.RedisAddr = a.flags.redisAddr
	}
	if f.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = a.flags.concurrency
	}
	if f.Changed("timeout") {
		cfg.RequestTimeoutSeconds = a.flags.timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	a.log = newLogger(a.errOut, cfg.LogLevel)
	return nil
}

// openLauncher loads the families, opens the configured instance store and
// wires the dispatcher. The returned func releases the store backend.
func (a *app) openLauncher(ctx context.Context) (*launcher.Launcher, func(), error) {
	reg, err := registry.LoadDir(a.cfg.FamiliesDir)
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug().Int("families", reg.Len()).Str("dir", a.cfg.FamiliesDir).Msg("families loaded")

	p, closeStore, err := a.persister()
	if err != nil {
		return nil, nil, err
	}
	store, err := instances.Open(ctx, p, a.log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	tr := dispatch.NewRestyTransport(time.Duration(a.cfg.RequestTimeoutSeconds)*time.Second, "llmlauncher/"+a.cfg.Version)
	disp := dispatch.New(dispatch.Config{Transport: tr, Concurrency: a.cfg.Concurrency, Logger: &a.log})
	l := launcher.New(launcher.Config{
		Registry:   reg,
		Store:      store,
		Dispatcher: disp,
		Logger:     &a.log,
		Version:    a.cfg.Version,
	})
	return l, closeStore, nil
}

func (a *app) persister() (instances.Persister, func(), error) {
	switch a.cfg.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		return instances.NewRedisPersister(client, a.cfg.RedisKey), func() { _ = client.Close() }, nil
	case config.StoreMemory:
		return instances.NewMemoryPersister(instances.Snapshot{}), func() {}, nil
	default:
		fp, err := instances.NewFilePersister(a.cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return fp, func() {}, nil
	}
}
