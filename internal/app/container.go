package app

import (
	"context"
	"errors"

	configapp "github.com/doeshing/exline/internal/application/config"
	"github.com/doeshing/exline/internal/application/doctor"
	"github.com/doeshing/exline/internal/infrastructure/config"
	"github.com/doeshing/exline/internal/infrastructure/fallback"
	"github.com/doeshing/exline/internal/infrastructure/history"
	"github.com/doeshing/exline/internal/infrastructure/parser"
	"github.com/doeshing/exline/internal/pkg/logger"
	"github.com/doeshing/exline/internal/ports"
)

// Options controls how the container is built.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZapLogger
	HistoryStore   ports.HistoryRepository
	Parser         *parser.Parser
	Fallback       *fallback.NeovimEngine
	DoctorService  *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(opts.Verbose, cfg.Logging.Level)
	if err != nil {
		// An unknown level is reported by config validate; keep logging usable.
		log, err = logger.New(opts.Verbose, "")
		if err != nil {
			return nil, err
		}
	}
	if err := configapp.Validate(cfg); err != nil {
		log.Warn("configuration invalid", map[string]interface{}{
			"path":  cfgLoader.Path(),
			"error": err.Error(),
		})
	}

	historyStore, err := history.Open(cfg.History)
	if err != nil {
		return nil, err
	}

	engine := fallback.NewNeovimEngine(cfg.Fallback.NeovimPath, log)

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		HistoryStore:   historyStore,
		Fallback:       engine,
	}

	return &Container{
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		HistoryStore:   historyStore,
		Parser:         parser.New(),
		Fallback:       engine,
		DoctorService:  doctorService,
	}, nil
}

// Close releases the history store and flushes the logger.
func (c *Container) Close() error {
	var errs []error
	if c.HistoryStore != nil {
		errs = append(errs, c.HistoryStore.Close())
	}
	if c.Logger != nil {
		// Sync on a console sink reports EINVAL on some platforms; ignore it.
		_ = c.Logger.Sync()
	}
	return errors.Join(errs...)
}
