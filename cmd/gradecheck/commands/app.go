package commands

import (
	"context"
	"fmt"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/emptycache"
	"github.com/bbanting/canvasgradecheck/internal/external/canvas"
	"github.com/bbanting/canvasgradecheck/internal/fetcher"
	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/internal/pipeline"
	"github.com/bbanting/canvasgradecheck/internal/roster"
	"github.com/bbanting/canvasgradecheck/pkg/config"
	"github.com/bbanting/canvasgradecheck/pkg/database"
	"github.com/bbanting/canvasgradecheck/pkg/httputil"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
	"github.com/bbanting/canvasgradecheck/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *httputil.Client
	history    history.Store
	cache      emptycache.Store
	closers    []func()
}

// newApp loads config and opens the configured storage backends
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{
		cfg:        cfg,
		log:        log,
		httpClient: httputil.New(cfg, log).WithRetry(cfg.Canvas.MaxRetries, cfg.Canvas.RetryDelay),
	}

	// 3. History backend
	if err := a.openHistory(ctx); err != nil {
		a.close()
		return nil, err
	}

	// 4. Empty-course cache backend
	if err := a.openCache(ctx); err != nil {
		a.close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"env":         cfg.Env,
		"history":     cfg.Storage.History,
		"empty_cache": cfg.Storage.EmptyCache,
	}).Debug("Application initialized")

	return a, nil
}

func (a *app) openHistory(ctx context.Context) error {
	switch a.cfg.Storage.History {
	case config.BackendPostgres:
		db, err := database.New(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		store := history.NewPostgresStore(db.Pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		a.history = store

	case config.BackendSQLite:
		store, err := history.NewSQLiteStore(ctx, a.cfg.Paths.SQLite)
		if err != nil {
			return fmt.Errorf("open sqlite history: %w", err)
		}
		a.closers = append(a.closers, func() { store.Close() })
		a.history = store

	default:
		a.history = history.NewFileStore(a.cfg.Paths.History)
	}
	return nil
}

func (a *app) openCache(ctx context.Context) error {
	if a.cfg.Storage.EmptyCache != config.BackendRedis {
		a.cache = emptycache.NewFileStore(a.cfg.Paths.EmptyCourses)
		return nil
	}

	client, err := redis.New(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { client.Close() })

	store, err := emptycache.NewRedisStore(client)
	if err != nil {
		return err
	}
	a.cache = store
	return nil
}

// close releases backends in reverse order
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// loadRoster reads the tracked students
func (a *app) loadRoster() ([]*contracts.Student, error) {
	students, err := roster.Load(a.cfg.Paths.Roster)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return students, nil
}

// loadCourses reads the course lists
func (a *app) loadCourses() (*config.CourseLists, error) {
	lists, err := config.LoadCourses(a.cfg.Paths.Courses)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	return lists, nil
}

// courseIDs returns the polled course ids in prior-then-current order
func (a *app) courseIDs() ([]int, error) {
	lists, err := a.loadCourses()
	if err != nil {
		return nil, err
	}
	return lists.All(), nil
}

// canvasClient creates the REST client
func (a *app) canvasClient() *canvas.Client {
	return canvas.NewClient(a.httpClient, a.cfg.Canvas.BaseURL, a.cfg.Canvas.APIKey, a.log)
}

// newPipeline wires one grade check run
func (a *app) newPipeline() *pipeline.Pipeline {
	fc := fetcher.DefaultConfig()
	if a.cfg.FetchWorkers > 0 {
		fc.Workers = a.cfg.FetchWorkers
	}
	return pipeline.New(a.canvasClient(), a.cache, a.history, fc, a.log)
}
