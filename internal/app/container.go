package app

import (
	"fmt"
	"log/slog"
	"time"

	"study-tracker/internal/config"
	"study-tracker/internal/database"
	"study-tracker/internal/memstore"
	"study-tracker/internal/study"

	"gorm.io/gorm"
)

// Backend is everything the study core persists.
type Backend interface {
	study.SessionStore
	study.LeaveStore
	study.ShareRepository
}

// Container assembles the stores and services shared by the HTTP layer and the CLI.
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Store    Backend
	Clock    study.Clock
	Windows  study.Windows
	Registry *study.Registry
	Shares   *study.ShareService
}

// BuildContainer constructs all components. The only side effect is opening
// the JSON file when store.backend is "file".
func BuildContainer(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*Container, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	store, err := openBackend(cfg.Store, db)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Store:   store,
		Clock:   study.SystemClock{Location: loc},
		Windows: WindowsFromConfig(cfg.Timer),
	}
	c.Registry = study.NewRegistry(func(userID uint) *study.Tracker {
		return study.NewTracker(userID, c.Store, c.Store, c.Clock, c.Windows)
	})
	c.Shares = study.NewShareService(c.Store, c.Clock, nil)

	logger.Info("container ready",
		"store", cfg.Store.Backend,
		"timezone", loc.String(),
		"morning", c.Windows[study.Morning].String(),
		"afternoon", c.Windows[study.Afternoon].String())
	return c, nil
}

// Location is the time zone timers and date keys use.
func (c *Container) Location() *time.Location {
	if sc, ok := c.Clock.(study.SystemClock); ok && sc.Location != nil {
		return sc.Location
	}
	return time.Local
}

func openBackend(cfg config.StoreConfig, db *gorm.DB) (Backend, error) {
	switch cfg.Backend {
	case "memory":
		return memstore.New(), nil
	case "file":
		s, err := memstore.Open(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil
	case "database", "":
		if db == nil {
			return nil, fmt.Errorf("store.backend %q needs a database", cfg.Backend)
		}
		return database.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store.backend %q", cfg.Backend)
	}
}

// WindowsFromConfig converts the configured hours into study windows.
func WindowsFromConfig(t config.TimerConfig) study.Windows {
	return study.Windows{
		study.Morning:   {StartHour: t.MorningStart, EndHour: t.MorningEnd},
		study.Afternoon: {StartHour: t.AfternoonStart, EndHour: t.AfternoonEnd},
	}
}
