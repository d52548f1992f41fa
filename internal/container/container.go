// Package container provides dependency injection for the sms-ledger application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/sms-ledger/internal/config"
	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/smsparser"
	"fjacquet/sms-ledger/internal/store"
	"fjacquet/sms-ledger/internal/templates"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    store.Store
	registry *templates.Registry
	parser   *smsparser.Parser
	service  *ingest.Service
}

// Option customises NewContainer.
type Option func(*options)

type options struct {
	logger logging.Logger
}

// WithLogger replaces the logger built from the log section of the config.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewContainer creates and wires all application dependencies.
// The caller owns the container and must Close it to release the store.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = config.NewLoggerFromConfig(cfg)
	}

	registry, err := loadRegistry(cfg.Extraction.TemplatesFile, logger)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	parser := smsparser.New(registry, logger)
	service := ingest.NewService(parser, st, logger,
		ingest.WithThreshold(cfg.Extraction.PersistThreshold))

	logger.Info("Container initialized successfully",
		logging.F("storage_driver", cfg.Storage.Driver),
		logging.F("templates", len(registry.Templates())),
		logging.F("persist_threshold", cfg.Extraction.PersistThreshold))

	return &Container{
		logger:   logger,
		config:   cfg,
		store:    st,
		registry: registry,
		parser:   parser,
		service:  service,
	}, nil
}

func loadRegistry(templatesFile string, logger logging.Logger) (*templates.Registry, error) {
	if templatesFile == "" {
		return templates.Default(), nil
	}
	registry, err := templates.LoadFile(templatesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	logger.Info("Loaded bank templates",
		logging.F(logging.FieldFile, templatesFile),
		logging.F(logging.FieldCount, len(registry.Templates())))
	return registry, nil
}

func openStore(cfg config.StorageConfig, logger logging.Logger) (store.Store, error) {
	switch cfg.Driver {
	case store.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on exit")
		ms := store.NewMemoryStore()
		ms.DedupWindow = cfg.DedupWindow
		return ms, nil
	case store.DriverSQLite, "":
		st, err := store.NewSQLiteStore(cfg.Path, logger, store.WithDedupWindow(cfg.DedupWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the message and transaction store.
func (c *Container) GetStore() store.Store {
	return c.store
}

// GetRegistry returns the bank template registry.
func (c *Container) GetRegistry() *templates.Registry {
	return c.registry
}

// GetParser returns the extraction engine.
func (c *Container) GetParser() *smsparser.Parser {
	return c.parser
}

// GetService returns the ingest service that parses and persists messages.
func (c *Container) GetService() *ingest.Service {
	return c.service
}

// Close releases the store.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	c.logger.Info("Container closed")
	return nil
}
