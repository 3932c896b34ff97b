package container

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/application/dispatcher"
	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/config"
	"github.com/garyjia/claims-intake/internal/domain/adjudication"
	"github.com/garyjia/claims-intake/internal/infrastructure/policy"
	httpapi "github.com/garyjia/claims-intake/internal/interfaces/http"
	"github.com/garyjia/claims-intake/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are built in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	db           *database.DB
	txManager    port.TransactionManager
	repositories *RepositoryBundle
	fileStorage  port.FileStorage
	policies     *policy.Directory
	metrics      *MetricsBundle

	// Application
	engine     adjudication.Engine
	dispatcher *dispatcher.Dispatcher
	services   *ServiceBundle

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Adjudication engine
// 2. Database, migrations and repositories
// 3. Photo storage
// 4. Policy directory
// 5. Metrics and the event dispatcher feeding them
// 6. Application services
func (c *Container) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	engine, err := adjudication.New(c.config.Adjudication)
	if err != nil {
		return err
	}
	c.engine = engine

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized", zap.String("path", c.config.Database.Path))

	fileStorage, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.fileStorage = fileStorage
	c.logger.Info("Storage initialized", zap.String("upload_dir", c.config.Storage.UploadDir))

	policies, err := ProvidePolicyDirectory(&c.config.Policies, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to load policies: %w", err)
	}
	c.policies = policies
	c.logger.Info("Policy directory initialized", zap.Strings("policies", policies.Numbers()))

	c.metrics = ProvideMetrics()

	disp, err := ProvideDispatcher(c.metrics.Recorder, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.dispatcher = disp

	services, err := ProvideServices(&ServiceDeps{
		Engine:    c.engine,
		Repos:     c.repositories,
		Storage:   c.fileStorage,
		Policies:  c.policies,
		TxManager: c.txManager,
		Events:    c.dispatcher,
		Logger:    c.logger,
	})
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close releases all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var closeErr error
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			closeErr = fmt.Errorf("close database: %w", err)
		} else {
			c.logger.Info("Database closed")
		}
		c.db = nil
	}

	c.closed.Store(true)
	c.ready.Store(false)
	return closeErr
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	mark := func(name string, health ComponentHealth) {
		status.Components[name] = health
		if !health.Healthy {
			status.Overall = false
		}
	}

	switch {
	case c.db == nil:
		mark("database", ComponentHealth{Message: "not initialized"})
	default:
		if err := c.db.Ping(); err != nil {
			mark("database", ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)})
		} else {
			mark("database", ComponentHealth{Healthy: true})
		}
	}

	if c.policies == nil {
		mark("policies", ComponentHealth{Message: "not initialized"})
	} else {
		mark("policies", ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("policy count: %d", len(c.policies.Numbers())),
		})
	}

	if c.services == nil {
		mark("services", ComponentHealth{Message: "not initialized"})
	} else {
		mark("services", ComponentHealth{Healthy: true})
	}

	return status
}

func (c *Container) initDatabase() error {
	bundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = bundle.DB
	c.txManager = bundle.TxManager

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		c.closeDatabase()
		return err
	}
	c.repositories = repos
	return nil
}

func (c *Container) closeDatabase() {
	if c.db == nil {
		return
	}
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	}
	c.db = nil
}

// HTTPServer builds the REST server over the container's services.
func (c *Container) HTTPServer() (*httpapi.Server, error) {
	if !c.ready.Load() {
		return nil, fmt.Errorf("container not started")
	}

	cfg := c.config
	return httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		APIPrefix:      cfg.Server.APIPrefix,
		APIKey:         cfg.Auth.APIKey,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}, httpapi.Services{
		Claims:       c.services.Claims,
		Policies:     c.services.Policies,
		Adjudication: c.services.Adjudication,
	}, c.MetricsHandler(), NewZapLogger(c.logger)), nil
}

// Getters for accessing container components

// Dispatcher returns the claim event dispatcher.
func (c *Container) Dispatcher() *dispatcher.Dispatcher {
	return c.dispatcher
}

// Engine returns the adjudication engine.
func (c *Container) Engine() adjudication.Engine {
	return c.engine
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Policies returns the policy directory.
func (c *Container) Policies() *policy.Directory {
	return c.policies
}

// MetricsHandler returns the Prometheus scrape handler, or nil before Start.
func (c *Container) MetricsHandler() http.Handler {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.Handler()
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
