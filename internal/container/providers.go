// Package container provides dependency injection and lifecycle management
// for the claims intake service.
package container

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/application/dispatcher"
	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/application/service"
	"github.com/garyjia/claims-intake/internal/config"
	"github.com/garyjia/claims-intake/internal/domain/adjudication"
	"github.com/garyjia/claims-intake/internal/domain/event"
	"github.com/garyjia/claims-intake/internal/infrastructure/metrics"
	"github.com/garyjia/claims-intake/internal/infrastructure/persistence/repository"
	"github.com/garyjia/claims-intake/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/claims-intake/internal/infrastructure/policy"
	"github.com/garyjia/claims-intake/internal/infrastructure/storage"
	"github.com/garyjia/claims-intake/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB        *database.DB
	TxManager *sqlite.DB
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Claim    port.ClaimRepository
	Photo    port.PhotoRepository
	AuditLog port.AuditLogRepository
}

// MetricsBundle holds the Prometheus registry and the recorder fed by services.
type MetricsBundle struct {
	Registry *prometheus.Registry
	Recorder *metrics.Metrics
}

// Handler serves the registry in the Prometheus text format
func (m *MetricsBundle) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Claims       service.ClaimService
	Policies     service.PolicyService
	Adjudication service.AdjudicationService
}

// ServiceDeps holds dependencies needed to build application services.
type ServiceDeps struct {
	Engine    adjudication.Engine
	Repos     *RepositoryBundle
	Storage   port.FileStorage
	Policies  port.PolicyDirectory
	TxManager port.TransactionManager
	Events    port.EventPublisher
	Logger    *zap.Logger
}

// ProvideDatabase opens the SQLite database, applies the embedded migrations
// and wraps the handle in a transaction manager.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.NewMigrator(db, logger).Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:        db,
		TxManager: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories over the shared handle
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	return &RepositoryBundle{
		Claim:    repository.NewClaimRepository(db.DB, logger),
		Photo:    repository.NewPhotoRepository(db.DB, logger),
		AuditLog: repository.NewAuditLogRepository(db.DB, logger),
	}, nil
}

// ProvideStorage creates the local photo store
func ProvideStorage(cfg *config.StorageConfig, logger *zap.Logger) (port.FileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	return storage.NewLocalFileStorage(cfg.UploadDir, logger)
}

// ProvidePolicyDirectory builds the mock policy directory and merges the
// optional fixture file into it.
func ProvidePolicyDirectory(cfg *config.PoliciesConfig, logger *zap.Logger) (*policy.Directory, error) {
	directory := policy.NewDirectory(logger)
	if cfg == nil {
		return directory, nil
	}

	if _, err := directory.LoadFixture(cfg.FixturePath); err != nil {
		return nil, err
	}
	return directory, nil
}

// ProvideMetrics creates a registry with the runtime collectors and the
// adjudication metrics registered on it.
func ProvideMetrics() *MetricsBundle {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsBundle{
		Registry: registry,
		Recorder: metrics.New(registry),
	}
}

// ProvideDispatcher creates the event dispatcher and subscribes the metrics
// recorder to every claim event.
func ProvideDispatcher(recorder *metrics.Metrics, logger *zap.Logger) (*dispatcher.Dispatcher, error) {
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(NewZapLogger(logger)))

	if recorder == nil {
		return d, nil
	}
	for _, t := range []event.Type{event.TypeClaimCreated, event.TypePhotoUploaded, event.TypeClaimAdjudicated} {
		if err := d.Subscribe(t, "metrics", recorder.HandleEvent); err != nil {
			return nil, fmt.Errorf("subscribe metrics: %w", err)
		}
	}
	return d, nil
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}

	logger := NewZapLogger(deps.Logger)
	repos := deps.Repos

	return &ServiceBundle{
		Claims: service.NewClaimService(
			repos.Claim, repos.Photo, repos.AuditLog, deps.Storage, deps.TxManager, deps.Events, logger,
		),
		Policies: service.NewPolicyService(deps.Policies, logger),
		Adjudication: service.NewAdjudicationService(
			deps.Engine, repos.Claim, repos.Photo, repos.AuditLog, deps.Policies, deps.TxManager, deps.Events, logger,
		),
	}, nil
}
