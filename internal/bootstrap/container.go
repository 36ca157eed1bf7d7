package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	app "github.com/mohammadpnp/padron-import/internal/application/member"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/config"
	infradb "github.com/mohammadpnp/padron-import/internal/infrastructure/db"
	infrafile "github.com/mohammadpnp/padron-import/internal/infrastructure/file"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/spreadsheet"
	"github.com/mohammadpnp/padron-import/pkg/logger"
	"github.com/mohammadpnp/padron-import/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const mongoConnectTimeout = 10 * time.Second

// Container owns every long-lived dependency of the import service.
type Container struct {
	Config       *config.Config
	Logger       logger.Logger
	DB           *gorm.DB
	Pool         *pgxpool.Pool
	Metrics      *metrics.ImportMetrics
	Orchestrator *app.ImportOrchestrator
	Jobs         *repository.ImportJobRepository

	mongo *mongo.Client
}

// Build wires the import pipeline. Jobs run under baseCtx.
func Build(baseCtx context.Context, cfg *config.Config, log logger.Logger) (*Container, error) {
	gdb, err := infradb.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(baseCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  log,
		DB:      gdb,
		Pool:    pool,
		Metrics: metrics.NewImportMetrics("padron"),
		Jobs:    repository.NewImportJobRepository(gdb),
	}

	audit, err := c.auditSink(baseCtx)
	if err != nil {
		c.Close(context.WithoutCancel(baseCtx))
		return nil, err
	}

	files, err := infrafile.NewLocalStore(cfg.StorageDir)
	if err != nil {
		c.Close(context.WithoutCancel(baseCtx))
		return nil, err
	}
	opener := spreadsheet.NewXLSXOpener()
	registry := repository.NewRegistryRepository(gdb)

	pipeline := app.NewPipeline(app.PipelineDeps{
		Files:     files,
		Opener:    opener,
		Upserter:  repository.NewMemberUpsertRepository(pool),
		Registry:  registry,
		Branches:  repository.NewBranchRepository(gdb),
		Staff:     repository.NewStaffRegistryRepository(gdb),
		Operators: repository.NewOperatorAccountRepository(gdb),
		Metrics:   c.Metrics,
		Logger:    log,
	}, cfg.PipelineConfig())

	c.Orchestrator = app.NewImportOrchestrator(baseCtx, app.OrchestratorDeps{
		Files:       files,
		Opener:      opener,
		Runner:      pipeline,
		Audit:       audit,
		Completions: c.Jobs,
		Metrics:     c.Metrics,
		Logger:      log,
	})
	return c, nil
}

func (c *Container) auditSink(ctx context.Context) (domain.AuditSink, error) {
	if c.Config.AuditMongoURI == "" {
		return repository.NewGormAuditRepository(c.DB), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.Config.AuditMongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect audit mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping audit mongodb: %w", err)
	}
	c.mongo = client
	c.Logger.Info("audit entries go to mongodb", "database", c.Config.AuditMongoDatabase)
	return repository.NewMongoAuditRepository(client.Database(c.Config.AuditMongoDatabase)), nil
}

// Close waits for running jobs until ctx expires, then releases connections.
func (c *Container) Close(ctx context.Context) {
	if c.Orchestrator != nil {
		if err := c.Orchestrator.WaitContext(ctx); err != nil {
			c.Logger.Warn("import jobs still running at shutdown deadline", "error", err)
		}
	}
	if c.mongo != nil {
		if err := c.mongo.Disconnect(ctx); err != nil {
			c.Logger.Warn("disconnect audit mongodb failed", "error", err)
		}
	}
	c.Pool.Close()
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
