// Package app wires repositories and services from configuration.
package app

import (
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/business-school/campus-api/internal/repository"
	"github.com/business-school/campus-api/internal/schema"
	"github.com/business-school/campus-api/internal/seed"
	"github.com/business-school/campus-api/internal/service"
	"github.com/business-school/campus-api/pkg/config"
	"github.com/business-school/campus-api/pkg/export"
	"github.com/business-school/campus-api/pkg/storage"
)

// Container holds the services shared by the server and the CLI.
type Container struct {
	Config    *config.Config
	DB        *sqlx.DB
	Logger    *zap.Logger
	Metrics   *service.MetricsService
	Migrator  *schema.Migrator
	Seed      *service.SeedService
	Identity  *service.IdentityService
	Bootstrap *service.BootstrapService
	Reports   *service.ReportService
	Catalog   *service.CatalogService
}

// NewContainer builds every dependency. redisClient may be nil, which disables the bootstrap lock.
func NewContainer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	migrations, err := schema.Embedded()
	if err != nil {
		return nil, err
	}
	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	departments := repository.NewDepartmentRepository(db)
	clubs := repository.NewClubRepository(db)
	students := repository.NewStudentRepository(db)
	events := repository.NewEventRepository(db)
	memberships := repository.NewMembershipRepository(db)
	attendances := repository.NewAttendanceRepository(db)
	eventClubs := repository.NewEventClubRepository(db)

	migrator := schema.NewMigrator(db, migrations, logger.Named("schema"))
	seeder := service.NewSeedService(db, service.SeedStores{
		Departments: departments,
		Clubs:       clubs,
		Students:    students,
		Events:      events,
		Memberships: memberships,
		Attendances: attendances,
		EventClubs:  eventClubs,
		Sequences:   repository.NewSequenceRepository(db),
	}, validate, metrics, logger.Named("seed"), cfg.Seed.Strict)
	identity := service.NewIdentityService(repository.NewIdentityRepository(db), validate, metrics, logger.Named("identity"))
	lock := repository.NewLockRepository(redisClient, logger.Named("lock"))

	bootstrap := service.NewBootstrapService(migrator, seeder, identity, lock, metrics, logger.Named("bootstrap"), service.BootstrapConfig{
		LockKey:     cfg.Bootstrap.LockKey,
		LockTTL:     cfg.Bootstrap.LockTTL,
		LockWait:    cfg.Bootstrap.LockWait,
		SeedEnabled: cfg.Seed.Enabled,
		Identity:    cfg.Identity,
		Dataset:     seed.Default(),
	})
	var csvOpts []export.CSVOption
	if cfg.Reports.CSVBOM {
		csvOpts = append(csvOpts, export.WithBOM())
	}
	reports := service.NewReportService(repository.NewReportRepository(db), files, logger.Named("reports"), export.NewCSVExporter(csvOpts...), nil)
	catalog := service.NewCatalogService(migrator, service.CatalogReaders{
		Departments: departments,
		Clubs:       clubs,
		Students:    students,
		Events:      events,
		Memberships: memberships,
		Attendances: attendances,
		EventClubs:  eventClubs,
	}, logger.Named("catalog"))

	return &Container{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		Metrics:   metrics,
		Migrator:  migrator,
		Seed:      seeder,
		Identity:  identity,
		Bootstrap: bootstrap,
		Reports:   reports,
		Catalog:   catalog,
	}, nil
}
