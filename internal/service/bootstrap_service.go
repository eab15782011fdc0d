package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/internal/seed"
	"github.com/business-school/campus-api/pkg/config"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

type schemaMigrator interface {
	Up(ctx context.Context) ([]string, error)
}

type seedApplier interface {
	Apply(ctx context.Context, data seed.Dataset) (*SeedResult, error)
}

type identityReconciler interface {
	Reconcile(ctx context.Context, cfg config.IdentityConfig) (*models.IdentitySummary, error)
}

type distributedLock interface {
	TryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Refresh(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// BootstrapConfig tunes the startup routine.
type BootstrapConfig struct {
	LockKey      string
	LockTTL      time.Duration
	LockWait     time.Duration
	PollInterval time.Duration
	SeedEnabled  bool
	Identity     config.IdentityConfig
	Dataset      seed.Dataset
}

// BootstrapResult collects the outcome of each phase.
type BootstrapResult struct {
	Migrations []string                `json:"migrations"`
	Seed       *SeedResult             `json:"seed,omitempty"`
	Identity   *models.IdentitySummary `json:"identity,omitempty"`
}

// BootstrapService runs schema migration, seeding and identity reconciliation once per start.
type BootstrapService struct {
	migrator schemaMigrator
	seeder   seedApplier
	identity identityReconciler
	lock     distributedLock
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      BootstrapConfig
}

// NewBootstrapService wires the bootstrap phases. A nil lock runs without cross-instance exclusion.
func NewBootstrapService(migrator schemaMigrator, seeder seedApplier, identity identityReconciler, lock distributedLock, metrics *MetricsService, logger *zap.Logger, cfg BootstrapConfig) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "business-school:bootstrap"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &BootstrapService{
		migrator: migrator,
		seeder:   seeder,
		identity: identity,
		lock:     lock,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run executes every phase in order and stops at the first failure.
func (s *BootstrapService) Run(ctx context.Context) (*BootstrapResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &BootstrapResult{}
	if err := s.phase(ctx, "migrate", func(ctx context.Context) error {
		applied, err := s.migrator.Up(ctx)
		result.Migrations = applied
		s.metrics.AddMigrations(len(applied))
		return err
	}); err != nil {
		return result, err
	}

	if s.cfg.SeedEnabled {
		if err := s.phase(ctx, "seed", func(ctx context.Context) error {
			seeded, err := s.seeder.Apply(ctx, s.cfg.Dataset)
			result.Seed = seeded
			return err
		}); err != nil {
			return result, err
		}
	} else {
		s.logger.Info("bootstrap phase skipped", zap.String("phase", "seed"))
	}

	if err := s.phase(ctx, "identity", func(ctx context.Context) error {
		summary, err := s.identity.Reconcile(ctx, s.cfg.Identity)
		result.Identity = summary
		return err
	}); err != nil {
		return result, err
	}

	s.metrics.MarkBootstrapSucceeded(time.Now())
	return result, nil
}

func (s *BootstrapService) phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	s.logger.Info("bootstrap phase started", zap.String("phase", name))
	err := fn(ctx)
	duration := time.Since(start)
	s.metrics.ObserveBootstrapPhase(name, err, duration)
	if err != nil {
		s.logger.Error("bootstrap phase failed", zap.String("phase", name), zap.Duration("duration", duration), zap.Error(err))
		return err
	}
	s.logger.Info("bootstrap phase finished", zap.String("phase", name), zap.Duration("duration", duration))
	return nil
}

// acquire takes the distributed lock, polling until LockWait elapses, and keeps
// it alive until the returned func stops the renewal and releases it.
func (s *BootstrapService) acquire(ctx context.Context) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}
	token := uuid.NewString()
	deadline := time.Now().Add(s.cfg.LockWait)
	for {
		ok, err := s.lock.TryAcquire(ctx, s.cfg.LockKey, token, s.cfg.LockTTL)
		if err != nil {
			return nil, appErrors.CloneWrap(appErrors.ErrUnavailable, err, "bootstrap lock unavailable")
		}
		if ok {
			s.logger.Debug("bootstrap lock acquired", zap.String("key", s.cfg.LockKey))
			break
		}
		if !time.Now().Before(deadline) {
			return nil, appErrors.Clone(appErrors.ErrLockNotAcquired, "")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.PollInterval):
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go s.keepAlive(ctx, token, stop, done)

	return func() {
		close(stop)
		<-done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.lock.Release(releaseCtx, s.cfg.LockKey, token); err != nil {
			s.logger.Warn("failed to release bootstrap lock", zap.Error(err))
		}
	}, nil
}

// keepAlive renews the lock every third of its TTL until stop is closed.
func (s *BootstrapService) keepAlive(ctx context.Context, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.LockTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := s.lock.Refresh(ctx, s.cfg.LockKey, token, s.cfg.LockTTL)
			if err != nil {
				s.logger.Warn("failed to refresh bootstrap lock", zap.Error(err))
				continue
			}
			if !ok {
				s.logger.Error("bootstrap lock lost before completion", zap.String("key", s.cfg.LockKey))
				return
			}
		}
	}
}
