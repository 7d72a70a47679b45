package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/trackwaste/publicstats/pkg/metrics"
	"github.com/trackwaste/publicstats/pkg/snapshot"
	"github.com/trackwaste/publicstats/pkg/warehouse"
)

// ServiceConfig configures the periodic snapshot builder.
type ServiceConfig struct {
	Logger          *slog.Logger
	Clock           clockwork.Clock
	Extractor       *warehouse.Extractor
	Store           *snapshot.Store
	RefreshInterval time.Duration
}

func (cfg *ServiceConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Extractor == nil {
		return errors.New("extractor is required")
	}
	if cfg.Store == nil {
		return errors.New("store is required")
	}
	if cfg.RefreshInterval <= 0 {
		return errors.New("refresh interval must be greater than 0")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Service rebuilds the current year's snapshot on a fixed interval.
type Service struct {
	log     *slog.Logger
	cfg     ServiceConfig
	buildMu sync.Mutex

	readyOnce sync.Once
	readyCh   chan struct{}
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		log:     cfg.Logger,
		cfg:     cfg,
		readyCh: make(chan struct{}),
	}, nil
}

// Ready reports whether at least one build has completed.
func (s *Service) Ready() bool {
	select {
	case <-s.readyCh:
		return true
	default:
		return false
	}
}

func (s *Service) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for first build: %w", ctx.Err())
	}
}

// Start launches the refresh loop: one build immediately, then one per
// interval, always for the wall-clock year at the time of the build.
func (s *Service) Start(ctx context.Context) {
	go func() {
		s.log.Info("build: starting refresh loop", "interval", s.cfg.RefreshInterval)

		s.safeBuild(ctx)

		ticker := s.cfg.Clock.NewTicker(s.cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.safeBuild(ctx)
			}
		}
	}()
}

func (s *Service) safeBuild(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("build: computation panicked", "panic", r)
			metrics.ComputationTotal.WithLabelValues("panic").Inc()
		}
	}()

	year := s.cfg.Clock.Now().UTC().Year()
	if err := s.BuildYear(ctx, year); err != nil {
		s.log.Error("build: computation failed", "year", year, "error", err)
		return
	}
	s.readyOnce.Do(func() { close(s.readyCh) })
}

// BuildYear extracts, computes and persists one year's snapshot.
func (s *Service) BuildYear(ctx context.Context, year int) (err error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	started := time.Now()
	defer func() {
		metrics.ComputationTotal.WithLabelValues(metrics.Status(err)).Inc()
		if err == nil {
			metrics.ComputationDuration.WithLabelValues(strconv.Itoa(year)).Observe(time.Since(started).Seconds())
		}
	}()

	s.log.Info("build: computation started", "year", year)

	data, err := s.cfg.Extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract warehouse data: %w", err)
	}

	snap, err := Compute(data, year)
	if err != nil {
		return fmt.Errorf("failed to compute year %d: %w", year, err)
	}

	if err := s.cfg.Store.ReplaceYear(ctx, snap); err != nil {
		return fmt.Errorf("failed to persist year %d: %w", year, err)
	}

	s.log.Info("build: computation finished", "year", year, "duration", time.Since(started))
	return nil
}
