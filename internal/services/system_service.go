package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/repositories"
)

// BuildInfo is reported by /healthz and /readyz.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// DefaultCriticalDependencies are the stores without which demos can be
// neither saved nor autosaved.
var DefaultCriticalDependencies = []string{"firestore", "redis"}

type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Clock            func() time.Time
	Build            BuildInfo
	// Critical names the checks that fail readiness. Any other failing check
	// (publishing bucket, event topic, secrets) only degrades the report.
	Critical []string
}

type systemService struct {
	healthRepo repositories.HealthRepository
	clock      func() time.Time
	build      BuildInfo
	critical   map[string]struct{}
}

var _ SystemService = (*systemService)(nil)

func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	build := deps.Build
	if build.StartedAt.IsZero() {
		build.StartedAt = clock()
	}
	names := deps.Critical
	if names == nil {
		names = DefaultCriticalDependencies
	}
	critical := make(map[string]struct{}, len(names))
	for _, name := range names {
		critical[strings.TrimSpace(name)] = struct{}{}
	}

	return &systemService{
		healthRepo: deps.HealthRepository,
		clock:      func() time.Time { return clock().UTC() },
		build:      build,
		critical:   critical,
	}, nil
}

func (s *systemService) HealthReport(ctx context.Context) (domain.HealthReport, error) {
	report, err := s.healthRepo.Collect(ctx)
	if err != nil {
		return domain.HealthReport{}, err
	}

	now := s.clock()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	}
	report.GeneratedAt = report.GeneratedAt.UTC()
	report.Version = chooseFirstNonEmpty(report.Version, s.build.Version)
	report.CommitSHA = chooseFirstNonEmpty(report.CommitSHA, s.build.CommitSHA)
	report.Environment = chooseFirstNonEmpty(report.Environment, s.build.Environment)
	if report.Uptime <= 0 {
		report.Uptime = now.Sub(s.build.StartedAt)
	}
	if report.Checks == nil {
		report.Checks = map[string]domain.DependencyHealth{}
	}
	report.Status = s.grade(report.Checks)
	return report, nil
}

// grade fails readiness only when a critical dependency is unhealthy.
func (s *systemService) grade(checks map[string]domain.DependencyHealth) string {
	status := domain.HealthStatusOK
	for name, check := range checks {
		if check.Healthy() {
			continue
		}
		if _, ok := s.critical[name]; ok {
			return domain.HealthStatusError
		}
		status = domain.HealthStatusDegraded
	}
	return status
}

func chooseFirstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
