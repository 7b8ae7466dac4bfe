package doctor

import (
	"context"
	"fmt"

	configapp "github.com/doeshing/exline/internal/application/config"
	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// BinaryProbe reports whether the fallback executable can be started.
type BinaryProbe interface {
	Binary() string
	Available() error
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	HistoryStore   ports.HistoryRepository
	Fallback       BinaryProbe
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("loaded version %s", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, s.historyCheck(cfg.History))
	checks = append(checks, s.fallbackCheck(cfg.Fallback))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) historyCheck(settings domain.HistorySettings) domain.HealthCheck {
	if s.HistoryStore == nil {
		return warn("History store", "history store not initialized")
	}
	items, err := s.HistoryStore.Get()
	if err != nil {
		return fail("History store", err.Error())
	}
	if degraded, isSQLite := s.HistoryStore.(interface{ Degraded() bool }); isSQLite && degraded.Degraded() {
		return warn("History store", fmt.Sprintf("sqlite unavailable, using %s", s.HistoryStore.Path()))
	}
	return ok("History store", fmt.Sprintf("%s backend, %d entries at %s", settings.Backend, len(items), s.HistoryStore.Path()))
}

func (s *Service) fallbackCheck(settings domain.FallbackSettings) domain.HealthCheck {
	if !settings.Enabled {
		return ok("Fallback engine", "disabled")
	}
	if s.Fallback == nil {
		return warn("Fallback engine", "fallback engine not initialized")
	}
	if err := s.Fallback.Available(); err != nil {
		return fail("Fallback engine", fmt.Sprintf("%s not found: %v", s.Fallback.Binary(), err))
	}
	return ok("Fallback engine", fmt.Sprintf("%s available", s.Fallback.Binary()))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
