package config

import (
	"fmt"
	"strings"

	"github.com/doeshing/exline/internal/domain"
)

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateFallback(cfg.Fallback); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateLogging(cfg.Logging); err != nil {
		return err
	}
	return nil
}

func validateFallback(fallback domain.FallbackSettings) error {
	if fallback.Enabled && strings.TrimSpace(fallback.NeovimPath) == "" {
		return fmt.Errorf("fallback.neovim_path must be set when fallback.enabled is true")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	switch history.Backend {
	case domain.HistoryBackendSQLite, domain.HistoryBackendFile, domain.HistoryBackendBolt:
	default:
		return fmt.Errorf("history.backend must be sqlite|file|bolt, got %q", history.Backend)
	}
	if history.Size <= 0 {
		return fmt.Errorf("history.size must be > 0")
	}
	if strings.TrimSpace(history.Dir) == "" {
		return fmt.Errorf("history.dir must be set")
	}
	return nil
}

func validateLogging(logging domain.LoggingSettings) error {
	if !logLevels[strings.ToLower(logging.Level)] {
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %q", logging.Level)
	}
	return nil
}
