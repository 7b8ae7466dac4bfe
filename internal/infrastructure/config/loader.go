package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/exline/assets"
	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/pkg/filesystem"
	"github.com/doeshing/exline/internal/ports"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "EXLINE_CONFIG"

// FileLoader loads configuration from ~/.exline/config.yaml (overridable via
// EXLINE_CONFIG). Files ending in .toml are decoded as TOML.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := writeDefault(path); err != nil {
				return domain.Config{}, err
			}
			return domain.DefaultConfig(), nil
		}
		return domain.Config{}, err
	}

	cfg, err := Decode(path, data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.WithDefaults(), nil
}

// Path returns the resolved configuration path.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.ExpandPath(domain.DefaultDataDirName), "config.yaml")
}

// Save writes cfg back in the format matching the file extension.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.Path()
	data, err := Encode(path, cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return os.WriteFile(path, data, domain.SecureFilePermissions)
}

// Backup copies the current file next to it with a timestamp suffix and
// returns the copy's path.
func (l *FileLoader) Backup() (string, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// Decode parses data as YAML or, for .toml paths, TOML. Keys the file
// leaves out keep their default values.
func Decode(path string, data []byte) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return domain.Config{}, err
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Encode renders cfg as YAML or, for .toml paths, TOML.
func Encode(path string, cfg domain.Config) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(cfg)
}

func writeDefault(path string) error {
	data := assets.DefaultConfigYAML
	if isTOML(path) {
		var err error
		if data, err = Encode(path, domain.DefaultConfig()); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, domain.SecureFilePermissions)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
