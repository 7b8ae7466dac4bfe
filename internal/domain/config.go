package domain

// Config mirrors ~/.exline/config.yaml (or config.toml).
type Config struct {
	ConfigFormatVersion string              `yaml:"config_format_version" toml:"config_format_version"`
	CommandLine         CommandLineSettings `yaml:"command_line" toml:"command_line"`
	Fallback            FallbackSettings    `yaml:"fallback" toml:"fallback"`
	History             HistorySettings     `yaml:"history" toml:"history"`
	Logging             LoggingSettings     `yaml:"logging" toml:"logging"`
}

// CommandLineSettings controls the command-line prompt.
type CommandLineSettings struct {
	// InitialColon pre-fills the prompt with ':' and strips it from the answer.
	InitialColon bool `yaml:"initial_colon" toml:"initial_colon"`
}

// FallbackSettings configures the alternate (Neovim) execution engine.
type FallbackSettings struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	NeovimPath string `yaml:"neovim_path" toml:"neovim_path"`
}

// HistorySettings configures the command-line history store.
type HistorySettings struct {
	Backend string `yaml:"backend" toml:"backend"`
	Size    int    `yaml:"size" toml:"size"`
	Dir     string `yaml:"dir" toml:"dir"`
}

// LoggingSettings configures the logger.
type LoggingSettings struct {
	Level string `yaml:"level" toml:"level"`
}

// History backends.
const (
	HistoryBackendSQLite = "sqlite"
	HistoryBackendFile   = "file"
	HistoryBackendBolt   = "bolt"
)

// DefaultConfig returns the configuration used when nothing is on disk or the
// file cannot be read.
func DefaultConfig() Config {
	return Config{
		ConfigFormatVersion: "1",
		CommandLine: CommandLineSettings{
			InitialColon: true,
		},
		Fallback: FallbackSettings{
			Enabled:    false,
			NeovimPath: DefaultNeovimPath,
		},
		History: HistorySettings{
			Backend: HistoryBackendSQLite,
			Size:    DefaultHistorySize,
			Dir:     DefaultDataDirName,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// WithDefaults fills zero values that have no meaningful zero.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConfigFormatVersion == "" {
		c.ConfigFormatVersion = def.ConfigFormatVersion
	}
	if c.Fallback.NeovimPath == "" {
		c.Fallback.NeovimPath = def.Fallback.NeovimPath
	}
	if c.History.Backend == "" {
		c.History.Backend = def.History.Backend
	}
	if c.History.Size == 0 {
		c.History.Size = def.History.Size
	}
	if c.History.Dir == "" {
		c.History.Dir = def.History.Dir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	return c
}
