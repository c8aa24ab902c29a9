package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Service ServiceConfig `toml:"service"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Sync    SyncConfig    `toml:"sync"`
}

type ServiceConfig struct {
	Name           string   `toml:"name"`
	Environment    string   `toml:"environment"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type StorageConfig struct {
	DatabasePath    string `toml:"database_path"`
	BackupDir       string `toml:"backup_dir"`
	HistoryPerIssue int    `toml:"history_per_issue"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Output     string `toml:"output"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
}

// SyncConfig holds the engine settings shared by every round
type SyncConfig struct {
	// MappingFile seeds the mapping document when storage holds none
	MappingFile       string `toml:"mapping_file"`
	MaxTextLength     int    `toml:"max_text_length"`
	PlaceholderPrefix string `toml:"placeholder_prefix"`
	PlaceholderSuffix string `toml:"placeholder_suffix"`
	ValueSeparator    string `toml:"value_separator"`
	LineSeparator     string `toml:"line_separator"`
	RequestTimeout    int    `toml:"request_timeout_seconds"`
}

func DefaultConfig() *Config {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	execName := filepath.Base(execPath)
	execName = execName[:len(execName)-len(filepath.Ext(execName))]

	defaultDBPath := filepath.Join(execDir, "data", execName+".db")

	return &Config{
		Service: ServiceConfig{
			Name:           execName,
			Environment:    "development",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			DatabasePath:    defaultDBPath,
			BackupDir:       "./backups",
			HistoryPerIssue: 50,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			MaxSize:    100,
			MaxBackups: 3,
		},
		Sync: SyncConfig{
			MaxTextLength:     32767,
			PlaceholderPrefix: "<<",
			PlaceholderSuffix: ">>",
			ValueSeparator:    ", ",
			LineSeparator:     "\n",
			RequestTimeout:    30,
		},
	}
}

func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile == "" {
		// Auto-detect config file
		execPath, _ := os.Executable()
		execDir := filepath.Dir(execPath)
		execName := filepath.Base(execPath)
		execName = execName[:len(execName)-len(filepath.Ext(execName))]

		possiblePaths := []string{
			filepath.Join(execDir, execName+".toml"),
			filepath.Join(execDir, "config.toml"),
			"config.toml",
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, NewConfigurationError("CONFIG_READ", "failed to read config file").
				WithContext("path", configFile).WithCause(err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, NewConfigurationError("CONFIG_PARSE", "failed to parse config file").
				WithContext("path", configFile).WithCause(err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.Storage.DatabasePath = dbPath
	}
	if backupDir := os.Getenv("BACKUP_DIR"); backupDir != "" {
		config.Storage.BackupDir = backupDir
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logOutput := os.Getenv("LOG_OUTPUT"); logOutput != "" {
		config.Logging.Output = logOutput
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if portNum, err := strconv.Atoi(port); err == nil {
			config.Service.Port = portNum
		}
	}

	if mappingFile := os.Getenv("LEANSYNC_MAPPING_FILE"); mappingFile != "" {
		config.Sync.MappingFile = mappingFile
	}
	if maxLen := os.Getenv("LEANSYNC_MAX_TEXT_LENGTH"); maxLen != "" {
		if n, err := strconv.Atoi(maxLen); err == nil {
			config.Sync.MaxTextLength = n
		}
	}
}

func (c *Config) Validate() error {
	if c.Storage.DatabasePath == "" {
		return NewConfigurationError("STORAGE_PATH", "storage database_path is required")
	}

	if c.Service.Port <= 0 {
		c.Service.Port = 8080
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, c.Logging.Level) {
		return NewConfigurationError("LOG_LEVEL", "invalid log level").WithContext("level", c.Logging.Level)
	}

	validOutputs := []string{"console", "file", "both"}
	if !contains(validOutputs, c.Logging.Output) {
		return NewConfigurationError("LOG_OUTPUT", "invalid log output").WithContext("output", c.Logging.Output)
	}

	if c.Sync.PlaceholderPrefix == "" && c.Sync.PlaceholderSuffix == "" {
		return NewConfigurationError("PLACEHOLDER", "sync placeholder_prefix or placeholder_suffix must be set")
	}
	if c.Sync.RequestTimeout <= 0 {
		c.Sync.RequestTimeout = 30
	}
	if c.Sync.LineSeparator == "" {
		c.Sync.LineSeparator = "\n"
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
