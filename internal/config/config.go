// Package config holds OPERATOR-LEVEL configuration for a masker
// installation: where tenant properties live, where batch mode reads and
// writes dialogs, request limits and log settings.
//
// Values come from env vars (MASKER_*), an optional config file
// (masker.config.yaml) and a local .env file, in that order of precedence
// over the defaults below. Tenant reference data (word lists, templates)
// is NOT configured here; it lives in <properties_dir>/<tenant>/.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every env var, e.g. "min_dialogs" → MASKER_MIN_DIALOGS.
const EnvPrefix = "MASKER"

// Viper keys. Each maps to an env var with the MASKER_ prefix and to a
// YAML field in masker.config.yaml.
const (
	KeyPropertiesDir  = "properties_dir"
	KeyInputDir       = "input_dir"
	KeyOutputDir      = "output_dir"
	KeyDefaultTenant  = "default_tenant"
	KeyMinDialogs     = "min_dialogs"
	KeyFileExt        = "file_ext"
	KeyRateLimit      = "rate_limit"
	KeyListenAddr     = "listen_addr"
	KeyLogFile        = "log_file"
	KeyLogMaxSizeMB   = "log_max_size_mb"
	KeyLogMaxBackups  = "log_max_backups"
	KeyLogMaxAgeDays  = "log_max_age_days"
	KeyPersistUpdates = "persist_template_updates"
)

const (
	DefaultPropertiesDir = "./properties"
	DefaultInputDir      = "./Dialogs"
	DefaultOutputDir     = "./Masked"
	DefaultTenant        = "companyA"
	DefaultMinDialogs    = 5
	DefaultFileExt       = "json"
	DefaultListenAddr    = ":8080"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Config holds resolved operator-level configuration for a masker process.
type Config struct {
	PropertiesDir  string // Directory holding one subdirectory per tenant
	InputDir       string // Batch mode input directory
	OutputDir      string // Batch mode output directory
	DefaultTenant  string // Tenant used when a command is given none
	MinDialogs     int    // Files with fewer dialogs are not written
	FileExt        string // Batch input file extension, without the dot
	RateLimit      int    // Per-tenant requests per second; 0 disables
	ListenAddr     string // HTTP listen address for serve
	PersistUpdates bool   // Write template updates back to the tenant directory

	LogFile       string // Rotating log file; empty logs to stderr
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func init() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyPropertiesDir, DefaultPropertiesDir)
	v.SetDefault(KeyInputDir, DefaultInputDir)
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyDefaultTenant, DefaultTenant)
	v.SetDefault(KeyMinDialogs, DefaultMinDialogs)
	v.SetDefault(KeyFileExt, DefaultFileExt)
	v.SetDefault(KeyRateLimit, 0)
	v.SetDefault(KeyListenAddr, DefaultListenAddr)
	v.SetDefault(KeyPersistUpdates, false)
	v.SetDefault(KeyLogMaxSizeMB, DefaultLogMaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, DefaultLogMaxBackups)
	v.SetDefault(KeyLogMaxAgeDays, DefaultLogMaxAgeDays)
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("dotenv_loaded")
	return nil
}

// Load reads configuration from Viper (which merges env vars, config
// file, and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		PropertiesDir:  viper.GetString(KeyPropertiesDir),
		InputDir:       viper.GetString(KeyInputDir),
		OutputDir:      viper.GetString(KeyOutputDir),
		DefaultTenant:  viper.GetString(KeyDefaultTenant),
		MinDialogs:     viper.GetInt(KeyMinDialogs),
		FileExt:        strings.TrimPrefix(viper.GetString(KeyFileExt), "."),
		RateLimit:      viper.GetInt(KeyRateLimit),
		ListenAddr:     viper.GetString(KeyListenAddr),
		PersistUpdates: viper.GetBool(KeyPersistUpdates),
		LogFile:        viper.GetString(KeyLogFile),
		LogMaxSizeMB:   viper.GetInt(KeyLogMaxSizeMB),
		LogMaxBackups:  viper.GetInt(KeyLogMaxBackups),
		LogMaxAgeDays:  viper.GetInt(KeyLogMaxAgeDays),
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PropertiesDir == "" {
		return fmt.Errorf("properties_dir must be set")
	}
	if c.MinDialogs < 1 {
		return fmt.Errorf("min_dialogs must be at least 1 (got %d)", c.MinDialogs)
	}
	if c.FileExt == "" {
		return fmt.Errorf("file_ext must be set")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.LogMaxSizeMB <= 0 {
		return fmt.Errorf("log_max_size_mb must be positive")
	}
	return nil
}
