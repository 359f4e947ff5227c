package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "TRAINING"

// DefaultEnvFile is loaded when present and no explicit file is requested.
const DefaultEnvFile = ".env"

const (
	DurabilityBestEffort = "best-effort"
	DurabilityStrict     = "strict"

	LoadPolicySkip  = "skip"
	LoadPolicyAbort = "abort"
)

// Config captures environment driven configuration values for the training service.
type Config struct {
	HTTPAddr            string
	RecordsFile         string
	BootstrapUsername   string
	BootstrapPassword   string
	SessionTTL          time.Duration
	RefreshSessionRoles bool
	Durability          string
	LoadPolicy          string
	CORSOrigins         []string
	LogLevel            slog.Level
	LogFormat           string
}

// Options controls where Load looks for values besides the process environment.
type Options struct {
	// EnvFile names a dotenv file. When empty DefaultEnvFile is tried and a
	// missing file is ignored; an explicitly named file must exist.
	EnvFile string
	// Flags carries command line overrides. Only flags the user changed
	// take precedence over the environment.
	Flags *pflag.FlagSet
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":         "http_addr",
	"records-file": "records_file",
	"log-level":    "log_level",
}

// Load reads configuration from an optional dotenv file, the process
// environment and command line flags, in increasing order of precedence.
//
// Defaults are applied for every key; all invalid values are reported together.
func Load(opts Options) (Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("http_addr", "127.0.0.1:8080")
	v.SetDefault("records_file", "employees.csv")
	v.SetDefault("bootstrap_username", "admin")
	v.SetDefault("bootstrap_password", "admin123")
	v.SetDefault("session_ttl", "0")
	v.SetDefault("refresh_session_roles", "false")
	v.SetDefault("durability", DurabilityBestEffort)
	v.SetDefault("load_policy", LoadPolicySkip)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := Config{
		HTTPAddr:          strings.TrimSpace(v.GetString("http_addr")),
		RecordsFile:       strings.TrimSpace(v.GetString("records_file")),
		BootstrapUsername: strings.TrimSpace(v.GetString("bootstrap_username")),
		BootstrapPassword: v.GetString("bootstrap_password"),
		Durability:        strings.ToLower(strings.TrimSpace(v.GetString("durability"))),
		LoadPolicy:        strings.ToLower(strings.TrimSpace(v.GetString("load_policy"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		CORSOrigins:       splitList(v.GetString("cors_origins")),
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if cfg.HTTPAddr == "" {
		missing = append(missing, envKey("http_addr"))
	}
	if cfg.RecordsFile == "" {
		missing = append(missing, envKey("records_file"))
	}
	if cfg.BootstrapUsername == "" {
		missing = append(missing, envKey("bootstrap_username"))
	}
	if cfg.BootstrapPassword == "" {
		missing = append(missing, envKey("bootstrap_password"))
	}

	if ttl, err := time.ParseDuration(strings.TrimSpace(v.GetString("session_ttl"))); err != nil || ttl < 0 {
		invalid = append(invalid, envKey("session_ttl"))
	} else {
		cfg.SessionTTL = ttl
	}

	if refresh, err := strconv.ParseBool(strings.TrimSpace(v.GetString("refresh_session_roles"))); err != nil {
		invalid = append(invalid, envKey("refresh_session_roles"))
	} else {
		cfg.RefreshSessionRoles = refresh
	}

	if cfg.Durability != DurabilityBestEffort && cfg.Durability != DurabilityStrict {
		invalid = append(invalid, envKey("durability"))
	}
	if cfg.LoadPolicy != LoadPolicySkip && cfg.LoadPolicy != LoadPolicyAbort {
		invalid = append(invalid, envKey("load_policy"))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v.GetString("log_level")))); err != nil {
		invalid = append(invalid, envKey("log_level"))
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		invalid = append(invalid, envKey("log_format"))
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required configuration values are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("configuration values are invalid: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func envKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
