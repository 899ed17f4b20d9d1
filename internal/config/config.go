// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads authclient settings from defaults, a YAML file,
// dotenv files, the environment and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/authclient/internal/apiclient"
	"github.com/holomush/authclient/internal/storage"
	"github.com/holomush/authclient/internal/xdg"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "AUTHCLIENT_"

// Keys. Flags carry the same names; environment variables are the
// upper-snake form with EnvPrefix, e.g. AUTHCLIENT_API_BASE_URL.
const (
	KeyAPIBaseURL      = "api-base-url"
	KeyStorage         = "storage"
	KeyStoragePath     = "storage-path"
	KeyRedisURL        = "redis-url"
	KeyRedisPrefix     = "redis-prefix"
	KeyLogFormat       = "log-format"
	KeyLogLevel        = "log-level"
	KeyTimeout         = "timeout"
	KeyMetricsTextfile = "metrics-textfile"
)

// DefaultEnvFiles are read from the working directory when present.
// Later files win.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config is the resolved configuration.
type Config struct {
	APIBaseURL      string        `koanf:"api-base-url"`
	Storage         string        `koanf:"storage"`
	StoragePath     string        `koanf:"storage-path"`
	RedisURL        string        `koanf:"redis-url"`
	RedisPrefix     string        `koanf:"redis-prefix"`
	LogFormat       string        `koanf:"log-format"`
	LogLevel        string        `koanf:"log-level"`
	Timeout         time.Duration `koanf:"timeout"`
	MetricsTextfile string        `koanf:"metrics-textfile"`
}

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		KeyAPIBaseURL:      "",
		KeyStorage:         storage.BackendFile,
		KeyStoragePath:     "",
		KeyRedisURL:        "",
		KeyRedisPrefix:     storage.DefaultRedisPrefix,
		KeyLogFormat:       "text",
		KeyLogLevel:        "info",
		KeyTimeout:         apiclient.DefaultTimeout.String(),
		KeyMetricsTextfile: "",
	}
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. It must exist when set.
	// When empty, xdg.ConfigFile() is used if it exists.
	File string
	// EnvFiles are dotenv files to read. Nil means DefaultEnvFiles.
	// Missing files are skipped.
	EnvFiles []string
	// Flags overrides every other layer, but only for flags the user set.
	Flags *pflag.FlagSet
}

// Load resolves the configuration and validates it.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "defaults").Wrap(err)
	}

	path, explicit := opts.File, opts.File != ""
	if !explicit {
		if p, err := xdg.ConfigFile(); err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "file").With("path", path).Wrap(err)
			}
		}
	}

	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = DefaultEnvFiles
	}
	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(dotenv, "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "dotenv").Wrap(err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "env").Wrap(err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.Provider(opts.Flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readEnvFiles maps AUTHCLIENT_* entries of dotenv files to keys.
// The process environment is not modified.
func readEnvFiles(paths []string) (map[string]any, error) {
	out := make(map[string]any)
	for _, p := range paths {
		vars, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "dotenv").With("path", p).Wrap(err)
		}
		for name, value := range vars {
			if key := envKey(name); key != "" && strings.HasPrefix(name, EnvPrefix) {
				out[key] = value
			}
		}
	}
	return out, nil
}

// envKey turns AUTHCLIENT_API_BASE_URL into api-base-url.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_", "-")
}

// Validate checks that the configuration is usable. Every problem is
// reported; the result is an errors.Join of CONFIG_INVALID errors, each
// carrying the offending key.
func (c *Config) Validate() error {
	var problems []error

	if c.APIBaseURL == "" {
		problems = append(problems, invalid(KeyAPIBaseURL, "is required (set --api-base-url or AUTHCLIENT_API_BASE_URL)"))
	} else if u, err := url.Parse(c.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, invalid(KeyAPIBaseURL, "must be an absolute http or https URL, got %q", c.APIBaseURL))
	}

	switch c.Storage {
	case storage.BackendFile, storage.BackendMemory:
	case storage.BackendRedis:
		if c.RedisURL == "" {
			problems = append(problems, invalid(KeyRedisURL, "is required when storage is redis"))
		}
	default:
		problems = append(problems, invalid(KeyStorage, "must be one of file, memory, redis, got %q", c.Storage))
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, invalid(KeyLogFormat, "must be 'json' or 'text', got %q", c.LogFormat))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, invalid(KeyLogLevel, "must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	if c.Timeout <= 0 {
		problems = append(problems, invalid(KeyTimeout, "must be positive, got %s", c.Timeout))
	}
	return errors.Join(problems...)
}

// StorageConfig is the storage.Open configuration.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend:     c.Storage,
		Path:        c.StoragePath,
		RedisURL:    c.RedisURL,
		RedisPrefix: c.RedisPrefix,
	}
}

func invalid(key, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf(key+" "+format, args...)
}
