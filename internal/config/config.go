// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads, edits and saves the docufetch configuration.
//
// Values are layered by viper: defaults, then the YAML config file, then
// DOCUFETCH_* environment variables. Nested keys map to environment names
// with dots replaced by underscores (http.timeout -> DOCUFETCH_HTTP_TIMEOUT).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DOCUFETCH"

	// FileName is the config file name without extension.
	FileName = "docufetch"
)

// ErrUnknownSource is returned when a source name is not registered.
var ErrUnknownSource = errors.New("unknown source")

// Dir returns the per-user configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "docufetch")
}

// DefaultPath is where Save writes when no config file was loaded.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName+".yaml")
}

// SearchPaths lists the directories searched for docufetch.yaml.
func SearchPaths() []string {
	return []string{".", Dir()}
}

// Defaults returns a fresh configuration.
func Defaults() types.Config {
	dir := "DocuFetch_Downloads"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, "DocuFetch_Downloads")
	}
	return types.Config{
		Keywords:            []string{},
		Sources:             source.DefaultEnabled(),
		Category:            types.FilterBoth,
		UpdateInterval:      12,
		MaxResultsPerSource: 50,
		DownloadPDFs:        true,
		SourceTimeout:       60 * time.Second,
		HTTP: types.HTTPConfig{
			Timeout: 60 * time.Second,
		},
		Store: types.StoreConfig{
			Backend:     types.StoreSQLite,
			Path:        filepath.Join(dir, "dedup.db"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "docufetch",
		},
		Download: types.DownloadConfig{
			Dir:         dir,
			Delay:       time.Second,
			ValidatePDF: true,
			Sink:        types.SinkFile,
			Minio: types.MinioConfig{
				Bucket: "docufetch",
				Region: "us-east-1",
			},
		},
		News: types.NewsConfig{
			Feeds: append([]string(nil), source.DefaultNewsFeeds...),
		},
		Logging: types.LoggingConfig{Level: "info"},
	}
}

// New returns a viper instance carrying the defaults and environment
// bindings. file, when set, is the only config file considered; otherwise
// docufetch.yaml is searched for in dirs.
func New(file string, dirs []string) *viper.Viper {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	d := Defaults()
	v.SetDefault("keywords", d.Keywords)
	for name, on := range d.Sources {
		v.SetDefault("sources."+name, on)
	}
	v.SetDefault("category", string(d.Category))
	v.SetDefault("update_interval", d.UpdateInterval)
	v.SetDefault("max_results_per_source", d.MaxResultsPerSource)
	v.SetDefault("download_pdfs", d.DownloadPDFs)
	v.SetDefault("source_timeout", d.SourceTimeout)
	v.SetDefault("max_parallel", d.MaxParallel)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("store.backend", string(d.Store.Backend))
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.redis_addr", d.Store.RedisAddr)
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", d.Store.RedisPrefix)
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("download.dir", d.Download.Dir)
	v.SetDefault("download.delay", d.Download.Delay)
	v.SetDefault("download.validate_pdf", d.Download.ValidatePDF)
	v.SetDefault("download.sink", string(d.Download.Sink))
	v.SetDefault("download.minio.endpoint", "")
	v.SetDefault("download.minio.access_key", "")
	v.SetDefault("download.minio.secret_key", "")
	v.SetDefault("download.minio.bucket", d.Download.Minio.Bucket)
	v.SetDefault("download.minio.region", d.Download.Minio.Region)
	v.SetDefault("download.minio.use_ssl", false)
	v.SetDefault("news.feeds", d.News.Feeds)
	v.SetDefault("logging.level", d.Logging.Level)
	for _, key := range apiKeyFields {
		v.SetDefault("api_keys."+key, "")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration and returns it with the path of the file
// used, or "" when only defaults and the environment applied. A missing
// explicit file is an error; a missing searched-for file is not.
func Load(file string, dirs []string) (types.Config, string, error) {
	v := New(file, dirs)
	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return types.Config{}, "", fmt.Errorf("reading config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]bool)
	}
	for _, name := range source.Names {
		if _, ok := cfg.Sources[name]; !ok {
			cfg.Sources[name] = false
		}
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, "", err
	}
	return cfg, used, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(cfg types.Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks values a run depends on.
func Validate(cfg types.Config) error {
	if _, err := types.ParseCategoryFilter(string(cfg.Category)); err != nil {
		return err
	}
	if cfg.UpdateInterval < 1 {
		return fmt.Errorf("update_interval must be at least 1 hour, got %d", cfg.UpdateInterval)
	}
	if cfg.MaxResultsPerSource < 1 {
		return fmt.Errorf("max_results_per_source must be positive, got %d", cfg.MaxResultsPerSource)
	}
	if cfg.SourceTimeout <= 0 {
		return fmt.Errorf("source_timeout must be positive, got %s", cfg.SourceTimeout)
	}
	switch cfg.Store.Backend {
	case types.StoreSQLite, types.StoreRedis, types.StorePostgres, types.StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	switch cfg.Download.Sink {
	case types.SinkFile, types.SinkMinio:
	default:
		return fmt.Errorf("unknown download sink %q", cfg.Download.Sink)
	}
	for name := range cfg.Sources {
		if !source.Known(name) {
			return fmt.Errorf("%w: %s", ErrUnknownSource, name)
		}
	}
	return nil
}
