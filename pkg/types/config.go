package types

import "time"

// HTTPConfig holds shared HTTP settings used by source adapters and the downloader.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "docufetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// APIKeys holds per-source credentials. Values may also come from .secrets/.
type APIKeys struct {
	Core            string `json:"core,omitempty" yaml:"core,omitempty" mapstructure:"core"`
	CrossrefEmail   string `json:"crossref_email,omitempty" yaml:"crossref_email,omitempty" mapstructure:"crossref_email"`
	UnpaywallEmail  string `json:"unpaywall_email,omitempty" yaml:"unpaywall_email,omitempty" mapstructure:"unpaywall_email"`
	NCBIEmail       string `json:"ncbi_email,omitempty" yaml:"ncbi_email,omitempty" mapstructure:"ncbi_email"`
	DOAJ            string `json:"doaj_api_key,omitempty" yaml:"doaj_api_key,omitempty" mapstructure:"doaj_api_key"`
	SemanticScholar string `json:"semantic_scholar,omitempty" yaml:"semantic_scholar,omitempty" mapstructure:"semantic_scholar"`
	OpenAlexEmail   string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// StoreBackend selects the dedup store implementation.
type StoreBackend string

const (
	StoreSQLite   StoreBackend = "sqlite"
	StoreRedis    StoreBackend = "redis"
	StorePostgres StoreBackend = "postgres"
	StoreMemory   StoreBackend = "memory"
)

// StoreConfig holds settings for the dedup store.
type StoreConfig struct {
	// Backend is sqlite (default), redis, postgres or memory.
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty" mapstructure:"redis_db"`

	// RedisPrefix namespaces every key the store writes (default "docufetch").
	RedisPrefix string `json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty" mapstructure:"redis_prefix"`

	PostgresDSN string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty" mapstructure:"postgres_dsn"`
}

// SinkKind selects where downloaded files are written.
type SinkKind string

const (
	SinkFile  SinkKind = "file"
	SinkMinio SinkKind = "minio"
)

// MinioConfig holds connection settings for the object storage sink.
type MinioConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty" mapstructure:"access_key"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty" mapstructure:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty" mapstructure:"region"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl" mapstructure:"use_ssl"`
}

// DownloadConfig holds settings for the downloader.
type DownloadConfig struct {
	// Dir is the download root (contains academic/, news/, metadata/).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Delay is the pause between consecutive downloads (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// ValidatePDF rejects downloads that claim to be PDFs but do not parse.
	ValidatePDF bool `json:"validate_pdf" yaml:"validate_pdf" mapstructure:"validate_pdf"`

	Sink  SinkKind    `json:"sink" yaml:"sink" mapstructure:"sink"`
	Minio MinioConfig `json:"minio" yaml:"minio" mapstructure:"minio"`
}

// NewsConfig holds settings for the news source.
type NewsConfig struct {
	// Feeds lists RSS/Atom feed URLs. A "{query}" placeholder is replaced by
	// the escaped keyword; feeds without it are filtered by keyword locally.
	Feeds []string `json:"feeds" yaml:"feeds" mapstructure:"feeds"`
}

// LoggingConfig holds settings for the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config is the full docufetch configuration. A run works from one
// immutable snapshot of it.
type Config struct {
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// Sources maps a source name to its enabled flag.
	Sources map[string]bool `json:"sources" yaml:"sources" mapstructure:"sources"`

	APIKeys APIKeys `json:"api_keys" yaml:"api_keys" mapstructure:"api_keys"`

	// Category restricts runs to academic, news or both sources.
	Category CategoryFilter `json:"category" yaml:"category" mapstructure:"category"`

	// UpdateInterval is the monitor period in hours.
	UpdateInterval int `json:"update_interval" yaml:"update_interval" mapstructure:"update_interval"`

	MaxResultsPerSource int  `json:"max_results_per_source" yaml:"max_results_per_source" mapstructure:"max_results_per_source"`
	DownloadPDFs        bool `json:"download_pdfs" yaml:"download_pdfs" mapstructure:"download_pdfs"`

	// SourceTimeout bounds each source query in an aggregation run.
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout" mapstructure:"source_timeout"`

	// MaxParallel caps concurrent source queries; 0 means one per source.
	MaxParallel int `json:"max_parallel" yaml:"max_parallel" mapstructure:"max_parallel"`

	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Download DownloadConfig `json:"download" yaml:"download" mapstructure:"download"`
	News     NewsConfig     `json:"news" yaml:"news" mapstructure:"news"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging" mapstructure:"logging"`
}
