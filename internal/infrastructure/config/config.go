package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Assets    AssetsConfig
	Layout    LayoutConfig
	Export    ExportConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	MaxFieldLength    int // Max runes per field value
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
	StaticDir         string // Served at / when set
	SwaggerEnabled    bool
	SwaggerAllowedIPs []string // IPs or CIDRs allowed to read the API docs; empty = all
}

// Asset source kinds
const (
	AssetSourceFilesystem = "filesystem"
	AssetSourceS3         = "s3"
)

// AssetsConfig holds where template and font assets are read from
type AssetsConfig struct {
	Source string // filesystem or s3
	Dir    string // Base directory for the filesystem source
	S3     S3Config
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Prefix       string
	UseSSL       bool
	UsePathStyle bool
}

// LayoutConfig holds layout loading settings
type LayoutConfig struct {
	Dir      string // Directory with *.yaml layouts; empty = built-in only
	Default  string // Layout used when a request names none
	Template string // Overrides the default layout template asset
	Font     string // Overrides the default layout font asset
}

// ExportConfig holds document export and retention settings
type ExportConfig struct {
	Dir             string
	DPI             float64
	Title           string
	Retention       time.Duration // Age after which leftover documents are removed
	CleanupInterval time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	LogsEnabled       bool // Export zap entries over OTLP

	ProfilingEnabled  bool   // Pyroscope continuous profiling
	ProfilingAddress  string // Pyroscope server address
	ProfilingUser     string // Optional basic auth user
	ProfilingPassword string // Optional basic auth password
	SpanProfiles      bool   // Link CPU profiles to trace spans
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with AGREEMENT_ prefix (e.g., AGREEMENT_APP_PORT)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	v.AddConfigPath("/etc/hotel-agreement")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("AGREEMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			MaxFieldLength:    v.GetInt("http.max_field_length"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
			StaticDir:         v.GetString("http.static_dir"),
			SwaggerEnabled:    v.GetBool("http.swagger_enabled"),
			SwaggerAllowedIPs: v.GetStringSlice("http.swagger_allowed_ips"),
		},
		Assets: AssetsConfig{
			Source: v.GetString("assets.source"),
			Dir:    v.GetString("assets.dir"),
			S3: S3Config{
				Endpoint:     v.GetString("assets.s3.endpoint"),
				Region:       v.GetString("assets.s3.region"),
				Bucket:       v.GetString("assets.s3.bucket"),
				AccessKey:    v.GetString("assets.s3.access_key"),
				SecretKey:    v.GetString("assets.s3.secret_key"),
				Prefix:       v.GetString("assets.s3.prefix"),
				UseSSL:       v.GetBool("assets.s3.use_ssl"),
				UsePathStyle: v.GetBool("assets.s3.use_path_style"),
			},
		},
		Layout: LayoutConfig{
			Dir:      v.GetString("layout.dir"),
			Default:  v.GetString("layout.default"),
			Template: v.GetString("layout.template"),
			Font:     v.GetString("layout.font"),
		},
		Export: ExportConfig{
			Dir:             v.GetString("export.dir"),
			DPI:             v.GetFloat64("export.dpi"),
			Title:           v.GetString("export.title"),
			Retention:       v.GetDuration("export.retention"),
			CleanupInterval: v.GetDuration("export.cleanup_interval"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingAddress:  v.GetString("telemetry.profiling_address"),
			ProfilingUser:     v.GetString("telemetry.profiling_user"),
			ProfilingPassword: v.GetString("telemetry.profiling_password"),
			SpanProfiles:      v.GetBool("telemetry.span_profiles"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "hotel-agreement"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "5001"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 64 << 10 // 64KB
	}
	if cfg.HTTP.MaxFieldLength == 0 {
		cfg.HTTP.MaxFieldLength = 200
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// An empty origin list means no cross-origin requests are allowed until configured
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Assets.Source == "" {
		cfg.Assets.Source = AssetSourceFilesystem
	}
	if cfg.Assets.Dir == "" {
		cfg.Assets.Dir = "static"
	}
	if cfg.Assets.S3.Region == "" {
		cfg.Assets.S3.Region = "us-east-1"
	}
	if cfg.Layout.Default == "" {
		cfg.Layout.Default = "hotel_agreement"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "ALL_AGREEMENTS"
	}
	if cfg.Export.DPI == 0 {
		cfg.Export.DPI = 100
	}
	if cfg.Export.Retention == 0 {
		cfg.Export.Retention = time.Hour
	}
	if cfg.Export.CleanupInterval == 0 {
		cfg.Export.CleanupInterval = 10 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "hotel-agreement"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 15 * time.Second
	}
	if cfg.Telemetry.ProfilingAddress == "" {
		cfg.Telemetry.ProfilingAddress = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Assets.Source {
	case AssetSourceFilesystem:
	case AssetSourceS3:
		if c.Assets.S3.Bucket == "" {
			return fmt.Errorf("assets.s3.bucket is required when assets.source is s3")
		}
		if c.Assets.S3.AccessKey == "" || c.Assets.S3.SecretKey == "" {
			return fmt.Errorf("assets.s3.access_key and assets.s3.secret_key are required when assets.source is s3")
		}
	default:
		return fmt.Errorf("assets.source must be %q or %q, got %q", AssetSourceFilesystem, AssetSourceS3, c.Assets.Source)
	}

	if c.Export.DPI < 0 {
		return fmt.Errorf("export.dpi must be positive, got %f", c.Export.DPI)
	}
	if c.Export.Retention < 0 || c.Export.CleanupInterval < 0 {
		return fmt.Errorf("export.retention and export.cleanup_interval cannot be negative")
	}
	if c.HTTP.MaxFieldLength < 0 {
		return fmt.Errorf("http.max_field_length cannot be negative")
	}
	if c.HTTP.RateLimitRequests < 0 {
		return fmt.Errorf("http.rate_limit_requests cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Assets.Source == AssetSourceS3 && !c.Assets.S3.UseSSL &&
			!strings.HasPrefix(c.Assets.S3.Endpoint, "https://") && c.Assets.S3.Endpoint != "" {
			return fmt.Errorf("assets.s3.use_ssl must be true in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
