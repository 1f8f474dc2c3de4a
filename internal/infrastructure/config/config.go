package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Classifier ClassifierConfig
	Risk       RiskConfig
	Retention  RetentionConfig
	Scanner    ScannerConfig
	Scheduler  SchedulerConfig
	Telemetry  TelemetryConfig
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

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings for the API surface
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// ClassifierConfig holds the churn model service connection settings
type ClassifierConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	ModelVersion  string
	HealthTimeout time.Duration
}

// RiskConfig holds grading thresholds on the 0-100 risk scale
type RiskConfig struct {
	HighThreshold   int
	MediumThreshold int
}

// RetentionConfig holds workflow tuning: incentive tiers, monitoring
// windows, and the cost model used for ROI reporting.
type RetentionConfig struct {
	DiscountScoreFloor     int
	DiscountPercent        float64
	DiscountMonths         int
	CreditScoreFloor       int
	CreditAmount           float64
	GiftCardAmount         float64
	IncentiveExpiry        time.Duration
	HighResponseWindow     time.Duration
	MediumEngagementWindow time.Duration
	EstimatedTurnoverCost  float64
	RiskMitigationPerPoint float64
	ActionMaxAttempts      int
	ActionRetryBackoff     time.Duration
	LeaseLockTTL           time.Duration
}

// ScannerConfig holds batch risk scan settings
type ScannerConfig struct {
	WindowDays  int
	Concurrency int
	LeaseLimit  int
}

// SchedulerConfig holds the periodic scan scheduler configuration
type SchedulerConfig struct {
	Enabled        bool
	ScanInterval   time.Duration
	ResumeInterval time.Duration
	JobTimeout     time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	DBSlowQueryThresh time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TCP_ prefix (e.g., TCP_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Classifier: ClassifierConfig{
			BaseURL:       v.GetString("classifier.base_url"),
			Timeout:       v.GetDuration("classifier.timeout"),
			MaxRetries:    v.GetInt("classifier.max_retries"),
			RetryBackoff:  v.GetDuration("classifier.retry_backoff"),
			ModelVersion:  v.GetString("classifier.model_version"),
			HealthTimeout: v.GetDuration("classifier.health_timeout"),
		},
		Risk: RiskConfig{
			HighThreshold:   v.GetInt("risk.high_threshold"),
			MediumThreshold: v.GetInt("risk.medium_threshold"),
		},
		Retention: RetentionConfig{
			DiscountScoreFloor:     v.GetInt("retention.discount_score_floor"),
			DiscountPercent:        v.GetFloat64("retention.discount_percent"),
			DiscountMonths:         v.GetInt("retention.discount_months"),
			CreditScoreFloor:       v.GetInt("retention.credit_score_floor"),
			CreditAmount:           v.GetFloat64("retention.credit_amount"),
			GiftCardAmount:         v.GetFloat64("retention.gift_card_amount"),
			IncentiveExpiry:        v.GetDuration("retention.incentive_expiry"),
			HighResponseWindow:     v.GetDuration("retention.high_response_window"),
			MediumEngagementWindow: v.GetDuration("retention.medium_engagement_window"),
			EstimatedTurnoverCost:  v.GetFloat64("retention.estimated_turnover_cost"),
			RiskMitigationPerPoint: v.GetFloat64("retention.risk_mitigation_per_point"),
			ActionMaxAttempts:      v.GetInt("retention.action_max_attempts"),
			ActionRetryBackoff:     v.GetDuration("retention.action_retry_backoff"),
			LeaseLockTTL:           v.GetDuration("retention.lease_lock_ttl"),
		},
		Scanner: ScannerConfig{
			WindowDays:  v.GetInt("scanner.window_days"),
			Concurrency: v.GetInt("scanner.concurrency"),
			LeaseLimit:  v.GetInt("scanner.lease_limit"),
		},
		Scheduler: SchedulerConfig{
			Enabled:        v.GetBool("scheduler.enabled"),
			ScanInterval:   v.GetDuration("scheduler.scan_interval"),
			ResumeInterval: v.GetDuration("scheduler.resume_interval"),
			JobTimeout:     v.GetDuration("scheduler.job_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
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
		cfg.App.Name = "tenant-prediction"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "tenant_prediction"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "tenant-prediction"
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
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Classifier.BaseURL == "" {
		cfg.Classifier.BaseURL = "http://localhost:9000"
	}
	if cfg.Classifier.Timeout == 0 {
		cfg.Classifier.Timeout = 10 * time.Second
	}
	if cfg.Classifier.MaxRetries == 0 {
		cfg.Classifier.MaxRetries = 3
	}
	if cfg.Classifier.RetryBackoff == 0 {
		cfg.Classifier.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Classifier.HealthTimeout == 0 {
		cfg.Classifier.HealthTimeout = 3 * time.Second
	}
	if cfg.Risk.HighThreshold == 0 {
		cfg.Risk.HighThreshold = 80
	}
	if cfg.Risk.MediumThreshold == 0 {
		cfg.Risk.MediumThreshold = 50
	}
	if cfg.Retention.DiscountScoreFloor == 0 {
		cfg.Retention.DiscountScoreFloor = 70
	}
	if cfg.Retention.DiscountPercent == 0 {
		cfg.Retention.DiscountPercent = 5
	}
	if cfg.Retention.DiscountMonths == 0 {
		cfg.Retention.DiscountMonths = 3
	}
	if cfg.Retention.CreditScoreFloor == 0 {
		cfg.Retention.CreditScoreFloor = 60
	}
	if cfg.Retention.CreditAmount == 0 {
		cfg.Retention.CreditAmount = 500
	}
	if cfg.Retention.GiftCardAmount == 0 {
		cfg.Retention.GiftCardAmount = 250
	}
	if cfg.Retention.IncentiveExpiry == 0 {
		cfg.Retention.IncentiveExpiry = 30 * 24 * time.Hour
	}
	if cfg.Retention.HighResponseWindow == 0 {
		cfg.Retention.HighResponseWindow = 48 * time.Hour
	}
	if cfg.Retention.MediumEngagementWindow == 0 {
		cfg.Retention.MediumEngagementWindow = 7 * 24 * time.Hour
	}
	if cfg.Retention.EstimatedTurnoverCost == 0 {
		cfg.Retention.EstimatedTurnoverCost = 4000
	}
	if cfg.Retention.RiskMitigationPerPoint == 0 {
		cfg.Retention.RiskMitigationPerPoint = 40
	}
	if cfg.Retention.ActionMaxAttempts == 0 {
		cfg.Retention.ActionMaxAttempts = 3
	}
	if cfg.Retention.ActionRetryBackoff == 0 {
		cfg.Retention.ActionRetryBackoff = time.Second
	}
	if cfg.Retention.LeaseLockTTL == 0 {
		cfg.Retention.LeaseLockTTL = 5 * time.Minute
	}
	if cfg.Scanner.WindowDays == 0 {
		cfg.Scanner.WindowDays = 90
	}
	if cfg.Scanner.Concurrency == 0 {
		cfg.Scanner.Concurrency = 8
	}
	if cfg.Scheduler.ScanInterval == 0 {
		cfg.Scheduler.ScanInterval = 24 * time.Hour
	}
	if cfg.Scheduler.ResumeInterval == 0 {
		cfg.Scheduler.ResumeInterval = time.Hour
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "tenant-prediction"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Risk.MediumThreshold <= 0 || c.Risk.HighThreshold > 100 {
		return fmt.Errorf("risk thresholds must fall within (0, 100]")
	}
	if c.Risk.MediumThreshold >= c.Risk.HighThreshold {
		return fmt.Errorf("risk.medium_threshold (%d) must be below risk.high_threshold (%d)",
			c.Risk.MediumThreshold, c.Risk.HighThreshold)
	}
	if c.Retention.CreditScoreFloor >= c.Retention.DiscountScoreFloor {
		return fmt.Errorf("retention.credit_score_floor (%d) must be below retention.discount_score_floor (%d)",
			c.Retention.CreditScoreFloor, c.Retention.DiscountScoreFloor)
	}
	if c.Scanner.WindowDays <= 0 {
		return fmt.Errorf("scanner.window_days must be positive")
	}
	if c.Scanner.Concurrency <= 0 {
		return fmt.Errorf("scanner.concurrency must be positive")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
