package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvHTTPAddr          = "HTTP_ADDR"
	EnvDBConnectDSN      = "DB_CONNECT_DSN"
	EnvMigrationsDir     = "MIGRATIONS_DIR"
	EnvMinioEndpoint     = "MINIO_ENDPOINT"
	EnvMinioAccessKey    = "MINIO_ACCESS_KEY"
	EnvMinioSecretKey    = "MINIO_SECRET_KEY"
	EnvMinioUseSSL       = "MINIO_USE_SSL"
	EnvMinioBucket       = "MINIO_BUCKET"
	EnvBlobPublicBaseURL = "BLOB_PUBLIC_BASE_URL"
	EnvTinifyAPIKey      = "TINIFY_API_KEY"
	EnvTinifyEndpoint    = "TINIFY_ENDPOINT"
	EnvUpstreamTimeout   = "UPSTREAM_TIMEOUT"
	EnvUpstreamRetries   = "UPSTREAM_RETRIES"
	EnvPictureMaxBytes   = "PICTURE_MAX_BYTES"
	EnvKafkaBrokers      = "KAFKA_BROKERS"
	EnvAdminJWTSecret    = "ADMIN_JWT_SECRET"
	EnvReconcileInterval = "RECONCILE_INTERVAL"
	EnvReconcileGrace    = "RECONCILE_GRACE"
	EnvMetricsAddr       = "METRICS_ADDR"
)

var ErrMissingValue = errors.New("required configuration value is missing")

var (
	// GatewayRequired - ключи, без которых HTTP API не поднимается
	GatewayRequired = []string{
		EnvDBConnectDSN,
		EnvMinioEndpoint,
		EnvMinioAccessKey,
		EnvMinioSecretKey,
		EnvTinifyAPIKey,
	}
	ReconcilerRequired = []string{
		EnvDBConnectDSN,
		EnvMinioEndpoint,
		EnvMinioAccessKey,
		EnvMinioSecretKey,
	}
	AdminTokenRequired = []string{
		EnvAdminJWTSecret,
	}
)

type Minio struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

type Tinify struct {
	APIKey   string
	Endpoint string
}

// Config собирается один раз при старте процесса и передается в конструкторы клиентов явно
type Config struct {
	HTTPAddr          string
	MetricsAddr       string
	DBConnectDSN      string
	MigrationsDir     string
	Minio             Minio
	Tinify            Tinify
	UpstreamTimeout   time.Duration
	UpstreamRetries   uint64
	PictureMaxBytes   int64
	KafkaBrokers      []string
	AdminJWTSecret    string
	ReconcileInterval time.Duration
	ReconcileGrace    time.Duration
}

// Load читает конфигурацию из окружения. Ошибки разбора значений возвращаются все сразу.
func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		HTTPAddr:      getEnv(EnvHTTPAddr, "0.0.0.0:80"),
		MetricsAddr:   getEnv(EnvMetricsAddr, "0.0.0.0:9100"),
		DBConnectDSN:  os.Getenv(EnvDBConnectDSN),
		MigrationsDir: getEnv(EnvMigrationsDir, "./cockroachdb/migrations"),
		Minio: Minio{
			Endpoint:      os.Getenv(EnvMinioEndpoint),
			AccessKey:     os.Getenv(EnvMinioAccessKey),
			SecretKey:     os.Getenv(EnvMinioSecretKey),
			UseSSL:        boolEnv(EnvMinioUseSSL, false, &errs),
			Bucket:        getEnv(EnvMinioBucket, "ecourse-pictures"),
			PublicBaseURL: os.Getenv(EnvBlobPublicBaseURL),
		},
		Tinify: Tinify{
			APIKey:   os.Getenv(EnvTinifyAPIKey),
			Endpoint: getEnv(EnvTinifyEndpoint, "https://api.tinify.com/shrink"),
		},
		UpstreamTimeout:   durationEnv(EnvUpstreamTimeout, 15*time.Second, &errs),
		UpstreamRetries:   uint64(intEnv(EnvUpstreamRetries, 2, &errs)),
		PictureMaxBytes:   int64(intEnv(EnvPictureMaxBytes, 250*1024, &errs)),
		KafkaBrokers:      listEnv(EnvKafkaBrokers),
		AdminJWTSecret:    os.Getenv(EnvAdminJWTSecret),
		ReconcileInterval: durationEnv(EnvReconcileInterval, 10*time.Minute, &errs),
		ReconcileGrace:    durationEnv(EnvReconcileGrace, time.Hour, &errs),
	}
	if cfg.Minio.PublicBaseURL == "" && cfg.Minio.Endpoint != "" {
		scheme := "http"
		if cfg.Minio.UseSSL {
			scheme = "https"
		}
		cfg.Minio.PublicBaseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Minio.Endpoint, cfg.Minio.Bucket)
	}
	cfg.Minio.PublicBaseURL = strings.TrimRight(cfg.Minio.PublicBaseURL, "/")
	return cfg, errors.Join(errs...)
}

// Validate проверяет, что заданы все ключи из required и что числовые параметры имеют смысл
func (c *Config) Validate(required []string) error {
	values := map[string]string{
		EnvHTTPAddr:          c.HTTPAddr,
		EnvDBConnectDSN:      c.DBConnectDSN,
		EnvMigrationsDir:     c.MigrationsDir,
		EnvMinioEndpoint:     c.Minio.Endpoint,
		EnvMinioAccessKey:    c.Minio.AccessKey,
		EnvMinioSecretKey:    c.Minio.SecretKey,
		EnvMinioBucket:       c.Minio.Bucket,
		EnvBlobPublicBaseURL: c.Minio.PublicBaseURL,
		EnvTinifyAPIKey:      c.Tinify.APIKey,
		EnvTinifyEndpoint:    c.Tinify.Endpoint,
		EnvKafkaBrokers:      strings.Join(c.KafkaBrokers, ","),
		EnvAdminJWTSecret:    c.AdminJWTSecret,
	}
	var errs []error
	for _, key := range required {
		if strings.TrimSpace(values[key]) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingValue, key))
		}
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvUpstreamTimeout))
	}
	if c.PictureMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvPictureMaxBytes))
	}
	if c.ReconcileInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvReconcileInterval))
	}
	if c.Minio.PublicBaseURL != "" {
		if u, err := url.Parse(c.Minio.PublicBaseURL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL", EnvBlobPublicBaseURL))
		}
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration, errs *[]error) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid duration for %s: %w", key, err))
		return fallback
	}
	return d
}

func intEnv(key string, fallback int, errs *[]error) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		*errs = append(*errs, fmt.Errorf("invalid non-negative integer for %s: %q", key, val))
		return fallback
	}
	return parsed
}

func boolEnv(key string, fallback bool, errs *[]error) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid bool for %s: %q", key, val))
		return fallback
	}
	return parsed
}

func listEnv(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
