package config

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBDriver   string `env:"DB_DRIVER"`
	DBHost     string `env:"DB_HOST"`
	DBPort     int    `env:"DB_PORT"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	SQLitePath string `env:"SQLITE_PATH"`

	// HTTP
	Host          string   `env:"HOST"`
	Port          int      `env:"PORT"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:","`
	SecureCookies bool     `env:"SECURE_COOKIES"`
	TrustedProxy  bool     `env:"TRUSTED_PROXY"`

	// Auth
	AuthSecret      string  `env:"AUTH_SECRET"`
	SessionTTLHours int     `env:"SESSION_TTL_HOURS"`
	LoginRPS        float64 `env:"LOGIN_RPS"`
	LoginBurst      int     `env:"LOGIN_BURST"`

	// Files
	StorageBackend string `env:"STORAGE_BACKEND"`
	UploadDir      string `env:"UPLOAD_DIR"`
	MaxUploadMB    int    `env:"MAX_UPLOAD_MB"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`

	// Logs
	AuditLog string `env:"AUDIT_LOG"`
	AdminLog string `env:"ADMIN_LOG"`

	MetricsEnabled string `env:"METRICS_ENABLED"`
	metrics        bool
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги перекрывают env, дефолты применяются последними
	flag.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver: postgres or sqlite")
	flag.StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "database host")
	flag.IntVar(&cfg.DBPort, "db-port", cfg.DBPort, "database port")
	flag.StringVar(&cfg.DBName, "db-name", cfg.DBName, "database name")
	flag.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "path to SQLite database file")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "listen host")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "listen port")
	flag.BoolVar(&cfg.TrustedProxy, "trusted-proxy", cfg.TrustedProxy, "take client IP from X-Forwarded-For / X-Real-IP")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "secret used to sign session cookies")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "root directory for uploaded files")
	flag.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "file storage backend: local or s3")

	if !flag.Parsed() {
		flag.Parse()
	}

	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults подставляет значения по умолчанию для незаданных и некорректных настроек.
func (c *Config) ApplyDefaults() {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver != "sqlite" {
		c.DBDriver = "postgres"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort <= 0 || c.DBPort > 65535 {
		c.DBPort = 5432
	}
	if c.DBUser == "" {
		c.DBUser = "postgres"
	}
	if c.DBName == "" {
		c.DBName = "mysite"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "scholardesk.db"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = 8000
	}
	if c.AuthSecret == "" {
		c.AuthSecret = "dev-secret-key"
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 72
	}
	if c.LoginRPS <= 0 {
		c.LoginRPS = 1
	}
	if c.LoginBurst <= 0 {
		c.LoginBurst = 5
	}
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	if c.StorageBackend != "s3" {
		c.StorageBackend = "local"
	}
	if c.UploadDir == "" {
		c.UploadDir = "static/uploads"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 50
	}
	if c.AuditLog == "" {
		c.AuditLog = "logs/audit.log"
	}
	if c.AdminLog == "" {
		c.AdminLog = "logs/admin.log"
	}
	c.metrics = true
	if v, err := strconv.ParseBool(c.MetricsEnabled); err == nil {
		c.metrics = v
	}
}

// Addr адрес для прослушивания в виде host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DSN строка подключения к PostgreSQL.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// SessionTTL время жизни сессии.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// MaxUploadBytes лимит размера загружаемого файла в байтах.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// Metrics включён ли эндпоинт /metrics.
func (c *Config) Metrics() bool {
	return c.metrics
}
