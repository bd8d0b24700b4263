package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Every tunable arrives as an environment variable; the struct is built once
// at process start, validated eagerly, and passed by reference. Components
// never read the environment themselves.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	JWT      JWTConfig
	Hashing  HashingConfig
	Tokens   TokenConfig
	Invoice  InvoiceConfig
	Redis    RedisConfig
	Log      LogConfig
}

// AppConfig holds application-wide settings
type AppConfig struct {
	Environment string // development, staging, production
	Debug       bool
}

// ServerConfig holds HTTP server binding settings
type ServerConfig struct {
	Host    string
	Port    int
	Workers int // caps GOMAXPROCS
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database connection and pool settings
type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string
	Schema   string

	Timeout      time.Duration // per-connection dial/ping timeout
	PoolSize     int           // max idle connections
	MaxPoolCon   int           // base max open connections
	PoolOverflow int           // extra open connections allowed on top of MaxPoolCon

	EchoLog        bool // log every SQL statement
	ExpireOnCommit bool // accepted for deployment compatibility; no pool effect
	ForceRollback  bool // run request-scoped transactions rollback-only (test envs)

	ConnectAttempts int           // bounded startup retry while the store warms up
	ConnectBackoff  time.Duration // initial backoff, doubled per attempt
}

// MaxOpenConns returns the effective open-connection ceiling
func (d *DatabaseConfig) MaxOpenConns() int {
	return d.MaxPoolCon + d.PoolOverflow
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.Username, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	if d.Timeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(d.Timeout.Seconds())))
	}
	if d.Schema != "" && d.Schema != "public" {
		q.Set("search_path", d.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
}

// JWTConfig holds JWT settings.
// Token lifetime is composed from the three duration knobs:
// JWT_DAY days + JWT_HOUR hours + JWT_MIN minutes.
type JWTConfig struct {
	SecretKey   string
	Subject     string
	TokenPrefix string // e.g. "Bearer"
	Algorithm   string // HS256, HS384, HS512
	Minutes     int
	Hours       int
	Days        int
}

// Expiration returns the composed token lifetime
func (j *JWTConfig) Expiration() time.Duration {
	return time.Duration(j.Days)*24*time.Hour +
		time.Duration(j.Hours)*time.Hour +
		time.Duration(j.Minutes)*time.Minute
}

// HashingConfig holds the layered password hashing settings
type HashingConfig struct {
	Layer1 string // fast pre-hash: sha256, sha512, blake2b
	Layer2 string // slow outer layer: bcrypt, argon2
	Salt   string
}

// TokenConfig holds static service tokens
type TokenConfig struct {
	APIToken  string // gate for service-to-service endpoints
	AuthToken string // shared secret presented by the frontend proxy
}

// InvoiceConfig holds invoice image storage settings
type InvoiceConfig struct {
	Backend     string // local, s3
	UploadDir   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	MaxFileSize int64
}

// RedisConfig holds Redis connection settings for the token revocation store.
// An empty host means the in-memory store is used instead.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the Redis connection address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// requiredVars is the wire contract with the deployment environment.
// Startup fails fast, naming the first variable that is missing or empty.
var requiredVars = []string{
	"POSTGRES_USERNAME",
	"POSTGRES_PASSWORD",
	"POSTGRES_DB",
	"POSTGRES_HOST",
	"POSTGRES_PORT",
	"POSTGRES_SCHEMA",
	"BACKEND_SERVER_HOST",
	"BACKEND_SERVER_PORT",
	"BACKEND_SERVER_WORKERS",
	"DB_TIMEOUT",
	"DB_POOL_SIZE",
	"DB_MAX_POOL_CON",
	"DB_POOL_OVERFLOW",
	"IS_DB_ECHO_LOG",
	"IS_DB_EXPIRE_ON_COMMIT",
	"IS_DB_FORCE_ROLLBACK",
	"IS_ALLOWED_CREDENTIALS",
	"API_TOKEN",
	"AUTH_TOKEN",
	"JWT_SECRET_KEY",
	"JWT_SUBJECT",
	"JWT_TOKEN_PREFIX",
	"JWT_ALGORITHM",
	"JWT_MIN",
	"JWT_HOUR",
	"JWT_DAY",
	"HASHING_ALGORITHM_LAYER_1",
	"HASHING_ALGORITHM_LAYER_2",
	"HASHING_SALT",
	"ENVIRONMENT",
	"DEBUG",
}

// Load builds the configuration from environment variables.
// It returns an error naming the first missing or malformed variable.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, name := range requiredVars {
		if strings.TrimSpace(v.GetString(name)) == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", name)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Environment: v.GetString("ENVIRONMENT"),
		},
		Server: ServerConfig{
			Host: v.GetString("BACKEND_SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Username: v.GetString("POSTGRES_USERNAME"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			Schema:   v.GetString("POSTGRES_SCHEMA"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("JWT_SECRET_KEY"),
			Subject:     v.GetString("JWT_SUBJECT"),
			TokenPrefix: v.GetString("JWT_TOKEN_PREFIX"),
			Algorithm:   strings.ToUpper(v.GetString("JWT_ALGORITHM")),
		},
		Hashing: HashingConfig{
			Layer1: strings.ToLower(v.GetString("HASHING_ALGORITHM_LAYER_1")),
			Layer2: strings.ToLower(v.GetString("HASHING_ALGORITHM_LAYER_2")),
			Salt:   v.GetString("HASHING_SALT"),
		},
		Tokens: TokenConfig{
			APIToken:  v.GetString("API_TOKEN"),
			AuthToken: v.GetString("AUTH_TOKEN"),
		},
	}

	var err error
	if cfg.App.Debug, err = parseBool(v, "DEBUG"); err != nil {
		return nil, err
	}
	if cfg.Server.Port, err = parseInt(v, "BACKEND_SERVER_PORT"); err != nil {
		return nil, err
	}
	if cfg.Server.Workers, err = parseInt(v, "BACKEND_SERVER_WORKERS"); err != nil {
		return nil, err
	}
	if cfg.Database.Port, err = parseInt(v, "POSTGRES_PORT"); err != nil {
		return nil, err
	}
	timeoutSecs, err := parseInt(v, "DB_TIMEOUT")
	if err != nil {
		return nil, err
	}
	cfg.Database.Timeout = time.Duration(timeoutSecs) * time.Second
	if cfg.Database.PoolSize, err = parseInt(v, "DB_POOL_SIZE"); err != nil {
		return nil, err
	}
	if cfg.Database.MaxPoolCon, err = parseInt(v, "DB_MAX_POOL_CON"); err != nil {
		return nil, err
	}
	if cfg.Database.PoolOverflow, err = parseInt(v, "DB_POOL_OVERFLOW"); err != nil {
		return nil, err
	}
	if cfg.Database.EchoLog, err = parseBool(v, "IS_DB_ECHO_LOG"); err != nil {
		return nil, err
	}
	if cfg.Database.ExpireOnCommit, err = parseBool(v, "IS_DB_EXPIRE_ON_COMMIT"); err != nil {
		return nil, err
	}
	if cfg.Database.ForceRollback, err = parseBool(v, "IS_DB_FORCE_ROLLBACK"); err != nil {
		return nil, err
	}
	if cfg.CORS.AllowCredentials, err = parseBool(v, "IS_ALLOWED_CREDENTIALS"); err != nil {
		return nil, err
	}
	if cfg.JWT.Minutes, err = parseInt(v, "JWT_MIN"); err != nil {
		return nil, err
	}
	if cfg.JWT.Hours, err = parseInt(v, "JWT_HOUR"); err != nil {
		return nil, err
	}
	if cfg.JWT.Days, err = parseInt(v, "JWT_DAY"); err != nil {
		return nil, err
	}

	loadOptional(v, cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadOptional reads the optional variables
func loadOptional(v *viper.Viper, cfg *Config) {
	if origins := v.GetString("ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowOrigins = splitAndTrim(origins)
	}
	if methods := v.GetString("ALLOWED_METHODS"); methods != "" {
		cfg.CORS.AllowMethods = splitAndTrim(methods)
	}
	if headers := v.GetString("ALLOWED_HEADERS"); headers != "" {
		cfg.CORS.AllowHeaders = splitAndTrim(headers)
	}

	cfg.Invoice.Backend = strings.ToLower(v.GetString("INVOICE_STORAGE"))
	cfg.Invoice.UploadDir = v.GetString("INVOICE_UPLOAD_DIR")
	cfg.Invoice.S3Bucket = v.GetString("INVOICE_S3_BUCKET")
	cfg.Invoice.S3Region = v.GetString("INVOICE_S3_REGION")
	cfg.Invoice.S3Endpoint = v.GetString("INVOICE_S3_ENDPOINT")
	cfg.Invoice.MaxFileSize = v.GetInt64("INVOICE_MAX_FILE_SIZE")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.Database.ConnectAttempts = v.GetInt("DB_CONNECT_ATTEMPTS")
	if backoff := v.GetString("DB_CONNECT_BACKOFF"); backoff != "" {
		if d, err := time.ParseDuration(backoff); err == nil {
			cfg.Database.ConnectBackoff = d
		}
	}

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
	cfg.Log.Output = v.GetString("LOG_OUTPUT")
}

// applyDefaults sets default values for any empty optional fields
func applyDefaults(cfg *Config) {
	if len(cfg.CORS.AllowMethods) == 0 {
		cfg.CORS.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.CORS.AllowHeaders) == 0 {
		cfg.CORS.AllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Invoice.Backend == "" {
		cfg.Invoice.Backend = "local"
	}
	if cfg.Invoice.UploadDir == "" {
		cfg.Invoice.UploadDir = "/var/lib/fintrack/invoices"
	}
	if cfg.Invoice.MaxFileSize == 0 {
		cfg.Invoice.MaxFileSize = 5 << 20 // 5MB
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Database.ConnectAttempts == 0 {
		cfg.Database.ConnectAttempts = 10
	}
	if cfg.Database.ConnectBackoff == 0 {
		cfg.Database.ConnectBackoff = 500 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		if cfg.App.Debug {
			cfg.Log.Level = "debug"
		} else {
			cfg.Log.Level = "info"
		}
	}
	if cfg.Log.Format == "" {
		if cfg.App.Environment == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate performs semantic validation on the parsed configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("BACKEND_SERVER_PORT must be in range 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("BACKEND_SERVER_WORKERS must be positive, got %d", c.Server.Workers)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("POSTGRES_PORT must be in range 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxPoolCon <= 0 {
		return fmt.Errorf("DB_MAX_POOL_CON must be positive, got %d", c.Database.MaxPoolCon)
	}
	if c.Database.PoolSize < 0 {
		return fmt.Errorf("DB_POOL_SIZE cannot be negative, got %d", c.Database.PoolSize)
	}
	if c.Database.PoolOverflow < 0 {
		return fmt.Errorf("DB_POOL_OVERFLOW cannot be negative, got %d", c.Database.PoolOverflow)
	}
	if c.Database.PoolSize > c.Database.MaxOpenConns() {
		return fmt.Errorf("DB_POOL_SIZE (%d) cannot exceed DB_MAX_POOL_CON+DB_POOL_OVERFLOW (%d)",
			c.Database.PoolSize, c.Database.MaxOpenConns())
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("DB_TIMEOUT must be positive")
	}

	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM must be one of HS256, HS384, HS512, got %q", c.JWT.Algorithm)
	}
	if c.JWT.Expiration() <= 0 {
		return fmt.Errorf("token lifetime (JWT_MIN + JWT_HOUR + JWT_DAY) must be positive")
	}

	switch c.Hashing.Layer1 {
	case "sha256", "sha512", "blake2b":
	default:
		return fmt.Errorf("HASHING_ALGORITHM_LAYER_1 must be one of sha256, sha512, blake2b, got %q", c.Hashing.Layer1)
	}
	switch c.Hashing.Layer2 {
	case "bcrypt", "argon2":
	default:
		return fmt.Errorf("HASHING_ALGORITHM_LAYER_2 must be one of bcrypt, argon2, got %q", c.Hashing.Layer2)
	}

	switch c.Invoice.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("INVOICE_STORAGE must be local or s3, got %q", c.Invoice.Backend)
	}
	if c.Invoice.Backend == "s3" && c.Invoice.S3Bucket == "" {
		return fmt.Errorf("INVOICE_S3_BUCKET is required when INVOICE_STORAGE=s3")
	}

	if c.App.Environment == "production" {
		if len(c.JWT.SecretKey) < 32 {
			return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters in production")
		}
		if c.CORS.AllowCredentials {
			for _, origin := range c.CORS.AllowOrigins {
				if origin == "*" {
					return fmt.Errorf("ALLOWED_ORIGINS cannot contain '*' when IS_ALLOWED_CREDENTIALS=true in production")
				}
			}
		}
	}

	return nil
}

// parseInt reads an environment variable and requires it to be an integer
func parseInt(v *viper.Viper, name string) (int, error) {
	raw := strings.TrimSpace(v.GetString(name))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// parseBool reads an environment variable and requires it to be a boolean
func parseBool(v *viper.Viper, name string) (bool, error) {
	raw := strings.TrimSpace(v.GetString(name))
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("environment variable %s must be a boolean, got %q", name, raw)
	}
	return b, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
