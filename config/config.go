package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config.json or the environment.
type AppConfig struct {
	AppPort            string        `envconfig:"APP_PORT"`
	JWTSecret          string        `envconfig:"JWT_SECRET"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE"`
	AllowedOrigins     []string      `envconfig:"ALLOWED_ORIGINS"`
	TimeZone           string        `envconfig:"TIME_ZONE"`
	// Gin framework configuration
	GinMode string `envconfig:"GIN_MODE"`
	GinPath string `envconfig:"GIN_PATH"`
	// Database: mysql (default) or sqlite
	DBDriver    string `envconfig:"DB_DRIVER"`
	DatabaseURI string `envconfig:"DATABASE_URI"`
	DBHost      string `envconfig:"DB_HOST"`
	DBPort      string `envconfig:"DB_PORT"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`
	SQLitePath  string `envconfig:"SQLITE_PATH"`
	// Redis for caching and drain locks; empty host disables it
	RedisHost       string        `envconfig:"REDIS_HOST"`
	RedisPort       int           `envconfig:"REDIS_PORT"`
	RedisDB         int           `envconfig:"REDIS_DB"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	InsightCacheTTL time.Duration `envconfig:"INSIGHT_CACHE_TTL"`
	// Scoring service; empty base URL scores every check-in with the local heuristic
	ScoringBaseURL     string        `envconfig:"SCORING_BASE_URL"`
	ScoringTimeout     time.Duration `envconfig:"SCORING_TIMEOUT"`
	ScoringDemoLatency time.Duration `envconfig:"SCORING_DEMO_LATENCY"`
	QueueWatchSpec     string        `envconfig:"QUEUE_WATCH_SPEC"`
	// Logging configuration
	LogLevel      string `envconfig:"LOG_LEVEL"`
	LogPath       string `envconfig:"LOG_PATH"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS"`
	LogCompress   bool   `envconfig:"LOG_COMPRESS"`
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> environment variable overrides
	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Printf("config.json ignored: %v", err)
	}

	applyDefaults(&cfg)

	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("invalid environment configuration: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in config.json or environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Override replaces the cached configuration. Used by the CLI flags and tests.
func Override(c AppConfig) {
	applyDefaults(&c)
	cfg = c
	loaded = true
}

// Location returns the configured time zone used to decide what "today" is.
func (c AppConfig) Location() *time.Location {
	if c.TimeZone == "" || strings.EqualFold(c.TimeZone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		log.Printf("unknown TIME_ZONE %q, falling back to local: %v", c.TimeZone, err)
		return time.Local
	}
	return loc
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			if f, ok := v.(float64); ok {
				return int(f)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getDuration := func(m map[string]any, key string) time.Duration {
		if s := getString(m, key); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				return d
			}
			log.Printf("config.json: invalid duration for %s: %q", key, s)
		}
		return 0
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if arr, ok := m[key].([]any); ok {
			res := make([]string, 0, len(arr))
			for _, it := range arr {
				if s, ok := it.(string); ok {
					res = append(res, s)
				}
			}
			return res
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		out.SessionTTL = getDuration(app, "SessionTTL")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.TimeZone = getString(app, "TimeZone")
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DBDriver = getString(dbs, "Driver")
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
		out.SQLitePath = getString(dbs, "SQLitePath")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
		out.InsightCacheTTL = getDuration(rds, "InsightCacheTTL")
	}

	if sc, ok := raw["scoring"].(map[string]any); ok {
		out.ScoringBaseURL = getString(sc, "BaseURL")
		out.ScoringTimeout = getDuration(sc, "Timeout")
		out.ScoringDemoLatency = getDuration(sc, "DemoLatency")
		out.QueueWatchSpec = getString(sc, "QueueWatchSpec")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 30 * 24 * time.Hour
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "wellcheck"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/wellcheck.db"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.InsightCacheTTL == 0 {
		c.InsightCacheTTL = 10 * time.Minute
	}
	if c.ScoringTimeout == 0 {
		c.ScoringTimeout = 5 * time.Second
	}
	if c.QueueWatchSpec == "" {
		c.QueueWatchSpec = "@every 1m"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}
