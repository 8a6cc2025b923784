package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends selected by the MONGO_URL scheme.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	APIID    int    `env:"API_ID,required"`
	APIHash  string `env:"API_HASH,required"`
	BotToken string `env:"BOT_TOKEN,required"`
	MongoURL string `env:"MONGO_URL,required"`

	// Storage
	DBName       string `env:"DB_NAME" envDefault:"thumbbot"`
	DBCollection string `env:"DB_COLLECTION" envDefault:"thumbs"`

	// PostgreSQL pool, used only for postgres:// URLs
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Filesystem
	ThumbsDir string `env:"THUMBS_DIR" envDefault:"thumbs"`
	TempDir   string `env:"TEMP_DIR" envDefault:"downloads"`

	// Thumbnail normalization
	ThumbMaxWidth    int `env:"THUMB_MAX_WIDTH" envDefault:"320"`
	ThumbMaxHeight   int `env:"THUMB_MAX_HEIGHT" envDefault:"180"`
	ThumbJPEGQuality int `env:"THUMB_JPEG_QUALITY" envDefault:"90"`

	// Bot runtime
	AllowedUserIDs        []int64 `env:"ALLOWED_USER_IDS" envSeparator:","`
	MaxConcurrentHandlers int     `env:"MAX_CONCURRENT_HANDLERS" envDefault:"8"`
	UpdateTimeout         int     `env:"UPDATE_TIMEOUT" envDefault:"60"`

	// Remote fetch
	RemoteFetchRPS      float64       `env:"REMOTE_FETCH_RPS" envDefault:"2"`
	RemoteFetchTimeout  time.Duration `env:"REMOTE_FETCH_TIMEOUT" envDefault:"60s"`
	RemoteFetchMaxBytes int64         `env:"REMOTE_FETCH_MAX_BYTES" envDefault:"52428800"`

	// MTProto downloads
	MTProtoDownloads bool   `env:"MTPROTO_DOWNLOADS" envDefault:"false"`
	TGSessionPath    string `env:"TG_SESSION_PATH" envDefault:"./thumb_bot.session"`

	// Temp janitor
	TempSweepInterval time.Duration `env:"TEMP_SWEEP_INTERVAL" envDefault:"10m"`
	TempMaxAge        time.Duration `env:"TEMP_MAX_AGE" envDefault:"1h"`

	// Health and metrics
	HealthPort  int `env:"HEALTH_PORT" envDefault:"8080"`
	MetricsPort int `env:"METRICS_PORT" envDefault:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if _, err := cfg.StorageBackend(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// StorageBackend reports which repository implementation MONGO_URL points at.
func (c *Config) StorageBackend() (string, error) {
	u, err := url.Parse(c.MongoURL)
	if err != nil {
		return "", fmt.Errorf("parsing MONGO_URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unsupported MONGO_URL scheme %q", u.Scheme)
	}
}

// IsAllowed reports whether userID may use the bot. An empty allowlist admits everyone.
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.AllowedUserIDs) == 0 {
		return true
	}

	for _, id := range c.AllowedUserIDs {
		if id == userID {
			return true
		}
	}

	return false
}
