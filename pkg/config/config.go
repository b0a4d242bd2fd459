package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Takeoff backend selection.
const (
	TakeoffBackendRemote   = "remote"
	TakeoffBackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	OAuth     OAuthConfig
	Drive     DriveConfig
	Analyzer  AnalyzerConfig
	OpenAI    OpenAIConfig
	Takeoffs  TakeoffsConfig
	Directory DirectoryConfig
	Exports   ExportsConfig
	CORS      CORSConfig
	Log       LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OAuthConfig carries the Google OAuth client credentials used by the
// refresh-token exchange. TokenURL is overridable for tests.
type OAuthConfig struct {
	ClientID         string
	ClientSecret     string
	TokenURL         string
	AccessCookieTTL  time.Duration
	RefreshCookieTTL time.Duration
	CookieDomain     string
	CookieSecure     bool
}

// DriveConfig points at the Google Drive API and names the upload folder.
type DriveConfig struct {
	Endpoint   string
	FolderName string
}

// AnalyzerConfig locates the external AI analysis server.
type AnalyzerConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OpenAIConfig configures the text enhancement proxy.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// TakeoffsConfig selects and tunes the analysis-record store.
type TakeoffsConfig struct {
	Backend      string
	RemoteURL    string
	DefaultLimit int
	PersistQueue PersistQueueConfig
}

// PersistQueueConfig tunes the background record-persistence workers.
type PersistQueueConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// DirectoryConfig locates the company/jobsite directory API and its cache.
type DirectoryConfig struct {
	BaseURL      string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportsConfig controls export artifacts and signed download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.OAuth = OAuthConfig{
		ClientID:         v.GetString("GOOGLE_CLIENT_ID"),
		ClientSecret:     v.GetString("GOOGLE_CLIENT_SECRET"),
		TokenURL:         v.GetString("GOOGLE_TOKEN_URL"),
		AccessCookieTTL:  parseDuration(v.GetString("ACCESS_COOKIE_TTL"), 24*time.Hour),
		RefreshCookieTTL: parseDuration(v.GetString("REFRESH_COOKIE_TTL"), 30*24*time.Hour),
		CookieDomain:     v.GetString("COOKIE_DOMAIN"),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),
	}

	cfg.Drive = DriveConfig{
		Endpoint:   v.GetString("DRIVE_ENDPOINT"),
		FolderName: v.GetString("DRIVE_FOLDER_NAME"),
	}

	cfg.Analyzer = AnalyzerConfig{
		BaseURL: v.GetString("ANALYZER_BASE_URL"),
		Timeout: parseDuration(v.GetString("ANALYZER_TIMEOUT"), 5*time.Minute),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:      v.GetString("OPENAI_API_KEY"),
		Model:       v.GetString("OPENAI_MODEL"),
		MaxTokens:   v.GetInt("OPENAI_MAX_TOKENS"),
		Temperature: v.GetFloat64("OPENAI_TEMPERATURE"),
	}

	cfg.Takeoffs = TakeoffsConfig{
		Backend:      strings.ToLower(v.GetString("TAKEOFFS_BACKEND")),
		RemoteURL:    v.GetString("TAKEOFF_DB_BASE_URL"),
		DefaultLimit: v.GetInt("TAKEOFFS_DEFAULT_LIMIT"),
		PersistQueue: PersistQueueConfig{
			Workers:    v.GetInt("TAKEOFFS_PERSIST_WORKERS"),
			MaxRetries: v.GetInt("TAKEOFFS_PERSIST_RETRIES"),
			RetryDelay: parseDuration(v.GetString("TAKEOFFS_PERSIST_RETRY_DELAY"), 5*time.Second),
		},
	}

	cfg.Directory = DirectoryConfig{
		BaseURL:      v.GetString("DIRECTORY_BASE_URL"),
		CacheEnabled: v.GetBool("DIRECTORY_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("DIRECTORY_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ai_takeoff")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")
	v.SetDefault("ACCESS_COOKIE_TTL", "24h")
	v.SetDefault("REFRESH_COOKIE_TTL", "720h")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", false)

	v.SetDefault("DRIVE_ENDPOINT", "")
	v.SetDefault("DRIVE_FOLDER_NAME", "AI-TakeOff")

	v.SetDefault("ANALYZER_BASE_URL", "http://127.0.0.1:5000")
	v.SetDefault("ANALYZER_TIMEOUT", "5m")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("OPENAI_MAX_TOKENS", 4000)
	v.SetDefault("OPENAI_TEMPERATURE", 0.3)

	v.SetDefault("TAKEOFFS_BACKEND", TakeoffBackendRemote)
	v.SetDefault("TAKEOFF_DB_BASE_URL", "https://ai-takeoff.ttfconstruction.com")
	v.SetDefault("TAKEOFFS_DEFAULT_LIMIT", 20)
	v.SetDefault("TAKEOFFS_PERSIST_WORKERS", 1)
	v.SetDefault("TAKEOFFS_PERSIST_RETRIES", 3)
	v.SetDefault("TAKEOFFS_PERSIST_RETRY_DELAY", "5s")

	v.SetDefault("DIRECTORY_BASE_URL", "")
	v.SetDefault("DIRECTORY_CACHE_ENABLED", false)
	v.SetDefault("DIRECTORY_CACHE_TTL", "10m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
