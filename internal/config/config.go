package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Store      StoreConfig
	Scraper    ScraperConfig
	Generation GenerationConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// StoreConfig selects and addresses the persistence backend.
type StoreConfig struct {
	Driver        string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
}

// ScraperConfig carries the feed harvester settings.
type ScraperConfig struct {
	Email        string
	Password     string
	TargetPosts  int
	Headless     bool
	NoSandbox    bool
	ChromePath   string
	SnapshotPath string
	LoginURL     string
	FeedURL      string
	MaxRefreshes int
	MaxScrolls   int
}

// GenerationConfig carries text and image provider settings.
type GenerationConfig struct {
	Provider          string
	OpenAIKey         string
	OpenAIModel       string
	OpenAIImageModel  string
	AnthropicKey      string
	AnthropicModel    string
	ImageProvider     string
	HuggingFaceKey    string
	HuggingFaceURL    string
	RequestsPerMinute int
}

const (
	defaultPort            = "8000"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 120 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultStoreDriver   = "memory"
	defaultMongoURI      = "mongodb://localhost:27017/"
	defaultMongoDatabase = "scraping"

	defaultTargetPosts  = 50
	defaultLoginURL     = "https://www.linkedin.com/login"
	defaultFeedURL      = "https://www.linkedin.com/feed/"
	defaultMaxRefreshes = 5
	defaultMaxScrolls   = 500

	defaultOpenAIModel       = "gpt-4o-mini"
	defaultOpenAIImageModel  = "dall-e-3"
	defaultAnthropicModel    = "claude-3-5-sonnet-latest"
	defaultHuggingFaceURL    = "https://router.huggingface.co/hf-inference/models/stabilityai/stable-diffusion-xl-base-1.0"
	defaultRequestsPerMinute = 10
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided or invalid.
func Load() (Config, error) {
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", defaultStoreDriver),
			DatabaseURL:   buildDatabaseURL(),
			MongoURI:      getEnv("MONGO_URI", defaultMongoURI),
			MongoDatabase: getEnv("MONGO_DATABASE", defaultMongoDatabase),
		},
		Scraper: ScraperConfig{
			Email:        os.Getenv("LINKEDIN_EMAIL"),
			Password:     os.Getenv("LINKEDIN_PASSWORD"),
			TargetPosts:  defaultTargetPosts,
			ChromePath:   os.Getenv("SCRAPER_CHROME_PATH"),
			SnapshotPath: os.Getenv("SCRAPER_SNAPSHOT_PATH"),
			LoginURL:     getEnv("SCRAPER_LOGIN_URL", defaultLoginURL),
			FeedURL:      getEnv("SCRAPER_FEED_URL", defaultFeedURL),
			MaxRefreshes: defaultMaxRefreshes,
			MaxScrolls:   defaultMaxScrolls,
		},
		Generation: GenerationConfig{
			OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:       getEnv("OPENAI_MODEL", defaultOpenAIModel),
			OpenAIImageModel:  getEnv("OPENAI_IMAGE_MODEL", defaultOpenAIImageModel),
			AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel:    getEnv("ANTHROPIC_MODEL", defaultAnthropicModel),
			HuggingFaceKey:    os.Getenv("HF_API_KEY"),
			HuggingFaceURL:    getEnv("HF_IMAGE_URL", defaultHuggingFaceURL),
			RequestsPerMinute: defaultRequestsPerMinute,
		},
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	switch cfg.Store.Driver {
	case "memory", "mongo":
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL or DB_HOST/DB_USER/DB_NAME")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER: must be one of memory, postgres, mongo")
	}

	if v := os.Getenv("SCRAPER_TARGET_POSTS"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_TARGET_POSTS: %w", err)
		}
		cfg.Scraper.TargetPosts = n
	}

	if v := os.Getenv("SCRAPER_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_HEADLESS: %w", err)
		}
		cfg.Scraper.Headless = b
	}

	if v := os.Getenv("SCRAPER_CHROME_NO_SANDBOX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_CHROME_NO_SANDBOX: %w", err)
		}
		cfg.Scraper.NoSandbox = b
	}

	if v := os.Getenv("SCRAPER_MAX_REFRESHES"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_MAX_REFRESHES: %w", err)
		}
		cfg.Scraper.MaxRefreshes = n
	}

	if v := os.Getenv("SCRAPER_MAX_SCROLLS"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_MAX_SCROLLS: %w", err)
		}
		cfg.Scraper.MaxScrolls = n
	}

	if v := os.Getenv("GENERATION_REQUESTS_PER_MINUTE"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GENERATION_REQUESTS_PER_MINUTE: %w", err)
		}
		cfg.Generation.RequestsPerMinute = n
	}

	provider, err := resolveTextProvider(os.Getenv("GENERATION_PROVIDER"), cfg.Generation)
	if err != nil {
		return Config{}, err
	}
	cfg.Generation.Provider = provider

	imageProvider, err := resolveImageProvider(os.Getenv("IMAGE_PROVIDER"), cfg.Generation)
	if err != nil {
		return Config{}, err
	}
	cfg.Generation.ImageProvider = imageProvider

	return cfg, nil
}

// resolveTextProvider picks the text backend, preferring whichever key is set
// when no provider is named explicitly.
func resolveTextProvider(raw string, gen GenerationConfig) (string, error) {
	switch strings.ToLower(raw) {
	case "":
		switch {
		case gen.OpenAIKey != "":
			return "openai", nil
		case gen.AnthropicKey != "":
			return "anthropic", nil
		default:
			return "mock", nil
		}
	case "openai":
		if gen.OpenAIKey == "" {
			return "", fmt.Errorf("GENERATION_PROVIDER=openai requires OPENAI_API_KEY")
		}
		return "openai", nil
	case "anthropic":
		if gen.AnthropicKey == "" {
			return "", fmt.Errorf("GENERATION_PROVIDER=anthropic requires ANTHROPIC_API_KEY")
		}
		return "anthropic", nil
	case "mock":
		return "mock", nil
	default:
		return "", fmt.Errorf("invalid GENERATION_PROVIDER: must be one of openai, anthropic, mock")
	}
}

func resolveImageProvider(raw string, gen GenerationConfig) (string, error) {
	switch strings.ToLower(raw) {
	case "":
		switch {
		case gen.HuggingFaceKey != "":
			return "huggingface", nil
		case gen.OpenAIKey != "":
			return "openai", nil
		default:
			return "none", nil
		}
	case "huggingface":
		if gen.HuggingFaceKey == "" {
			return "", fmt.Errorf("IMAGE_PROVIDER=huggingface requires HF_API_KEY")
		}
		return "huggingface", nil
	case "openai":
		if gen.OpenAIKey == "" {
			return "", fmt.Errorf("IMAGE_PROVIDER=openai requires OPENAI_API_KEY")
		}
		return "openai", nil
	case "none":
		return "none", nil
	default:
		return "", fmt.Errorf("invalid IMAGE_PROVIDER: must be one of openai, huggingface, none")
	}
}

// buildDatabaseURL returns DATABASE_URL when set, otherwise assembles a
// connection string from the discrete DB_* variables. An empty result means
// no PostgreSQL database is configured.
func buildDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	name := os.Getenv("DB_NAME")
	if host == "" || user == "" || name == "" {
		return ""
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		host, getEnv("DB_PORT", "5432"), user, name, getEnv("DB_SSLMODE", "disable"))
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		connStr += " password=" + password
	}
	return connStr
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parsePositive(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
