package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Deployment modes. Standalone runs the webhook listener next to the bot;
// relay consumes ticket files dropped by the external storefront instead.
const (
	ModeStandalone = "standalone"
	ModeRelay      = "relay"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Discord DiscordConfig
	Tickets TicketsConfig
	Watcher WatcherConfig
	Redis   RedisConfig
	Logger  LoggerConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Mode    string
	Version string
}

// HTTPConfig holds the webhook listener bind address.
type HTTPConfig struct {
	Host string
	Port string
}

// DiscordConfig holds gateway credentials and the ticket-access policy. The
// OAuth values mirror the storefront configuration and are informational only.
type DiscordConfig struct {
	BotToken       string
	GuildID        string
	CategoryID     string
	OwnerID        string
	AllowedUserIDs []string
	AllowedRoleIDs []string
	ClientID       string
	ClientSecret   string
	RedirectURI    string
}

// TicketsConfig controls lifecycle timing.
type TicketsConfig struct {
	ConfirmTTLSeconds       int
	ConfirmCloseDelaySecs   int
	DirectCloseDelaySeconds int
}

// WatcherConfig holds the ticket-file poll settings.
type WatcherConfig struct {
	Dir                 string
	PollIntervalSeconds int
}

// RedisConfig holds optional journal connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	mode := strings.ToLower(getEnv("DEPLOY_MODE", ModeStandalone))
	if mode != ModeStandalone && mode != ModeRelay {
		return nil, fmt.Errorf("invalid DEPLOY_MODE %q: want %q or %q", mode, ModeStandalone, ModeRelay)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "market-ticket-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Mode:    mode,
			Version: getEnv("APP_VERSION", "dev"),
		},
		HTTP: HTTPConfig{
			Host: getEnv("WEBHOOK_HOST", "0.0.0.0"),
			Port: getEnv("WEBHOOK_PORT", "8080"),
		},
		Discord: DiscordConfig{
			BotToken:       getEnv("BOT_TOKEN", ""),
			GuildID:        getEnv("GUILD_ID", ""),
			CategoryID:     getEnv("TICKET_CATEGORY_ID", ""),
			OwnerID:        getEnv("SERVER_OWNER_ID", ""),
			AllowedUserIDs: splitIDList(getEnv("ALLOWED_USER_IDS", "")),
			AllowedRoleIDs: splitIDList(getEnv("ALLOWED_ROLE_IDS", "")),
			ClientID:       getEnv("DISCORD_CLIENT_ID", ""),
			ClientSecret:   getEnv("DISCORD_CLIENT_SECRET", ""),
			RedirectURI:    getEnv("DISCORD_REDIRECT_URI", ""),
		},
		Tickets: TicketsConfig{
			ConfirmTTLSeconds:       getEnvAsInt("TICKET_CONFIRM_TTL_SECONDS", 60),
			ConfirmCloseDelaySecs:   getEnvAsInt("TICKET_CONFIRM_CLOSE_DELAY_SECONDS", 3),
			DirectCloseDelaySeconds: getEnvAsInt("TICKET_DIRECT_CLOSE_DELAY_SECONDS", 5),
		},
		Watcher: WatcherConfig{
			Dir:                 getEnv("TICKETS_DIR", "tickets"),
			PollIntervalSeconds: getEnvAsInt("POLL_INTERVAL_SECONDS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Discord.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	return cfg, nil
}

// Addr returns the webhook listener bind address.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%s", h.Host, h.Port)
}

// Policy returns the immutable access policy derived from this configuration.
func (d DiscordConfig) Policy() domain.AccessPolicy {
	return domain.AccessPolicy{
		OwnerID:        d.OwnerID,
		AllowedUserIDs: d.AllowedUserIDs,
		AllowedRoleIDs: d.AllowedRoleIDs,
	}
}

// ConfirmTTL returns how long a close confirmation stays valid.
func (t TicketsConfig) ConfirmTTL() time.Duration {
	return time.Duration(t.ConfirmTTLSeconds) * time.Second
}

// ConfirmCloseDelay returns the pause between the closing notice and channel
// deletion on the confirmed path.
func (t TicketsConfig) ConfirmCloseDelay() time.Duration {
	return time.Duration(t.ConfirmCloseDelaySecs) * time.Second
}

// DirectCloseDelay returns the pause used by the administrative close path.
func (t TicketsConfig) DirectCloseDelay() time.Duration {
	return time.Duration(t.DirectCloseDelaySeconds) * time.Second
}

// Interval returns the directory poll interval.
func (w WatcherConfig) Interval() time.Duration {
	if w.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(w.PollIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// splitIDList parses a comma-separated identifier list, dropping blanks.
func splitIDList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
