package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/daytasks/internal/views"
)

const (
	TransportTelegram = "telegram"
	TransportSlack    = "slack"
	TransportConsole  = "console"

	DefaultFile    = "daytasks.yaml"
	DefaultEnvFile = ".env"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Log      LogConfig      `mapstructure:"log"`
	Console  ConsoleConfig  `mapstructure:"console"`
}

type BotConfig struct {
	Transport  string        `mapstructure:"transport" validate:"oneof=telegram slack console"`
	Locale     string        `mapstructure:"locale" validate:"locale"`
	Workers    int           `mapstructure:"workers" validate:"gte=1,lte=64"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	Debug       bool   `mapstructure:"debug"`
	PollTimeout int    `mapstructure:"poll_timeout" validate:"gte=0,lte=600"`
}

type SlackConfig struct {
	BotToken string `mapstructure:"bot_token"`
	AppToken string `mapstructure:"app_token"`
	Debug    bool   `mapstructure:"debug"`
}

type StorageConfig struct {
	Driver  string `mapstructure:"driver" validate:"oneof=json sqlite gorm"`
	Path    string `mapstructure:"path"`
	Dialect string `mapstructure:"dialect" validate:"oneof=sqlite mysql"`
	DSN     string `mapstructure:"dsn"`
}

type BackupConfig struct {
	Schedule string `mapstructure:"schedule"`
	Dir      string `mapstructure:"dir" validate:"required"`
	Keep     int    `mapstructure:"keep" validate:"gte=1"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type ConsoleConfig struct {
	User string `mapstructure:"user" validate:"required"`
}

func DefaultConfig() Config {
	user := strings.TrimSpace(os.Getenv("USER"))
	if user == "" {
		user = "local"
	}
	return Config{
		Bot:      BotConfig{Transport: TransportConsole, Locale: views.LocaleEN, Workers: 4, SessionTTL: 24 * time.Hour},
		Telegram: TelegramConfig{PollTimeout: 60},
		Storage:  StorageConfig{Driver: "json", Path: "tasks.json", Dialect: "sqlite"},
		Backup:   BackupConfig{Dir: "backups", Keep: 7},
		Log:      LogConfig{Level: "info", Format: "text"},
		Console:  ConsoleConfig{User: user},
	}
}

// Load builds the runtime config: defaults, then the YAML file, then .env, then
// DAYTASKS_* variables, then overrides. An empty path falls back to daytasks.yaml when it exists.
func Load(path, envFile string, overrides ...func(*Config)) (Config, error) {
	cfg := DefaultConfig()

	file := strings.TrimSpace(path)
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := loadFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg = ConfigFromEnv(cfg)
	for _, override := range overrides {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

func ConfigFromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("DAYTASKS_TRANSPORT"); ok {
		cfg.Bot.Transport = strings.ToLower(v)
	}
	if v, ok := getEnvString("DAYTASKS_LOCALE"); ok {
		cfg.Bot.Locale = strings.ToLower(v)
	}
	if v, ok := getEnvInt("DAYTASKS_WORKERS"); ok && v > 0 {
		cfg.Bot.Workers = v
	}
	if v, ok := getEnvDuration("DAYTASKS_SESSION_TTL"); ok && v >= 0 {
		cfg.Bot.SessionTTL = v
	}

	if v, ok := getEnvString("DAYTASKS_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); ok {
		cfg.Telegram.Token = v
	}
	if v, ok := getEnvBool("DAYTASKS_TELEGRAM_DEBUG"); ok {
		cfg.Telegram.Debug = v
	}
	if v, ok := getEnvInt("DAYTASKS_TELEGRAM_POLL_TIMEOUT"); ok && v >= 0 {
		cfg.Telegram.PollTimeout = v
	}

	if v, ok := getEnvString("DAYTASKS_SLACK_BOT_TOKEN", "SLACK_BOT_TOKEN"); ok {
		cfg.Slack.BotToken = v
	}
	if v, ok := getEnvString("DAYTASKS_SLACK_APP_TOKEN", "SLACK_APP_TOKEN"); ok {
		cfg.Slack.AppToken = v
	}
	if v, ok := getEnvBool("DAYTASKS_SLACK_DEBUG"); ok {
		cfg.Slack.Debug = v
	}

	if v, ok := getEnvString("DAYTASKS_STORAGE_DRIVER"); ok {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvString("DAYTASKS_STORAGE_PATH"); ok {
		cfg.Storage.Path = v
	}
	if v, ok := getEnvString("DAYTASKS_STORAGE_DIALECT"); ok {
		cfg.Storage.Dialect = strings.ToLower(v)
	}
	if v, ok := getEnvString("DAYTASKS_STORAGE_DSN"); ok {
		cfg.Storage.DSN = v
	}

	if v, ok := getEnvString("DAYTASKS_BACKUP_SCHEDULE"); ok {
		cfg.Backup.Schedule = v
	}
	if v, ok := getEnvString("DAYTASKS_BACKUP_DIR"); ok {
		cfg.Backup.Dir = v
	}
	if v, ok := getEnvInt("DAYTASKS_BACKUP_KEEP"); ok && v > 0 {
		cfg.Backup.Keep = v
	}

	if v, ok := getEnvString("DAYTASKS_LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := getEnvString("DAYTASKS_LOG_FORMAT"); ok {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v, ok := getEnvString("DAYTASKS_CONSOLE_USER"); ok {
		cfg.Console.User = v
	}
	return cfg
}

var validate = newValidator()

// newValidator adds the "locale" tag, which accepts any locale the renderer ships.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
		return slices.Contains(views.Locales(), fl.Field().String())
	})
	return v
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.Bot.Transport {
	case TransportTelegram:
		if strings.TrimSpace(c.Telegram.Token) == "" {
			return fmt.Errorf("%w: telegram.token is required for the telegram transport", ErrInvalid)
		}
	case TransportSlack:
		if strings.TrimSpace(c.Slack.BotToken) == "" || strings.TrimSpace(c.Slack.AppToken) == "" {
			return fmt.Errorf("%w: slack.bot_token and slack.app_token are required for the slack transport", ErrInvalid)
		}
	}
	switch {
	case c.Storage.Driver == "gorm" && c.Storage.Dialect == "mysql" && strings.TrimSpace(c.Storage.DSN) == "":
		return fmt.Errorf("%w: storage.dsn is required for gorm/mysql", ErrInvalid)
	case c.Storage.Driver != "gorm" && strings.TrimSpace(c.Storage.Path) == "":
		return fmt.Errorf("%w: storage.path is required", ErrInvalid)
	}
	return nil
}

func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// getEnvString returns the first non-empty variable among names.
func getEnvString(names ...string) (string, bool) {
	for _, name := range names {
		if raw := strings.TrimSpace(os.Getenv(name)); raw != "" {
			return raw, true
		}
	}
	return "", false
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
