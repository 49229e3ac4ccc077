package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"demochat/chat-widget/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	BackendLocal    = "local"
	BackendPostgres = "postgres"
	BackendGRPC     = "grpc"
)

type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File   string `mapstructure:"file"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type GRPCConfig struct {
	Address           string        `mapstructure:"address"`
	ReflectionEnabled bool          `mapstructure:"reflection_enabled"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type ChatConfig struct {
	ID           string        `mapstructure:"id" validate:"required,uuid"`
	Participants []models.User `mapstructure:"participants" validate:"len=2,unique=ID,dive"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=local postgres grpc"`
	Path    string `mapstructure:"path" validate:"required_if=Backend local"`
	Key     string `mapstructure:"key" validate:"required_if=Backend local"`
}

// Load reads config.yaml from ./config or /app/config, a .env file when
// present, and environment overrides (database.host -> DATABASE_HOST).
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Chat.Participants) == 0 {
		cfg.Chat.Participants = models.DefaultUsers
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "demochat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "50055")
	v.SetDefault("grpc.address", "localhost:50055")
	v.SetDefault("grpc.shutdown_timeout", 10*time.Second)
	v.SetDefault("chat.id", "4113f429-c4ad-42aa-b43f-0a2bcafaeaa5")
	v.SetDefault("storage.backend", BackendLocal)
	v.SetDefault("storage.path", "./data/chat")
	v.SetDefault("storage.key", "demoChatMessages")
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// NewLogger builds a logrus logger from the logging section. Output goes to
// the configured file when set, stderr otherwise.
func NewLogger(cfg LoggingConfig) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	if cfg.File == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
