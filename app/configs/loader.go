package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"GoTelegramAI/app/memory"
	"GoTelegramAI/app/models"
	"GoTelegramAI/app/storage"
)

const defaultConfigPath = "config.yaml"

var ErrNoClient = errors.New("no client configured: set TELEGRAM_BOT_TOKEN or DISCORD_TOKEN")

type Config struct {
	LogLevel  string          `yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Discord   DiscordConfig   `yaml:"discord"`
	LLM       LLMConfig       `yaml:"llm"`
	Memory    MemoryConfig    `yaml:"memory"`
	Cache     CacheConfig     `yaml:"cache"`
	Telegraph TelegraphConfig `yaml:"telegraph"`
}

type TelegramConfig struct {
	Token           string `yaml:"token"`
	DeveloperChatID int64  `yaml:"developer_chat_id"`
}

type DiscordConfig struct {
	Token string `yaml:"token"`
}

type LLMConfig struct {
	APIKey         string  `yaml:"api_key" validate:"required"`
	BaseURL        string  `yaml:"base_url" validate:"omitempty,url"`
	Model          string  `yaml:"model" validate:"required"`
	EmbeddingModel string  `yaml:"embedding_model" validate:"required"`
	Temperature    float32 `yaml:"temperature" validate:"gte=0,lte=2"`
}

type MemoryConfig struct {
	QdrantURL    string `yaml:"qdrant_url" validate:"omitempty,url"`
	QdrantAPIKey string `yaml:"qdrant_api_key"`
	Collection   string `yaml:"collection" validate:"required"`
	VectorSize   int    `yaml:"vector_size" validate:"min=1"`
	SearchLimit  int    `yaml:"search_limit" validate:"min=1"`
	DBPath       string `yaml:"db_path" validate:"required"`
}

type CacheConfig struct {
	RedisURL string `yaml:"redis_url" validate:"omitempty,url"`
}

type TelegraphConfig struct {
	Token string `yaml:"token"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		LLM: LLMConfig{
			Model:          models.DefaultModel,
			EmbeddingModel: models.DefaultEmbeddingModel,
		},
		Memory: MemoryConfig{
			Collection:  memory.DefaultCollection,
			VectorSize:  memory.DefaultVectorSize,
			SearchLimit: memory.DefaultSearchLimit,
			DBPath:      storage.MemoryPath,
		},
	}
}

// Load reads .env, then the YAML file named by CONFIG_PATH (config.yaml when
// unset; a missing default file is fine), then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := Default()
	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit {
		path = defaultConfigPath
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	} else {
		log.WithField("path", path).Info("📄 Config file loaded")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML file over the defaults. ${VAR} references are
// expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read configs file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err = yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	envString("LOG_LEVEL", &c.LogLevel)
	envString("TELEGRAM_BOT_TOKEN", &c.Telegram.Token)
	envString("DISCORD_TOKEN", &c.Discord.Token)
	envString("OPENAI_API_KEY", &c.LLM.APIKey)
	envString("OPENAI_BASE_URL", &c.LLM.BaseURL)
	envString("OPENAI_MODEL", &c.LLM.Model)
	envString("OPENAI_EMBEDDING_MODEL", &c.LLM.EmbeddingModel)
	envString("QDRANT_URL", &c.Memory.QdrantURL)
	envString("QDRANT_API_KEY", &c.Memory.QdrantAPIKey)
	envString("QDRANT_COLLECTION_NAME", &c.Memory.Collection)
	envString("DB_PATH", &c.Memory.DBPath)
	envString("REDIS_URL", &c.Cache.RedisURL)
	envString("TELEGRAPH_TOKEN", &c.Telegraph.Token)

	return errors.Join(
		envInt64("DEVELOPER_CHAT_ID", &c.Telegram.DeveloperChatID),
		envFloat32("OPENAI_TEMPERATURE", &c.LLM.Temperature),
		envInt("VECTOR_SIZE", &c.Memory.VectorSize),
		envInt("SEARCH_LIMIT", &c.Memory.SearchLimit),
	)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat32(key string, dst *float32) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = float32(f)
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Telegram.Token == "" && c.Discord.Token == "" {
		return ErrNoClient
	}
	return nil
}
