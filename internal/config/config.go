package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	DB         DBConfig
	Redis      RedisConfig
	LLM        LLMConfig
	Generation GenerationConfig
	Chunker    ChunkerConfig
	Scheduler  SchedulerConfig
	Auth       AuthConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
}

type LoggerConfig struct {
	Level string
	Env   string
}

type DBConfig struct {
	Driver      string // sqlite or postgres
	DSN         string
	AutoMigrate bool
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	StatsTTL time.Duration
}

type LLMConfig struct {
	Provider       string // groq, openai or ollama
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float64
	MaxTokens      int
	CallTimeout    time.Duration
	RetryBackoff   time.Duration
	MaxConcurrency int
}

type GenerationConfig struct {
	MinQuestions         int
	MaxQuestions         int
	MaxQuestionsCeiling  int
	DefaultDailyQuestion int
}

type ChunkerConfig struct {
	WordsPerChunk int
}

type SchedulerConfig struct {
	Enabled          bool
	TickInterval     time.Duration
	FireWindow       time.Duration
	DefaultQuizTime  string
	DefaultFrequency string
	DefaultTimezone  string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.body_limit_mb", 20)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:mcq_bot.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stats_ttl", 10*time.Minute)

	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.call_timeout", 90*time.Second)
	v.SetDefault("llm.retry_backoff", 2*time.Second)
	v.SetDefault("llm.max_concurrency", 3)

	v.SetDefault("generation.min_questions", 3)
	v.SetDefault("generation.max_questions", 5)
	v.SetDefault("generation.max_questions_ceiling", 10)
	v.SetDefault("generation.default_daily_questions", 5)

	v.SetDefault("chunker.words_per_chunk", 1000)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.tick_interval", 30*time.Second)
	v.SetDefault("scheduler.fire_window", 5*time.Minute)
	v.SetDefault("scheduler.default_quiz_time", "09:00")
	v.SetDefault("scheduler.default_frequency", "daily")
	v.SetDefault("scheduler.default_timezone", "UTC")

	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
}

// LoadConfig reads config.yaml (optional), a .env file (optional) and the
// environment. Environment keys use underscores, e.g. LLM_API_KEY.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimitMB:  v.GetInt("server.body_limit_mb"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		DB: DBConfig{
			Driver:      v.GetString("db.driver"),
			DSN:         v.GetString("db.dsn"),
			AutoMigrate: v.GetBool("db.auto_migrate"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			StatsTTL: v.GetDuration("redis.stats_ttl"),
		},
		LLM: LLMConfig{
			Provider:       v.GetString("llm.provider"),
			BaseURL:        v.GetString("llm.base_url"),
			APIKey:         v.GetString("llm.api_key"),
			Model:          v.GetString("llm.model"),
			Temperature:    v.GetFloat64("llm.temperature"),
			MaxTokens:      v.GetInt("llm.max_tokens"),
			CallTimeout:    v.GetDuration("llm.call_timeout"),
			RetryBackoff:   v.GetDuration("llm.retry_backoff"),
			MaxConcurrency: v.GetInt("llm.max_concurrency"),
		},
		Generation: GenerationConfig{
			MinQuestions:         v.GetInt("generation.min_questions"),
			MaxQuestions:         v.GetInt("generation.max_questions"),
			MaxQuestionsCeiling:  v.GetInt("generation.max_questions_ceiling"),
			DefaultDailyQuestion: v.GetInt("generation.default_daily_questions"),
		},
		Chunker: ChunkerConfig{
			WordsPerChunk: v.GetInt("chunker.words_per_chunk"),
		},
		Scheduler: SchedulerConfig{
			Enabled:          v.GetBool("scheduler.enabled"),
			TickInterval:     v.GetDuration("scheduler.tick_interval"),
			FireWindow:       v.GetDuration("scheduler.fire_window"),
			DefaultQuizTime:  v.GetString("scheduler.default_quiz_time"),
			DefaultFrequency: v.GetString("scheduler.default_frequency"),
			DefaultTimezone:  v.GetString("scheduler.default_timezone"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
	}
}

// Validate enforces 1 <= min <= max <= ceiling and the other static bounds.
func (c *Config) Validate() error {
	g := c.Generation
	if g.MinQuestions < 1 || g.MinQuestions > g.MaxQuestions || g.MaxQuestions > g.MaxQuestionsCeiling {
		return fmt.Errorf("invalid generation bounds: need 1 <= min (%d) <= max (%d) <= ceiling (%d)",
			g.MinQuestions, g.MaxQuestions, g.MaxQuestionsCeiling)
	}
	if c.Chunker.WordsPerChunk < 1 {
		return fmt.Errorf("chunker.words_per_chunk must be positive, got %d", c.Chunker.WordsPerChunk)
	}
	if c.Scheduler.FireWindow < c.Scheduler.TickInterval {
		return fmt.Errorf("scheduler.fire_window (%s) must not be shorter than scheduler.tick_interval (%s)",
			c.Scheduler.FireWindow, c.Scheduler.TickInterval)
	}
	if c.LLM.MaxConcurrency < 1 {
		c.LLM.MaxConcurrency = 1
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	return nil
}
