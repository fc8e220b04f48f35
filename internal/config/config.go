package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	DeepSeek DeepSeekConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	URL string
}

type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.url", "postgres://localhost:5432/omnibar?sslmode=disable")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("deepseek.base_url", "https://api.deepseek.com")
	viper.SetDefault("deepseek.model", "deepseek-chat")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Mode: viper.GetString("server.mode"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrViper("DATABASE_URL", "database.url"),
		},
		Redis: RedisConfig{
			URL: getEnvOrViper("REDIS_URL", "redis.url"),
		},
		DeepSeek: DeepSeekConfig{
			APIKey:  getEnvOrViper("DEEPSEEK_API_KEY", "deepseek.api_key"),
			BaseURL: getEnvOrViper("DEEPSEEK_BASE_URL", "deepseek.base_url"),
			Model:   getEnvOrViper("DEEPSEEK_MODEL", "deepseek.model"),
		},
	}

	return config, nil
}

func getEnvOrViper(envKey, viperKey string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return viper.GetString(viperKey)
}

// ValidateDeepSeek checks that the LLM backend is usable. The rest of the
// service degrades gracefully without it, so this is only called by the
// ask endpoint wiring.
func (c *Config) ValidateDeepSeek() error {
	if c.DeepSeek.APIKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY is required")
	}
	if c.DeepSeek.BaseURL == "" {
		return fmt.Errorf("DeepSeek base URL is required")
	}
	return nil
}
