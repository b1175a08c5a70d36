package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort           int    `mapstructure:"APP_PORT"`
	DatabasePath      string `mapstructure:"DATABASE_PATH"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	BackendURL        string `mapstructure:"BACKEND_URL"`
	WebhookURL        string `mapstructure:"WEBHOOK_URL"`
	SimulationEnabled bool   `mapstructure:"SIMULATION_ENABLED"`
	TopK              int    `mapstructure:"TOP_K"`
	VectorStoreID     string `mapstructure:"VECTOR_STORE_ID"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/chatdesk.db")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("BACKEND_URL", "")
	// Universal default webhook, overridable per tenant group.
	viper.SetDefault("WEBHOOK_URL", "")
	viper.SetDefault("SIMULATION_ENABLED", false)
	viper.SetDefault("TOP_K", 0)
	viper.SetDefault("VECTOR_STORE_ID", "")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
