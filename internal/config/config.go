// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	GraphURI            string `mapstructure:"GRAPH_URI"`
	GraphUser           string `mapstructure:"GRAPH_USER"`
	GraphPassword       string `mapstructure:"GRAPH_PASSWORD"`
	GraphDatabase       string `mapstructure:"GRAPH_DATABASE"`
	GraphMaxPoolSize    int    `mapstructure:"GRAPH_MAX_POOL_SIZE"`
	GraphConnectTimeout int    `mapstructure:"GRAPH_CONNECT_TIMEOUT_SECONDS"`
	GraphQueryTimeout   int    `mapstructure:"GRAPH_QUERY_TIMEOUT_SECONDS"`

	TracingEnabled      bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint string `mapstructure:"TRACING_OTLP_ENDPOINT"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config.
	// The config file may not exist yet, so the error is ignored.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8460")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "ripple")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("GRAPH_URI", "neo4j://localhost:7687")
	viper.SetDefault("GRAPH_USER", "neo4j")
	viper.SetDefault("GRAPH_PASSWORD", "password")
	viper.SetDefault("GRAPH_DATABASE", "")
	viper.SetDefault("GRAPH_MAX_POOL_SIZE", 50)
	viper.SetDefault("GRAPH_CONNECT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("GRAPH_QUERY_TIMEOUT_SECONDS", 15)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_OTLP_ENDPOINT", "")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.GraphURI == "" {
		return errors.New("GRAPH_URI is required")
	}
	if c.GraphMaxPoolSize <= 0 {
		return errors.New("GRAPH_MAX_POOL_SIZE must be positive")
	}
	if c.GraphConnectTimeout <= 0 {
		return errors.New("GRAPH_CONNECT_TIMEOUT_SECONDS must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.GraphPassword == "password" || c.GraphPassword == "" {
			return errors.New("a strong GRAPH_PASSWORD is required in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}

// GraphConnectTimeoutDuration returns the configured graph connect timeout.
func (c *Config) GraphConnectTimeoutDuration() time.Duration {
	return time.Duration(c.GraphConnectTimeout) * time.Second
}

// GraphQueryTimeoutDuration returns the configured per-query graph timeout.
func (c *Config) GraphQueryTimeoutDuration() time.Duration {
	return time.Duration(c.GraphQueryTimeout) * time.Second
}
