package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	HTTPAddress string

	JWTSecret      string
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration

	PasswordPepper string

	AllowedOrigins   []string
	AllowCredentials bool

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range []string{
		"DATABASE_URL",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"HTTP_ADDRESS",
		"JWT_SECRET", "JWT_ISSUER", "JWT_AUDIENCE",
		"ACCESS_TOKEN_TTL", "RESET_TOKEN_TTL",
		"PASSWORD_PEPPER",
		"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
		"ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("HTTP_ADDRESS", ":8080")
	viper.SetDefault("JWT_ISSUER", "storefront")
	viper.SetDefault("JWT_AUDIENCE", "storefront")
	viper.SetDefault("ACCESS_TOKEN_TTL", "30m")
	viper.SetDefault("RESET_TOKEN_TTL", "1h")
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_EMAIL", "admin@example.com")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	dbURL := viper.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	secret := viper.GetString("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return &Config{
		DatabaseURL:      dbURL,
		RedisAddress:     viper.GetString("REDIS_ADDRESS"),
		RedisPassword:    viper.GetString("REDIS_PASSWORD"),
		RedisDB:          viper.GetInt("REDIS_DB"),
		HTTPAddress:      viper.GetString("HTTP_ADDRESS"),
		JWTSecret:        secret,
		Issuer:           viper.GetString("JWT_ISSUER"),
		Audience:         viper.GetString("JWT_AUDIENCE"),
		AccessTokenTTL:   viper.GetDuration("ACCESS_TOKEN_TTL"),
		ResetTokenTTL:    viper.GetDuration("RESET_TOKEN_TTL"),
		PasswordPepper:   viper.GetString("PASSWORD_PEPPER"),
		AllowedOrigins:   viper.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials: viper.GetBool("ALLOW_CREDENTIALS"),
		AdminUsername:    viper.GetString("ADMIN_USERNAME"),
		AdminEmail:       viper.GetString("ADMIN_EMAIL"),
		AdminPassword:    viper.GetString("ADMIN_PASSWORD"),
	}, nil
}
