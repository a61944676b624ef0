package config

import (
	"fmt"
	"os"
)

type Config struct {
	MongoURI          string
	Port              string
	Env               string
	MerchantID        string
	MerchantKey       string
	GatewayPassphrase string // optional; when empty the base string carries no passphrase segment
	GatewayURL        string
	AppBaseURL        string
	JWTSecret         string
	FaceAPIURL        string // optional; face login is disabled without it
}

// Load reads configuration from the environment. Missing required values
// are a startup-fatal condition, not a runtime one.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:          os.Getenv("MONGOURI"),
		MerchantID:        os.Getenv("MERCHANT_ID"),
		MerchantKey:       os.Getenv("MERCHANT_KEY"),
		GatewayPassphrase: os.Getenv("GATEWAY_PASSPHRASE"),
		GatewayURL:        os.Getenv("GATEWAY_URL"),
		AppBaseURL:        os.Getenv("APP_BASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		FaceAPIURL:        os.Getenv("FACE_API_URL"),
		Port:              os.Getenv("PORT"),
		Env:               os.Getenv("ENVIRONMENT"),
	}

	required := []struct {
		name  string
		value string
	}{
		{"MONGOURI", cfg.MongoURI},
		{"MERCHANT_ID", cfg.MerchantID},
		{"MERCHANT_KEY", cfg.MerchantKey},
		{"GATEWAY_URL", cfg.GatewayURL},
		{"APP_BASE_URL", cfg.AppBaseURL},
		{"JWT_SECRET", cfg.JWTSecret},
	}
	for _, req := range required {
		if req.value == "" {
			return nil, fmt.Errorf("%s environment variable is required", req.name)
		}
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	return cfg, nil
}
