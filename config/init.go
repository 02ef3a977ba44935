package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/tracing"
)

type Config struct {
	AppConfig        *AppConfig
	Logger           *logger.Config
	Tracing          *tracing.JaegerConfig
	GmailConfig      *GmailConfig
	AcCreteilConfig  *AcCreteilConfig
	HotmailConfig    *HotmailConfig
	AzureConfig      *AzureConfig
	TokenStoreConfig *TokenStoreConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:        &AppConfig{},
		Logger:           &logger.Config{},
		Tracing:          &tracing.JaegerConfig{},
		GmailConfig:      &GmailConfig{},
		AcCreteilConfig:  &AcCreteilConfig{},
		HotmailConfig:    &HotmailConfig{},
		AzureConfig:      &AzureConfig{},
		TokenStoreConfig: &TokenStoreConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	config.AppConfig.Logger = config.Logger
	config.AppConfig.Tracing = config.Tracing

	return config, nil
}
