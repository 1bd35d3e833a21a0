package backend

import (
	"fmt"

	"budget/internal/config"
)

// FromAppConfig converts the application config to gateway config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		SlotName:     appConfig.SlotName,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		BaseURL: appConfig.RemoteBaseURL,
		Timeout: appConfig.RemoteTimeout,
	}, nil
}

// Validate validates the gateway configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case Local:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for local backend")
		}
		if c.SlotName == "" {
			return fmt.Errorf("slot name is required for local backend")
		}
		// AMQP is optional, so we don't validate it

	case Remote:
		if c.BaseURL == "" {
			return fmt.Errorf("base URL is required for remote backend")
		}
	}

	return nil
}
