package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/remote"
	"budget/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new gateway factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateGateway implements Factory.CreateGateway
func (f *DefaultFactory) CreateGateway(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case Local:
		return f.createLocalGateway(config)
	case Remote:
		return f.createRemoteGateway(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createLocalGateway(config Config) (*Result, error) {
	store, err := storage.NewSlotStore(config.SQLiteDBPath, config.SlotName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize slot store: %w", err)
	}

	// Mutation events are optional; the gateway works without a broker
	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	local := storage.NewLocalGateway(store, events)

	f.logger.Info("Initialized local backend",
		"db_path", config.SQLiteDBPath,
		"slot", config.SlotName,
		"events_enabled", events != nil)

	cleanup := func() error {
		if events != nil {
			events.Close()
		}
		return store.Close()
	}

	return &Result{
		Gateway: local,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createRemoteGateway(config Config) (*Result, error) {
	client := remote.NewClient(config.BaseURL, config.Timeout)

	f.logger.Info("Initialized remote backend", "base_url", config.BaseURL)

	return &Result{
		Gateway: client,
		Cleanup: nil, // no resources to release for the remote variant
	}, nil
}
