package backend

import (
	"fmt"
	"log/slog"

	"buckaroo/internal/amqp"
	"buckaroo/internal/repository/guest"
	"buckaroo/internal/repository/remote"
	"buckaroo/internal/storage"
)

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(config Config) (*Result, error)
}

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Mode {
	case RemoteMode:
		return f.createRemoteBackend(config)
	case GuestMode:
		return f.createGuestBackend(config)
	case MemoryMode:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported session mode: %s", config.Mode)
	}
}

func (f *DefaultFactory) createRemoteBackend(config Config) (*Result, error) {
	client := remote.NewClient(config.APIBaseURL, config.APIToken)

	f.logger.Info("Initialized remote backend", "base_url", config.APIBaseURL)

	return &Result{Repository: client}, nil
}

func (f *DefaultFactory) createGuestBackend(config Config) (*Result, error) {
	kv, err := storage.OpenKV(config.GuestDBPath)
	if err != nil {
		return nil, fmt.Errorf("open guest store: %w", err)
	}

	events := f.connectEvents(config)

	f.logger.Info("Initialized guest backend",
		"db_path", config.GuestDBPath,
		"events_enabled", events != nil)

	cleanup := func() error {
		if events != nil {
			if err := events.Close(); err != nil {
				f.logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		return kv.Close()
	}

	return &Result{
		Repository: guest.NewStore(kv),
		Events:     events,
		Cleanup:    cleanup,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	events := f.connectEvents(config)

	f.logger.Info("Initialized memory backend", "events_enabled", events != nil)

	return &Result{
		Repository: guest.NewStore(storage.NewMemoryKV()),
		Events:     events,
	}, nil
}

// connectEvents wires the optional change-event client. A broker that is
// down must not keep a local session from starting.
func (f *DefaultFactory) connectEvents(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	events, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return events
}
