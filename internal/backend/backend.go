// Package backend selects and wires the transaction source for a session.
// The mode is chosen once at startup and the resulting repository is injected
// everywhere; no caller branches on session state.
package backend

import (
	"fmt"

	"buckaroo/internal/amqp"
	"buckaroo/internal/repository"
)

// SessionMode selects which transaction source a session uses.
type SessionMode string

const (
	// RemoteMode talks to the authenticated REST API.
	RemoteMode SessionMode = "remote"
	// GuestMode persists to the local SQLite-backed key-value store.
	GuestMode SessionMode = "guest"
	// MemoryMode is an ephemeral guest session, used in tests and demos.
	MemoryMode SessionMode = "memory"
)

func (m SessionMode) String() string {
	return string(m)
}

// IsValid returns true if the session mode is known.
func (m SessionMode) IsValid() bool {
	switch m {
	case RemoteMode, GuestMode, MemoryMode:
		return true
	default:
		return false
	}
}

// Modes returns all valid session modes.
func Modes() []SessionMode {
	return []SessionMode{RemoteMode, GuestMode, MemoryMode}
}

// CleanupFunc releases resources owned by a backend.
type CleanupFunc func() error

// Config holds what the factory needs to build a backend.
type Config struct {
	Mode SessionMode

	// Remote mode
	APIBaseURL string
	APIToken   string

	// Guest mode
	GuestDBPath string

	// Change events (optional, guest and memory modes)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Validate checks the configuration against the selected mode.
func (c Config) Validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("invalid session mode: %q (must be one of %v)", c.Mode, Modes())
	}
	switch c.Mode {
	case RemoteMode:
		if c.APIBaseURL == "" {
			return fmt.Errorf("API base URL is required for remote mode")
		}
		if c.APIToken == "" {
			return fmt.Errorf("API token is required for remote mode")
		}
	case GuestMode:
		if c.GuestDBPath == "" {
			return fmt.Errorf("guest database path is required for guest mode")
		}
	case MemoryMode:
		// Nothing to validate; the store is ephemeral.
	}
	return nil
}

// Result contains the wired repository and optional collaborators.
type Result struct {
	Repository repository.TransactionRepository
	Events     *amqp.Client // nil when change events are not configured
	Cleanup    CleanupFunc
}
