package backend

import (
	"context"
	"path/filepath"
	"testing"

	"buckaroo/internal/core"
)

func TestSessionModeIsValid(t *testing.T) {
	for _, m := range Modes() {
		if !m.IsValid() {
			t.Fatalf("%q should be valid", m)
		}
	}
	if SessionMode("sqlite").IsValid() {
		t.Fatalf("unknown mode accepted")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"memory needs nothing", Config{Mode: MemoryMode}, true},
		{"guest needs db path", Config{Mode: GuestMode}, false},
		{"guest with db path", Config{Mode: GuestMode, GuestDBPath: "/tmp/x.db"}, true},
		{"remote needs url", Config{Mode: RemoteMode, APIToken: "t"}, false},
		{"remote needs token", Config{Mode: RemoteMode, APIBaseURL: "http://api"}, false},
		{"remote complete", Config{Mode: RemoteMode, APIBaseURL: "http://api", APIToken: "t"}, true},
		{"unknown mode", Config{Mode: SessionMode("nope")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFactoryBuildsMemoryBackend(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.CreateBackend(Config{Mode: MemoryMode})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Repository == nil {
		t.Fatalf("no repository wired")
	}
	if result.Events != nil {
		t.Fatalf("events should be nil without an AMQP URL")
	}

	tx, err := result.Repository.Create(context.Background(), core.Draft{
		Amount: core.Money{Cents: 100},
		Type:   core.Income,
		Date:   core.NewDate(2024, 1, 1),
	})
	if err != nil || tx.UserID != core.GuestUserID {
		t.Fatalf("memory backend not guest-backed: %+v %v", tx, err)
	}
}

func TestFactoryBuildsGuestBackend(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.CreateBackend(Config{
		Mode:        GuestMode,
		GuestDBPath: filepath.Join(t.TempDir(), "guest.db"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	txs, err := result.Repository.List(context.Background())
	if err != nil || len(txs) != 0 {
		t.Fatalf("fresh guest store should list empty: %v %v", txs, err)
	}
}

func TestFactoryRejectsInvalidConfig(t *testing.T) {
	factory := NewFactory(nil)
	if _, err := factory.CreateBackend(Config{Mode: RemoteMode}); err == nil {
		t.Fatalf("expected validation error")
	}
}
