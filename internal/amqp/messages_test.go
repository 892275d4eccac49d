package amqp

import (
	"testing"
	"time"
)

func TestChangeMessageRoundTrip(t *testing.T) {
	msg := NewChangeMessage(OpCreated, "1714650000000")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back, err := ChangeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Op != OpCreated || back.ID != "1714650000000" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if time.Since(back.Timestamp) > time.Minute {
		t.Fatalf("timestamp not preserved: %v", back.Timestamp)
	}
}

func TestChangeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error")
	}
}
