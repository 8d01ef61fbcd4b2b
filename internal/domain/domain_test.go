package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTarget_JSONRoundTrip(t *testing.T) {
	want := Target{
		ID:        TargetID("T1"),
		Name:      "Main SMP",
		Address:   "play.example.com",
		Port:      25565,
		Category:  "survival",
		CreatedAt: time.Date(2026, 8, 18, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Target
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.ID != want.ID || got.Address != want.Address || got.Port != want.Port ||
		!got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("mismatch after round-trip:\nwant=%+v\ngot =%+v", want, got)
	}
}

func TestProbeResult_OptionalFieldsOmitted(t *testing.T) {
	reason := "timeout"
	offline := ProbeResult{
		TargetID:   TargetID("T1"),
		Name:       "a",
		Address:    "a.example.com",
		Port:       25565,
		Online:     false,
		Error:      &reason,
		ObservedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(offline)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"error":"timeout"`) {
		t.Fatalf("error must serialize: %s", s)
	}
	for _, absent := range []string{"ping_ms", "latency_ms", "version", "protocol", "favicon"} {
		if strings.Contains(s, absent) {
			t.Fatalf("unset %s must be omitted: %s", absent, s)
		}
	}
}
