package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDiscord_OK(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got = payload["content"]
		w.WriteHeader(204)
	}))
	defer ts.Close()

	d := NewDiscord(ts.URL)
	if d == nil {
		t.Fatal("expected discord client")
	}
	if err := d.Send(context.Background(), "Title", "Hello"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if !strings.HasPrefix(got, "**Title**") {
		t.Fatalf("payload not as expected: %q", got)
	}
}

func TestDiscord_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	d := NewDiscord(ts.URL)
	if err := d.Send(context.Background(), "X", "Y"); err == nil {
		t.Fatalf("expected error on non-2xx")
	}
}

func TestDiscord_EmptyWebhookDisabled(t *testing.T) {
	if NewDiscord("") != nil {
		t.Fatalf("empty webhook must disable the notifier")
	}
}

func TestFanout_TriesAllAndCombinesErrors(t *testing.T) {
	ok := &recordingNotifier{}
	bad1 := &recordingNotifier{fail: true}
	bad2 := &recordingNotifier{fail: true}
	f := Fanout{nil, bad1, ok, bad2}

	err := f.Send(context.Background(), "t", "x")
	if err == nil {
		t.Fatalf("want combined error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("want both failures reported, got %d: %v", got, err)
	}
	if ok.n != 1 || bad1.n != 1 || bad2.n != 1 {
		t.Fatalf("all notifiers must be tried: ok=%d bad1=%d bad2=%d", ok.n, bad1.n, bad2.n)
	}
}

func TestFanout_AllHealthyNoError(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	if err := (Fanout{a, b}).Send(context.Background(), "t", "x"); err != nil {
		t.Fatalf("healthy fanout must not error: %v", err)
	}
}

type recordingNotifier struct {
	n    int
	fail bool
}

func (r *recordingNotifier) Send(ctx context.Context, title, text string) error {
	r.n++
	if r.fail {
		return context.DeadlineExceeded
	}
	return nil
}
