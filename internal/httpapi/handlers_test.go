package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/fleet"
	"github.com/YeeNg2333/mcstatquery/internal/httpapi/middleware"
	"github.com/YeeNg2333/mcstatquery/internal/repo/memory"
)

type stubPinger struct {
	probes atomic.Int64
}

func (p *stubPinger) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	p.probes.Add(1)
	return domain.ProbeResult{
		TargetID:      t.ID,
		Name:          t.Name,
		Address:       t.Address,
		Port:          t.Port,
		Online:        true,
		PlayersOnline: 3,
		PlayersMax:    20,
		ObservedAt:    time.Now().UTC(),
	}
}

func newTestServer(t *testing.T) (*Server, *stubPinger, *memory.Store) {
	t.Helper()
	store := memory.New()
	ping := &stubPinger{}
	prober := fleet.NewProber(nil, store, ping, time.Minute, 4)
	s := NewServer(zap.NewNop(), store, prober, ping)
	return s, ping, store
}

func TestHandlers_AddListDelete(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Router()

	// empty list
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/servers", nil))
	if rr.Code != 200 {
		t.Fatalf("list: %d", rr.Code)
	}

	// add
	body := `{"name":"SMP","address":"play.example.com","port":25565,"category":"survival"}`
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/servers", strings.NewReader(body)))
	if rr.Code != 201 {
		t.Fatalf("add: %d body=%s", rr.Code, rr.Body.String())
	}
	var added struct {
		Target domain.Target      `json:"target"`
		Result domain.ProbeResult `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode add response: %v", err)
	}
	if added.Target.ID == "" || !added.Result.Online {
		t.Fatalf("add response: %+v", added)
	}

	// list now has one
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/servers", nil))
	var listed []domain.Target
	_ = json.Unmarshal(rr.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].Name != "SMP" {
		t.Fatalf("listed: %+v", listed)
	}

	// delete
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/servers/"+string(added.Target.ID), nil))
	if rr.Code != 200 {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/servers/"+string(added.Target.ID), nil))
	if rr.Code != 404 {
		t.Fatalf("double delete must 404, got %d", rr.Code)
	}
}

func TestHandlers_AddRejectsBadPayload(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Router()

	for _, body := range []string{
		`{`,
		`{"name":"","address":"x","port":1}`,
		`{"name":"a","address":"http://bad","port":1}`,
		`{"name":"a","address":"ok.example.com","port":0}`,
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/servers", strings.NewReader(body)))
		if rr.Code != 400 {
			t.Fatalf("payload %q: want 400, got %d", body, rr.Code)
		}
	}
}

func TestHandlers_UpdateInvalidatesCache(t *testing.T) {
	s, ping, store := newTestServer(t)
	h := s.Router()

	_ = store.Save(context.Background(), []domain.Target{
		{ID: "T1", Name: "Old", Address: "a.example.com", Port: 25565},
	})

	// warm the cache
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status", nil))
	if rr.Code != 200 {
		t.Fatalf("status: %d", rr.Code)
	}
	warm := ping.probes.Load()

	body := `{"name":"New","address":"a.example.com","port":25565}`
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("PUT", "/api/servers/T1", strings.NewReader(body)))
	if rr.Code != 200 {
		t.Fatalf("update: %d body=%s", rr.Code, rr.Body.String())
	}

	// next cached read must re-probe because the mutation invalidated
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status", nil))
	if ping.probes.Load() == warm {
		t.Fatalf("update must invalidate the snapshot cache")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("PUT", "/api/servers/ghost", strings.NewReader(body)))
	if rr.Code != 404 {
		t.Fatalf("update unknown: want 404, got %d", rr.Code)
	}
}

func TestHandlers_StatusCachedAndRefresh(t *testing.T) {
	s, ping, store := newTestServer(t)
	h := s.Router()
	_ = store.Save(context.Background(), []domain.Target{
		{ID: "T1", Name: "A", Address: "a.example.com", Port: 25565},
	})

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status", nil))
		if rr.Code != 200 {
			t.Fatalf("status: %d", rr.Code)
		}
	}
	if got := ping.probes.Load(); got != 1 {
		t.Fatalf("cached status must probe once, got %d", got)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status?refresh=1", nil))
	if rr.Code != 200 {
		t.Fatalf("refresh: %d", rr.Code)
	}
	if got := ping.probes.Load(); got != 2 {
		t.Fatalf("refresh=1 must force a new probe, got %d", got)
	}

	var snap domain.FleetSnapshot
	_ = json.Unmarshal(rr.Body.Bytes(), &snap)
	if snap.Total != 1 || snap.OnlineCount != 1 || snap.TotalPlayers != 3 {
		t.Fatalf("snapshot: %+v", snap)
	}
}

func TestHandlers_StatusOne(t *testing.T) {
	s, _, store := newTestServer(t)
	h := s.Router()
	_ = store.Save(context.Background(), []domain.Target{
		{ID: "T1", Name: "A", Address: "a.example.com", Port: 25565},
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status/T1", nil))
	if rr.Code != 200 {
		t.Fatalf("status one: %d", rr.Code)
	}
	var res domain.ProbeResult
	_ = json.Unmarshal(rr.Body.Bytes(), &res)
	if res.TargetID != "T1" || !res.Online {
		t.Fatalf("result: %+v", res)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status/ghost", nil))
	if rr.Code != 404 {
		t.Fatalf("unknown id: want 404, got %d", rr.Code)
	}
}

func TestHandlers_Ping(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Router()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/ping?address=mc.example.com&port=25565", nil))
	if rr.Code != 200 {
		t.Fatalf("ping: %d", rr.Code)
	}
	var res domain.ProbeResult
	_ = json.Unmarshal(rr.Body.Bytes(), &res)
	if !res.Online || res.Address != "mc.example.com" {
		t.Fatalf("ping result: %+v", res)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/ping?address=bad%20host&port=99999", nil))
	if rr.Code != 400 {
		t.Fatalf("bad ping: want 400, got %d", rr.Code)
	}
}

func TestHandlers_AdminKeyEnforced(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.Keys = middleware.Keys{Public: []string{"pub"}, Admin: []string{"adm"}}
	h := s.Router()

	body := `{"name":"SMP","address":"play.example.com","port":25565}`

	// public key cannot administer
	req := httptest.NewRequest("POST", "/api/servers", strings.NewReader(body))
	req.Header.Set("X-API-Key", "pub")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 403 {
		t.Fatalf("public key on admin route: want 403, got %d", rr.Code)
	}

	// no key cannot read
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/servers", nil))
	if rr.Code != 401 {
		t.Fatalf("keyless read: want 401, got %d", rr.Code)
	}

	// admin key works everywhere
	req = httptest.NewRequest("POST", "/api/servers", bytes.NewReader([]byte(body)))
	req.Header.Set("Authorization", "Bearer adm")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 201 {
		t.Fatalf("admin add: want 201, got %d", rr.Code)
	}
}

func TestHandlers_LiveWebSocket(t *testing.T) {
	s, _, store := newTestServer(t)
	s.LiveInterval = 20 * time.Millisecond
	_ = store.Save(context.Background(), []domain.Target{
		{ID: "T1", Name: "A", Address: "a.example.com", Port: 25565},
	})

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp=%v)", err, resp)
	}
	defer conn.Close()

	// immediate push
	var snap domain.FleetSnapshot
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read first push: %v", err)
	}
	if snap.Total != 1 {
		t.Fatalf("first push: %+v", snap)
	}

	// and at least one interval push
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read interval push: %v", err)
	}
}
