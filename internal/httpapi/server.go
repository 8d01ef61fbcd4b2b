package httpapi

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/fleet"
	"github.com/YeeNg2333/mcstatquery/internal/httpapi/middleware"
	"github.com/YeeNg2333/mcstatquery/internal/probe"
	"github.com/YeeNg2333/mcstatquery/internal/repo"
)

type Server struct {
	Logger  *zap.Logger
	Targets repo.TargetStore
	Prober  *fleet.Prober
	Pinger  probe.Pinger

	Keys           middleware.Keys
	PublicRPM      int
	PublicBurst    int
	AllowedOrigins []string
	LiveInterval   time.Duration
}

func NewServer(l *zap.Logger, ts repo.TargetStore, prober *fleet.Prober, pinger probe.Pinger) *Server {
	return &Server{
		Logger:       l,
		Targets:      ts,
		Prober:       prober,
		Pinger:       pinger,
		LiveInterval: 10 * time.Second,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if len(s.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
		}))
	} else {
		r.Use(cors.AllowAll().Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRead(s.Keys))
		r.Use(middleware.RateLimit(s.PublicRPM, s.PublicBurst))

		r.Get("/api/servers", s.handleListServers)
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/status/{id}", s.handleStatusOne)
		r.Get("/api/ping", s.handlePing)
		r.Get("/api/live", s.handleLive)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(s.Keys))

		r.Post("/api/servers", s.handleAddServer)
		r.Put("/api/servers/{id}", s.handleUpdateServer)
		r.Delete("/api/servers/{id}", s.handleDeleteServer)
	})

	return r
}

type serverPayload struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Port        uint16 `json:"port"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (p serverPayload) valid() bool {
	return p.Name != "" && isValidAddress(p.Address) && p.Port != 0
}

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Targets.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleAddServer(w http.ResponseWriter, r *http.Request) {
	var p serverPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || !p.valid() {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	ts, err := s.Targets.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}

	t := domain.Target{
		ID:          domain.TargetID(makeID()),
		Name:        p.Name,
		Address:     p.Address,
		Port:        p.Port,
		Category:    p.Category,
		Description: p.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Targets.Save(r.Context(), append(ts, t)); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save")
		return
	}
	s.Prober.Invalidate()

	// Run a single probe synchronously for immediate feedback
	out := s.Pinger.Probe(r.Context(), t)

	s.Logger.Info("added_server",
		zap.String("name", t.Name),
		zap.String("address", t.Address),
		zap.Uint16("port", t.Port),
		zap.Bool("online", out.Online),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"target": t, "result": out,
	})
}

func (s *Server) handleUpdateServer(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	var p serverPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || !p.valid() {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	ts, err := s.Targets.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	found := false
	for i := range ts {
		if ts[i].ID == id {
			ts[i].Name = p.Name
			ts[i].Address = p.Address
			ts[i].Port = p.Port
			ts[i].Category = p.Category
			ts[i].Description = p.Description
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "unknown server")
		return
	}
	if err := s.Targets.Save(r.Context(), ts); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save")
		return
	}
	s.Prober.Invalidate()

	s.Logger.Info("updated_server", zap.String("id", string(id)))
	writeJSON(w, http.StatusOK, map[string]any{"updated": id})
}

func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))

	ts, err := s.Targets.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	kept := ts[:0]
	for _, t := range ts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(ts) {
		writeError(w, http.StatusNotFound, "unknown server")
		return
	}
	if err := s.Targets.Save(r.Context(), kept); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save")
		return
	}
	s.Prober.Invalidate()

	s.Logger.Info("deleted_server", zap.String("id", string(id)))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	useCache := r.URL.Query().Get("refresh") != "1"
	snap, err := s.Prober.Snapshot(r.Context(), useCache)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "snapshot error")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStatusOne(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	snap, err := s.Prober.Snapshot(r.Context(), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "snapshot error")
		return
	}
	for _, res := range snap.Results {
		if res.TargetID == id {
			writeJSON(w, http.StatusOK, res)
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown server")
}

// handlePing runs one ad hoc probe outside the configured fleet.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	port, err := parsePort(r.URL.Query().Get("port"))
	if err != nil || !isValidAddress(address) {
		writeError(w, http.StatusBadRequest, "bad address or port")
		return
	}

	t := domain.Target{Name: address, Address: address, Port: port}
	out := s.Pinger.Probe(r.Context(), t)
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// isValidAddress accepts a bare hostname or IP literal; URLs, ports, and
// whitespace do not belong here.
func isValidAddress(addr string) bool {
	if addr == "" || len(addr) > 253 {
		return false
	}
	if net.ParseIP(addr) != nil {
		return true
	}
	if strings.ContainsAny(addr, " \t/:@?#") {
		return false
	}
	for _, label := range strings.Split(addr, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
	}
	return true
}

func parsePort(raw string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 16)
	if err != nil || n == 0 {
		return 0, strconv.ErrRange
	}
	return uint16(n), nil
}

// ID format: 20060102Thhmmss.nnnnnnnnn
func makeID() string {
	now := time.Now().UTC()
	return now.Format("20060102T150405.000000000")
}
