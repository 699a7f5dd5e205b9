package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

// AdminHandler returns the router served on the admin listener. It is kept
// off the public listener so every public path stays a static file path.
func (s *Server) AdminHandler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.HandleReady).Methods(http.MethodGet)
	r.HandleFunc("/live", s.HandleLive).Methods(http.MethodGet)
	r.Handle("/metrics", PrometheusMetricsHandler(s.build)).Methods(http.MethodGet)
	r.HandleFunc("/uploads", s.handleListUploads).Methods(http.MethodGet)
	r.HandleFunc("/uploads/{fileId}", s.handleUploadHistory).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = requestIDMiddleware(handler)
	return handler
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, "ledger disabled", http.StatusNotFound)
		return
	}
	limit, ok := ledgerLimit(r)
	if !ok {
		http.Error(w, "bad limit", http.StatusBadRequest)
		return
	}

	records, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		Error("ledger query failed", map[string]any{"rid": RequestIDFromContext(r.Context())}, err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": records})
}

func (s *Server) handleUploadHistory(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, "ledger disabled", http.StatusNotFound)
		return
	}
	limit, ok := ledgerLimit(r)
	if !ok {
		http.Error(w, "bad limit", http.StatusBadRequest)
		return
	}

	fileID := mux.Vars(r)["fileId"]
	records, err := s.ledger.History(r.Context(), fileID, limit)
	if err != nil {
		Error("ledger query failed", map[string]any{"rid": RequestIDFromContext(r.Context())}, err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"file_id": fileID, "uploads": records})
}

// ledgerLimit parses ?limit=, defaulting to 50 and accepting 1..500.
func ledgerLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLedgerLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLedgerLimit {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
