package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newAdminTestServer(t *testing.T, store Store, ledger Ledger) *Server {
	t.Helper()
	srv, err := New(Config{Root: t.TempDir(), Store: store, Ledger: ledger, Build: BuildInfo{Version: "test"}})
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func adminGet(srv *Server, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.AdminHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestAdmin_Health(t *testing.T) {
	store := newFakeStore()
	srv := newAdminTestServer(t, store, nil)

	rr := adminGet(srv, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var h Health
	if err := json.NewDecoder(rr.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != HealthStatusHealthy || h.Version != "test" {
		t.Errorf("health = %+v", h)
	}
	if _, ok := h.Components["database"]; ok {
		t.Error("database component reported without a database")
	}

	store.pingErr = errors.New("bucket gone")
	rr = adminGet(srv, "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status with failing store = %d, want 503", rr.Code)
	}
}

func TestAdmin_ReadyAndLive(t *testing.T) {
	store := newFakeStore()
	srv := newAdminTestServer(t, store, nil)

	if rr := adminGet(srv, "/ready"); rr.Code != http.StatusOK {
		t.Errorf("/ready = %d", rr.Code)
	}
	if rr := adminGet(srv, "/live"); rr.Code != http.StatusOK {
		t.Errorf("/live = %d", rr.Code)
	}

	store.pingErr = errors.New("down")
	if rr := adminGet(srv, "/ready"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready with failing store = %d, want 503", rr.Code)
	}
	if rr := adminGet(srv, "/live"); rr.Code != http.StatusOK {
		t.Errorf("/live with failing store = %d, want 200", rr.Code)
	}
}

func TestAdmin_Metrics(t *testing.T) {
	srv := newAdminTestServer(t, newFakeStore(), nil)
	if rr := adminGet(srv, "/metrics"); rr.Code != http.StatusOK {
		t.Errorf("/metrics = %d", rr.Code)
	}
}

func TestAdmin_MethodNotAllowed(t *testing.T) {
	srv := newAdminTestServer(t, newFakeStore(), nil)
	rr := httptest.NewRecorder()
	srv.AdminHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health = %d, want 405", rr.Code)
	}
}

func TestAdmin_LedgerDisabled(t *testing.T) {
	srv := newAdminTestServer(t, newFakeStore(), nil)
	for _, target := range []string{"/uploads", "/uploads/abc"} {
		if rr := adminGet(srv, target); rr.Code != http.StatusNotFound {
			t.Errorf("%s = %d, want 404", target, rr.Code)
		}
	}
}

func TestAdmin_Uploads(t *testing.T) {
	ledger := &fakeLedger{}
	srv := newAdminTestServer(t, newFakeStore(), ledger)

	for _, id := range []string{"a", "b", "a"} {
		rr := postUpload(t, srv, map[string]string{"fileId": id, "fileData": "aGVsbG8=", "contentType": "image/png"})
		if rr.Code != http.StatusOK {
			t.Fatalf("upload %s = %d", id, rr.Code)
		}
	}

	rr := adminGet(srv, "/uploads?limit=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("/uploads = %d", rr.Code)
	}
	var list struct {
		Uploads []UploadRecord `json:"uploads"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Uploads) != 2 || list.Uploads[0].ID != 3 {
		t.Errorf("recent uploads = %+v", list.Uploads)
	}

	rr = adminGet(srv, "/uploads/a")
	var hist struct {
		FileID  string         `json:"file_id"`
		Uploads []UploadRecord `json:"uploads"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	if hist.FileID != "a" || len(hist.Uploads) != 2 {
		t.Errorf("history = %+v", hist)
	}
	for _, rec := range hist.Uploads {
		if rec.StoredName != "a.png" {
			t.Errorf("stored name = %q", rec.StoredName)
		}
	}
}

func TestAdmin_UploadsBadLimit(t *testing.T) {
	srv := newAdminTestServer(t, newFakeStore(), &fakeLedger{})
	for _, limit := range []string{"0", "501", "ten"} {
		if rr := adminGet(srv, "/uploads?limit="+limit); rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%s = %d, want 400", limit, rr.Code)
		}
	}
}

func TestAdmin_UploadsQueryError(t *testing.T) {
	srv := newAdminTestServer(t, newFakeStore(), &fakeLedger{queryErr: errors.New("db down")})
	if rr := adminGet(srv, "/uploads"); rr.Code != http.StatusInternalServerError {
		t.Errorf("/uploads = %d, want 500", rr.Code)
	}
}

func TestDetermineOverallHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]ComponentHealth
		want       HealthStatus
	}{
		{"all up", map[string]ComponentHealth{"storage": {Status: ComponentStatusUp}}, HealthStatusHealthy},
		{"degraded", map[string]ComponentHealth{
			"storage":  {Status: ComponentStatusUp},
			"database": {Status: ComponentStatusDegraded},
		}, HealthStatusDegraded},
		{"down wins", map[string]ComponentHealth{
			"storage":  {Status: ComponentStatusDown},
			"database": {Status: ComponentStatusDegraded},
		}, HealthStatusUnhealthy},
	}
	for _, tt := range tests {
		if got := determineOverallHealth(tt.components); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}
