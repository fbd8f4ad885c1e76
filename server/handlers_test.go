package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"HomeStatus/config"
	"HomeStatus/db"
	"HomeStatus/model"
	"HomeStatus/repository"

	"github.com/gorilla/mux"
)

const testToken = "test-token"

// newTestHandler wires an APIHandler against a fresh in-memory database with
// a pinned clock.
func newTestHandler(t *testing.T, now int64) (*APIHandler, *sql.DB) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("ping: %v", err)
	}
	if err := db.InitSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	h := NewAPIHandler(
		repository.NewSQLiteDeviceRepositoryWithDB(conn),
		repository.NewSQLiteControlRepositoryWithDB(conn),
		repository.NewSQLiteScheduleRepositoryWithDB(conn),
		repository.NewSQLiteBlogRepositoryWithDB(conn),
		repository.NewSQLiteVisitorRepositoryWithDB(conn),
		&config.Config{Token: testToken, BuildVersion: "test-build"},
	)
	h.now = func() int64 { return now }
	return h, conn
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	if token != "" {
		req.Header.Set("X-Token", token)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func getStatus(t *testing.T, h *APIHandler) []model.DeviceStatus {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	h.StatusHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status: %d", w.Code)
	}
	var view []model.DeviceStatus
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return view
}

func TestHeartbeat_BadTokenRejected(t *testing.T) {
	h, _ := newTestHandler(t, 1000)

	w := postJSON(t, h.HeartbeatHandler, "/heartbeat", model.Heartbeat{
		DeviceID: "device-1", DeviceName: "One", Online: true,
	}, "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	// No row was written.
	if got := getStatus(t, h); len(got) != 0 {
		t.Errorf("unauthorized heartbeat wrote state: %+v", got)
	}
}

func TestHeartbeat_BearerTokenAccepted(t *testing.T) {
	h, _ := newTestHandler(t, 1000)

	buf, _ := json.Marshal(model.Heartbeat{DeviceID: "device-1", DeviceName: "One", Online: true})
	req := httptest.NewRequest(http.MethodPost, "/heartbeat", bytes.NewReader(buf))
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	h.HeartbeatHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := getStatus(t, h); len(got) != 1 || !got[0].Online {
		t.Errorf("unexpected view: %+v", got)
	}
}

func TestHeartbeat_SuppressedByGlobalOverride(t *testing.T) {
	h, conn := newTestHandler(t, 1000)

	w := postJSON(t, h.SetManualStatusHandler, "/status/manual",
		model.ManualStatusPayload{Enabled: true}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("set manual: %d", w.Code)
	}

	// Accepted but discarded: 200 to the caller, no row written.
	w = postJSON(t, h.HeartbeatHandler, "/heartbeat", model.Heartbeat{
		DeviceID: "device-1", DeviceName: "One", Online: true,
	}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("suppressed heartbeat: %d, want 200", w.Code)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM device_status`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("suppressed heartbeat wrote %d rows", count)
	}
}

func TestStatus_GlobalOverrideScenario(t *testing.T) {
	h, _ := newTestHandler(t, 1000)

	// Heartbeat first, then flip the override: the device row exists but the
	// view must force offline and surface the global flag.
	w := postJSON(t, h.HeartbeatHandler, "/heartbeat", model.Heartbeat{
		DeviceID: "device-1", DeviceName: "One", Online: true,
	}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("heartbeat: %d", w.Code)
	}
	w = postJSON(t, h.SetManualStatusHandler, "/status/manual",
		model.ManualStatusPayload{Enabled: true}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("set manual: %d", w.Code)
	}

	got := getStatus(t, h)
	if len(got) != 1 {
		t.Fatalf("expected 1 device, got %d", len(got))
	}
	if got[0].Online {
		t.Error("device online despite global override")
	}
	if !got[0].GlobalManualOffline {
		t.Error("global_manual_offline not surfaced")
	}
}

func TestStatus_StalenessScenario(t *testing.T) {
	h, _ := newTestHandler(t, 0)

	w := postJSON(t, h.HeartbeatHandler, "/heartbeat", model.Heartbeat{
		DeviceID: "device-1", DeviceName: "One", Online: true,
	}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("heartbeat: %d", w.Code)
	}

	// 400 seconds later with no further heartbeat.
	h.now = func() int64 { return 400 }
	got := getStatus(t, h)
	if got[0].Online {
		t.Error("stale device still online")
	}
	if got[0].LastSeen != 0 {
		t.Errorf("last_seen = %d, want unchanged 0", got[0].LastSeen)
	}
	if got[0].ManualOffline || got[0].GlobalManualOffline {
		t.Error("staleness misreported as override")
	}
}

func TestStatus_ManualOfflineSticksAcrossHeartbeats(t *testing.T) {
	h, _ := newTestHandler(t, 1000)

	w := postJSON(t, h.DeviceStatusUpdateHandler, "/device/status", model.DeviceStatusUpdate{
		DeviceID:      "device-1",
		ManualOffline: boolp(true),
	}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status update: %d", w.Code)
	}

	w = postJSON(t, h.HeartbeatHandler, "/heartbeat", model.Heartbeat{
		DeviceID: "device-1", DeviceName: "One", Online: true,
	}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("heartbeat: %d", w.Code)
	}

	got := getStatus(t, h)
	if got[0].Online {
		t.Error("manually-offline device reported online after heartbeat")
	}
	if !got[0].ManualOffline {
		t.Error("manual_offline flag lost")
	}
}

func TestDeleteDevice_TokenInQuery(t *testing.T) {
	h, _ := newTestHandler(t, 1000)

	postJSON(t, h.HeartbeatHandler, "/heartbeat", model.Heartbeat{
		DeviceID: "device-1", DeviceName: "One", Online: true,
	}, testToken)

	req := httptest.NewRequest(http.MethodGet, "/device?id=device-1&token=wrong", nil)
	w := httptest.NewRecorder()
	h.DeleteDeviceHandler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/device?id=device-1&token="+testToken, nil)
	w = httptest.NewRecorder()
	h.DeleteDeviceHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d, want 200", w.Code)
	}

	if got := getStatus(t, h); len(got) != 0 {
		t.Errorf("device survived delete: %+v", got)
	}
}

func TestManualStatus_ReadBack(t *testing.T) {
	h, _ := newTestHandler(t, 1234)

	w := postJSON(t, h.SetManualStatusHandler, "/status/manual",
		model.ManualStatusPayload{Enabled: true}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("set: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/status/manual", nil)
	rec := httptest.NewRecorder()
	h.GetManualStatusHandler(rec, req)
	var resp model.ManualStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Enabled || resp.UpdatedAt != 1234 {
		t.Errorf("unexpected response: %+v", resp)
	}

	// Unauthorized writes must not flip the switch.
	w = postJSON(t, h.SetManualStatusHandler, "/status/manual",
		model.ManualStatusPayload{Enabled: false}, "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthorized set: %d, want 401", w.Code)
	}
}

func TestBlogDetail_UnknownSlugIs404(t *testing.T) {
	h, _ := newTestHandler(t, 1000)

	router := mux.NewRouter()
	router.HandleFunc("/blog/{slug}", h.BlogDetailHandler).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/blog/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestVisitorStats_BucketsFollowHandlerClock(t *testing.T) {
	aug := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC).Unix()
	h, conn := newTestHandler(t, aug)

	w := postJSON(t, h.VisitorVisitHandler, "/visitor/visit",
		model.VisitPayload{VisitorID: "v1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("visit: %d", w.Code)
	}

	var dateKey string
	if err := conn.QueryRow(`SELECT visit_date FROM visitor_visits`).Scan(&dateKey); err != nil {
		t.Fatalf("read visit: %v", err)
	}
	if dateKey != "2026-08-15" {
		t.Errorf("visit_date = %q, want pinned clock's day", dateKey)
	}

	// Next month on the same clock: the August visit leaves today/month
	// buckets and stays in the total.
	h.now = func() int64 { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Unix() }
	w = postJSON(t, h.VisitorVisitHandler, "/visitor/visit",
		model.VisitPayload{VisitorID: "v1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("second visit: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/visitor", nil)
	rec := httptest.NewRecorder()
	h.VisitorStatsHandler(rec, req)
	var stats model.VisitorStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Today != 1 || stats.Month != 1 || stats.Total != 2 {
		t.Errorf("unexpected buckets: %+v", stats)
	}
}

func TestVersionHandler(t *testing.T) {
	h, _ := newTestHandler(t, 1000)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	w := httptest.NewRecorder()
	h.VersionHandler(w, req)

	var info model.VersionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Service != "homestatus" || info.Version != "test-build" || !info.MusicFields {
		t.Errorf("unexpected version info: %+v", info)
	}
}

func boolp(b bool) *bool { return &b }
