package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/gpumon-app/agent/internal/chart"
	"github.com/gpumon-app/agent/internal/device"
	"github.com/gpumon-app/agent/internal/models"
)

// stubSampler serves canned snapshots.
type stubSampler struct {
	snaps      []models.SeriesSnapshot
	historyLen int
}

func (s *stubSampler) Snapshot() []models.SeriesSnapshot { return s.snaps }

func (s *stubSampler) HistoryLen() int { return s.historyLen }

func (s *stubSampler) History(series string) []float64 {
	for _, snap := range s.snaps {
		if snap.Series == series {
			return snap.History
		}
	}
	return nil
}

func newTestServer() *Server {
	sampler := &stubSampler{
		historyLen: 5,
		snaps: []models.SeriesSnapshot{
			{Series: "card0.busy", Value: 60, Display: "60%", History: []float64{20, 40, 60}},
			{Series: "cpu", Value: 12, Display: "12%", History: []float64{12}},
		},
	}
	return New(sampler, nil, chart.DefaultTheme(), "test", zap.NewNop())
}

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSeries(t *testing.T) {
	rec := get(t, "/api/series")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snaps []models.SeriesSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snaps); err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Errorf("len = %d, want 2", len(snaps))
	}
}

func TestOneSeries(t *testing.T) {
	rec := get(t, "/api/series/card0.busy")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap models.SeriesSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Display != "60%" {
		t.Errorf("Display = %q, want 60%%", snap.Display)
	}

	if rec := get(t, "/api/series/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown series status = %d, want 404", rec.Code)
	}
}

func TestChart(t *testing.T) {
	rec := get(t, "/api/series/card0.busy/chart?width=120&height=40")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var data models.ChartData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Line) != 3 {
		t.Fatalf("line vertices = %d, want 3", len(data.Line))
	}
	// 3 of 5 samples, spacing 120/4 = 30 → first x = (5−3)×30 = 60.
	if data.Line[0].X != 60 {
		t.Errorf("first x = %v, want 60", data.Line[0].X)
	}
	if len(data.Fill) != 5 {
		t.Errorf("fill vertices = %d, want 5", len(data.Fill))
	}
	if data.Foreground == "" || data.Background == "" {
		t.Error("theme colors missing from chart payload")
	}
}

func TestChart_BadDimensions(t *testing.T) {
	for _, path := range []string{
		"/api/series/cpu/chart?width=0",
		"/api/series/cpu/chart?height=-3",
		"/api/series/cpu/chart?width=wide",
	} {
		if rec := get(t, path); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, rec.Code)
		}
	}
	if rec := get(t, "/api/series/nope/chart"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown series chart status = %d, want 404", rec.Code)
	}
}

func TestDevices(t *testing.T) {
	dir := t.TempDir()
	// A device with no readable counters still lists with its path name.
	devs := []device.Device{device.NewAMDGPU(dir + "/card0")}
	srv := New(&stubSampler{historyLen: 5}, devs, chart.DefaultTheme(), "test", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var infos []models.DeviceInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("len = %d, want 1", len(infos))
	}
	if infos[0].Name != dir+"/card0" {
		t.Errorf("Name = %q, want path fallback", infos[0].Name)
	}
	if infos[0].Temperature != nil {
		t.Error("Temperature set for device without hwmon node")
	}
}

func TestStatus(t *testing.T) {
	rec := get(t, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info models.StatusInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != "test" {
		t.Errorf("Version = %q, want test", info.Version)
	}
}
