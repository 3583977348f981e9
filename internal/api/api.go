// Package api exposes the monitor state over a local read-only HTTP API.
// UI collaborators (a panel widget, a web dashboard, curl) pull current
// values, histories, and ready-to-draw chart geometry from here; nothing
// in this package mutates the monitor.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gpumon-app/agent/internal/chart"
	"github.com/gpumon-app/agent/internal/device"
	"github.com/gpumon-app/agent/internal/models"
)

// Sampler is the monitor surface the API reads from.
type Sampler interface {
	Snapshot() []models.SeriesSnapshot
	History(series string) []float64
	HistoryLen() int
}

// Server serves the read-only monitor API.
type Server struct {
	sampler Sampler
	devices []device.Device
	theme   chart.Theme
	version string
	logger  *zap.Logger
}

// New creates an API server over the given sampler and device set.
func New(s Sampler, devices []device.Device, theme chart.Theme, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		sampler: s,
		devices: devices,
		theme:   theme,
		version: version,
		logger:  logger,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/devices", s.handleDevices).Methods(http.MethodGet)
	r.HandleFunc("/api/series", s.handleSeries).Methods(http.MethodGet)
	r.HandleFunc("/api/series/{name}", s.handleOneSeries).Methods(http.MethodGet)
	r.HandleFunc("/api/series/{name}/chart", s.handleChart).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, statusInfo(r.Context(), s.version))
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	infos := make([]models.DeviceInfo, 0, len(s.devices))
	for _, d := range s.devices {
		info := models.DeviceInfo{
			Path: d.Path(),
			Name: d.Name(),
		}
		if amd, ok := d.(*device.AMDGPU); ok {
			info.Vendor, _ = amd.VendorID()
			info.Device, _ = amd.DeviceID()
		}
		if temp, err := d.Temperature(r.Context()); err == nil {
			info.Temperature = &temp
		}
		infos = append(infos, info)
	}
	s.writeJSON(w, infos)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.sampler.Snapshot())
}

func (s *Server) handleOneSeries(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	for _, snap := range s.sampler.Snapshot() {
		if snap.Series == name {
			s.writeJSON(w, snap)
			return
		}
	}
	http.Error(w, "unknown series", http.StatusNotFound)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	values := s.sampler.History(name)
	if values == nil {
		http.Error(w, "unknown series", http.StatusNotFound)
		return
	}

	width, err := dimension(r, "width", 300)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := dimension(r, "height", 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	capacity := s.sampler.HistoryLen()
	s.writeJSON(w, models.ChartData{
		Series:     name,
		Width:      width,
		Height:     height,
		Line:       chart.Polyline(values, capacity, width, height),
		Fill:       chart.FillPolygon(values, capacity, width, height),
		Foreground: s.theme.Foreground,
		Background: s.theme.Background,
	})
}

// dimension parses a positive float query parameter, with a default when
// the parameter is absent.
func dimension(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, &badDimensionError{key: key, raw: raw}
	}
	return v, nil
}

type badDimensionError struct {
	key, raw string
}

func (e *badDimensionError) Error() string {
	return "invalid " + e.key + " " + strconv.Quote(e.raw)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// logRequests is the zap request-logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
