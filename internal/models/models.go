// Package models defines the data structures exposed to UI collaborators
// and the exporter. These structures are serialized to JSON by the HTTP
// API and the push exporter.
package models

import (
	"time"

	"github.com/gpumon-app/agent/internal/chart"
)

// SeriesSnapshot is the current state of one metric series: its latest
// value plus the buffered history, oldest first.
type SeriesSnapshot struct {
	Series  string    `json:"series"`
	Value   float64   `json:"value"`
	Display string    `json:"display"`
	History []float64 `json:"history"`
}

// DeviceInfo describes one discovered GPU device.
type DeviceInfo struct {
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Vendor      string   `json:"vendor,omitempty"`
	Device      string   `json:"device,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// StatusInfo describes the host the agent runs on.
type StatusInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform"`
	UptimeSeconds int    `json:"uptime_seconds"`
	Version       string `json:"version"`
}

// ChartData is the geometry payload for one series chart.
type ChartData struct {
	Series     string        `json:"series"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Line       []chart.Point `json:"line"`
	Fill       []chart.Point `json:"fill"`
	Foreground string        `json:"foreground"`
	Background string        `json:"background"`
}

// ExportBatch is the payload pushed to a remote collector endpoint.
type ExportBatch struct {
	Hostname  string           `json:"hostname"`
	Timestamp time.Time        `json:"timestamp"`
	Series    []SeriesSnapshot `json:"series"`
}
