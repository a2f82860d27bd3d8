// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "wos-client/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BackendConfig holds settings for the literature backend connection.
type BackendConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the backend root (e.g. "http://localhost:8888").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// RequestsPerSecond caps the outbound request rate (default 4).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries bounds retry attempts on rate-limited requests.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SessionConfig holds settings for the durable session store.
type SessionConfig struct {
	// StoreDir is the directory holding the session database
	// (default "~/.local/share/wos-client").
	StoreDir string `json:"store_dir" yaml:"store_dir"`
}

// ExportConfig holds settings for the export job controller.
type ExportConfig struct {
	// PollInterval is the bulk-export status poll period (default 2s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// OutputDir is where exported CSV files are written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// GraceDelay is how long a finished job is kept visible before the
	// controller auto-resets to idle (default 3s).
	GraceDelay time.Duration `json:"grace_delay" yaml:"grace_delay"`
}

// ClientConfig groups all component configurations.
type ClientConfig struct {
	Backend BackendConfig `json:"backend" yaml:"backend"`
	Session SessionConfig `json:"session" yaml:"session"`
	Export  ExportConfig  `json:"export" yaml:"export"`
}
