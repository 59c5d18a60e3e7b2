// Package config defines daemon configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors must be wrapped via this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Host and Port locate the emulator TCP socket pushing snapshots.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// PortFile optionally names a discovery file holding a port number
	// written by the emulator script. Read once at startup; when present
	// and valid it overrides Port.
	PortFile string `koanf:"port_file"`

	// ReconnectDelayMS is the fixed delay before a reconnect attempt.
	ReconnectDelayMS int `koanf:"reconnect_delay_ms"`

	// ReadBufferSize is the transport read chunk size in bytes.
	ReadBufferSize int `koanf:"read_buffer_size"`

	// SpeciesPath and GrowthRatesPath locate the reference dataset JSON
	// documents. Missing files leave the dex empty (lookups degrade to
	// unknown) rather than failing startup.
	SpeciesPath     string `koanf:"species_path"`
	GrowthRatesPath string `koanf:"growth_rates_path"`

	// CriteriaPath overrides the per-user criteria file location.
	// Empty means the default under the user config directory.
	CriteriaPath string `koanf:"criteria_path"`

	// MetricsAddr configures the metrics/health HTTP listen address.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Host:             "127.0.0.1",
		Port:             9876,
		PortFile:         "",
		ReconnectDelayMS: 2000,
		ReadBufferSize:   4096,
		SpeciesPath:      "data/pokemon_data.json",
		GrowthRatesPath:  "data/growth_rates.json",
		CriteriaPath:     "",
		MetricsAddr:      ":9090",
	}
}
