package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/pattarpon/pokescan/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Host, convey.ShouldEqual, "127.0.0.1")
				convey.So(cfg.Port, convey.ShouldEqual, 9876)
				convey.So(cfg.ReconnectDelayMS, convey.ShouldEqual, 2000)
				convey.So(cfg.ReadBufferSize, convey.ShouldEqual, 4096)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9090")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("POKESCAN_HOST", "10.0.0.5")
			_ = os.Setenv("POKESCAN_PORT", "8765")
			_ = os.Setenv("POKESCAN_RECONNECT_DELAY_MS", "500")
			_ = os.Setenv("POKESCAN_SPECIES_PATH", "/opt/dex/species.json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Host, convey.ShouldEqual, "10.0.0.5")
				convey.So(cfg.Port, convey.ShouldEqual, 8765)
				convey.So(cfg.ReconnectDelayMS, convey.ShouldEqual, 500)
				convey.So(cfg.SpeciesPath, convey.ShouldEqual, "/opt/dex/species.json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
host: "192.168.1.20"
port: 7000
port_file: "/tmp/pokescan-port"
reconnect_delay_ms: 1500
metrics_addr: ":9191"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("POKESCAN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Host, convey.ShouldEqual, "192.168.1.20")
				convey.So(cfg.Port, convey.ShouldEqual, 7000)
				convey.So(cfg.PortFile, convey.ShouldEqual, "/tmp/pokescan-port")
				convey.So(cfg.ReconnectDelayMS, convey.ShouldEqual, 1500)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9191")
			})
		})

		convey.Convey("When env vars and a YAML file are both present", func() {
			yamlContent := `
host: "192.168.1.20"
port: 7000
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("POKESCAN_CONFIG", tmpFile)
			_ = os.Setenv("POKESCAN_PORT", "7001")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Host, convey.ShouldEqual, "192.168.1.20")
				convey.So(cfg.Port, convey.ShouldEqual, 7001)
			})
		})

		convey.Convey("When loading config with a partial YAML file", func() {
			yamlContent := `
port: 7777
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("POKESCAN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 7777)
				convey.So(cfg.Host, convey.ShouldEqual, "127.0.0.1")
				convey.So(cfg.ReadBufferSize, convey.ShouldEqual, 4096)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("POKESCAN_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty host", func() {
			_ = os.Setenv("POKESCAN_HOST", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "host must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range port", func() {
			_ = os.Setenv("POKESCAN_PORT", "70000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-numeric port", func() {
			_ = os.Setenv("POKESCAN_PORT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"POKESCAN_CONFIG",
		"POKESCAN_HOST",
		"POKESCAN_PORT",
		"POKESCAN_PORT_FILE",
		"POKESCAN_RECONNECT_DELAY_MS",
		"POKESCAN_READ_BUFFER_SIZE",
		"POKESCAN_SPECIES_PATH",
		"POKESCAN_GROWTH_RATES_PATH",
		"POKESCAN_CRITERIA_PATH",
		"POKESCAN_METRICS_ADDR",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "pokescan-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
