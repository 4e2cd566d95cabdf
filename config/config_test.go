package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `engine:
  isf_cutoff: 0.01
  lodf_cutoff: 0.002
  naming: true
logging:
  level: "debug"
  format: "console"
metrics:
  prometheus_enabled: true
  prometheus_port: 2112
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"isf_cutoff", cfg.Engine.ISFCutoff, 0.01},
		{"lodf_cutoff", cfg.Engine.LODFCutoff, 0.002},
		{"naming", cfg.Engine.Naming, true},
		{"level", cfg.Logging.Level, "debug"},
		{"format", cfg.Logging.Format, "console"},
		{"console", cfg.Logging.Console(), true},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, 2112},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("engine: {}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Engine.ISFCutoff != 0.005 {
		t.Errorf("isf_cutoff default = %v", cfg.Engine.ISFCutoff)
	}
	if cfg.Engine.LODFCutoff != 0.001 {
		t.Errorf("lodf_cutoff default = %v", cfg.Engine.LODFCutoff)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("level default = %v", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("format default = %v", cfg.Logging.Format)
	}
	if cfg.Metrics.PrometheusPort != 9090 {
		t.Errorf("prometheus_port default = %v", cfg.Metrics.PrometheusPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_LOGGING__LEVEL", "warn")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %v, want warn", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		data string
	}{
		{"bad_level", "logging:\n  level: \"verbose\"\n"},
		{"bad_format", "logging:\n  format: \"xml\"\n"},
		{"bad_cutoff", "engine:\n  isf_cutoff: -0.5\n"},
		{"bad_port", "metrics:\n  prometheus_port: 99999\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(dir, c.name+".yaml")
			if err := os.WriteFile(path, []byte(c.data), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected format error")
	}
}
