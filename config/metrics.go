package config

import "fmt"

// MetricsConfig controls the Prometheus build sink.
type MetricsConfig struct {
	PrometheusEnabled bool `json:"prometheus_enabled"`
	PrometheusPort    int  `json:"prometheus_port"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == 0 {
		c.PrometheusPort = 9090
	}
}

// Validate checks the port range.
func (c MetricsConfig) Validate() error {
	if c.PrometheusPort < 1 || c.PrometheusPort > 65535 {
		return fmt.Errorf("prometheus_port out of range: %d", c.PrometheusPort)
	}
	return nil
}
