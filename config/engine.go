package config

import (
	"fmt"

	"github.com/kilianp07/scuc/core/sensitivity"
)

// EngineConfig tunes the formulation engine.
type EngineConfig struct {
	// ISFCutoff zeroes injection shift factors below this magnitude.
	ISFCutoff float64 `json:"isf_cutoff"`
	// LODFCutoff zeroes outage distribution factors below this magnitude.
	LODFCutoff float64 `json:"lodf_cutoff"`
	// Naming assigns diagnostic names to every variable and constraint.
	Naming bool `json:"naming"`
}

// SetDefaults applies the domain-tuned cutoff defaults.
func (c *EngineConfig) SetDefaults() {
	if c.ISFCutoff == 0 {
		c.ISFCutoff = sensitivity.DefaultISFCutoff
	}
	if c.LODFCutoff == 0 {
		c.LODFCutoff = sensitivity.DefaultLODFCutoff
	}
}

// Validate checks the cutoff values.
func (c EngineConfig) Validate() error {
	if c.ISFCutoff < 0 || c.ISFCutoff >= 1 {
		return fmt.Errorf("isf_cutoff must be in [0,1), got %g", c.ISFCutoff)
	}
	if c.LODFCutoff < 0 || c.LODFCutoff >= 1 {
		return fmt.Errorf("lodf_cutoff must be in [0,1), got %g", c.LODFCutoff)
	}
	return nil
}

// Sensitivity converts the section into the calculator's configuration.
func (c EngineConfig) Sensitivity() sensitivity.Config {
	return sensitivity.Config{ISFCutoff: c.ISFCutoff, LODFCutoff: c.LODFCutoff}
}
