package model

import (
	"errors"
	"fmt"
)

// Configuration errors detected by Validate. They are unrecoverable: the
// formulation engine refuses to build any part of the model for an invalid
// instance.
var (
	ErrMissingInitialStatus = errors.New("initial status is required")
	ErrMissingInitialPower  = errors.New("initial power is required")
	ErrPartialMustRun       = errors.New("partially must-run units are unsupported")
)

// Validate checks the instance for structural soundness: a positive horizon,
// consistent time-series lengths and complete unit configuration. It returns
// the first problem found.
func (in *Instance) Validate() error {
	if in.Time < 1 {
		return fmt.Errorf("time horizon must be positive, got %d", in.Time)
	}
	if len(in.Scenarios) == 0 {
		return fmt.Errorf("instance has no scenarios")
	}
	for _, sc := range in.Scenarios {
		if err := sc.validate(in.Time); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	return nil
}

func (sc *Scenario) validate(t int) error {
	for _, b := range sc.Buses {
		if len(b.Load) != t {
			return seriesErr("bus", b.Name, "load", len(b.Load), t)
		}
		for i, v := range b.Load {
			if v < 0 {
				return fmt.Errorf("bus %s: negative load %g in period %d", b.Name, v, i+1)
			}
		}
	}
	for _, l := range sc.Lines {
		if l.Source == nil || l.Target == nil {
			return fmt.Errorf("line %s: missing endpoint", l.Name)
		}
		if l.Reactance <= 0 {
			return fmt.Errorf("line %s: reactance must be positive", l.Name)
		}
		if len(l.NormalFlowLimit) != t {
			return seriesErr("line", l.Name, "normal flow limit", len(l.NormalFlowLimit), t)
		}
		if len(l.EmergencyFlowLimit) != t {
			return seriesErr("line", l.Name, "emergency flow limit", len(l.EmergencyFlowLimit), t)
		}
		if len(l.FlowLimitPenalty) != t {
			return seriesErr("line", l.Name, "flow limit penalty", len(l.FlowLimitPenalty), t)
		}
	}
	for _, u := range sc.Units {
		if err := u.validate(t); err != nil {
			return err
		}
	}
	for _, p := range sc.Loads {
		if p.Bus == nil {
			return fmt.Errorf("price-sensitive load %s: missing bus", p.Name)
		}
		if len(p.Demand) != t {
			return seriesErr("price-sensitive load", p.Name, "demand", len(p.Demand), t)
		}
		if len(p.Revenue) != t {
			return seriesErr("price-sensitive load", p.Name, "revenue", len(p.Revenue), t)
		}
	}
	if len(sc.Reserves.Spinning) != t {
		return seriesErr("reserves", sc.Name, "spinning", len(sc.Reserves.Spinning), t)
	}
	if len(sc.PowerBalancePenalty) != t {
		return seriesErr("scenario", sc.Name, "power balance penalty", len(sc.PowerBalancePenalty), t)
	}
	return nil
}

func (u *ThermalUnit) validate(t int) error {
	if u.Bus == nil {
		return fmt.Errorf("unit %s: missing bus", u.Name)
	}
	if u.InitialStatus == nil {
		return fmt.Errorf("unit %s: %w", u.Name, ErrMissingInitialStatus)
	}
	if *u.InitialStatus == 0 {
		return fmt.Errorf("unit %s: initial status must be nonzero", u.Name)
	}
	if u.InitialPower == nil {
		return fmt.Errorf("unit %s: %w", u.Name, ErrMissingInitialPower)
	}
	for name, s := range map[string][]float64{
		"min power":      u.MinPower,
		"max power":      u.MaxPower,
		"min power cost": u.MinPowerCost,
	} {
		if len(s) != t {
			return seriesErr("unit", u.Name, name, len(s), t)
		}
	}
	if len(u.MustRun) != t {
		return seriesErr("unit", u.Name, "must run", len(u.MustRun), t)
	}
	if len(u.ProvidesSpinningReserves) != t {
		return seriesErr("unit", u.Name, "provides spinning reserves", len(u.ProvidesSpinningReserves), t)
	}
	for _, mr := range u.MustRun {
		if mr != u.MustRun[0] {
			return fmt.Errorf("unit %s: %w", u.Name, ErrPartialMustRun)
		}
	}
	for i, seg := range u.CostSegments {
		if len(seg.Amount) != t {
			return seriesErr("unit", u.Name, fmt.Sprintf("segment %d amount", i), len(seg.Amount), t)
		}
		if len(seg.Cost) != t {
			return seriesErr("unit", u.Name, fmt.Sprintf("segment %d cost", i), len(seg.Cost), t)
		}
	}
	if len(u.StartupCategories) == 0 {
		return fmt.Errorf("unit %s: at least one startup category is required", u.Name)
	}
	if u.StartupCategories[0].Delay < 1 {
		return fmt.Errorf("unit %s: first startup delay must be at least 1", u.Name)
	}
	for i := 1; i < len(u.StartupCategories); i++ {
		if u.StartupCategories[i].Delay <= u.StartupCategories[i-1].Delay {
			return fmt.Errorf("unit %s: startup categories must have strictly increasing delays", u.Name)
		}
	}
	if u.MinUptime < 0 || u.MinDowntime < 0 {
		return fmt.Errorf("unit %s: negative minimum up/down time", u.Name)
	}
	return nil
}

func seriesErr(kind, name, field string, got, want int) error {
	return fmt.Errorf("%s %s: %s has %d entries, want %d", kind, name, field, got, want)
}
