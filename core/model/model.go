package model

// Instance is a complete unit-commitment problem over a fixed time horizon.
// All time-indexed attributes on every entity have exactly Time entries.
// Instances are immutable once constructed; the formulation engine never
// writes to them.
type Instance struct {
	// Time is the number of scheduling periods in the horizon.
	Time      int
	Scenarios []*Scenario
}

// Scenario owns one realization of the system: buses, lines, units, loads and
// the reserve requirement. Scenarios of the same instance share the horizon.
type Scenario struct {
	Name string
	// Probability is the scenario weight used in the objective. Weights are
	// normalized across the instance at build time.
	Probability float64
	Buses       []*Bus
	Lines       []*TransmissionLine
	Units       []*ThermalUnit
	Loads       []*PriceSensitiveLoad
	Reserves    Reserves
	// PowerBalancePenalty is the per-period cost in $/MW of curtailing fixed
	// load, the safety valve that keeps every instance feasible.
	PowerBalancePenalty []float64
}

// Bus is a network node with a fixed per-period load.
type Bus struct {
	Name string
	Load []float64
}

// TransmissionLine connects two buses. Reactance feeds the sensitivity-factor
// calculation; the flow limits and penalty bound the line constraints.
type TransmissionLine struct {
	Name               string
	Source             *Bus
	Target             *Bus
	Reactance          float64
	NormalFlowLimit    []float64
	EmergencyFlowLimit []float64
	FlowLimitPenalty   []float64
}

// CostSegment is one piece of a unit's piecewise-linear production cost curve.
// Amount is the segment width in MW and Cost the marginal cost in $/MW, both
// per period. Segments are ordered with monotonically increasing cost.
type CostSegment struct {
	Amount []float64
	Cost   []float64
}

// StartupCategory is a startup cost tier keyed to how long the unit has been
// off. Delay is the minimum down-time in periods before the category becomes
// eligible. Categories are ordered by increasing delay; the last one is the
// catch-all with no upper bound.
type StartupCategory struct {
	Delay int
	Cost  float64
}

// ThermalUnit is a dispatchable generator attached to a bus.
//
// InitialStatus is signed: positive means the unit entered the horizon after
// that many periods on, negative after that many periods off. InitialPower is
// the pre-horizon output in MW. Both are required; nil is a configuration
// error caught by Validate.
//
// RampUp, RampDown, StartupLimit and ShutdownLimit are MW limits where
// math.Inf(1) disables the limit. An explicit zero is a hard limit.
type ThermalUnit struct {
	Name                     string
	Bus                      *Bus
	MinPower                 []float64
	MaxPower                 []float64
	MustRun                  []bool
	ProvidesSpinningReserves []bool
	MinPowerCost             []float64
	CostSegments             []CostSegment
	StartupCategories        []StartupCategory
	MinUptime                int
	MinDowntime              int
	RampUp                   float64
	RampDown                 float64
	StartupLimit             float64
	ShutdownLimit            float64
	InitialStatus            *int
	InitialPower             *float64
}

// InitiallyOn reports whether the unit entered the horizon committed.
// Callers must have validated the unit first.
func (u *ThermalUnit) InitiallyOn() bool {
	return u.InitialStatus != nil && *u.InitialStatus > 0
}

// PriceSensitiveLoad is a consumer that is served only when profitable, up to
// a per-period demand bound, crediting Revenue per MW served.
type PriceSensitiveLoad struct {
	Name    string
	Bus     *Bus
	Demand  []float64
	Revenue []float64
}

// Reserves holds the per-period system-wide spinning reserve requirement.
type Reserves struct {
	Spinning []float64
}
