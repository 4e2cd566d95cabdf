package model

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// The JSON schema mirrors the common unit-commitment benchmark format: a
// "Parameters" section with the horizon, then one keyed section per entity
// kind. Any time-indexed field accepts either a scalar (repeated over the
// horizon) or an array of exactly T values.

type jsonInstance struct {
	Parameters jsonParameters                    `json:"Parameters"`
	Buses      map[string]jsonBus                `json:"Buses"`
	Lines      map[string]jsonLine               `json:"Transmission lines"`
	Generators map[string]jsonGenerator          `json:"Generators"`
	Loads      map[string]jsonPriceSensitiveLoad `json:"Price-sensitive loads"`
	Reserves   jsonReserves                      `json:"Reserves"`
}

type jsonParameters struct {
	TimeHorizon         int     `json:"Time horizon (h)"`
	ScenarioName        string  `json:"Scenario name"`
	ScenarioWeight      float64 `json:"Scenario weight"`
	PowerBalancePenalty *series `json:"Power balance penalty ($/MW)"`
}

type jsonBus struct {
	Load series `json:"Load (MW)"`
}

type jsonLine struct {
	Source             string  `json:"Source bus"`
	Target             string  `json:"Target bus"`
	Reactance          float64 `json:"Reactance (ohms)"`
	NormalFlowLimit    *series `json:"Normal flow limit (MW)"`
	EmergencyFlowLimit *series `json:"Emergency flow limit (MW)"`
	FlowLimitPenalty   *series `json:"Flow limit penalty ($/MW)"`
}

type jsonGenerator struct {
	Bus              string      `json:"Bus"`
	CostCurveMW      []series    `json:"Production cost curve (MW)"`
	CostCurveDollar  []series    `json:"Production cost curve ($)"`
	StartupDelays    []int       `json:"Startup delays (h)"`
	StartupCosts     []float64   `json:"Startup costs ($)"`
	MinUptime        int         `json:"Minimum uptime (h)"`
	MinDowntime      int         `json:"Minimum downtime (h)"`
	RampUp           *float64    `json:"Ramp up limit (MW)"`
	RampDown         *float64    `json:"Ramp down limit (MW)"`
	StartupLimit     *float64    `json:"Startup limit (MW)"`
	ShutdownLimit    *float64    `json:"Shutdown limit (MW)"`
	InitialStatus    *int        `json:"Initial status (h)"`
	InitialPower     *float64    `json:"Initial power (MW)"`
	MustRun          *boolSeries `json:"Must run?"`
	ProvidesReserves *boolSeries `json:"Provides spinning reserves?"`
}

type jsonPriceSensitiveLoad struct {
	Bus     string  `json:"Bus"`
	Demand  *series `json:"Demand (MW)"`
	Revenue *series `json:"Revenue ($/MW)"`
}

type jsonReserves struct {
	Spinning *series `json:"Spinning (MW)"`
}

// series is a time-indexed value that unmarshals from either a JSON number or
// an array of numbers.
type series struct {
	vals   []float64
	scalar bool
}

func (s *series) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		s.vals = []float64{f}
		s.scalar = true
		return nil
	}
	s.scalar = false
	return json.Unmarshal(b, &s.vals)
}

// expand returns the series as exactly t values, repeating a scalar.
func (s *series) expand(t int, def float64) ([]float64, error) {
	if s == nil || len(s.vals) == 0 {
		out := make([]float64, t)
		for i := range out {
			out[i] = def
		}
		return out, nil
	}
	if s.scalar {
		out := make([]float64, t)
		for i := range out {
			out[i] = s.vals[0]
		}
		return out, nil
	}
	if len(s.vals) != t {
		return nil, fmt.Errorf("time series has %d entries, want %d", len(s.vals), t)
	}
	out := make([]float64, t)
	copy(out, s.vals)
	return out, nil
}

type boolSeries struct {
	vals   []bool
	scalar bool
}

func (s *boolSeries) UnmarshalJSON(b []byte) error {
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		s.vals = []bool{v}
		s.scalar = true
		return nil
	}
	s.scalar = false
	return json.Unmarshal(b, &s.vals)
}

func (s *boolSeries) expand(t int, def bool) ([]bool, error) {
	if s == nil || len(s.vals) == 0 {
		out := make([]bool, t)
		for i := range out {
			out[i] = def
		}
		return out, nil
	}
	if s.scalar {
		out := make([]bool, t)
		for i := range out {
			out[i] = s.vals[0]
		}
		return out, nil
	}
	if len(s.vals) != t {
		return nil, fmt.Errorf("time series has %d entries, want %d", len(s.vals), t)
	}
	out := make([]bool, t)
	copy(out, s.vals)
	return out, nil
}

// Read parses a single scenario from r and returns a one-scenario instance.
func Read(r io.Reader) (*Instance, error) {
	var raw jsonInstance
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode instance: %w", err)
	}
	sc, t, err := buildScenario(&raw)
	if err != nil {
		return nil, err
	}
	in := &Instance{Time: t, Scenarios: []*Scenario{sc}}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// ReadFile parses a single-scenario instance from path. Files ending in .gz
// are transparently decompressed.
func ReadFile(path string) (*Instance, error) {
	ins, err := ReadFiles([]string{path})
	if err != nil {
		return nil, err
	}
	return ins, nil
}

// ReadFiles parses one scenario per path and combines them into a single
// instance. All scenarios must share the same time horizon.
func ReadFiles(paths []string) (*Instance, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no instance files given")
	}
	in := &Instance{}
	for _, path := range paths {
		raw, err := readRaw(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sc, t, err := buildScenario(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if in.Time == 0 {
			in.Time = t
		} else if in.Time != t {
			return nil, fmt.Errorf("%s: time horizon %d differs from %d", path, t, in.Time)
		}
		if sc.Name == "" {
			sc.Name = strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".json")
		}
		in.Scenarios = append(in.Scenarios, sc)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func readRaw(path string) (*jsonInstance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	var raw jsonInstance
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode instance: %w", err)
	}
	return &raw, nil
}

func buildScenario(raw *jsonInstance) (*Scenario, int, error) {
	t := raw.Parameters.TimeHorizon
	if t < 1 {
		return nil, 0, fmt.Errorf("missing or invalid time horizon")
	}
	weight := raw.Parameters.ScenarioWeight
	if weight == 0 {
		weight = 1
	}
	sc := &Scenario{Name: raw.Parameters.ScenarioName, Probability: weight}

	penalty, err := raw.Parameters.PowerBalancePenalty.expand(t, defaultBalancePenalty)
	if err != nil {
		return nil, 0, fmt.Errorf("power balance penalty: %w", err)
	}
	sc.PowerBalancePenalty = penalty

	buses := make(map[string]*Bus, len(raw.Buses))
	for name, jb := range raw.Buses {
		load, err := jb.Load.expand(t, 0)
		if err != nil {
			return nil, 0, fmt.Errorf("bus %s: load: %w", name, err)
		}
		b := &Bus{Name: name, Load: load}
		buses[name] = b
		sc.Buses = append(sc.Buses, b)
	}
	sortBuses(sc.Buses)

	for name, jl := range raw.Lines {
		src, ok := buses[jl.Source]
		if !ok {
			return nil, 0, fmt.Errorf("line %s: unknown source bus %s", name, jl.Source)
		}
		dst, ok := buses[jl.Target]
		if !ok {
			return nil, 0, fmt.Errorf("line %s: unknown target bus %s", name, jl.Target)
		}
		normal, err := jl.NormalFlowLimit.expand(t, infinity)
		if err != nil {
			return nil, 0, fmt.Errorf("line %s: normal flow limit: %w", name, err)
		}
		emergency, err := jl.EmergencyFlowLimit.expand(t, infinity)
		if err != nil {
			return nil, 0, fmt.Errorf("line %s: emergency flow limit: %w", name, err)
		}
		pen, err := jl.FlowLimitPenalty.expand(t, defaultFlowPenalty)
		if err != nil {
			return nil, 0, fmt.Errorf("line %s: flow limit penalty: %w", name, err)
		}
		sc.Lines = append(sc.Lines, &TransmissionLine{
			Name:               name,
			Source:             src,
			Target:             dst,
			Reactance:          jl.Reactance,
			NormalFlowLimit:    normal,
			EmergencyFlowLimit: emergency,
			FlowLimitPenalty:   pen,
		})
	}
	sortLines(sc.Lines)

	for name, jg := range raw.Generators {
		u, err := buildUnit(name, &jg, buses, t)
		if err != nil {
			return nil, 0, err
		}
		sc.Units = append(sc.Units, u)
	}
	sortUnits(sc.Units)

	for name, jp := range raw.Loads {
		b, ok := buses[jp.Bus]
		if !ok {
			return nil, 0, fmt.Errorf("price-sensitive load %s: unknown bus %s", name, jp.Bus)
		}
		demand, err := jp.Demand.expand(t, 0)
		if err != nil {
			return nil, 0, fmt.Errorf("price-sensitive load %s: demand: %w", name, err)
		}
		revenue, err := jp.Revenue.expand(t, 0)
		if err != nil {
			return nil, 0, fmt.Errorf("price-sensitive load %s: revenue: %w", name, err)
		}
		sc.Loads = append(sc.Loads, &PriceSensitiveLoad{Name: name, Bus: b, Demand: demand, Revenue: revenue})
	}
	sortLoads(sc.Loads)

	spinning, err := raw.Reserves.Spinning.expand(t, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("reserves: spinning: %w", err)
	}
	sc.Reserves = Reserves{Spinning: spinning}
	return sc, t, nil
}

// buildUnit converts a production cost curve given as (MW, $) sample points
// into min/max power, a no-load cost and marginal-cost segments.
func buildUnit(name string, jg *jsonGenerator, buses map[string]*Bus, t int) (*ThermalUnit, error) {
	b, ok := buses[jg.Bus]
	if !ok {
		return nil, fmt.Errorf("unit %s: unknown bus %s", name, jg.Bus)
	}
	k := len(jg.CostCurveMW)
	if k == 0 || len(jg.CostCurveDollar) != k {
		return nil, fmt.Errorf("unit %s: production cost curve needs matching MW and $ points", name)
	}
	mw := make([][]float64, k)
	cost := make([][]float64, k)
	for i := 0; i < k; i++ {
		var err error
		if mw[i], err = jg.CostCurveMW[i].expand(t, 0); err != nil {
			return nil, fmt.Errorf("unit %s: cost curve MW point %d: %w", name, i, err)
		}
		if cost[i], err = jg.CostCurveDollar[i].expand(t, 0); err != nil {
			return nil, fmt.Errorf("unit %s: cost curve $ point %d: %w", name, i, err)
		}
	}
	u := &ThermalUnit{
		Name:          name,
		Bus:           b,
		MinPower:      mw[0],
		MaxPower:      mw[k-1],
		MinPowerCost:  cost[0],
		MinUptime:     jg.MinUptime,
		MinDowntime:   jg.MinDowntime,
		RampUp:        limitOrInf(jg.RampUp),
		RampDown:      limitOrInf(jg.RampDown),
		StartupLimit:  limitOrInf(jg.StartupLimit),
		ShutdownLimit: limitOrInf(jg.ShutdownLimit),
		InitialStatus: jg.InitialStatus,
		InitialPower:  jg.InitialPower,
	}
	for i := 1; i < k; i++ {
		seg := CostSegment{Amount: make([]float64, t), Cost: make([]float64, t)}
		for p := 0; p < t; p++ {
			width := mw[i][p] - mw[i-1][p]
			seg.Amount[p] = width
			if width > 0 {
				seg.Cost[p] = (cost[i][p] - cost[i-1][p]) / width
			}
		}
		u.CostSegments = append(u.CostSegments, seg)
	}
	var err error
	if u.MustRun, err = jg.MustRun.expand(t, false); err != nil {
		return nil, fmt.Errorf("unit %s: must run: %w", name, err)
	}
	if u.ProvidesSpinningReserves, err = jg.ProvidesReserves.expand(t, false); err != nil {
		return nil, fmt.Errorf("unit %s: provides spinning reserves: %w", name, err)
	}
	delays := jg.StartupDelays
	costs := jg.StartupCosts
	if len(delays) == 0 {
		delays = []int{1}
		costs = []float64{0}
	}
	if len(delays) != len(costs) {
		return nil, fmt.Errorf("unit %s: startup delays and costs must have the same length", name)
	}
	for i := range delays {
		u.StartupCategories = append(u.StartupCategories, StartupCategory{Delay: delays[i], Cost: costs[i]})
	}
	return u, nil
}

// limitOrInf maps an omitted MW limit to "unlimited". An explicit zero stays
// a hard limit.
func limitOrInf(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}

const (
	defaultBalancePenalty = 1000.0
	defaultFlowPenalty    = 5000.0
	infinity              = 1e8
)
