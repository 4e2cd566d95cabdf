package formulation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func repeatBool(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// testUnit returns a 10-50 MW unit with one 40 MW segment at 20 $/MW.
func testUnit(name string, bus *model.Bus, T, status int, power float64) *model.ThermalUnit {
	return &model.ThermalUnit{
		Name:                     name,
		Bus:                      bus,
		MinPower:                 repeat(10, T),
		MaxPower:                 repeat(50, T),
		MustRun:                  repeatBool(false, T),
		ProvidesSpinningReserves: repeatBool(true, T),
		MinPowerCost:             repeat(100, T),
		CostSegments: []model.CostSegment{
			{Amount: repeat(40, T), Cost: repeat(20, T)},
		},
		StartupCategories: []model.StartupCategory{{Delay: 1, Cost: 50}},
		RampUp:            math.Inf(1),
		RampDown:          math.Inf(1),
		StartupLimit:      math.Inf(1),
		ShutdownLimit:     math.Inf(1),
		InitialStatus:     &status,
		InitialPower:      &power,
	}
}

func singleBusInstance(T int, load float64, u func(*model.Bus) *model.ThermalUnit) *model.Instance {
	bus := &model.Bus{Name: "b1", Load: repeat(load, T)}
	sc := &model.Scenario{
		Name:                "s1",
		Probability:         1,
		Buses:               []*model.Bus{bus},
		Reserves:            model.Reserves{Spinning: repeat(0, T)},
		PowerBalancePenalty: repeat(1000, T),
	}
	if u != nil {
		sc.Units = []*model.ThermalUnit{u(bus)}
	}
	return &model.Instance{Time: T, Scenarios: []*model.Scenario{sc}}
}

// value returns a variable's value in a candidate solution: explicitly
// assigned, pinned by fixed bounds, or zero.
func value(v *mip.Var, assign map[*mip.Var]float64) float64 {
	if val, ok := assign[v]; ok {
		return val
	}
	if v.IsFixed() {
		return v.Lower
	}
	return 0
}

func evalExpr(e *mip.Expr, assign map[*mip.Var]float64) float64 {
	sum := e.Offset()
	for _, term := range e.Terms() {
		sum += term.Coef * value(term.Var, assign)
	}
	return sum
}

// assertFeasible checks that the candidate point satisfies every constraint
// and every assigned variable's bounds.
func assertFeasible(t *testing.T, m *mip.Model, assign map[*mip.Var]float64) {
	t.Helper()
	const tol = 1e-9
	for _, c := range m.AllConstrs() {
		lhs := evalExpr(c.Expr, assign)
		switch c.Sense {
		case mip.LessEqual:
			assert.LessOrEqualf(t, lhs, c.RHS+tol, "constraint %d (%s): %v <= %v", c.Index, c.Name, lhs, c.RHS)
		case mip.GreaterEqual:
			assert.GreaterOrEqualf(t, lhs, c.RHS-tol, "constraint %d (%s): %v >= %v", c.Index, c.Name, lhs, c.RHS)
		default:
			assert.InDeltaf(t, c.RHS, lhs, tol, "constraint %d (%s)", c.Index, c.Name)
		}
	}
	for v, val := range assign {
		assert.GreaterOrEqual(t, val, v.Lower-tol)
		assert.LessOrEqual(t, val, v.Upper+tol)
	}
}

func TestBuildRejectsInvalidInstance(t *testing.T) {
	in := singleBusInstance(4, 20, func(b *model.Bus) *model.ThermalUnit {
		u := testUnit("g1", b, 4, 1, 0)
		u.InitialStatus = nil
		return u
	})
	m, err := Build(in, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingInitialStatus))
	// No partially built model escapes.
	assert.Nil(t, m)
}

func TestBuildRejectsPartialMustRun(t *testing.T) {
	in := singleBusInstance(4, 20, func(b *model.Bus) *model.ThermalUnit {
		u := testUnit("g1", b, 4, 1, 20)
		u.MustRun = []bool{true, false, true, true}
		return u
	})
	_, err := Build(in, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrPartialMustRun))
}

// With zero load everywhere, leaving every unit off must be feasible and
// cost nothing.
func TestZeroLoadAllOffIsFeasibleAndFree(t *testing.T) {
	in := singleBusInstance(6, 0, func(b *model.Bus) *model.ThermalUnit {
		return testUnit("g1", b, 6, -100, 0)
	})
	m, err := Build(in, Options{})
	require.NoError(t, err)

	// All-zero point: nothing assigned, fixed variables at their value.
	allOff := map[*mip.Var]float64{}
	assertFeasible(t, m, allOff)
	assert.InDelta(t, 0, evalExpr(m.Objective(), allOff), 1e-9)
}

// Single bus, single period, load 20, unit 10-50 MW: committing the unit at
// 20 MW with zero net injection satisfies the balance round-trip.
func TestSingleBusBalanceRoundTrip(t *testing.T) {
	in := singleBusInstance(1, 20, func(b *model.Bus) *model.ThermalUnit {
		return testUnit("g1", b, 1, 1, 20)
	})
	m, err := Build(in, Options{})
	require.NoError(t, err)

	isOn := m.Var("is_on", mip.K("g1", 1))
	prodAbove := m.Var("prod_above", mip.SK("s1", "g1", 1))
	segprod := m.Var("segprod", mip.SKSub("s1", "g1", 1, 0))
	require.NotNil(t, isOn)
	require.NotNil(t, prodAbove)
	require.NotNil(t, segprod)

	// Production above minimum of 10 puts total output at min 10 + 10 = 20.
	point := map[*mip.Var]float64{
		isOn:      1,
		prodAbove: 10,
		segprod:   10,
	}
	assertFeasible(t, m, point)

	// The balance row is retrievable by period and covers the bus injection.
	balance := m.Constr("eq_power_balance", mip.SK("s1", "", 1))
	require.NotNil(t, balance)
	assert.Equal(t, mip.Equal, balance.Sense)

	// Per-bus tying row stays addressable for price computation.
	require.NotNil(t, m.Constr("eq_net_injection", mip.SK("s1", "b1", 1)))
}

func TestNamingOnRequestOnly(t *testing.T) {
	in := singleBusInstance(2, 10, func(b *model.Bus) *model.ThermalUnit {
		return testUnit("g1", b, 2, 1, 20)
	})
	m, err := Build(in, Options{})
	require.NoError(t, err)
	assert.Empty(t, m.Var("is_on", mip.K("g1", 1)).Name)

	named, err := Build(in, Options{Naming: true})
	require.NoError(t, err)
	assert.Equal(t, "is_on[g1,1]", named.Var("is_on", mip.K("g1", 1)).Name)
}

func TestScenarioWeightsScaleCosts(t *testing.T) {
	mk := func(name string, p float64) *model.Scenario {
		bus := &model.Bus{Name: "b1", Load: repeat(20, 2)}
		return &model.Scenario{
			Name:                name,
			Probability:         p,
			Buses:               []*model.Bus{bus},
			Units:               []*model.ThermalUnit{testUnit("g1", bus, 2, 1, 20)},
			Reserves:            model.Reserves{Spinning: repeat(0, 2)},
			PowerBalancePenalty: repeat(1000, 2),
		}
	}
	in := &model.Instance{Time: 2, Scenarios: []*model.Scenario{mk("s1", 3), mk("s2", 1)}}
	m, err := Build(in, Options{})
	require.NoError(t, err)

	// Commitment is shared across scenarios, dispatch is not.
	assert.NotNil(t, m.Var("is_on", mip.K("g1", 1)))
	p1 := m.Var("prod_above", mip.SK("s1", "g1", 1))
	p2 := m.Var("prod_above", mip.SK("s2", "g1", 1))
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.NotEqual(t, p1, p2)

	// Weights normalize to 0.75 / 0.25 and scale each scenario's segment
	// cost of 20 $/MW.
	s1 := m.Var("segprod", mip.SKSub("s1", "g1", 1, 0))
	s2 := m.Var("segprod", mip.SKSub("s2", "g1", 1, 0))
	obj := m.Objective()
	assert.InDelta(t, 15, obj.Coefficient(s1), 1e-9)
	assert.InDelta(t, 5, obj.Coefficient(s2), 1e-9)
}

func TestBuildIDsDiffer(t *testing.T) {
	in := singleBusInstance(1, 0, nil)
	a, err := Build(in, Options{})
	require.NoError(t, err)
	b, err := Build(in, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, a.BuildID)
	assert.NotEqual(t, a.BuildID, b.BuildID)
}
