package formulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
	"github.com/kilianp07/scuc/core/sensitivity"
)

// triangleInstance is a three-bus mesh with equal reactances: a 10-50 MW unit
// at b1 and a 30 MW load at b2. Injections split 2/3 direct, 1/3 around.
func triangleInstance(T int) *model.Instance {
	b1 := &model.Bus{Name: "b1", Load: repeat(0, T)}
	b2 := &model.Bus{Name: "b2", Load: repeat(30, T)}
	b3 := &model.Bus{Name: "b3", Load: repeat(0, T)}
	mkLine := func(name string, src, dst *model.Bus) *model.TransmissionLine {
		return &model.TransmissionLine{
			Name:               name,
			Source:             src,
			Target:             dst,
			Reactance:          0.1,
			NormalFlowLimit:    repeat(100, T),
			EmergencyFlowLimit: repeat(120, T),
			FlowLimitPenalty:   repeat(5000, T),
		}
	}
	sc := &model.Scenario{
		Name:        "s1",
		Probability: 1,
		Buses:       []*model.Bus{b1, b2, b3},
		Lines: []*model.TransmissionLine{
			mkLine("l1", b1, b2),
			mkLine("l2", b2, b3),
			mkLine("l3", b1, b3),
		},
		Units:               []*model.ThermalUnit{testUnit("g1", b1, T, 1, 30)},
		Reserves:            model.Reserves{Spinning: repeat(0, T)},
		PowerBalancePenalty: repeat(1000, T),
	}
	return &model.Instance{Time: T, Scenarios: []*model.Scenario{sc}}
}

func TestLineFlowConstraintCoefficients(t *testing.T) {
	m, err := Build(triangleInstance(1), Options{})
	require.NoError(t, err)

	sk := mip.SK("s1", "l1", 1)
	up := m.Constr("eq_flow_limit_up", sk)
	require.NotNil(t, up)
	assert.Equal(t, mip.LessEqual, up.Sense)
	assert.InDelta(t, 100.0, up.RHS, 1e-9)

	injB1 := m.Var("net_injection", mip.SK("s1", "b1", 1))
	injB2 := m.Var("net_injection", mip.SK("s1", "b2", 1))
	injB3 := m.Var("net_injection", mip.SK("s1", "b3", 1))
	of := m.Var("overflow", sk)
	// Slack column is zero, so b1 never appears in a flow row.
	assert.Zero(t, up.Expr.Coefficient(injB1))
	assert.InDelta(t, -2.0/3, up.Expr.Coefficient(injB2), 1e-9)
	assert.InDelta(t, -1.0/3, up.Expr.Coefficient(injB3), 1e-9)
	assert.InDelta(t, -1.0, up.Expr.Coefficient(of), 1e-9)

	down := m.Constr("eq_flow_limit_down", sk)
	require.NotNil(t, down)
	assert.InDelta(t, 2.0/3, down.Expr.Coefficient(injB2), 1e-9)
	assert.InDelta(t, -1.0, down.Expr.Coefficient(of), 1e-9)
}

func TestContingencyConstraints(t *testing.T) {
	m, err := Build(triangleInstance(1), Options{})
	require.NoError(t, err)

	// l2 under the outage of l1: the rerouted flow cancels the b3 term and
	// leaves a unit coefficient on b2.
	c := m.Constr("eq_contingency_up", mip.SKSub("s1", "l2", 1, 0))
	require.NotNil(t, c)
	assert.InDelta(t, 120.0, c.RHS, 1e-9)
	injB2 := m.Var("net_injection", mip.SK("s1", "b2", 1))
	injB3 := m.Var("net_injection", mip.SK("s1", "b3", 1))
	assert.InDelta(t, 1.0, c.Expr.Coefficient(injB2), 1e-9)
	assert.Zero(t, c.Expr.Coefficient(injB3))

	// No line is its own contingency.
	assert.Nil(t, m.Constr("eq_contingency_up", mip.SKSub("s1", "l1", 1, 0)))
	assert.Nil(t, m.Constr("eq_contingency_down", mip.SKSub("s1", "l1", 1, 0)))
}

func TestPrecomputedMatricesSkipFlowConstraints(t *testing.T) {
	in := triangleInstance(2)
	m, err := Build(in, Options{
		Precomputed: map[string]*sensitivity.Matrices{"s1": {}},
	})
	require.NoError(t, err)

	// Overflow variables always exist; without sensitivity information no
	// flow or contingency constraint is emitted.
	assert.Len(t, m.Vars("overflow"), 6)
	assert.Empty(t, m.Constrs("eq_flow_limit_up"))
	assert.Empty(t, m.Constrs("eq_flow_limit_down"))
	assert.Empty(t, m.Constrs("eq_contingency_up"))
}

func TestNetworkFeasiblePoint(t *testing.T) {
	m, err := Build(triangleInstance(1), Options{})
	require.NoError(t, err)

	assign := map[*mip.Var]float64{
		m.Var("is_on", mip.K("g1", 1)):                1,
		m.Var("prod_above", mip.SK("s1", "g1", 1)):    20,
		m.Var("segprod", mip.SKSub("s1", "g1", 1, 0)): 20,
		m.Var("net_injection", mip.SK("s1", "b1", 1)): 30,
		m.Var("net_injection", mip.SK("s1", "b2", 1)): -30,
	}
	assertFeasible(t, m, assign)
}
