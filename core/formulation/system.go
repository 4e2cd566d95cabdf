package formulation

import (
	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
)

// addSystemConstraints closes the accumulator algebra: each bus's free
// net-injection variable is tied to its accumulated expression, the
// injections sum to zero system-wide (the network is lossless in this
// linearized model) and the offered reserve covers the requirement.
//
// The per-bus tying constraints stay retrievable under eq_net_injection so
// that price computation can read their duals by (bus, period).
func (b *builder) addSystemConstraints(sc *model.Scenario) {
	m := b.model
	for t := 1; t <= b.instance.Time; t++ {
		balance := mip.NewExpr()
		offered := mip.NewExpr()
		for _, bus := range sc.Buses {
			k := mip.SK(sc.Name, bus.Name, t)
			netInj := m.Var("net_injection", k)

			def := m.Expr("injection", k).Copy().Add(-1, netInj)
			c := m.AddConstr(def, mip.Equal, 0)
			m.BindConstr("eq_net_injection", k, c)

			balance.Add(1, netInj)
			offered.AddExpr(1, m.Expr("reserve_offered", k))
		}

		c := m.AddConstr(balance, mip.Equal, 0)
		m.BindConstr("eq_power_balance", mip.SK(sc.Name, "", t), c)

		c = m.AddConstr(offered, mip.GreaterEqual, sc.Reserves.Spinning[t-1])
		m.BindConstr("eq_min_reserve", mip.SK(sc.Name, "", t), c)
	}
}
