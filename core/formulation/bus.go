package formulation

import (
	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
)

// addBus seeds the shared accumulators for one bus and creates its relaxation
// machinery: a free net-injection variable (tied to the accumulator later by
// the system assembler) and a curtailment variable that keeps the model
// feasible for any load, at a penalty.
func (b *builder) addBus(sc *model.Scenario, bus *model.Bus, weight float64) {
	m := b.model
	cost := mip.NewExpr()
	for t := 1; t <= b.instance.Time; t++ {
		k := mip.SK(sc.Name, bus.Name, t)
		load := bus.Load[t-1]

		inj := mip.NewExpr().AddConstant(-load)
		m.SetExpr("injection", k, inj)
		m.SetExpr("reserve_offered", k, mip.NewExpr())

		netInj := m.NewVar(-mip.Inf, mip.Inf, mip.Continuous)
		m.BindVar("net_injection", k, netInj)

		curtail := m.NewVar(0, load, mip.Continuous)
		m.BindVar("curtail", k, curtail)
		inj.Add(1, curtail)
		cost.Add(sc.PowerBalancePenalty[t-1], curtail)
	}
	b.registerCost(sc, bus.Name, weight, cost)
}
