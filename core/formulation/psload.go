package formulation

import (
	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
)

// addPriceSensitiveLoad creates the served-demand variable for one
// price-sensitive consumer. Serving it earns revenue (a negative cost) and
// withdraws power from the owning bus.
func (b *builder) addPriceSensitiveLoad(sc *model.Scenario, load *model.PriceSensitiveLoad, weight float64) {
	m := b.model
	cost := mip.NewExpr()
	for t := 1; t <= b.instance.Time; t++ {
		served := m.NewVar(0, load.Demand[t-1], mip.Continuous)
		m.BindVar("loads", mip.SK(sc.Name, load.Name, t), served)

		cost.Add(-load.Revenue[t-1], served)
		m.Expr("injection", mip.SK(sc.Name, load.Bus.Name, t)).Add(-1, served)
	}
	b.registerCost(sc, load.Name, weight, cost)
}
