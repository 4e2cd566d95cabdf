package formulation

import (
	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
	"github.com/kilianp07/scuc/core/sensitivity"
)

// addLines creates the overflow variables and the transmission security
// constraints. Line flow is the inner product of the ISF row with the bus
// net injections; post-contingency flow adds the outaged line's flow scaled
// by the LODF entry. One overflow variable per line-period absorbs both the
// base-case and the contingency excursions, penalized in the objective.
//
// On a degenerate network (no sensitivity information) only the overflow
// variables exist; no flow constraint is meaningful.
func (b *builder) addLines(sc *model.Scenario, matrices *sensitivity.Matrices, weight float64) {
	m := b.model
	T := b.instance.Time

	for li, line := range sc.Lines {
		cost := mip.NewExpr()
		for t := 1; t <= T; t++ {
			of := m.NewVar(0, mip.Inf, mip.Continuous)
			m.BindVar("overflow", mip.SK(sc.Name, line.Name, t), of)
			cost.Add(line.FlowLimitPenalty[t-1], of)
		}
		b.registerCost(sc, line.Name, weight, cost)

		if matrices.Empty() {
			continue
		}

		for t := 1; t <= T; t++ {
			sk := mip.SK(sc.Name, line.Name, t)
			of := m.Var("overflow", sk)

			flow := b.flowExpr(sc, matrices, li, -1, t)
			limit := line.NormalFlowLimit[t-1]

			c := m.AddConstr(flow.Copy().Add(-1, of), mip.LessEqual, limit)
			m.BindConstr("eq_flow_limit_up", sk, c)
			neg := mip.NewExpr().AddExpr(-1, flow).Add(-1, of)
			c = m.AddConstr(neg, mip.LessEqual, limit)
			m.BindConstr("eq_flow_limit_down", sk, c)
		}

		// N-1 contingencies: every other line with a nonzero distribution
		// factor onto this one.
		for k := range sc.Lines {
			if k == li || matrices.LODF.At(li, k) == 0 {
				continue
			}
			for t := 1; t <= T; t++ {
				sk := mip.SKSub(sc.Name, line.Name, t, k)
				of := m.Var("overflow", mip.SK(sc.Name, line.Name, t))

				post := b.flowExpr(sc, matrices, li, k, t)
				limit := line.EmergencyFlowLimit[t-1]

				c := m.AddConstr(post.Copy().Add(-1, of), mip.LessEqual, limit)
				m.BindConstr("eq_contingency_up", sk, c)
				neg := mip.NewExpr().AddExpr(-1, post).Add(-1, of)
				c = m.AddConstr(neg, mip.LessEqual, limit)
				m.BindConstr("eq_contingency_down", sk, c)
			}
		}
	}
}

// flowExpr builds the (post-contingency) flow on line li at period t as a
// linear expression over the net-injection variables. outage < 0 selects the
// base case. Zeroed sensitivity entries are skipped to keep the rows sparse.
func (b *builder) flowExpr(sc *model.Scenario, matrices *sensitivity.Matrices, li, outage, t int) *mip.Expr {
	m := b.model
	e := mip.NewExpr()
	for j, bus := range sc.Buses {
		coef := matrices.ISF.At(li, j)
		if outage >= 0 {
			coef += matrices.LODF.At(li, outage) * matrices.ISF.At(outage, j)
		}
		if coef == 0 {
			continue
		}
		e.Add(coef, m.Var("net_injection", mip.SK(sc.Name, bus.Name, t)))
	}
	return e
}
