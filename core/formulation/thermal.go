package formulation

import (
	"math"

	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
)

// addThermalUnit builds everything for one generator: the shared commitment
// machinery on first encounter of the unit name, then the scenario-stage
// production, reserve and ramping structure. Infinite ramp, startup or
// shutdown limits skip the corresponding constraints; an explicit zero is a
// hard limit.
func (b *builder) addThermalUnit(sc *model.Scenario, u *model.ThermalUnit, weight float64) error {
	if !b.units[u.Name] {
		b.units[u.Name] = true
		b.addCommitment(u)
	}
	b.addDispatch(sc, u, weight)
	return nil
}

// addCommitment creates the first-stage variables (commitment, transitions,
// startup-category selectors) and the purely temporal constraints that govern
// them. Units appearing in several scenarios share this stage.
func (b *builder) addCommitment(u *model.ThermalUnit) {
	m := b.model
	T := b.instance.Time
	mustRun := u.MustRun[0]
	initOn := u.InitiallyOn()
	cats := u.StartupCategories
	S := len(cats)

	isOn := make([]*mip.Var, T+1)
	swOn := make([]*mip.Var, T+1)
	swOff := make([]*mip.Var, T+1)
	startup := make([][]*mip.Var, T+1)

	for t := 1; t <= T; t++ {
		if mustRun {
			isOn[t] = m.NewFixedVar(1)
			on := 0.0
			if t == 1 && !initOn {
				on = 1
			}
			swOn[t] = m.NewFixedVar(on)
			swOff[t] = m.NewFixedVar(0)
		} else {
			isOn[t] = m.NewVar(0, 1, mip.Binary)
			swOn[t] = m.NewVar(0, 1, mip.Binary)
			swOff[t] = m.NewVar(0, 1, mip.Binary)
		}
		m.BindVar("is_on", mip.K(u.Name, t), isOn[t])
		m.BindVar("switch_on", mip.K(u.Name, t), swOn[t])
		m.BindVar("switch_off", mip.K(u.Name, t), swOff[t])

		startup[t] = make([]*mip.Var, S)
		for s := 0; s < S; s++ {
			startup[t][s] = m.NewVar(0, 1, mip.Binary)
			m.BindVar("startup", mip.KSub(u.Name, t, s), startup[t][s])
		}
	}

	for t := 1; t <= T; t++ {
		// Exactly one startup category whenever the unit switches on.
		choose := mip.NewExpr().Add(-1, swOn[t])
		for s := 0; s < S; s++ {
			choose.Add(1, startup[t][s])
		}
		c := m.AddConstr(choose, mip.Equal, 0)
		m.BindConstr("eq_startup_choose", mip.K(u.Name, t), c)

		// Category s is forbidden unless the unit switched off inside its
		// delay window, in-horizon or carried over from the initial status.
		// The last category is the unrestricted fallback.
		for s := 0; s < S-1; s++ {
			e := mip.NewExpr().Add(1, startup[t][s])
			lo, hi := offWindow(t, cats[s].Delay, cats[s+1].Delay)
			for i := lo; i <= hi; i++ {
				e.Add(-1, swOff[i])
			}
			rhs := 0.0
			if offCarryover(*u.InitialStatus, t, cats[s].Delay, cats[s+1].Delay) {
				rhs = 1
			}
			c := m.AddConstr(e, mip.LessEqual, rhs)
			m.BindConstr("eq_startup_restrict", mip.KSub(u.Name, t, s), c)
		}

		if mustRun {
			continue
		}

		// Commitment change balances the transition indicators; period 1
		// reaches back to the initial status.
		link := mip.NewExpr().Add(1, isOn[t]).Add(-1, swOn[t]).Add(1, swOff[t])
		rhs := 0.0
		if t == 1 {
			if initOn {
				rhs = 1
			}
		} else {
			link.Add(-1, isOn[t-1])
		}
		c = m.AddConstr(link, mip.Equal, rhs)
		m.BindConstr("eq_binary_link", mip.K(u.Name, t), c)

		c = m.AddConstr(mip.NewExpr().Add(1, swOn[t]).Add(1, swOff[t]), mip.LessEqual, 1)
		m.BindConstr("eq_switch_on_off", mip.K(u.Name, t), c)

		// Trailing-window minimum up/down times.
		up := mip.NewExpr().Add(-1, isOn[t])
		for i := lookbackStart(t, u.MinUptime); i <= t; i++ {
			up.Add(1, swOn[i])
		}
		c = m.AddConstr(up, mip.LessEqual, 0)
		m.BindConstr("eq_min_uptime", mip.K(u.Name, t), c)

		down := mip.NewExpr().Add(1, isOn[t])
		for i := lookbackStart(t, u.MinDowntime); i <= t; i++ {
			down.Add(1, swOff[i])
		}
		c = m.AddConstr(down, mip.LessEqual, 1)
		m.BindConstr("eq_min_downtime", mip.K(u.Name, t), c)
	}

	if !mustRun {
		// The initial status is binding: the remaining mandatory up-time
		// (or down-time) forbids any transition near the horizon start.
		if initOn {
			hold := initialHoldPeriods(u.MinUptime, *u.InitialStatus, T)
			if hold > 0 {
				e := mip.NewExpr()
				for t := 1; t <= hold; t++ {
					e.Add(1, swOff[t])
				}
				c := m.AddConstr(e, mip.Equal, 0)
				m.BindConstr("eq_initial_hold", mip.K(u.Name, 0), c)
			}
		} else {
			hold := initialHoldPeriods(u.MinDowntime, *u.InitialStatus, T)
			if hold > 0 {
				e := mip.NewExpr()
				for t := 1; t <= hold; t++ {
					e.Add(1, swOn[t])
				}
				c := m.AddConstr(e, mip.Equal, 0)
				m.BindConstr("eq_initial_hold", mip.K(u.Name, 0), c)
			}
		}

		// A unit still producing above its shutdown threshold cannot stop
		// in the first period.
		if initOn && *u.InitialPower > u.ShutdownLimit {
			c := m.AddConstr(mip.NewExpr().Add(1, swOff[1]), mip.Equal, 0)
			m.BindConstr("eq_shutdown_limit", mip.K(u.Name, 0), c)
		}
	}
}

// addDispatch creates the scenario-stage production structure of one unit and
// wires its contributions into the bus accumulators and the cost expression.
func (b *builder) addDispatch(sc *model.Scenario, u *model.ThermalUnit, weight float64) {
	m := b.model
	T := b.instance.Time
	cost := mip.NewExpr()

	prodAbove := make([]*mip.Var, T+1)
	reserve := make([]*mip.Var, T+1)

	for t := 1; t <= T; t++ {
		sk := mip.SK(sc.Name, u.Name, t)
		isOn := m.Var("is_on", mip.K(u.Name, t))

		prodAbove[t] = m.NewVar(0, mip.Inf, mip.Continuous)
		m.BindVar("prod_above", sk, prodAbove[t])

		if u.ProvidesSpinningReserves[t-1] {
			reserve[t] = m.NewVar(0, mip.Inf, mip.Continuous)
		} else {
			reserve[t] = m.NewFixedVar(0)
		}
		m.BindVar("reserve", sk, reserve[t])

		// Above-minimum production decomposes into the cost segments, each
		// capped by its width while the unit is on.
		def := mip.NewExpr().Add(1, prodAbove[t])
		for k, seg := range u.CostSegments {
			amount := seg.Amount[t-1]
			if amount < 0 {
				amount = 0
			}
			sp := m.NewVar(0, amount, mip.Continuous)
			m.BindVar("segprod", mip.SKSub(sc.Name, u.Name, t, k), sp)

			c := m.AddConstr(mip.NewExpr().Add(1, sp).Add(-amount, isOn), mip.LessEqual, 0)
			m.BindConstr("eq_segprod_limit", mip.SKSub(sc.Name, u.Name, t, k), c)

			def.Add(-1, sp)
			cost.Add(seg.Cost[t-1], sp)
		}
		c := m.AddConstr(def, mip.Equal, 0)
		m.BindConstr("eq_prod_above_def", sk, c)

		capacity := u.MaxPower[t-1] - u.MinPower[t-1]
		c = m.AddConstr(mip.NewExpr().
			Add(1, prodAbove[t]).Add(1, reserve[t]).Add(-capacity, isOn),
			mip.LessEqual, 0)
		m.BindConstr("eq_prod_limit", sk, c)

		cost.Add(u.MinPowerCost[t-1], isOn)
		for s, cat := range u.StartupCategories {
			cost.Add(cat.Cost, m.Var("startup", mip.KSub(u.Name, t, s)))
		}

		busKey := mip.SK(sc.Name, u.Bus.Name, t)
		m.Expr("injection", busKey).Add(1, prodAbove[t]).Add(u.MinPower[t-1], isOn)
		m.Expr("reserve_offered", busKey).Add(1, reserve[t])
	}

	b.addRamping(sc, u, prodAbove, reserve)
	b.registerCost(sc, u.Name, weight, cost)
}

// addRamping bounds the period-to-period production movement: ramp limits,
// startup/shutdown output caps and the initial-period rules derived from the
// pre-horizon operating point.
func (b *builder) addRamping(sc *model.Scenario, u *model.ThermalUnit, prodAbove, reserve []*mip.Var) {
	m := b.model
	T := b.instance.Time
	initOn := u.InitiallyOn()

	for t := 1; t <= T; t++ {
		sk := mip.SK(sc.Name, u.Name, t)
		isOn := m.Var("is_on", mip.K(u.Name, t))

		if !math.IsInf(u.RampUp, 1) {
			if t > 1 {
				e := mip.NewExpr().Add(1, prodAbove[t]).Add(1, reserve[t]).Add(-1, prodAbove[t-1])
				c := m.AddConstr(e, mip.LessEqual, u.RampUp)
				m.BindConstr("eq_ramp_up", sk, c)
			} else if initOn {
				e := mip.NewExpr().Add(1, prodAbove[1]).Add(1, reserve[1])
				rhs := u.RampUp + (*u.InitialPower - u.MinPower[0])
				c := m.AddConstr(e, mip.LessEqual, rhs)
				m.BindConstr("eq_ramp_up", sk, c)
			}
		}
		if !math.IsInf(u.RampDown, 1) {
			if t > 1 {
				e := mip.NewExpr().Add(1, prodAbove[t-1]).Add(-1, prodAbove[t])
				c := m.AddConstr(e, mip.LessEqual, u.RampDown)
				m.BindConstr("eq_ramp_down", sk, c)
			} else if initOn {
				e := mip.NewExpr().Add(-1, prodAbove[1])
				rhs := u.RampDown - (*u.InitialPower - u.MinPower[0])
				c := m.AddConstr(e, mip.LessEqual, rhs)
				m.BindConstr("eq_ramp_down", sk, c)
			}
		}

		capacity := u.MaxPower[t-1] - u.MinPower[t-1]
		if u.StartupLimit < u.MaxPower[t-1] {
			swOn := m.Var("switch_on", mip.K(u.Name, t))
			e := mip.NewExpr().
				Add(1, prodAbove[t]).Add(1, reserve[t]).
				Add(-capacity, isOn).
				Add(u.MaxPower[t-1]-u.StartupLimit, swOn)
			c := m.AddConstr(e, mip.LessEqual, 0)
			m.BindConstr("eq_startup_limit", sk, c)
		}
		if t < T && u.ShutdownLimit < u.MaxPower[t-1] {
			swOffNext := m.Var("switch_off", mip.K(u.Name, t+1))
			e := mip.NewExpr().
				Add(1, prodAbove[t]).Add(1, reserve[t]).
				Add(-capacity, isOn).
				Add(u.MaxPower[t-1]-u.ShutdownLimit, swOffNext)
			c := m.AddConstr(e, mip.LessEqual, 0)
			m.BindConstr("eq_shutdown_limit", sk, c)
		}
	}
}
