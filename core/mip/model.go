// Package mip holds the mixed-integer linear program under construction:
// variables, linear expressions, constraints and the objective, all reachable
// through group names and composite keys. The arena is the stable interface
// between the formulation engine and its downstream consumers (solution
// extraction, price computation, decomposition drivers).
package mip

import (
	"fmt"
	"math"
	"strings"
)

// VarType distinguishes continuous from binary decision variables.
type VarType int

const (
	Continuous VarType = iota
	Binary
)

// Var is a single decision variable. Index is its column position, assigned
// in creation order. Name stays empty unless the diagnostic naming pass runs.
type Var struct {
	Index int
	Lower float64
	Upper float64
	Type  VarType
	Name  string
}

// IsFixed reports whether the bounds pin the variable to a single value.
func (v *Var) IsFixed() bool {
	return v.Lower == v.Upper
}

// Sense is the relational operator of a constraint.
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	default:
		return ">="
	}
}

// Constr is a linear constraint Expr (Sense) RHS.
type Constr struct {
	Index int
	Expr  *Expr
	Sense Sense
	RHS   float64
	Name  string
}

// Key addresses a variable, expression or constraint inside a group.
// Scenario is empty for first-stage (scenario-independent) objects, Period is
// 1-based and Sub is -1 when the group has no sub-index.
type Key struct {
	Scenario string
	Entity   string
	Period   int
	Sub      int
}

// K builds a first-stage key without sub-index.
func K(entity string, period int) Key {
	return Key{Entity: entity, Period: period, Sub: -1}
}

// KSub builds a first-stage key with a sub-index.
func KSub(entity string, period, sub int) Key {
	return Key{Entity: entity, Period: period, Sub: sub}
}

// SK builds a scenario-stage key without sub-index.
func SK(scenario, entity string, period int) Key {
	return Key{Scenario: scenario, Entity: entity, Period: period, Sub: -1}
}

// SKSub builds a scenario-stage key with a sub-index.
func SKSub(scenario, entity string, period, sub int) Key {
	return Key{Scenario: scenario, Entity: entity, Period: period, Sub: sub}
}

// Model is the arena owning every object of the formulation in progress.
// It is exclusively owned by the building goroutine; no internal locking.
type Model struct {
	// BuildID correlates log lines and metrics of one formulation run.
	BuildID string

	vars    []*Var
	constrs []*Constr
	obj     *Expr

	varGroups    map[string]map[Key]*Var
	exprGroups   map[string]map[Key]*Expr
	constrGroups map[string]map[Key]*Constr
}

// New returns an empty model.
func New() *Model {
	return &Model{
		obj:          NewExpr(),
		varGroups:    make(map[string]map[Key]*Var),
		exprGroups:   make(map[string]map[Key]*Expr),
		constrGroups: make(map[string]map[Key]*Constr),
	}
}

// NewVar creates a variable with the given bounds and type.
func (m *Model) NewVar(lower, upper float64, vt VarType) *Var {
	v := &Var{Index: len(m.vars), Lower: lower, Upper: upper, Type: vt}
	m.vars = append(m.vars, v)
	return v
}

// NewFixedVar creates a variable pinned to a constant value. Fixed variables
// keep the arena uniform for must-run units without entering the binary
// decision set.
func (m *Model) NewFixedVar(value float64) *Var {
	return m.NewVar(value, value, Continuous)
}

// BindVar registers v in the named group under k.
func (m *Model) BindVar(group string, k Key, v *Var) {
	g, ok := m.varGroups[group]
	if !ok {
		g = make(map[Key]*Var)
		m.varGroups[group] = g
	}
	g[k] = v
}

// Var returns the variable bound under (group, k), or nil.
func (m *Model) Var(group string, k Key) *Var {
	return m.varGroups[group][k]
}

// Vars returns the full group map, nil when the group does not exist. The
// returned map is the arena's own; callers must treat it as read-only.
func (m *Model) Vars(group string) map[Key]*Var {
	return m.varGroups[group]
}

// SetExpr registers e in the named group under k, replacing any previous
// binding.
func (m *Model) SetExpr(group string, k Key, e *Expr) {
	g, ok := m.exprGroups[group]
	if !ok {
		g = make(map[Key]*Expr)
		m.exprGroups[group] = g
	}
	g[k] = e
}

// Expr returns the expression bound under (group, k), or nil.
func (m *Model) Expr(group string, k Key) *Expr {
	return m.exprGroups[group][k]
}

// AddConstr creates a constraint from the expression, sense and right-hand
// side.
func (m *Model) AddConstr(e *Expr, sense Sense, rhs float64) *Constr {
	c := &Constr{Index: len(m.constrs), Expr: e, Sense: sense, RHS: rhs}
	m.constrs = append(m.constrs, c)
	return c
}

// BindConstr registers c in the named group under k.
func (m *Model) BindConstr(group string, k Key, c *Constr) {
	g, ok := m.constrGroups[group]
	if !ok {
		g = make(map[Key]*Constr)
		m.constrGroups[group] = g
	}
	g[k] = c
}

// Constr returns the constraint bound under (group, k), or nil. Price
// computation uses this to reach the power balance rows by (bus, period).
func (m *Model) Constr(group string, k Key) *Constr {
	return m.constrGroups[group][k]
}

// Constrs returns the full constraint group map, nil when absent.
func (m *Model) Constrs(group string) map[Key]*Constr {
	return m.constrGroups[group]
}

// Objective returns the expression minimized by the solver. Builders
// accumulate cost terms into it directly.
func (m *Model) Objective() *Expr {
	return m.obj
}

// AllVars returns the variables in creation order.
func (m *Model) AllVars() []*Var {
	return m.vars
}

// AllConstrs returns the constraints in creation order.
func (m *Model) AllConstrs() []*Constr {
	return m.constrs
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstrs returns the number of constraints.
func (m *Model) NumConstrs() int { return len(m.constrs) }

// NumBinaries counts the binary variables.
func (m *Model) NumBinaries() int {
	n := 0
	for _, v := range m.vars {
		if v.Type == Binary {
			n++
		}
	}
	return n
}

// ApplyNames assigns a diagnostic name of the form group[entity,period,...]
// to every bound variable and constraint. This walks every group, so it is
// only run on request.
func (m *Model) ApplyNames() {
	for group, g := range m.varGroups {
		for k, v := range g {
			v.Name = formatName(group, k)
		}
	}
	for group, g := range m.constrGroups {
		for k, c := range g {
			c.Name = formatName(group, k)
		}
	}
}

func formatName(group string, k Key) string {
	parts := make([]string, 0, 4)
	if k.Scenario != "" {
		parts = append(parts, k.Scenario)
	}
	if k.Entity != "" {
		parts = append(parts, k.Entity)
	}
	if k.Period > 0 {
		parts = append(parts, fmt.Sprintf("%d", k.Period))
	}
	if k.Sub >= 0 {
		parts = append(parts, fmt.Sprintf("%d", k.Sub))
	}
	return fmt.Sprintf("%s[%s]", group, strings.Join(parts, ","))
}

// Inf is the bound used for unbounded variables.
var Inf = math.Inf(1)
