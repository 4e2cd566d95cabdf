package mip

import "sort"

// Expr is a linear expression: a sum of coefficient*variable terms plus a
// constant offset. The zero-term expression is valid and equals its offset.
type Expr struct {
	terms  map[*Var]float64
	offset float64
}

// NewExpr returns an empty expression.
func NewExpr() *Expr {
	return &Expr{terms: make(map[*Var]float64)}
}

// Add accumulates coef*v into the expression and returns it for chaining.
// Terms whose coefficient cancels to zero are kept; callers relying on
// sparsity should not add them in the first place.
func (e *Expr) Add(coef float64, v *Var) *Expr {
	e.terms[v] += coef
	return e
}

// AddConstant accumulates a constant into the expression.
func (e *Expr) AddConstant(c float64) *Expr {
	e.offset += c
	return e
}

// AddExpr accumulates coef*o into the expression, offset included.
func (e *Expr) AddExpr(coef float64, o *Expr) *Expr {
	for v, c := range o.terms {
		e.terms[v] += coef * c
	}
	e.offset += coef * o.offset
	return e
}

// Coefficient returns the coefficient of v, zero when absent.
func (e *Expr) Coefficient(v *Var) float64 {
	return e.terms[v]
}

// Offset returns the constant part of the expression.
func (e *Expr) Offset() float64 {
	return e.offset
}

// Copy returns an independent copy of the expression.
func (e *Expr) Copy() *Expr {
	c := &Expr{terms: make(map[*Var]float64, len(e.terms)), offset: e.offset}
	for v, coef := range e.terms {
		c.terms[v] = coef
	}
	return c
}

// Term is one coefficient-variable pair of an expression.
type Term struct {
	Var  *Var
	Coef float64
}

// Terms returns the expression's terms ordered by variable index, which keeps
// emitted models and tests deterministic.
func (e *Expr) Terms() []Term {
	out := make([]Term, 0, len(e.terms))
	for v, c := range e.terms {
		out = append(out, Term{Var: v, Coef: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var.Index < out[j].Var.Index })
	return out
}

// Len returns the number of terms.
func (e *Expr) Len() int {
	return len(e.terms)
}
