package mip

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// WriteLP emits the model in CPLEX LP format so that any external solver can
// consume it. Unnamed variables and constraints get positional fallback names
// (x0, c0, ...); run ApplyNames first for diagnostic output.
func (m *Model) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ build %s\n", m.BuildID)
	fmt.Fprintln(bw, "Minimize")
	fmt.Fprint(bw, " obj:")
	writeExpr(bw, m.obj)
	if m.obj.Offset() != 0 {
		fmt.Fprintf(bw, " %+g", m.obj.Offset())
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for _, c := range m.constrs {
		fmt.Fprintf(bw, " %s:", constrName(c))
		writeExpr(bw, c.Expr)
		// Constants move to the right-hand side.
		fmt.Fprintf(bw, " %s %g\n", c.Sense, c.RHS-c.Expr.Offset())
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range m.vars {
		name := varName(v)
		switch {
		case v.IsFixed():
			fmt.Fprintf(bw, " %s = %g\n", name, v.Lower)
		case math.IsInf(v.Lower, -1) && math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s free\n", name)
		case math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s >= %g\n", name, v.Lower)
		case math.IsInf(v.Lower, -1):
			fmt.Fprintf(bw, " %s <= %g\n", name, v.Upper)
		default:
			fmt.Fprintf(bw, " %g <= %s <= %g\n", v.Lower, name, v.Upper)
		}
	}

	if m.NumBinaries() > 0 {
		fmt.Fprintln(bw, "Binaries")
		for _, v := range m.vars {
			if v.Type == Binary {
				fmt.Fprintf(bw, " %s\n", varName(v))
			}
		}
	}
	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeExpr(w io.Writer, e *Expr) {
	for _, t := range e.Terms() {
		fmt.Fprintf(w, " %+g %s", t.Coef, varName(t.Var))
	}
}

func varName(v *Var) string {
	if v.Name != "" {
		return sanitize(v.Name)
	}
	return fmt.Sprintf("x%d", v.Index)
}

func constrName(c *Constr) string {
	if c.Name != "" {
		return sanitize(c.Name)
	}
	return fmt.Sprintf("c%d", c.Index)
}

// sanitize replaces characters the LP format reserves.
func sanitize(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '[', ']', ',', '+', '-', '*', '^', ':':
			out[i] = '_'
		default:
			out[i] = s[i]
		}
	}
	return string(out)
}
