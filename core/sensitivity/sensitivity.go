// Package sensitivity computes the linearized network sensitivities consumed
// by the transmission constraints: injection shift factors (ISF) and line
// outage distribution factors (LODF) under the DC power-flow approximation.
//
// The first bus of the scenario is the reference (slack) bus; its ISF column
// is identically zero and it implicitly absorbs the injection balance.
package sensitivity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/scuc/core/model"
)

// Domain-tuned default cutoffs. Entries below the cutoff are zeroed, which
// bounds model density at the cost of a small physical inaccuracy.
const (
	DefaultISFCutoff  = 0.005
	DefaultLODFCutoff = 0.001
)

// An outage that islands the network produces no meaningful redistribution;
// denominators this close to zero identify such bridge lines.
const bridgeTol = 1e-6

// Config controls the thresholding applied to both matrices. Zero values
// select the defaults.
type Config struct {
	ISFCutoff  float64 `json:"isf_cutoff"`
	LODFCutoff float64 `json:"lodf_cutoff"`
}

func (c Config) withDefaults() Config {
	if c.ISFCutoff == 0 {
		c.ISFCutoff = DefaultISFCutoff
	}
	if c.LODFCutoff == 0 {
		c.LODFCutoff = DefaultLODFCutoff
	}
	return c
}

// Matrices holds the computed factors. ISF rows are monitored lines and
// columns buses: MW of flow per MW injected. LODF rows are monitored lines
// and columns outaged lines: the fraction of the outaged line's pre-contingency
// flow picked up by the monitored line. Both are read-only once computed.
type Matrices struct {
	ISF  *mat.Dense
	LODF *mat.Dense
}

// Empty reports whether the matrices carry no transmission information, the
// degenerate case of a single-bus or line-less network.
func (m *Matrices) Empty() bool {
	if m == nil || m.ISF == nil {
		return true
	}
	r, c := m.ISF.Dims()
	return r == 0 || c == 0
}

// Compute derives both matrices from the network topology. Flow on a line is
// positive in the source-to-target direction.
func Compute(lines []*model.TransmissionLine, buses []*model.Bus, cfg Config) (*Matrices, error) {
	cfg = cfg.withDefaults()
	nl, nb := len(lines), len(buses)
	if nl == 0 || nb <= 1 {
		return &Matrices{ISF: &mat.Dense{}, LODF: &mat.Dense{}}, nil
	}

	busIdx := make(map[string]int, nb)
	for i, b := range buses {
		busIdx[b.Name] = i
	}

	// Reduced susceptance matrix (slack row/column dropped) and the
	// branch-side product diag(b) * A without the slack column.
	bTilde := mat.NewDense(nb-1, nb-1, nil)
	rhs := mat.NewDense(nb-1, nl, nil)
	for l, line := range lines {
		b := 1 / line.Reactance
		from, ok := busIdx[line.Source.Name]
		if !ok {
			return nil, fmt.Errorf("line %s: source bus %s not in scenario", line.Name, line.Source.Name)
		}
		to, ok := busIdx[line.Target.Name]
		if !ok {
			return nil, fmt.Errorf("line %s: target bus %s not in scenario", line.Name, line.Target.Name)
		}
		if from == to {
			return nil, fmt.Errorf("line %s: both endpoints are bus %s", line.Name, line.Source.Name)
		}
		if from != 0 {
			bTilde.Set(from-1, from-1, bTilde.At(from-1, from-1)+b)
			rhs.Set(from-1, l, rhs.At(from-1, l)+b)
		}
		if to != 0 {
			bTilde.Set(to-1, to-1, bTilde.At(to-1, to-1)+b)
			rhs.Set(to-1, l, rhs.At(to-1, l)-b)
		}
		if from != 0 && to != 0 {
			bTilde.Set(from-1, to-1, bTilde.At(from-1, to-1)-b)
			bTilde.Set(to-1, from-1, bTilde.At(to-1, from-1)-b)
		}
	}

	// bTilde * y = rhs, so y holds the transposed shift factors for the
	// non-slack buses.
	var y mat.Dense
	if err := y.Solve(bTilde, rhs); err != nil {
		return nil, fmt.Errorf("susceptance matrix is singular (disconnected network?): %w", err)
	}

	isf := mat.NewDense(nl, nb, nil)
	for l := 0; l < nl; l++ {
		for j := 1; j < nb; j++ {
			isf.Set(l, j, y.At(j-1, l))
		}
	}

	// LODF is derived from the unthresholded factors; each matrix is then
	// cut off independently.
	lodf := computeLODF(lines, busIdx, isf, cfg.LODFCutoff)
	applyCutoff(isf, cfg.ISFCutoff)
	return &Matrices{ISF: isf, LODF: lodf}, nil
}

// computeLODF derives outage factors from the shift factors. For the outage
// of line k, PTDF(l,k) is the flow induced on l by a unit transfer across k's
// endpoints; the post-contingency redistribution follows from the standard
// 1-PTDF(k,k) denominator.
func computeLODF(lines []*model.TransmissionLine, busIdx map[string]int, isf *mat.Dense, cutoff float64) *mat.Dense {
	nl := len(lines)
	lodf := mat.NewDense(nl, nl, nil)
	for k, out := range lines {
		from := busIdx[out.Source.Name]
		to := busIdx[out.Target.Name]
		denom := 1 - (isf.At(k, from) - isf.At(k, to))
		for l := 0; l < nl; l++ {
			if l == k {
				lodf.Set(l, k, -1)
				continue
			}
			if math.Abs(denom) < bridgeTol {
				continue
			}
			v := (isf.At(l, from) - isf.At(l, to)) / denom
			if math.Abs(v) < cutoff {
				v = 0
			}
			lodf.Set(l, k, v)
		}
	}
	return lodf
}

func applyCutoff(m *mat.Dense, cutoff float64) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(m.At(i, j)) < cutoff {
				m.Set(i, j, 0)
			}
		}
	}
}
