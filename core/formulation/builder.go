// Package formulation turns a power-system instance into a mixed-integer
// linear program: the security-constrained unit-commitment model with
// transmission, contingency and reserve constraints.
//
// The build is a deterministic single-threaded traversal of the instance. It
// never mutates its input; the only shared state is the arena under
// construction, exclusively owned by the calling goroutine.
package formulation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/scuc/core/logger"
	"github.com/kilianp07/scuc/core/metrics"
	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
	"github.com/kilianp07/scuc/core/sensitivity"
)

// Options configures one formulation run.
type Options struct {
	// Sensitivity sets the ISF/LODF cutoffs; zero values pick the defaults.
	Sensitivity sensitivity.Config
	// Precomputed supplies ready-made sensitivity matrices per scenario name,
	// skipping recomputation on repeated re-solves. Supplied matrices are
	// treated as read-only.
	Precomputed map[string]*sensitivity.Matrices
	// Naming assigns diagnostic names to every variable and constraint.
	// Costly on large models, so off by default.
	Naming  bool
	Logger  logger.Logger
	Metrics metrics.BuildSink
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// Build formulates the instance as a MILP. Configuration errors (invalid
// series lengths, missing initial conditions, partially must-run units) are
// reported before any variable is created; a returned model is always
// complete and structurally feasible thanks to the curtailment and overflow
// relaxation variables.
func Build(in *model.Instance, opts Options) (*mip.Model, error) {
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}
	sink := opts.Metrics
	if sink == nil {
		sink = metrics.NopSink{}
	}

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance: %w", err)
	}

	start := time.Now()
	m := mip.New()
	m.BuildID = uuid.NewString()
	log.Infof("building model %s: %d scenario(s), %d period(s)", m.BuildID, len(in.Scenarios), in.Time)

	var total float64
	for _, sc := range in.Scenarios {
		total += scenarioWeight(sc)
	}

	b := &builder{model: m, instance: in, log: log, units: make(map[string]bool)}
	for _, sc := range in.Scenarios {
		weight := scenarioWeight(sc) / total
		if err := b.addScenario(sc, weight, opts); err != nil {
			return nil, err
		}
	}
	b.assembleObjective()

	if opts.Naming {
		m.ApplyNames()
	}

	elapsed := time.Since(start)
	log.Infof("model %s built: %d variables (%d binary), %d constraints in %s",
		m.BuildID, m.NumVars(), m.NumBinaries(), m.NumConstrs(), elapsed)

	ev := metrics.BuildEvent{
		BuildID:     m.BuildID,
		Scenarios:   len(in.Scenarios),
		Variables:   m.NumVars(),
		Constraints: m.NumConstrs(),
		Duration:    elapsed,
		Time:        time.Now(),
	}
	for _, sc := range in.Scenarios {
		ev.Buses += len(sc.Buses)
		ev.Lines += len(sc.Lines)
		ev.Units += len(sc.Units)
	}
	if err := sink.RecordBuild(ev); err != nil {
		log.Warnf("record build metrics: %v", err)
	}
	return m, nil
}

func scenarioWeight(sc *model.Scenario) float64 {
	if sc.Probability > 0 {
		return sc.Probability
	}
	return 1
}

// builder carries the in-progress model through the per-scenario passes.
type builder struct {
	model    *mip.Model
	instance *model.Instance
	log      logger.Logger
	// units tracks which unit names already own first-stage commitment
	// variables; units sharing a name across scenarios share commitment.
	units map[string]bool
	// costs collects per-entity objective contributions in build order.
	costs []weightedCost
}

type weightedCost struct {
	weight float64
	expr   *mip.Expr
}

func (b *builder) addScenario(sc *model.Scenario, weight float64, opts Options) error {
	matrices := opts.Precomputed[sc.Name]
	if matrices == nil {
		var err error
		matrices, err = sensitivity.Compute(sc.Lines, sc.Buses, opts.Sensitivity)
		if err != nil {
			return fmt.Errorf("scenario %s: sensitivity factors: %w", sc.Name, err)
		}
	}
	b.log.Debugw("scenario pass", map[string]any{
		"scenario":    sc.Name,
		"weight":      weight,
		"sensitivity": map[bool]string{true: "empty", false: "computed"}[matrices.Empty()],
	})

	for _, bus := range sc.Buses {
		b.addBus(sc, bus, weight)
	}
	for _, load := range sc.Loads {
		b.addPriceSensitiveLoad(sc, load, weight)
	}
	for _, u := range sc.Units {
		if err := b.addThermalUnit(sc, u, weight); err != nil {
			return err
		}
	}
	b.addSystemConstraints(sc)
	b.addLines(sc, matrices, weight)

	b.log.Debugw("scenario built", map[string]any{
		"scenario":    sc.Name,
		"variables":   b.model.NumVars(),
		"constraints": b.model.NumConstrs(),
	})
	return nil
}

// registerCost binds a per-entity cost expression in the arena and queues it
// for the objective assembly.
func (b *builder) registerCost(sc *model.Scenario, entity string, weight float64, cost *mip.Expr) {
	b.model.SetExpr("cost", mip.Key{Scenario: sc.Name, Entity: entity, Sub: -1}, cost)
	b.costs = append(b.costs, weightedCost{weight: weight, expr: cost})
}

// assembleObjective sums every registered cost contribution, scenario weights
// applied, into the single minimized expression. Nothing is re-derived here.
func (b *builder) assembleObjective() {
	obj := b.model.Objective()
	for _, c := range b.costs {
		obj.AddExpr(c.weight, c.expr)
	}
}
