package recipe

import (
	"context"
	"errors"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	tt "github.com/gnolang/jmig/internal/types"
)

// Result is the outcome of one driver pass over a unit.
type Result struct {
	// Unit is the new revision when the report is StateModified, and the
	// unit that was passed in otherwise.
	Unit   *tt.CompilationUnit
	Report tt.Report
}

type Option func(*Driver)

// WithSkip sets a predicate for call sites that must be left alone even
// when they match.
func WithSkip(skip func(*tt.Invocation) bool) Option {
	return func(d *Driver) { d.skip = skip }
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithWorkers bounds the number of units RunAll processes at once.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// Driver applies one recipe to compilation units.
//
// Each unit moves Unvisited -> Scanned -> Modified|Unchanged. The driver
// keeps no state between units, so Run may be called concurrently.
type Driver struct {
	def      Definition
	matcher  *Matcher
	rewriter *Rewriter
	skip     func(*tt.Invocation) bool
	logger   *zap.Logger
	workers  int
}

func NewDriver(def Definition, opts ...Option) (*Driver, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		def:      def,
		matcher:  NewMatcher(def),
		rewriter: NewRewriter(def),
		logger:   zap.NewNop(),
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Driver) Definition() Definition { return d.def }

// Run migrates every matching call site of unit. The input unit is never
// modified; a Modified result carries a new revision.
func (d *Driver) Run(unit *tt.CompilationUnit) Result {
	report := tt.Report{
		Recipe:   d.def.Name,
		Filename: unit.Filename,
		State:    tt.StateUnvisited,
	}
	rev := unit.Clone()

	var plans []tt.RewritePlan
	for _, inv := range rev.Invocations {
		if !inv.Resolved {
			if d.matcher.IsCandidate(inv) {
				report.Unresolved++
				d.logger.Debug("unresolved call target",
					zap.String("file", unit.Filename),
					zap.Int("line", inv.Start.Line),
					zap.String("name", inv.Name))
			}
			continue
		}
		match, ok := d.matcher.Match(inv, rev)
		if !ok {
			continue
		}
		if d.skip != nil && d.skip(inv) {
			report.Suppressed++
			continue
		}
		plan, err := d.rewriter.Plan(rev, match)
		if err != nil {
			d.recordFailure(&report, inv, err)
			continue
		}
		plans = append(plans, plan)
	}
	report.State = tt.StateScanned

	plans = d.settleRemovals(rev, plans, &report)
	if len(plans) == 0 {
		report.State = tt.StateUnchanged
		return Result{Unit: unit, Report: report}
	}

	var removals, additions []tt.Import
	for _, p := range plans {
		if p.Remove != nil {
			removals = append(removals, *p.Remove)
		}
		if p.Add != nil {
			additions = append(additions, *p.Add)
		}
		rev.Edits = append(rev.Edits, p.Edits...)
		report.Migrated = append(report.Migrated, p.Invocation.Start)
	}

	importsChanged := Reconcile(rev, removals, additions)
	if !importsChanged && len(rev.Edits) == len(unit.Edits) {
		report.State = tt.StateUnchanged
		report.Migrated = nil
		return Result{Unit: unit, Report: report}
	}

	report.State = tt.StateModified
	report.Added, report.Removed = diffImports(unit.Imports, rev.Imports)
	report.Imports = append([]tt.Import(nil), rev.Imports...)
	report.Edits = append([]tt.Edit(nil), rev.Edits[len(unit.Edits):]...)
	return Result{Unit: rev, Report: report}
}

// RunAll runs the driver over units with a bounded pool of workers.
// Results are returned in the order of units.
func (d *Driver) RunAll(ctx context.Context, units []*tt.CompilationUnit) ([]Result, error) {
	results := make([]Result, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = d.Run(unit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// settleRemovals keeps a proposed removal only when every use of the
// imported name in the unit is among the migrated call sites. When the
// legacy import has to stay and the replacement would bind the same simple
// name, the call sites depending on it are dropped as conflicts.
func (d *Driver) settleRemovals(unit *tt.CompilationUnit, plans []tt.RewritePlan, report *tt.Report) []tt.RewritePlan {
	migrated := make(map[string]int)
	for _, p := range plans {
		if p.Remove != nil {
			migrated[p.Remove.String()]++
		}
	}

	kept := make([]tt.RewritePlan, 0, len(plans))
	for _, p := range plans {
		if p.Remove == nil {
			kept = append(kept, p)
			continue
		}
		rm := *p.Remove
		if unit.Usages[rm.SimpleName()] <= migrated[rm.String()] {
			kept = append(kept, p)
			continue
		}
		if p.Add != nil && p.Add.Static == rm.Static && p.Add.SimpleName() == rm.SimpleName() {
			d.recordFailure(report, p.Invocation, &tt.ConflictError{Wanted: *p.Add, Existing: rm.Name})
			continue
		}
		p.Remove = nil
		kept = append(kept, p)
	}
	return kept
}

func (d *Driver) recordFailure(report *tt.Report, inv *tt.Invocation, err error) {
	var conflict *tt.ConflictError
	switch {
	case errors.As(err, &conflict):
		report.Conflicts = append(report.Conflicts, tt.Conflict{
			Position: inv.Start,
			Wanted:   conflict.Wanted,
			Existing: conflict.Existing,
		})
		d.logger.Debug("call site left unchanged",
			zap.String("file", report.Filename),
			zap.Int("line", inv.Start.Line),
			zap.Error(err))
	case errors.Is(err, tt.ErrUnresolvedTarget):
		report.Unresolved++
	default:
		d.logger.Warn("cannot plan rewrite",
			zap.String("file", report.Filename),
			zap.Int("line", inv.Start.Line),
			zap.Error(err))
	}
}

func diffImports(before, after []tt.Import) (added, removed []tt.Import) {
	for _, imp := range after {
		if !containsImport(before, imp) {
			added = append(added, imp)
		}
	}
	for _, imp := range before {
		if !containsImport(after, imp) {
			removed = append(removed, imp)
		}
	}
	return added, removed
}
