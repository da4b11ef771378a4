package processor

import (
	"errors"
	"go/types"

	"github.com/brsample/remoteresource"
)

// Outcome is the result category of validating one marked declaration.
type Outcome int

const (
	// OutcomeArtifact means the declaration passed validation; its
	// container is eligible for emission.
	OutcomeArtifact Outcome = iota
	// OutcomeDiagnostic means the declaration failed validation and a
	// diagnostic was reported for it.
	OutcomeDiagnostic
	// OutcomeDeferred means validation could not complete because a type
	// is not resolvable yet.
	OutcomeDeferred
)

func (o Outcome) String() string {
	switch o {
	case OutcomeArtifact:
		return "artifact"
	case OutcomeDiagnostic:
		return "diagnostic"
	case OutcomeDeferred:
		return "deferred"
	}
	return "unknown"
}

// Result is what Validator.Process produces for a declaration.
type Result struct {
	Outcome Outcome
	// Type is the resolved type of the declaration. It is nil when the
	// outcome is OutcomeDeferred.
	Type types.Type
	// Diagnostic is set when the outcome is OutcomeDiagnostic.
	Diagnostic *Diagnostic
}

// Validator checks marked declarations against the configured type
// constraint. A Validator holds no state across declarations.
type Validator struct {
	cfg      Config
	graph    SymbolGraph
	reporter Reporter
}

// NewValidator creates a validator that resolves types with the given graph
// and reports diagnostics to the given reporter, which may be nil.
func NewValidator(cfg Config, graph SymbolGraph, reporter Reporter) *Validator {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Validator{cfg: cfg, graph: graph, reporter: reporter}
}

// Process validates a single declaration that carries the marker annotation.
//
// The declaration is deferred if its own type, or the type of any property of
// its container, is not resolvable yet: the container's properties all become
// parameters of the generated function, so they must all be known. Otherwise,
// the declaration's type must be in the allow-list or an error diagnostic is
// reported.
func (v *Validator) Process(d *Declaration) Result {
	if d.Type == nil {
		diag := reportError(v.reporter, d, "%s has no type", d.Name)
		return Result{Outcome: OutcomeDiagnostic, Diagnostic: &diag}
	}
	t, err := v.graph.ResolveType(d.Type)
	if errors.Is(err, ErrResolutionPending) {
		return Result{Outcome: OutcomeDeferred}
	} else if err != nil {
		diag := reportError(v.reporter, d, "cannot resolve type of %s: %v", d.Name, err)
		return Result{Outcome: OutcomeDiagnostic, Diagnostic: &diag}
	}

	if d.Container == nil {
		diag := reportError(v.reporter, d, "@%s must be used on a property of a named type", v.cfg.MarkerShortName())
		return Result{Outcome: OutcomeDiagnostic, Type: t, Diagnostic: &diag}
	}
	for _, m := range v.graph.Members(d.Container) {
		if m == d || m.Kind != remoteresource.KindProperty {
			continue
		}
		if _, err := v.graph.ResolveType(m.Type); errors.Is(err, ErrResolutionPending) {
			return Result{Outcome: OutcomeDeferred}
		}
	}

	if !v.cfg.IsAllowed(types.TypeString(t, nil)) {
		diag := reportError(v.reporter, d, "Only %s is supported for @%s Annotation",
			v.cfg.AllowedDescription(), v.cfg.MarkerShortName())
		return Result{Outcome: OutcomeDiagnostic, Type: t, Diagnostic: &diag}
	}
	return Result{Outcome: OutcomeArtifact, Type: t}
}
