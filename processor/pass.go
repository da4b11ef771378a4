package processor

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"log/slog"

	"github.com/brsample/remoteresource/parser"
)

var discardLogger = slog.New(slog.DiscardHandler)

// Environment is what a host hands to a processor when creating it. The pass
// captures nothing from global state: everything it reports or writes goes
// through these handles.
type Environment struct {
	// Options configure the processor. See ParseConfig for the keys
	// understood by the remote resource pass.
	Options map[string]string
	// Reporter receives diagnostics. If nil, diagnostics are dropped.
	Reporter Reporter
	// Output opens generated files. It is required.
	Output OutputFactory
	// Logger receives progress messages. If nil, nothing is logged.
	Logger *slog.Logger
}

// SymbolProcessor processes one round of a symbol graph. It returns the
// declarations that it could not process yet, so that the host can decide to
// run another round.
type SymbolProcessor interface {
	Process(graph SymbolGraph) ([]*Declaration, error)
}

// Provider creates a SymbolProcessor for the given environment. Providers are
// registered with RegisterProvider so that hosts can discover them.
type Provider func(env Environment) (SymbolProcessor, error)

// NewProvider returns the Provider for the remote resource pass.
func NewProvider() Provider {
	return func(env Environment) (SymbolProcessor, error) {
		p, err := NewPass(env)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Pass is the remote resource pass. It finds properties annotated with the
// marker, validates their types and generates one function per enclosing
// type.
type Pass struct {
	cfg      Config
	reporter Reporter
	output   OutputFactory
	logger   *slog.Logger
}

// NewPass validates the environment's options and creates a pass. Invalid
// options result in a *ConfigurationError.
func NewPass(env Environment) (*Pass, error) {
	cfg, err := ParseConfig(env.Options)
	if err != nil {
		return nil, err
	}
	if env.Output == nil {
		return nil, &ConfigurationError{Err: errors.New("no output factory configured")}
	}
	p := &Pass{cfg: cfg, reporter: env.Reporter, output: env.Output, logger: env.Logger}
	if p.reporter == nil {
		p.reporter = nopReporter{}
	}
	if p.logger == nil {
		p.logger = discardLogger
	}
	return p, nil
}

// Config returns the pass's validated configuration.
func (p *Pass) Config() Config {
	return p.cfg
}

// RunResult is the outcome of one run of a pass.
type RunResult struct {
	// Deferred holds the marked declarations whose validation could not
	// complete, in scan order.
	Deferred []*Declaration
	// Artifacts holds the artifacts that were successfully written, in order
	// of the first appearance of their containers.
	Artifacts []*Artifact
}

// Process implements SymbolProcessor.
func (p *Pass) Process(graph SymbolGraph) ([]*Declaration, error) {
	res, err := p.Run(graph)
	if res == nil {
		return nil, err
	}
	return res.Deferred, err
}

type containerState struct {
	container *Declaration
	validated bool
	deferred  bool
}

// Run runs the pass over the given graph.
//
// Configuration problems in marker arguments (an invalid or conflicting Name)
// are detected before anything is validated or written and are returned as a
// *ConfigurationError with a nil result.
//
// Type constraint violations are reported as diagnostics and do not stop the
// pass. A generated file that cannot be written is also reported, and the
// returned error wraps an *OutputError for each such file; all other files are
// still written. The result is non-nil in that case.
func (p *Pass) Run(graph SymbolGraph) (*RunResult, error) {
	marked, err := scan(graph, p.cfg.Marker, p.logger)
	if err != nil {
		return nil, err
	}
	names, err := p.functionNames(marked)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("scanned declarations", slog.String("marker", p.cfg.Marker), slog.Int("count", len(marked)))

	v := NewValidator(p.cfg, graph, p.reporter)
	res := &RunResult{}
	var order []*containerState
	states := map[*Declaration]*containerState{}
	for _, d := range marked {
		st := states[d.Container]
		if st == nil && d.Container != nil {
			st = &containerState{container: d.Container}
			states[d.Container] = st
			order = append(order, st)
		}
		r := v.Process(d)
		p.logger.Debug("processed declaration", slog.String("decl", d.QualifiedName()), slog.String("outcome", r.Outcome.String()))
		switch r.Outcome {
		case OutcomeArtifact:
			st.validated = true
		case OutcomeDeferred:
			res.Deferred = append(res.Deferred, d)
			if st != nil {
				st.deferred = true
			}
		}
	}

	var errs []error
	for _, st := range order {
		if !st.validated || st.deferred {
			continue
		}
		a, err := newArtifact(graph, st.container, names[st.container])
		if err != nil {
			reportError(p.reporter, st.container, "cannot generate %s: %v", names[st.container], err)
			continue
		}
		if err := a.write(p.output); err != nil {
			reportError(p.reporter, st.container, "%v", err)
			errs = append(errs, err)
			continue
		}
		p.logger.Info("generated function",
			slog.String("function", a.Name),
			slog.String("path", a.Path),
			slog.Int("params", len(a.Params)))
		res.Artifacts = append(res.Artifacts, a)
	}
	return res, errors.Join(errs...)
}

// functionNames computes the name of the generated function for every
// container of a marked declaration, checking the marker arguments. Two
// containers of a package may share neither a function name nor a generated
// file.
func (p *Pass) functionNames(marked []*Declaration) (map[*Declaration]string, error) {
	names := map[*Declaration]string{}
	explicit := map[*Declaration]AnnotationArg{}
	var containers []*Declaration
	for _, d := range marked {
		if d.Container == nil {
			continue
		}
		if _, ok := names[d.Container]; !ok {
			names[d.Container] = defaultFunctionName(d.Container.Name)
			containers = append(containers, d.Container)
		}
		anno, _ := d.Annotation(p.cfg.Marker)
		arg, ok := anno.Arg("Name")
		if !ok {
			continue
		}
		name, err := p.checkNameArg(anno, arg)
		if err != nil {
			return nil, err
		}
		if prev, ok := explicit[d.Container]; ok && prev.Value.Str != name {
			return nil, configErrorf("Name", arg.Pos, "conflicting names %q and %q for %s (first given at %s)",
				prev.Value.Str, name, d.Container.Name, prev.Pos)
		}
		explicit[d.Container] = arg
		names[d.Container] = name
	}

	type pkgFunc struct{ pkg, name string }
	seen := map[pkgFunc]*Declaration{}
	files := map[string]*Declaration{}
	for _, c := range containers {
		file := artifactPath(c)
		if other, ok := files[file]; ok {
			return nil, configErrorf("", c.Pos, "%s and %s would both be generated into %s",
				other.Name, c.Name, file)
		}
		files[file] = c

		key := pkgFunc{pkg: c.Package.Path, name: names[c]}
		if other, ok := seen[key]; ok {
			pos := c.Pos
			if arg, ok := explicit[c]; ok {
				pos = arg.Pos
			}
			return nil, configErrorf("Name", pos, "function %s would be generated for both %s and %s",
				names[c], other.Name, c.Name)
		}
		seen[key] = c
	}
	return names, nil
}

func (p *Pass) checkNameArg(anno AnnotationMirror, arg AnnotationArg) (string, error) {
	if arg.Value.Kind != parser.KindString {
		return "", configErrorf("Name", arg.Pos, "@%s name must be a string, got %s %s",
			anno.ShortName(), arg.Value.Kind, arg.Value.Raw)
	}
	name := arg.Value.Str
	if !token.IsIdentifier(name) {
		return "", configErrorf("Name", arg.Pos, "@%s name %q is not a valid Go identifier", anno.ShortName(), name)
	}
	return name, nil
}

// RunProviders creates a processor from each provider and runs it over the
// graph, in order. Deferred declarations of all processors are returned
// together. The first error stops processing.
func RunProviders(ctx context.Context, env Environment, graph SymbolGraph, providers ...Provider) ([]*Declaration, error) {
	var deferred []*Declaration
	for _, prov := range providers {
		if err := ctx.Err(); err != nil {
			return deferred, err
		}
		proc, err := prov(env)
		if err != nil {
			return deferred, err
		}
		d, err := proc.Process(graph)
		deferred = append(deferred, d...)
		if err != nil {
			return deferred, fmt.Errorf("processor failed: %w", err)
		}
	}
	return deferred, nil
}
