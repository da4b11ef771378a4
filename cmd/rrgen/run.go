package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"github.com/brsample/remoteresource/gohost"
	"github.com/brsample/remoteresource/processor"
)

// settings is the merged result of rrgen.toml and command-line flags.
type settings struct {
	patterns  []string
	tests     bool
	outputDir string
	outputURL string
	maxRounds int
	parallel  int
	options   map[string]string
}

func resolveSettings(cmd *cobra.Command, args []string) (settings, error) {
	f := cmd.Flags()
	s := settings{patterns: []string{"./..."}, maxRounds: 3, options: map[string]string{}}

	cfgPath, err := f.GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	if cfgPath == "" {
		path, ok, err := findConfig(".")
		if err != nil {
			return s, err
		}
		if ok {
			cfgPath = path
		}
	}
	if cfgPath != "" {
		fc, err := loadConfig(cfgPath)
		if err != nil {
			return s, err
		}
		s.applyFile(fc)
	}

	if len(args) > 0 {
		s.patterns = args
	}
	if f.Changed("tests") {
		if s.tests, err = f.GetBool("tests"); err != nil {
			return s, fmt.Errorf("failed to get tests flag: %w", err)
		}
	}
	if f.Changed("output-dir") {
		if s.outputDir, err = f.GetString("output-dir"); err != nil {
			return s, fmt.Errorf("failed to get output-dir flag: %w", err)
		}
	}
	if f.Changed("output-url") {
		if s.outputURL, err = f.GetString("output-url"); err != nil {
			return s, fmt.Errorf("failed to get output-url flag: %w", err)
		}
	}
	if f.Changed("max-rounds") {
		if s.maxRounds, err = f.GetInt("max-rounds"); err != nil {
			return s, fmt.Errorf("failed to get max-rounds flag: %w", err)
		}
	}
	if f.Changed("parallel") {
		if s.parallel, err = f.GetInt("parallel"); err != nil {
			return s, fmt.Errorf("failed to get parallel flag: %w", err)
		}
	}
	optFlags, err := f.GetStringArray("option")
	if err != nil {
		return s, fmt.Errorf("failed to get option flag: %w", err)
	}
	opts, err := parseOptionFlags(optFlags)
	if err != nil {
		return s, err
	}
	for k, v := range opts {
		s.options[k] = v
	}
	return s, s.validate()
}

func (s *settings) applyFile(fc fileConfig) {
	if len(fc.Patterns) > 0 {
		s.patterns = fc.Patterns
	}
	s.tests = fc.Tests
	s.outputDir = fc.OutputDir
	s.outputURL = fc.OutputURL
	if fc.MaxRounds != 0 {
		s.maxRounds = fc.MaxRounds
	}
	s.parallel = fc.Parallel
	for k, v := range fc.Options {
		s.options[k] = v
	}
}

func (s *settings) validate() error {
	if s.maxRounds < 1 {
		return fmt.Errorf("max-rounds must be at least 1, got %d", s.maxRounds)
	}
	if s.parallel < 0 {
		return fmt.Errorf("parallel must not be negative, got %d", s.parallel)
	}
	if s.parallel == 0 {
		s.parallel = runtime.NumCPU()
	}
	if s.outputDir != "" && s.outputURL != "" {
		return errors.New("output-dir and output-url cannot be used together")
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := setColorMode(colorMode); err != nil {
		return err
	}
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}

	g := &generator{settings: s, logger: logger, fs: afs.New()}
	diags, err := g.run(cmd.Context())
	printDiagnostics(cmd.ErrOrStderr(), diags)
	var outErr *processor.OutputError
	if errors.As(err, &outErr) {
		// already reported at the types whose files failed
		return errFailed
	} else if err != nil {
		return err
	}
	for _, d := range diags {
		if d.Severity == processor.SeverityError {
			return errFailed
		}
	}
	return nil
}

type generator struct {
	settings
	logger *slog.Logger
	fs     afs.Service
	dir    string
}

type packageResult struct {
	bag      processor.Bag
	deferred []*processor.Declaration
	err      error
}

// run processes the packages in rounds. A further round is run only when the
// previous one wrote files, left declarations deferred and deferred fewer
// than the round before it. The diagnostics of the last round are
// returned; declarations that are still deferred are reported as errors.
func (g *generator) run(ctx context.Context) ([]processor.Diagnostic, error) {
	cfg, err := processor.ParseConfig(g.options)
	if err != nil {
		return nil, err
	}
	providers := processor.AllRegisteredProviders()

	prevDeferred := -1
	for round := 1; ; round++ {
		var loadBag processor.Bag
		pkgs, err := gohost.Load(ctx, gohost.LoadConfig{
			Dir:              g.dir,
			Tests:            g.tests,
			KnownAnnotations: []string{cfg.Marker},
			Reporter:         &loadBag,
			Logger:           g.logger,
		}, g.patterns...)
		if err != nil {
			return nil, err
		}

		var written atomic.Int64
		output := g.outputFactory(ctx, pkgs)
		counting := func(path string) (io.WriteCloser, error) {
			w, err := output(path)
			if err == nil {
				written.Add(1)
			}
			return w, err
		}

		results := make([]*packageResult, len(pkgs))
		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(max(1, min(g.parallel, len(pkgs))))
		for i, pkg := range pkgs {
			res := &packageResult{}
			results[i] = res
			grp.Go(func() error {
				env := processor.Environment{
					Options:  g.options,
					Reporter: &res.bag,
					Output:   counting,
					Logger:   g.logger.With(slog.String("package", pkg.Path)),
				}
				res.deferred, res.err = processor.RunProviders(gctx, env, pkg, providers...)
				var cfgErr *processor.ConfigurationError
				if errors.As(res.err, &cfgErr) {
					return res.err
				}
				return nil
			})
		}
		if err := grp.Wait(); err != nil {
			return nil, err
		}

		var deferred int
		var errs []error
		for _, res := range results {
			deferred += len(res.deferred)
			if res.err != nil {
				errs = append(errs, res.err)
			}
		}
		g.logger.Info("round complete",
			slog.Int("round", round),
			slog.Int("packages", len(pkgs)),
			slog.Int64("written", written.Load()),
			slog.Int("deferred", deferred))

		progress := prevDeferred < 0 || deferred < prevDeferred
		if deferred > 0 && written.Load() > 0 && progress && round < g.maxRounds && len(errs) == 0 {
			prevDeferred = deferred
			continue
		}

		diags := loadBag.Items()
		for _, res := range results {
			for _, d := range res.deferred {
				res.bag.Report(processor.Diagnostic{
					Severity: processor.SeverityError,
					Message:  fmt.Sprintf("unresolved symbol: %s has a type that cannot be resolved", d.QualifiedName()),
					Pos:      d.Pos,
					Decl:     d,
				})
			}
			res.bag.Sort()
			diags = append(diags, res.bag.Items()...)
		}
		return diags, errors.Join(errs...)
	}
}

func (g *generator) outputFactory(ctx context.Context, pkgs []*gohost.Package) processor.OutputFactory {
	switch {
	case g.outputURL != "":
		return processor.AFSOutputFactory(ctx, g.fs, g.outputURL)
	case g.outputDir != "":
		return processor.RootOutputFactory(g.outputDir)
	default:
		return processor.DirOutputFactory(gohost.OutputDirs(pkgs))
	}
}
