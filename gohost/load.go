// Package gohost loads Go packages and presents them to the processor as
// symbol graphs.
//
// Annotations are read from doc comments on types, fields, interface
// methods, functions, variables and constants:
//
//	type Profile struct {
//		// @remoteresource.RemoteResource{Name: "fetchProfile"}
//		Nickname string
//		Age      int
//	}
//
// Packages are type-checked with go/types. Code that refers to symbols which
// do not exist yet (for example, symbols that another generator produces)
// still loads: the types of such declarations are reported as pending.
package gohost

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/types"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/brsample/remoteresource/processor"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// LoadConfig controls how packages are loaded.
type LoadConfig struct {
	// Dir is the directory in which to run the build system. If empty, the
	// current directory is used.
	Dir string
	// Tests includes test files and packages.
	Tests bool
	// KnownAnnotations are qualified annotation names that may be written
	// with their package name as qualifier even when the annotated file does
	// not import the package.
	KnownAnnotations []string
	// Reporter receives warnings about malformed annotations. If nil, they
	// are dropped.
	Reporter processor.Reporter
	Logger   *slog.Logger
}

// Load loads the packages matching the given patterns. Packages that cannot
// be listed or parsed are an error; type errors are not.
func Load(ctx context.Context, cfg LoadConfig, patterns ...string) ([]*Package, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = processor.ReporterFunc(func(processor.Diagnostic) {})
	}

	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     cfg.Dir,
		Tests:   cfg.Tests,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %s: %w", strings.Join(patterns, " "), err)
	}

	var errs []error
	byPath := map[string]*packages.Package{}
	for _, pkg := range pkgs {
		// the synthesized test main has nothing to process
		if strings.HasSuffix(pkg.ID, ".test") {
			continue
		}
		for _, e := range pkg.Errors {
			if e.Kind == packages.ListError || e.Kind == packages.ParseError {
				errs = append(errs, e)
			}
		}
		if prev, ok := byPath[pkg.PkgPath]; ok && len(prev.Syntax) >= len(pkg.Syntax) {
			continue
		}
		byPath[pkg.PkgPath] = pkg
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	res := make([]*Package, 0, len(paths))
	for _, p := range paths {
		pkg := newPackage(byPath[p], cfg.KnownAnnotations, reporter)
		logger.Debug("loaded package",
			slog.String("package", pkg.Path),
			slog.Int("declarations", len(pkg.decls)),
			slog.Int("typeErrors", len(pkg.TypeErrors)))
		res = append(res, pkg)
	}
	return res, nil
}

func newPackage(pkg *packages.Package, known []string, reporter processor.Reporter) *Package {
	p := &Package{
		Path:    pkg.PkgPath,
		Name:    pkg.Name,
		members: map[*processor.Declaration][]*processor.Declaration{},
	}
	for _, files := range [][]string{pkg.GoFiles, pkg.CompiledGoFiles, pkg.OtherFiles} {
		if len(files) > 0 {
			p.Dir = filepath.Dir(files[0])
			break
		}
	}
	for _, e := range pkg.TypeErrors {
		p.TypeErrors = append(p.TypeErrors, e)
	}

	info := pkg.TypesInfo
	if info == nil {
		info = &types.Info{Defs: map[*ast.Ident]types.Object{}, Types: map[ast.Expr]types.TypeAndValue{}}
	}
	w := &walker{
		pkg:        p,
		tpkg:       pkg.Types,
		fset:       pkg.Fset,
		info:       info,
		containers: map[string]*processor.Declaration{},
	}
	importName := func(path string) string {
		if imp, ok := pkg.Imports[path]; ok && imp.Name != "" {
			return imp.Name
		}
		return ""
	}
	readers := make([]*annotationReader, len(pkg.Syntax))
	for i, file := range pkg.Syntax {
		readers[i] = &annotationReader{
			fset:     pkg.Fset,
			pkgPath:  p.Path,
			pkgName:  p.Name,
			imports:  fileImports(file, importName),
			known:    known,
			reporter: reporter,
		}
	}
	// types first, so that methods can be attached to their receivers
	for i, file := range pkg.Syntax {
		w.walkTypes(readers[i], file)
	}
	for i, file := range pkg.Syntax {
		w.walkValues(readers[i], file)
	}
	return p
}

// OutputDirs maps the import path of each package to its directory, for use
// with processor.DirOutputFactory.
func OutputDirs(pkgs []*Package) map[string]string {
	dirs := make(map[string]string, len(pkgs))
	for _, p := range pkgs {
		dirs[p.Path] = p.Dir
	}
	return dirs
}
