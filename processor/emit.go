package processor

import (
	"fmt"
	"go/token"
	"go/types"
	"io"
	"path"
	"strconv"

	"github.com/jhump/gopoet"
	"github.com/viant/toolbox/format"

	"github.com/brsample/remoteresource"
)

// GeneratedFileSuffix is appended to the snake-cased container name to form
// the name of a generated file.
const GeneratedFileSuffix = "_rr.go"

var fmtPkg = gopoet.NewPackage("fmt")

// Param is a parameter of a generated function.
type Param struct {
	Name string
	// Type is the property's type with all aliases resolved.
	Type types.Type
}

// Artifact is a generated function. An artifact is derived from a container
// (a struct or interface type): every property of the container becomes a
// parameter. Artifacts are written once and never modified.
type Artifact struct {
	// The name of the generated function.
	Name string
	// The output path: the container's package import path followed by the
	// file name.
	Path      string
	Container *Declaration
	Params    []Param
	// The text that the generated function body prints.
	Message string
}

// GoFile returns the artifact as a Go source file.
func (a *Artifact) GoFile() *gopoet.GoFile {
	file := gopoet.NewGoFile(path.Base(a.Path), a.Container.Package.Path, a.Container.Package.Name)
	fn := gopoet.NewFunc(a.Name).
		SetComment(fmt.Sprintf("%s is generated from %s. DO NOT EDIT.", a.Name, a.Container.Name))
	for _, p := range a.Params {
		fn.AddArg(p.Name, gopoet.TypeNameForGoType(p.Type))
	}
	fn.Printlnf("%s(%q)", fmtPkg.Symbol("Println"), a.Message)
	file.AddElement(fn)
	return file
}

// Render writes the artifact's Go source to w. Rendering the same artifact
// always produces the same bytes.
func (a *Artifact) Render(w io.Writer) error {
	return gopoet.WriteGoFile(w, a.GoFile())
}

func (a *Artifact) write(output OutputFactory) (err error) {
	w, err := output(a.Path)
	if err != nil {
		return &OutputError{Path: a.Path, Err: err}
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = &OutputError{Path: a.Path, Err: cerr}
		}
	}()
	if err := a.Render(w); err != nil {
		return &OutputError{Path: a.Path, Err: err}
	}
	return nil
}

// newArtifact builds the artifact for a container. All of the container's
// properties must be resolvable.
func newArtifact(graph SymbolGraph, container *Declaration, name string) (*Artifact, error) {
	a := &Artifact{
		Name:      name,
		Path:      artifactPath(container),
		Container: container,
		Message:   "Hello from " + name,
	}
	// the body refers to fmt, so no parameter may shadow it
	used := map[string]bool{"fmt": true}
	for _, m := range graph.Members(container) {
		if m.Kind != remoteresource.KindProperty {
			continue
		}
		t, err := graph.ResolveType(m.Type)
		if err != nil {
			return nil, NewErrorWithPosition(m.Pos, fmt.Errorf("cannot resolve type of %s: %w", m.Name, err))
		}
		t, err = paramType(t)
		if err != nil {
			return nil, NewErrorWithPosition(m.Pos, fmt.Errorf("property %s: %w", m.Name, err))
		}
		pname := paramName(m.Name)
		for i := 2; used[pname]; i++ {
			pname = paramName(m.Name) + strconv.Itoa(i)
		}
		used[pname] = true
		a.Params = append(a.Params, Param{Name: pname, Type: t})
	}
	return a, nil
}

var universe = types.NewPackage("", "")

// paramType returns t with aliases replaced by the types they denote, so that
// it can be spelled in generated code. Type parameters and instantiated
// generic types are not supported.
func paramType(t types.Type) (types.Type, error) {
	switch t := t.(type) {
	case *types.Alias:
		return paramType(types.Unalias(t))
	case *types.TypeParam:
		return nil, fmt.Errorf("type parameter %s cannot be used outside of its generic type", t)
	case *types.Named:
		if t.TypeArgs().Len() > 0 {
			return nil, fmt.Errorf("instantiated generic type %s is not supported", t)
		}
		if t.Obj().Pkg() == nil {
			// predeclared, like error; gopoet renders a package without a
			// name or path unqualified
			return types.NewNamed(types.NewTypeName(t.Obj().Pos(), universe, t.Obj().Name(), nil), t.Underlying(), nil), nil
		}
		return t, nil
	case *types.Basic:
		return t, nil
	case *types.Pointer:
		elem, err := paramType(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.NewPointer(elem), nil
	case *types.Slice:
		elem, err := paramType(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.NewSlice(elem), nil
	case *types.Array:
		elem, err := paramType(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem, t.Len()), nil
	case *types.Chan:
		elem, err := paramType(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.NewChan(t.Dir(), elem), nil
	case *types.Map:
		key, err := paramType(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := paramType(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.NewMap(key, elem), nil
	case *types.Signature:
		params, err := paramTuple(t.Params())
		if err != nil {
			return nil, err
		}
		results, err := paramTuple(t.Results())
		if err != nil {
			return nil, err
		}
		return types.NewSignatureType(nil, nil, nil, params, results, t.Variadic()), nil
	case *types.Struct:
		fields := make([]*types.Var, t.NumFields())
		tags := make([]string, t.NumFields())
		for i := range fields {
			f := t.Field(i)
			ft, err := paramType(f.Type())
			if err != nil {
				return nil, err
			}
			fields[i] = types.NewField(f.Pos(), f.Pkg(), f.Name(), ft, f.Embedded())
			tags[i] = t.Tag(i)
		}
		return types.NewStruct(fields, tags), nil
	case *types.Interface:
		if t.NumMethods() == 0 && t.NumEmbeddeds() == 0 {
			return types.NewInterfaceType(nil, nil).Complete(), nil
		}
		methods := make([]*types.Func, t.NumExplicitMethods())
		for i := range methods {
			m := t.ExplicitMethod(i)
			sig, err := paramType(m.Type())
			if err != nil {
				return nil, err
			}
			methods[i] = types.NewFunc(m.Pos(), m.Pkg(), m.Name(), sig.(*types.Signature))
		}
		embeddeds := make([]types.Type, t.NumEmbeddeds())
		for i := range embeddeds {
			e, err := paramType(t.EmbeddedType(i))
			if err != nil {
				return nil, err
			}
			if _, ok := e.(*types.Named); !ok {
				return nil, fmt.Errorf("interface %s with a type constraint element is not supported", t)
			}
			embeddeds[i] = e
		}
		return types.NewInterfaceType(methods, embeddeds).Complete(), nil
	}
	return nil, fmt.Errorf("type %s is not supported", t)
}

func paramTuple(t *types.Tuple) (*types.Tuple, error) {
	vars := make([]*types.Var, t.Len())
	for i := range vars {
		v := t.At(i)
		vt, err := paramType(v.Type())
		if err != nil {
			return nil, err
		}
		vars[i] = types.NewParam(v.Pos(), v.Pkg(), v.Name(), vt)
	}
	return types.NewTuple(vars...), nil
}

// defaultFunctionName derives a function name from a container name, e.g.
// UserProfile becomes userProfile and HTTPServer becomes httpServer.
func defaultFunctionName(containerName string) string {
	n := format.CaseUpperCamel.Format(foldInitialisms(containerName), format.CaseLowerCamel)
	if token.IsKeyword(n) {
		n += "_"
	}
	return n
}

func paramName(propertyName string) string {
	n := format.CaseUpperCamel.Format(foldInitialisms(propertyName), format.CaseLowerCamel)
	if n == "" || n == "_" {
		n = "arg"
	}
	if token.IsKeyword(n) {
		n += "_"
	}
	return n
}

// artifactPath returns the output path of the artifact for a container.
func artifactPath(container *Declaration) string {
	return path.Join(container.Package.Path, generatedFileName(container.Name))
}

func generatedFileName(containerName string) string {
	return format.CaseUpperCamel.Format(foldInitialisms(containerName), format.CaseLowerUnderscore) + GeneratedFileSuffix
}

// foldInitialisms turns each run of capitals into a single capitalized word,
// so that the case converter sees ID, URL and HTTPServer as Id, Url and
// HttpServer. When a run is followed by a lower case letter, its last capital
// starts the next word.
func foldInitialisms(name string) string {
	b := []byte(name)
	for i := 0; i < len(b); {
		if !isUpperASCII(b[i]) {
			i++
			continue
		}
		j := i
		for j < len(b) && isUpperASCII(b[j]) {
			j++
		}
		end := j
		if j-i > 1 && j < len(b) && b[j] >= 'a' && b[j] <= 'z' {
			end = j - 1
		}
		for k := i + 1; k < end; k++ {
			b[k] += 'a' - 'A'
		}
		i = j
	}
	return string(b)
}

func isUpperASCII(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
