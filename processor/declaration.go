package processor

import (
	"go/token"
	"go/types"
	"strings"

	"github.com/brsample/remoteresource"
	"github.com/brsample/remoteresource/parser"
)

// SymbolGraph is the view of a compilation unit that a pass needs. Hosts adapt
// their own front end (for Go source, see package gohost) behind this
// interface; the pass never parses or type-checks anything itself.
//
// A graph is read-only for the duration of a pass.
type SymbolGraph interface {
	// DeclarationsAnnotatedWith returns all declarations that carry an
	// annotation with the given fully-qualified name, in the graph's natural
	// visitation order.
	DeclarationsAnnotatedWith(qualifiedName string) []*Declaration

	// Members returns the declarations that make up the given container (the
	// fields and methods of a type), in declaration order.
	Members(container *Declaration) []*Declaration

	// ResolveType resolves a type reference. If the type cannot be resolved
	// yet, the returned error wraps ErrResolutionPending.
	ResolveType(ref TypeRef) (types.Type, error)
}

// TypeRef is an unresolved reference to a declaration's type. Its String
// method returns the type as written in source.
type TypeRef interface {
	String() string
}

// PackageRef identifies the package that contains a declaration.
type PackageRef struct {
	Path string
	Name string
}

// Declaration is an element of source code, such as a type or a struct field,
// along with its annotations. Declarations are owned by the SymbolGraph that
// produced them.
type Declaration struct {
	Name string
	Kind remoteresource.DeclKind
	// The location in source where the declaration's name appears.
	Pos     token.Position
	Package PackageRef
	// Annotations has at most one entry per qualified name.
	Annotations []AnnotationMirror
	// Type is nil for kinds that have no type of their own, such as
	// functions.
	Type TypeRef
	// Container is the enclosing type for properties, methods and embeds. It
	// is nil for top-level declarations.
	Container *Declaration
}

// QualifiedName returns the name of the declaration qualified with its
// package path and, if applicable, the name of its container.
func (d *Declaration) QualifiedName() string {
	var sb strings.Builder
	sb.WriteString(d.Package.Path)
	if d.Container != nil {
		sb.WriteByte('.')
		sb.WriteString(d.Container.Name)
	}
	sb.WriteByte('.')
	sb.WriteString(d.Name)
	return sb.String()
}

func (d *Declaration) String() string {
	return d.QualifiedName()
}

// Annotation returns the annotation with the given qualified name, if the
// declaration has one.
func (d *Declaration) Annotation(qualifiedName string) (AnnotationMirror, bool) {
	for _, a := range d.Annotations {
		if a.QualifiedName == qualifiedName {
			return a, true
		}
	}
	return AnnotationMirror{}, false
}

// HasAnnotation returns true if the declaration has an annotation with the
// given qualified name.
func (d *Declaration) HasAnnotation(qualifiedName string) bool {
	_, ok := d.Annotation(qualifiedName)
	return ok
}

// AnnotationMirror is a view of an annotation instance that appears in source.
type AnnotationMirror struct {
	// The annotation type's import path and name, e.g.
	// "github.com/brsample/remoteresource.RemoteResource".
	QualifiedName string
	// The location in source where this annotation is defined.
	Pos token.Position
	// The annotation's arguments. A positional value, as in @Name("x"), has
	// an empty argument name.
	Args []AnnotationArg
}

// AnnotationArg is a single argument of an annotation.
type AnnotationArg struct {
	Name  string
	Value parser.Value
	Pos   token.Position
}

// ShortName returns the annotation type's name without its package path.
func (m AnnotationMirror) ShortName() string {
	return shortName(m.QualifiedName)
}

// Arg returns the argument with the given name. A positional argument is
// returned for any name when it is the annotation's only argument. As with
// struct-shaped annotations in source, the first letter of the name is matched
// case-insensitively.
func (m AnnotationMirror) Arg(name string) (AnnotationArg, bool) {
	for _, a := range m.Args {
		if sameArgName(a.Name, name) {
			return a, true
		}
	}
	if len(m.Args) == 1 && m.Args[0].Name == "" {
		return m.Args[0], true
	}
	return AnnotationArg{}, false
}

func sameArgName(a, b string) bool {
	if a == b {
		return true
	}
	return len(a) == len(b) && len(a) > 0 && a[1:] == b[1:] && strings.EqualFold(a[:1], b[:1])
}

func shortName(qualifiedName string) string {
	if i := strings.LastIndexByte(qualifiedName, '.'); i >= 0 {
		return qualifiedName[i+1:]
	}
	return qualifiedName
}
