package processor

import (
	"go/token"
	"go/types"

	"github.com/brsample/remoteresource"
	"github.com/brsample/remoteresource/parser"
)

// fakeGraph is an in-memory SymbolGraph for tests.
type fakeGraph struct {
	decls   []*Declaration
	members map[*Declaration][]*Declaration
}

type fakeType struct {
	name    string
	t       types.Type
	pending bool
}

func (f *fakeType) String() string { return f.name }

func newFakeGraph() *fakeGraph {
	return &fakeGraph{members: map[*Declaration][]*Declaration{}}
}

func (g *fakeGraph) DeclarationsAnnotatedWith(qualifiedName string) []*Declaration {
	var res []*Declaration
	for _, d := range g.decls {
		if d.HasAnnotation(qualifiedName) {
			res = append(res, d)
		}
	}
	return res
}

func (g *fakeGraph) Members(container *Declaration) []*Declaration {
	return g.members[container]
}

func (g *fakeGraph) ResolveType(ref TypeRef) (types.Type, error) {
	ft := ref.(*fakeType)
	if ft.pending {
		return nil, ErrResolutionPending
	}
	return ft.t, nil
}

var testPkg = PackageRef{Path: "example.com/profiles", Name: "profiles"}

func (g *fakeGraph) container(name string, line int) *Declaration {
	d := &Declaration{
		Name:    name,
		Kind:    remoteresource.KindType,
		Package: testPkg,
		Pos:     token.Position{Filename: "profiles.go", Line: line, Column: 6},
	}
	g.decls = append(g.decls, d)
	return d
}

// property adds a property to the container. A nil type means the type is
// pending.
func (g *fakeGraph) property(c *Declaration, name string, t types.Type, line int, annos ...AnnotationMirror) *Declaration {
	typeName := "<pending>"
	if t != nil {
		typeName = types.TypeString(t, nil)
	}
	d := &Declaration{
		Name:        name,
		Kind:        remoteresource.KindProperty,
		Package:     c.Package,
		Pos:         token.Position{Filename: "profiles.go", Line: line, Column: 2},
		Annotations: annos,
		Type:        &fakeType{name: typeName, t: t, pending: t == nil},
		Container:   c,
	}
	g.decls = append(g.decls, d)
	g.members[c] = append(g.members[c], d)
	return d
}

func marker(args ...AnnotationArg) AnnotationMirror {
	return AnnotationMirror{QualifiedName: remoteresource.MarkerName, Args: args}
}

func nameArg(name string, line int) AnnotationArg {
	return AnnotationArg{
		Name:  "Name",
		Value: parser.Value{Kind: parser.KindString, Str: name, Raw: `"` + name + `"`},
		Pos:   token.Position{Filename: "profiles.go", Line: line, Column: 5},
	}
}

var (
	stringType = types.Typ[types.String]
	intType    = types.Typ[types.Int]
)

// profileGraph builds:
//
//	type Profile struct {
//	    // @RemoteResource
//	    Nickname string
//	    // @RemoteResource
//	    Age int
//	}
func profileGraph() (*fakeGraph, *Declaration, *Declaration) {
	g := newFakeGraph()
	c := g.container("Profile", 1)
	nickname := g.property(c, "Nickname", stringType, 3, marker())
	age := g.property(c, "Age", intType, 5, marker())
	return g, nickname, age
}
