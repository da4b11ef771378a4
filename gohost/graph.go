package gohost

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/brsample/remoteresource"
	"github.com/brsample/remoteresource/processor"
)

// Package is a loaded, type-checked Go package. It implements
// processor.SymbolGraph.
type Package struct {
	// Path is the package's import path.
	Path string
	// Name is the package's name.
	Name string
	// Dir is the directory that contains the package's files.
	Dir string
	// TypeErrors holds the errors found by the type checker. They are not
	// fatal: references to missing symbols yield types that are pending.
	TypeErrors []error

	decls   []*processor.Declaration
	members map[*processor.Declaration][]*processor.Declaration
}

var _ processor.SymbolGraph = (*Package)(nil)

// Declarations returns all declarations of the package, in source order.
func (p *Package) Declarations() []*processor.Declaration {
	return p.decls
}

// DeclarationsAnnotatedWith implements processor.SymbolGraph.
func (p *Package) DeclarationsAnnotatedWith(qualifiedName string) []*processor.Declaration {
	var res []*processor.Declaration
	for _, d := range p.decls {
		if d.HasAnnotation(qualifiedName) {
			res = append(res, d)
		}
	}
	return res
}

// Members implements processor.SymbolGraph.
func (p *Package) Members(container *processor.Declaration) []*processor.Declaration {
	return p.members[container]
}

// ResolveType implements processor.SymbolGraph. A type that refers to a
// symbol the type checker could not find is pending.
func (p *Package) ResolveType(ref processor.TypeRef) (types.Type, error) {
	tr, ok := ref.(*typeRef)
	if !ok {
		return nil, fmt.Errorf("type reference %v does not belong to package %s", ref, p.Path)
	}
	if tr.t == nil || !isValid(tr.t, map[types.Type]bool{}) {
		return nil, fmt.Errorf("%s: %w", tr.expr, processor.ErrResolutionPending)
	}
	return tr.t, nil
}

// typeRef is a type expression along with what the type checker made of it.
type typeRef struct {
	expr string
	t    types.Type
}

func (r *typeRef) String() string {
	return r.expr
}

func isValid(t types.Type, seen map[types.Type]bool) bool {
	if seen[t] {
		return true
	}
	seen[t] = true
	switch t := t.(type) {
	case *types.Basic:
		return t.Kind() != types.Invalid
	case *types.Pointer:
		return isValid(t.Elem(), seen)
	case *types.Slice:
		return isValid(t.Elem(), seen)
	case *types.Array:
		return isValid(t.Elem(), seen)
	case *types.Chan:
		return isValid(t.Elem(), seen)
	case *types.Map:
		return isValid(t.Key(), seen) && isValid(t.Elem(), seen)
	case *types.Signature:
		return isValidTuple(t.Params(), seen) && isValidTuple(t.Results(), seen)
	case *types.Tuple:
		return isValidTuple(t, seen)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			if !isValid(t.Field(i).Type(), seen) {
				return false
			}
		}
		return true
	case *types.Named:
		if b, ok := t.Underlying().(*types.Basic); ok && b.Kind() == types.Invalid {
			return false
		}
		args := t.TypeArgs()
		for i := 0; i < args.Len(); i++ {
			if !isValid(args.At(i), seen) {
				return false
			}
		}
		return true
	case *types.Alias:
		return isValid(types.Unalias(t), seen)
	}
	return true
}

func isValidTuple(t *types.Tuple, seen map[types.Type]bool) bool {
	for i := 0; i < t.Len(); i++ {
		if !isValid(t.At(i).Type(), seen) {
			return false
		}
	}
	return true
}

// walker builds the declarations of one package from its syntax and type
// information.
type walker struct {
	pkg        *Package
	tpkg       *types.Package
	fset       *token.FileSet
	info       *types.Info
	containers map[string]*processor.Declaration
}

func (w *walker) newDecl(id *ast.Ident, kind remoteresource.DeclKind, t *typeRef, annos []processor.AnnotationMirror, container *processor.Declaration) *processor.Declaration {
	d := &processor.Declaration{
		Name:        id.Name,
		Kind:        kind,
		Pos:         w.fset.Position(id.Pos()),
		Package:     processor.PackageRef{Path: w.pkg.Path, Name: w.pkg.Name},
		Annotations: annos,
		Container:   container,
	}
	if t != nil {
		d.Type = t
	}
	w.pkg.decls = append(w.pkg.decls, d)
	if container != nil {
		w.pkg.members[container] = append(w.pkg.members[container], d)
	}
	return d
}

func (w *walker) typeOf(expr ast.Expr, t types.Type) *typeRef {
	return &typeRef{expr: types.ExprString(expr), t: t}
}

// walkTypes creates the declarations for the types in a file, along with
// their members.
func (w *walker) walkTypes(r *annotationReader, file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			spec := s.(*ast.TypeSpec)
			doc := spec.Doc
			if doc == nil || len(doc.List) == 0 {
				doc = gen.Doc
			}
			var t types.Type
			if obj := w.info.Defs[spec.Name]; obj != nil {
				t = obj.Type()
			}
			c := w.newDecl(spec.Name, remoteresource.KindType, &typeRef{expr: spec.Name.Name, t: t}, r.read(doc), nil)
			w.containers[spec.Name.Name] = c
			var underlying types.Type
			if t != nil {
				underlying = t.Underlying()
			}
			switch st := spec.Type.(type) {
			case *ast.StructType:
				strct, _ := underlying.(*types.Struct)
				w.walkStruct(r, c, st, strct)
			case *ast.InterfaceType:
				w.walkInterface(r, c, st)
			}
		}
	}
}

func (w *walker) walkStruct(r *annotationReader, c *processor.Declaration, st *ast.StructType, strct *types.Struct) {
	if st.Fields == nil {
		return
	}
	i := 0
	fieldType := func() types.Type {
		defer func() { i++ }()
		if strct == nil || i >= strct.NumFields() {
			return nil
		}
		return strct.Field(i).Type()
	}
	for _, fld := range st.Fields.List {
		annos := r.read(fld.Doc)
		if fld.Names == nil {
			w.newDecl(embeddedName(fld.Type), remoteresource.KindEmbed, w.typeOf(fld.Type, fieldType()), annos, c)
			continue
		}
		for _, n := range fld.Names {
			w.newDecl(n, remoteresource.KindProperty, w.typeOf(fld.Type, fieldType()), annos, c)
		}
	}
}

func (w *walker) walkInterface(r *annotationReader, c *processor.Declaration, it *ast.InterfaceType) {
	if it.Methods == nil {
		return
	}
	for _, m := range it.Methods.List {
		annos := r.read(m.Doc)
		if m.Names == nil {
			var t types.Type
			if tv, ok := w.info.Types[m.Type]; ok {
				t = tv.Type
			}
			w.newDecl(embeddedName(m.Type), remoteresource.KindEmbed, w.typeOf(m.Type, t), annos, c)
			continue
		}
		ft, _ := m.Type.(*ast.FuncType)
		for _, n := range m.Names {
			var sig *types.Signature
			if obj := w.info.Defs[n]; obj != nil {
				sig, _ = obj.Type().(*types.Signature)
			}
			if ft != nil && isGetter(ft) {
				var t types.Type
				if sig != nil && sig.Results().Len() == 1 {
					t = sig.Results().At(0).Type()
				}
				w.newDecl(n, remoteresource.KindProperty, w.typeOf(ft.Results.List[0].Type, t), annos, c)
				continue
			}
			var t types.Type
			if sig != nil {
				t = sig
			}
			w.newDecl(n, remoteresource.KindMethod, w.typeOf(m.Type, t), annos, c)
		}
	}
}

// isGetter reports whether a method takes no parameters and has exactly one
// result.
func isGetter(ft *ast.FuncType) bool {
	if ft.Params != nil && len(ft.Params.List) > 0 {
		return false
	}
	return ft.Results != nil && len(ft.Results.List) == 1 && len(ft.Results.List[0].Names) <= 1
}

func embeddedName(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.Ident:
		return e
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	}
	return ast.NewIdent("_")
}

// walkValues creates the declarations for the functions, methods, variables
// and constants in a file. Methods are attached to their receiver's type.
func (w *walker) walkValues(r *annotationReader, file *ast.File) {
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok != token.CONST && decl.Tok != token.VAR {
				continue
			}
			kind := remoteresource.KindVariable
			if decl.Tok == token.CONST {
				kind = remoteresource.KindConstant
			}
			for _, s := range decl.Specs {
				spec := s.(*ast.ValueSpec)
				doc := spec.Doc
				if doc == nil || len(doc.List) == 0 {
					doc = decl.Doc
				}
				annos := r.read(doc)
				for _, id := range spec.Names {
					if id.Name == "_" {
						continue
					}
					var t types.Type
					if obj := w.info.Defs[id]; obj != nil {
						t = obj.Type()
					}
					ref := &typeRef{t: t}
					if spec.Type != nil {
						ref.expr = types.ExprString(spec.Type)
					} else if t != nil {
						ref.expr = types.TypeString(t, types.RelativeTo(w.tpkg))
					}
					w.newDecl(id, kind, ref, annos, nil)
				}
			}
		case *ast.FuncDecl:
			var t types.Type
			if obj := w.info.Defs[decl.Name]; obj != nil {
				t = obj.Type()
			}
			kind := remoteresource.KindFunction
			var container *processor.Declaration
			if decl.Recv != nil && len(decl.Recv.List) > 0 {
				kind = remoteresource.KindMethod
				container = w.containers[embeddedName(decl.Recv.List[0].Type).Name]
			}
			w.newDecl(decl.Name, kind, w.typeOf(decl.Type, t), r.read(decl.Doc), container)
		}
	}
}
