package parser

import (
	"fmt"
	"text/scanner"
)

// ValueKind indicates the kind of literal held by a Value.
type ValueKind int

const (
	// KindInvalid should not be used and indicates an uninitialized value.
	KindInvalid ValueKind = iota
	// KindString is a double-quoted string literal.
	KindString
	// KindInt is an integer literal, possibly negative.
	KindInt
	// KindFloat is a floating point literal, possibly negative.
	KindFloat
	// KindBool is "true" or "false".
	KindBool
	// KindNil is the literal "nil".
	KindNil
	// KindIdent is a reference to an identifier, such as a constant.
	KindIdent
)

var kindNames = map[ValueKind]string{
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindNil:    "nil",
	KindIdent:  "identifier",
}

func (k ValueKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "<invalid>"
}

// Identifier is an AST node that refers to an identifier, possibly qualified
// with a package name/alias.
type Identifier struct {
	PackageAlias string
	Name         string
	Pos          scanner.Position
}

func (id Identifier) String() string {
	if id.PackageAlias == "" {
		return id.Name
	}
	return fmt.Sprintf("%s.%s", id.PackageAlias, id.Name)
}

// Value is a literal value in an annotation. Exactly one of the typed fields
// is meaningful, as indicated by Kind.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Ident Identifier
	// The source text of the literal.
	Raw string
	Pos scanner.Position
}

func (v Value) String() string {
	return v.Raw
}

// Field is a named value inside of a struct-shaped annotation, such as the
// Name: "x" in @RemoteResource{Name: "x"}.
type Field struct {
	Name  string
	Value Value
	Pos   scanner.Position
}

// Annotation is a fully parsed annotation. It identifies the annotation type
// and has an optional value. The value is either a single positional value,
// written @Name(value), or a list of fields, written @Name{Field: value}. When
// neither is present, the annotation is a plain marker.
type Annotation struct {
	Type   Identifier
	Value  *Value
	Fields []Field
	Pos    scanner.Position
}

// Field returns the value of the named field. The lookup is case-insensitive
// on the first letter so that {name: "x"} and {Name: "x"} are both accepted.
func (a Annotation) Field(name string) (Value, bool) {
	for _, f := range a.Fields {
		if f.Name == name || sameExceptFirstCase(f.Name, name) {
			return f.Value, true
		}
	}
	return Value{}, false
}

func sameExceptFirstCase(a, b string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	return a[1:] == b[1:] && lowerASCII(a[0]) == lowerASCII(b[0])
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
