package remoteresource

import "fmt"

//go:generate rrgen github.com/brsample/remoteresource/...

// MarkerName is the fully-qualified name of the RemoteResource annotation. It
// is the default marker that the generator scans for.
const MarkerName = "github.com/brsample/remoteresource.RemoteResource"

// RemoteResource is the marker annotation. It is placed on properties of a
// struct or interface type. For example:
//
//	type Profile interface {
//		// @remoteresource.RemoteResource{Name: "fetchProfile"}
//		Nickname() string
//		Age() int
//	}
//
// Running the generator on the package containing this type will produce a
// function named fetchProfile whose parameters mirror the properties of
// Profile:
//
//	func fetchProfile(nickname string, age int) {
//		fmt.Println("Hello from fetchProfile")
//	}
//
// Only properties whose type is in the configured allow-list (by default just
// string) may carry the annotation. Other properties of the enclosing type are
// still turned into parameters.
//
// The short form, @RemoteResource("fetchProfile"), is equivalent. When no
// name is given, the name is derived from the enclosing type, so Profile
// yields profile.
type RemoteResource struct {
	// Name is the name of the generated function. It must be a valid Go
	// identifier.
	Name string
}

// DeclKind is an enumeration of the kinds of declarations that may carry
// annotations.
type DeclKind int

const (
	// KindInvalid indicates a zero, uninitialized kind.
	KindInvalid DeclKind = iota

	// KindProperty is a property-like binding: a named field of a struct type
	// or a getter method (no parameters, exactly one result) of an interface
	// type. Only top-level, named types have properties.
	KindProperty

	// KindType is a top-level, named type.
	KindType

	// KindFunction is a top-level function.
	KindFunction

	// KindMethod is a method with a body or an interface method that is not a
	// getter.
	KindMethod

	// KindVariable is a package-level variable.
	KindVariable

	// KindConstant is a package-level constant.
	KindConstant

	// KindEmbed is an embedded field of a struct or an interface embedded in
	// another interface.
	KindEmbed
)

func (k DeclKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindProperty:
		return "property"
	case KindType:
		return "type"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindEmbed:
		return "embed"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}
