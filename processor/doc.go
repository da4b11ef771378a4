// Package processor contains the remote resource pass: the part of the
// generator that finds marked properties, validates them and writes
// generated functions.
//
// The pass does not parse or type-check source code itself. A host adapts
// its front end behind the SymbolGraph interface (package gohost does this
// for Go packages) and hands the pass an Environment, which carries the
// options, the diagnostics Reporter and the OutputFactory that generated
// files are written to.
//
//	pass, err := processor.NewPass(processor.Environment{
//		Options:  map[string]string{"allowedTypes": "string"},
//		Reporter: &bag,
//		Output:   processor.RootOutputFactory("gen"),
//	})
//	...
//	deferred, err := pass.Process(graph)
//
// Processing a graph happens in three steps.
//
// # Scan
//
// Scan selects the property declarations (struct fields and interface
// getters) that carry the marker annotation. Marked declarations of other
// kinds are skipped.
//
// # Validate
//
// Each marked property is checked by a Validator. If its type, or the type of
// any other property of the same container, cannot be resolved yet, the
// property is deferred and returned to the host, which may run another round
// once more of the program is known. A property whose type is not in the
// allow-list gets an error diagnostic. Otherwise it is valid.
//
// # Emit
//
// For every container with at least one valid marked property and no
// deferred one, a single function is generated. The function is named by the
// marker's Name argument or, by default, after the container. Its parameters
// are the container's properties, in declaration order. The file is written
// through the OutputFactory under the container's package import path.
//
// Problems with marker arguments, such as an invalid or conflicting Name, are
// configuration errors. They are detected before anything is validated or
// written.
//
// # Provider Registration
//
// Passes are created by a Provider. Providers can be registered by name with
// RegisterProvider, so that command-line hosts such as rrgen can discover and
// run them.
package processor
