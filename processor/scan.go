package processor

import (
	"log/slog"

	"github.com/brsample/remoteresource"
)

// Scan returns the property declarations in the graph that carry the given
// marker annotation, in the graph's visitation order. Annotated declarations
// of other kinds are excluded from the result; they are not errors.
//
// The marker must be a fully-qualified name, such as
// "github.com/brsample/remoteresource.RemoteResource". Scan does not modify
// the graph.
func Scan(graph SymbolGraph, marker string) ([]*Declaration, error) {
	return scan(graph, marker, discardLogger)
}

func scan(graph SymbolGraph, marker string, logger *slog.Logger) ([]*Declaration, error) {
	if err := validateMarker(marker); err != nil {
		return nil, &ConfigurationError{Option: OptionMarker, Err: err}
	}
	var res []*Declaration
	for _, d := range graph.DeclarationsAnnotatedWith(marker) {
		if !d.HasAnnotation(marker) {
			continue
		}
		switch d.Kind {
		case remoteresource.KindProperty:
			res = append(res, d)
		case remoteresource.KindType,
			remoteresource.KindFunction,
			remoteresource.KindMethod,
			remoteresource.KindVariable,
			remoteresource.KindConstant,
			remoteresource.KindEmbed:
			logger.Debug("declaration excluded from pass",
				slog.String("decl", d.QualifiedName()),
				slog.String("kind", d.Kind.String()))
		default:
			logger.Warn("declaration of unknown kind excluded from pass",
				slog.String("decl", d.QualifiedName()),
				slog.String("kind", d.Kind.String()))
		}
	}
	return res, nil
}
