package gohost

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brsample/remoteresource"
	"github.com/brsample/remoteresource/processor"
)

const annotatedSrc = `package api

import (
	rr "github.com/brsample/remoteresource"
	_ "example.com/markers"
)

type User struct {
	// The user's handle.
	// @rr.RemoteResource{Name: "fetchUser", retries: 3}
	// @markers.Audit
	Handle string

	/* @remoteresource.RemoteResource */
	Email string

	// @other.Thing
	// @other.Thing
	Misc string
}
`

func parseTestFile(t *testing.T) (*token.FileSet, *ast.File, map[string]*ast.Field) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "api.go", annotatedSrc, parser.ParseComments)
	require.NoError(t, err)
	fields := map[string]*ast.Field{}
	ast.Inspect(file, func(n ast.Node) bool {
		if f, ok := n.(*ast.Field); ok && len(f.Names) == 1 {
			fields[f.Names[0].Name] = f
		}
		return true
	})
	return fset, file, fields
}

func TestAnnotationReader(t *testing.T) {
	fset, file, fields := parseTestFile(t)
	var bag processor.Bag
	r := &annotationReader{
		fset:    fset,
		pkgPath: "example.com/api",
		pkgName: "api",
		imports: fileImports(file, func(path string) string {
			if path == "example.com/markers" {
				return "markers"
			}
			return ""
		}),
		known:    []string{remoteresource.MarkerName},
		reporter: &bag,
	}

	annos := r.read(fields["Handle"].Doc)
	require.Len(t, annos, 2)
	assert.Equal(t, remoteresource.MarkerName, annos[0].QualifiedName)
	assert.Equal(t, "api.go", annos[0].Pos.Filename)
	assert.Equal(t, 10, annos[0].Pos.Line)
	assert.Equal(t, 5, annos[0].Pos.Column)
	arg, ok := annos[0].Arg("Name")
	require.True(t, ok)
	assert.Equal(t, "fetchUser", arg.Value.Str)
	arg, ok = annos[0].Arg("Retries")
	require.True(t, ok)
	assert.EqualValues(t, 3, arg.Value.Int)
	assert.Equal(t, "example.com/markers.Audit", annos[1].QualifiedName)

	annos = r.read(fields["Email"].Doc)
	require.Len(t, annos, 1)
	assert.Equal(t, remoteresource.MarkerName, annos[0].QualifiedName)

	annos = r.read(fields["Misc"].Doc)
	require.Len(t, annos, 1)
	assert.Equal(t, "other.Thing", annos[0].QualifiedName)
	diags := bag.Items()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "repeated annotation")
	assert.Equal(t, 18, diags[0].Pos.Line)
}

func TestExtractAnnotations(t *testing.T) {
	fset, _, fields := parseTestFile(t)
	buf, adjuster := extractAnnotations(fset, fields["Handle"].Doc)
	require.NotNil(t, buf)
	assert.Equal(t, " @rr.RemoteResource{Name: \"fetchUser\", retries: 3}\n @markers.Audit\n", buf.String())
	// one entry per extracted line plus the end
	assert.Len(t, adjuster, 3)

	buf, _ = extractAnnotations(fset, nil)
	assert.Nil(t, buf)
}
