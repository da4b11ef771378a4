package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotations(t *testing.T) {
	var input = `
@NoValue
@SimpleValue(123)
@pkg.StructAnnotation{Name: "dilapidacious", Id: 10101, Ratio: -0.25, Enabled: true, Ref: other.Const,}
@Empty{}
@Negative(-42)
@Nothing(nil)
`

	annos, err := ParseAnnotations("foo", []byte(input))
	require.NoError(t, err)
	require.Len(t, annos, 6)

	assert.Equal(t, "NoValue", annos[0].Type.String())
	assert.Nil(t, annos[0].Value)
	assert.Empty(t, annos[0].Fields)
	assert.Equal(t, 2, annos[0].Pos.Line)
	assert.Equal(t, 1, annos[0].Pos.Column)

	require.NotNil(t, annos[1].Value)
	assert.Equal(t, KindInt, annos[1].Value.Kind)
	assert.Equal(t, int64(123), annos[1].Value.Int)

	st := annos[2]
	assert.Equal(t, "pkg", st.Type.PackageAlias)
	assert.Equal(t, "StructAnnotation", st.Type.Name)
	require.Len(t, st.Fields, 5)
	name, ok := st.Field("Name")
	require.True(t, ok)
	assert.Equal(t, KindString, name.Kind)
	assert.Equal(t, "dilapidacious", name.Str)
	assert.Equal(t, 4, name.Pos.Line)
	id, _ := st.Field("Id")
	assert.Equal(t, int64(10101), id.Int)
	ratio, _ := st.Field("Ratio")
	assert.Equal(t, KindFloat, ratio.Kind)
	assert.Equal(t, -0.25, ratio.Float)
	enabled, _ := st.Field("Enabled")
	assert.Equal(t, KindBool, enabled.Kind)
	assert.True(t, enabled.Bool)
	ref, _ := st.Field("Ref")
	assert.Equal(t, KindIdent, ref.Kind)
	assert.Equal(t, "other.Const", ref.Ident.String())

	assert.Empty(t, annos[3].Fields)
	assert.Nil(t, annos[3].Value)

	require.NotNil(t, annos[4].Value)
	assert.Equal(t, int64(-42), annos[4].Value.Int)

	require.NotNil(t, annos[5].Value)
	assert.Equal(t, KindNil, annos[5].Value.Kind)
}

func TestParseAnnotations_FieldLookupIgnoresFirstLetterCase(t *testing.T) {
	annos, err := ParseAnnotations("", []byte(`@RemoteResource{name: "profile"}`))
	require.NoError(t, err)
	require.Len(t, annos, 1)
	v, ok := annos[0].Field("Name")
	require.True(t, ok)
	assert.Equal(t, "profile", v.Str)
	_, ok = annos[0].Field("Other")
	assert.False(t, ok)
}

func TestParseAnnotations_Empty(t *testing.T) {
	annos, err := ParseAnnotations("", []byte("  \n\t\n"))
	require.NoError(t, err)
	assert.Empty(t, annos)
}

func TestParseAnnotations_Errors(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		line, col      int
		errMsgContains string
	}{
		{
			name:           "prose",
			input:          "not an annotation",
			line:           1,
			col:            1,
			errMsgContains: `unexpected "not"`,
		},
		{
			name:           "missing name",
			input:          "@ {}",
			line:           1,
			col:            3,
			errMsgContains: "expecting identifier",
		},
		{
			name:           "missing colon",
			input:          "@Foo{\n  Name \"x\"}",
			line:           2,
			col:            8,
			errMsgContains: `expecting ":"`,
		},
		{
			name:           "unterminated fields",
			input:          `@Foo{Name: "x"`,
			line:           1,
			col:            15,
			errMsgContains: "unexpected end of input",
		},
		{
			name:           "duplicate field",
			input:          `@Foo{Name: "x", Name: "y"}`,
			line:           1,
			col:            17,
			errMsgContains: "duplicate field Name",
		},
		{
			name:           "unclosed paren",
			input:          `@Foo("x" "y")`,
			line:           1,
			col:            10,
			errMsgContains: `expecting ")"`,
		},
		{
			name:           "trailing prose",
			input:          "@Foo\nsome text",
			line:           2,
			col:            1,
			errMsgContains: `expecting "@"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAnnotations("test.go", []byte(tc.input))
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.line, perr.Pos().Line, "line")
			assert.Equal(t, tc.col, perr.Pos().Column, "column")
			assert.Equal(t, "test.go", perr.Pos().Filename)
			assert.Contains(t, err.Error(), tc.errMsgContains)
		})
	}
}
