package processor

import (
	goparser "go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireValidGo checks that src parses as a Go file.
func requireValidGo(t *testing.T, src string) {
	t.Helper()
	_, err := goparser.ParseFile(token.NewFileSet(), "gen.go", src, 0)
	require.NoError(t, err, src)
}

func TestRun_AliasAndGenericProperty(t *testing.T) {
	emptyIface := types.NewInterfaceType(nil, nil).Complete()
	anyAlias := types.NewAlias(types.NewTypeName(token.NoPos, nil, "any", nil), emptyIface)
	profilesPkg := types.NewPackage(testPkg.Path, testPkg.Name)
	labelAlias := types.NewAlias(types.NewTypeName(token.NoPos, profilesPkg, "Label", nil), stringType)
	typeParam := types.NewTypeParam(types.NewTypeName(token.NoPos, profilesPkg, "T", nil), emptyIface)

	g := newFakeGraph()
	profile := g.container("Profile", 1)
	g.property(profile, "Nickname", stringType, 3, marker())
	g.property(profile, "Extra", anyAlias, 4)
	g.property(profile, "Tags", types.NewMap(stringType, types.NewSlice(anyAlias)), 5)
	g.property(profile, "Label", labelAlias, 6)
	box := g.container("Box", 11)
	g.property(box, "Label", stringType, 13, marker())
	g.property(box, "Value", typeParam, 14)

	out := newMemOutput()
	var bag Bag
	res, err := newTestPass(t, out.factory, &bag, nil).Run(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"profile"}, artifactNames(res.Artifacts))
	assert.Equal(t, []string{"example.com/profiles/profile_rr.go"}, out.opened)

	src := out.files["example.com/profiles/profile_rr.go"].String()
	requireValidGo(t, src)
	assert.Contains(t, src, "extra interface{}")
	assert.Contains(t, src, "tags map[string][]interface{}")
	assert.Contains(t, src, "label string")

	diags := bag.Items()
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Same(t, box, diags[0].Decl)
	assert.Contains(t, diags[0].Message, "type parameter T")
}

func TestRun_PropertyTypes(t *testing.T) {
	timePkg := types.NewPackage("time", "time")
	timeType := types.NewNamed(types.NewTypeName(token.NoPos, timePkg, "Time", nil), types.NewStruct(nil, nil), nil)
	profilesPkg := types.NewPackage(testPkg.Path, testPkg.Name)
	eventType := types.NewNamed(types.NewTypeName(token.NoPos, profilesPkg, "Event", nil), types.NewStruct(nil, nil), nil)
	callback := types.NewSignatureType(nil, nil, nil,
		types.NewTuple(types.NewParam(token.NoPos, nil, "", stringType)),
		types.NewTuple(types.NewParam(token.NoPos, nil, "", types.Universe.Lookup("error").Type())),
		false)

	g := newFakeGraph()
	c := g.container("Event", 1)
	g.property(c, "Title", stringType, 3, marker())
	g.property(c, "At", timeType, 4)
	g.property(c, "Next", types.NewPointer(eventType), 5)
	g.property(c, "Scores", types.NewArray(intType, 3), 6)
	g.property(c, "OnDone", callback, 7)
	g.property(c, "Err", types.Universe.Lookup("error").Type(), 8)

	out := newMemOutput()
	res, err := newTestPass(t, out.factory, &Bag{}, nil).Run(g)
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)

	src := out.files["example.com/profiles/event_rr.go"].String()
	requireValidGo(t, src)
	assert.Contains(t, src, `"time"`)
	assert.Contains(t, src, "at time.Time")
	assert.Contains(t, src, "next *Event")
	assert.Contains(t, src, "scores [3]int")
	assert.Contains(t, src, "onDone func(string) error")
	assert.Contains(t, src, "err error)")
}

func TestRun_ParamShadowingImport(t *testing.T) {
	g := newFakeGraph()
	c := g.container("Profile", 1)
	g.property(c, "Nickname", stringType, 3, marker())
	g.property(c, "Fmt", stringType, 4)

	out := newMemOutput()
	res, err := newTestPass(t, out.factory, &Bag{}, nil).Run(g)
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, []string{"nickname", "fmt2"}, paramNames(res.Artifacts[0]))

	src := out.files["example.com/profiles/profile_rr.go"].String()
	requireValidGo(t, src)
	assert.Contains(t, src, "func profile(nickname string, fmt2 string)")
}

func TestRun_SameGeneratedFile(t *testing.T) {
	g := newFakeGraph()
	upper := g.container("UserID", 1)
	g.property(upper, "Label", stringType, 3, marker(nameArg("fetchUserID", 2)))
	lower := g.container("UserId", 11)
	g.property(lower, "Title", stringType, 13, marker())

	out := newMemOutput()
	var bag Bag
	res, err := newTestPass(t, out.factory, &bag, nil).Run(g)
	assert.Nil(t, res)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, lower.Pos, cfgErr.Pos)
	assert.Contains(t, err.Error(), "UserID and UserId would both be generated into example.com/profiles/user_id_rr.go")
	assert.Empty(t, out.opened)
	assert.Zero(t, bag.Len())
}

func TestParamType(t *testing.T) {
	profilesPkg := types.NewPackage(testPkg.Path, testPkg.Name)
	typeParam := types.NewTypeParam(types.NewTypeName(token.NoPos, profilesPkg, "T", nil), types.NewInterfaceType(nil, nil).Complete())
	generic := types.NewNamed(types.NewTypeName(token.NoPos, profilesPkg, "Box", nil), nil, nil)
	generic.SetTypeParams([]*types.TypeParam{typeParam})
	generic.SetUnderlying(types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, profilesPkg, "Value", typeParam, false),
	}, nil))
	inst, err := types.Instantiate(nil, generic, []types.Type{stringType}, true)
	require.NoError(t, err)

	_, err = paramType(types.NewPointer(inst))
	assert.ErrorContains(t, err, "instantiated generic type")
	_, err = paramType(types.NewSlice(typeParam))
	assert.ErrorContains(t, err, "type parameter T")

	ifaceWithAlias := types.NewInterfaceType([]*types.Func{
		types.NewFunc(token.NoPos, profilesPkg, "Get", types.NewSignatureType(nil, nil, nil, nil,
			types.NewTuple(types.NewParam(token.NoPos, nil, "", types.NewAlias(types.NewTypeName(token.NoPos, profilesPkg, "Name", nil), stringType))),
			false)),
	}, nil).Complete()
	pt, err := paramType(types.Universe.Lookup("error").Type())
	require.NoError(t, err)
	assert.Equal(t, "error", types.TypeString(pt, nil))

	pt, err = paramType(ifaceWithAlias)
	require.NoError(t, err)
	assert.Equal(t, "interface{Get() string}", types.TypeString(pt, nil))
}

func TestNewArtifact_UnsupportedPropertyPosition(t *testing.T) {
	profilesPkg := types.NewPackage(testPkg.Path, testPkg.Name)
	typeParam := types.NewTypeParam(types.NewTypeName(token.NoPos, profilesPkg, "T", nil), types.NewInterfaceType(nil, nil).Complete())
	g := newFakeGraph()
	box := g.container("Box", 1)
	g.property(box, "Label", stringType, 3, marker())
	value := g.property(box, "Value", typeParam, 4)

	a, err := newArtifact(g, box, "box")
	assert.Nil(t, a)
	var posErr *ErrorWithPosition
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, value.Pos, posErr.Pos())
	assert.EqualError(t, posErr.Unwrap(), "property Value: type parameter T cannot be used outside of its generic type")
	assert.Equal(t, "profiles.go:4:2: property Value: type parameter T cannot be used outside of its generic type", err.Error())
}
