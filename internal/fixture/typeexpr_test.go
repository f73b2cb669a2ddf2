package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jopa/internal/types"
)

func TestParseTypeExpr(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"  java.lang.String ", "java.lang.String"},
		{"int[][]", "int[][]"},
		{"String...", "String..."},
		{"p.Box<T>", "p.Box<T>"},
		{"Map<String,List<? extends Number>>", "Map<String, List<? extends Number>>"},
		{"Box<?>[]", "Box<?>[]"},
		{"Comparable<? super T>", "Comparable<? super T>"},
		{"p.Outer$1Local", "p.Outer$1Local"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			te, err := parseTypeExpr(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, te.String())
		})
	}
}

func TestParseTypeExprShape(t *testing.T) {
	te, err := parseTypeExpr("Box<? super Integer, ?>[]...")
	require.NoError(t, err)
	assert.Equal(t, "Box", te.Name)
	assert.True(t, te.HasArgs)
	assert.Equal(t, uint32(1), te.Dims)
	assert.True(t, te.Varargs)
	require.Len(t, te.Args, 2)
	assert.Equal(t, types.WildcardSuper, te.Args[0].Wildcard)
	assert.Equal(t, "Integer", te.Args[0].Bound.Name)
	assert.Equal(t, types.WildcardUnbounded, te.Args[1].Wildcard)
	assert.Nil(t, te.Args[1].Bound)
}

func TestParseTypeExprErrors(t *testing.T) {
	for _, src := range []string{"", "<T>", "Box<", "Box<String", "int[", "a.", "String x", "Box<String>>"} {
		t.Run(src, func(t *testing.T) {
			_, err := parseTypeExpr(src)
			assert.Error(t, err)
		})
	}
}

func TestParseTypeParamDecl(t *testing.T) {
	decl, err := parseTypeParamDecl("T extends Number & Comparable<T>")
	require.NoError(t, err)
	assert.Equal(t, "T", decl.Name)
	require.Len(t, decl.Bounds, 2)
	assert.Equal(t, "Comparable<T>", decl.Bounds[1].String())

	decl, err = parseTypeParamDecl("U")
	require.NoError(t, err)
	assert.Empty(t, decl.Bounds)

	_, err = parseTypeParamDecl("T extends")
	assert.Error(t, err)
	_, err = parseTypeParamDecl("T super X")
	assert.Error(t, err)
}

func TestParseLocalDecl(t *testing.T) {
	te, name, err := parseLocalDecl("java.util.List<String> items")
	require.NoError(t, err)
	assert.Equal(t, "items", name)
	assert.Equal(t, "java.util.List<String>", te.String())

	_, _, err = parseLocalDecl("int")
	assert.Error(t, err)
}
