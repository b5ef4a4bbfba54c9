package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

func TestParseTypeExpression(t *testing.T) {
	t.Run("nested map", func(t *testing.T) {
		expr, err := ParseTypeExpression("map<text, list<int>>")
		require.NoError(t, err)

		assert.Equal(t, "map", expr.Base)
		require.Len(t, expr.Params, 2)
		assert.Equal(t, core.TypeExpression{Base: "text"}, expr.Params[0])

		list := expr.Params[1]
		assert.Equal(t, "list", list.Base)
		require.Len(t, list.Params, 1)
		assert.Equal(t, "int", list.Params[0].Base)
		assert.Empty(t, list.Params[0].Params)

		assert.Equal(t, "map<text, list<int>>", expr.String())
	})

	cases := []struct {
		in        string
		base      string
		numParams int
		canonical string
	}{
		{"int", "int", 0, "int"},
		{"  text  ", "text", 0, "text"},
		{"list<text>", "list", 1, "list<text>"},
		{"map<text,int>", "map", 2, "map<text, int>"},
		{"frozen<map<text, text>>", "frozen", 1, "frozen<map<text, text>>"},
		{"tuple<int, text, frozen<list<uuid>>>", "tuple", 3, "tuple<int, text, frozen<list<uuid>>>"},
		{"map<frozen<tuple<int, int>>, set<text>>", "map", 2, "map<frozen<tuple<int, int>>, set<text>>"},
		{`frozen<"MyType">`, "frozen", 1, `frozen<"MyType">`},
		{"some_future_type", "some_future_type", 0, "some_future_type"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			expr, err := ParseTypeExpression(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.base, expr.Base)
			assert.Len(t, expr.Params, tc.numParams)
			assert.Equal(t, tc.canonical, expr.String())
		})
	}
}

func TestParseTypeExpression_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"list<int",
		"list<int>>",
		"map<text,>",
		"list<>",
		"<int>",
		"map<text, int> extra",
		"int>",
		"a,b",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTypeExpression(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrParse)

			var parseErr *core.ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestMustParseTypeExpression_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseTypeExpression("list<") })
	assert.NotPanics(t, func() { MustParseTypeExpression("list<int>") })
}
