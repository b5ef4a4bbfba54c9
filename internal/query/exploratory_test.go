package query

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExploratory(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		want       string
		overridden bool
		prior      int
	}{
		{"replaces limit", "SELECT * FROM t LIMIT 50", "SELECT * FROM t LIMIT 10", true, 50},
		{"appends limit", "SELECT * FROM t", "SELECT * FROM t LIMIT 10", false, 0},
		{"lower case limit", "select * from t limit 500;", "select * from t limit 10;", true, 500},
		{"keeps terminator", "SELECT * FROM t;  ", "SELECT * FROM t LIMIT 10;", false, 0},
		{"before allow filtering", "SELECT * FROM t WHERE x = 1 ALLOW FILTERING", "SELECT * FROM t WHERE x = 1 LIMIT 10 ALLOW FILTERING", false, 0},
		{"limit before allow filtering", "SELECT * FROM t WHERE x = 1 LIMIT 3 ALLOW FILTERING", "SELECT * FROM t WHERE x = 1 LIMIT 10 ALLOW FILTERING", true, 3},
		{"per partition limit untouched", "SELECT * FROM t PER PARTITION LIMIT 2", "SELECT * FROM t PER PARTITION LIMIT 2 LIMIT 10", false, 0},
		{"both limits", "SELECT * FROM t PER PARTITION LIMIT 2 LIMIT 100", "SELECT * FROM t PER PARTITION LIMIT 2 LIMIT 10", true, 100},
		{"limit in string literal", "SELECT * FROM t WHERE note = 'LIMIT 5'", "SELECT * FROM t WHERE note = 'LIMIT 5' LIMIT 10", false, 0},
		{"quoted identifier", `SELECT "limit" FROM t`, `SELECT "limit" FROM t LIMIT 10`, false, 0},
		{"bind marker limit", "SELECT * FROM t LIMIT ?", "SELECT * FROM t LIMIT 10", true, 0},
		{"not a select", "INSERT INTO t (a) VALUES (1)", "INSERT INTO t (a) VALUES (1)", false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex, err := BuildExploratory(tc.in, lo.ToPtr(10))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ex.Statement)
			assert.Equal(t, tc.overridden, ex.Overridden)
			assert.Equal(t, tc.prior, ex.PriorLimit)
		})
	}
}

func TestBuildExploratory_NoCap(t *testing.T) {
	ex, err := BuildExploratory("SELECT * FROM t LIMIT 50", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t LIMIT 50", ex.Statement)
	assert.False(t, ex.Capped)
	assert.False(t, ex.Overridden)

	_, err = BuildExploratory("SELECT * FROM t", lo.ToPtr(0))
	assert.Error(t, err)
}
