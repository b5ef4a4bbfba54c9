package cassandra

import (
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		lit  core.DurationLiteral
		want gocql.Duration
	}{
		{"1mo", gocql.Duration{Months: 1}},
		{"1y2mo", gocql.Duration{Months: 14}},
		{"1w3d", gocql.Duration{Days: 10}},
		{"1h30m", gocql.Duration{Nanoseconds: int64(90 * time.Minute)}},
		{"2s5ms7us9ns", gocql.Duration{Nanoseconds: int64(2*time.Second + 5*time.Millisecond + 7*time.Microsecond + 9)}},
		{"-1d2h", gocql.Duration{Days: -1, Nanoseconds: -int64(2 * time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(string(tt.lit), func(t *testing.T) {
			got, err := ParseDuration(tt.lit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []core.DurationLiteral{"", "1", "h", "1x", "1h 2m", "1hx"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, string(bad))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, core.DurationLiteral("0s"), FormatDuration(gocql.Duration{}))
	assert.Equal(t, core.DurationLiteral("1y2mo3d4h5m6s7ms"), FormatDuration(gocql.Duration{
		Months:      14,
		Days:        3,
		Nanoseconds: int64(4*time.Hour + 5*time.Minute + 6*time.Second + 7*time.Millisecond),
	}))
	assert.Equal(t, core.DurationLiteral("-2d"), FormatDuration(gocql.Duration{Days: -2}))

	for _, lit := range []core.DurationLiteral{"1mo", "10d", "1h30m", "3us", "1y1mo1d1ns"} {
		d, err := ParseDuration(lit)
		require.NoError(t, err)
		assert.Equal(t, lit, FormatDuration(d))
	}
}

func TestToDriverArgs(t *testing.T) {
	id := uuid.New()
	args, err := toDriverArgs([]interface{}{
		id,
		core.DurationLiteral("1d"),
		[]interface{}{id},
		map[interface{}]interface{}{"k": core.DurationLiteral("1s")},
		"plain",
		nil,
	})
	require.NoError(t, err)

	assert.Equal(t, gocql.UUID(id), args[0])
	assert.Equal(t, gocql.Duration{Days: 1}, args[1])
	assert.Equal(t, []interface{}{gocql.UUID(id)}, args[2])
	assert.Equal(t, map[interface{}]interface{}{"k": gocql.Duration{Nanoseconds: int64(time.Second)}}, args[3])
	assert.Equal(t, "plain", args[4])
	assert.Nil(t, args[5])

	_, err = toDriverArgs([]interface{}{core.DurationLiteral("soon")})
	assert.ErrorContains(t, err, "bind value 0")
}

func TestNormalizeRow(t *testing.T) {
	id := gocql.TimeUUID()
	row := normalizeRow(map[string]interface{}{
		"id":       id,
		"missing":  gocql.UUID{},
		"addr":     net.ParseIP("10.0.0.1"),
		"ttl":      gocql.Duration{Days: 2},
		"ids":      []gocql.UUID{id},
		"scores":   map[string]int{"a": 1},
		"owner":    map[string]interface{}{"id": id, "name": "x"},
		"pair[0]":  "left",
		"pair[1]":  7,
		"payload":  []byte{0xca, 0xfe},
		"empty":    []string(nil),
		"name":     "alice",
		"created":  time.Unix(0, 0).UTC(),
		"attempts": int32(3),
	})

	assert.Equal(t, uuid.UUID(id), row["id"])
	assert.Nil(t, row["missing"])
	assert.Equal(t, "10.0.0.1", row["addr"])
	assert.Equal(t, core.DurationLiteral("2d"), row["ttl"])
	assert.Equal(t, []interface{}{uuid.UUID(id)}, row["ids"])
	assert.Equal(t, map[interface{}]interface{}{"a": 1}, row["scores"])
	assert.Equal(t, map[string]interface{}{"id": uuid.UUID(id), "name": "x"}, row["owner"])
	assert.Equal(t, []interface{}{"left", 7}, row["pair"])
	assert.NotContains(t, row, "pair[0]")
	assert.Equal(t, []byte{0xca, 0xfe}, row["payload"])
	assert.Nil(t, row["empty"])
	assert.Equal(t, "alice", row["name"])
	assert.Equal(t, time.Unix(0, 0).UTC(), row["created"])
	assert.Equal(t, int32(3), row["attempts"])
}

func TestNewClusterConfig(t *testing.T) {
	cfg := config.DefaultInternalConfig().Cassandra
	cfg.Hosts = []string{"db-1", "db-2"}
	cfg.Keyspace = "shop"
	cfg.Username = "reader"
	cfg.Password = "secret"
	cfg.Consistency = "local_quorum"
	cfg.TLS = config.InternalTLSConfig{Enabled: true, MinVersion: "TLSv1.3", InsecureSkipVerify: true}

	cluster, err := NewClusterConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"db-1", "db-2"}, cluster.Hosts)
	assert.Equal(t, 9042, cluster.Port)
	assert.Equal(t, "shop", cluster.Keyspace)
	assert.Equal(t, gocql.LocalQuorum, cluster.Consistency)
	assert.Equal(t, 4, cluster.ProtoVersion)
	assert.Equal(t, gocql.PasswordAuthenticator{Username: "reader", Password: "secret"}, cluster.Authenticator)
	require.NotNil(t, cluster.SslOpts)
	assert.Equal(t, uint16(tls.VersionTLS13), cluster.SslOpts.Config.MinVersion)
	assert.False(t, cluster.SslOpts.EnableHostVerification)

	cfg.Consistency = "SOME"
	_, err = NewClusterConfig(cfg)
	assert.Error(t, err)
}

func TestNewSession_RateLimit(t *testing.T) {
	cfg := config.DefaultInternalConfig().Cassandra
	assert.Nil(t, newSession(nil, cfg).limiter)

	cfg.RateLimit = 0.5
	s := newSession(nil, cfg)
	require.NotNil(t, s.limiter)
	assert.Equal(t, 1, s.limiter.Burst())

	cfg.RateLimit = 20
	assert.Equal(t, 20, newSession(nil, cfg).limiter.Burst())
}
