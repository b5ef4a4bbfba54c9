package cassandra

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"golang.org/x/time/rate"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/gologger"
)

var logger = gologger.Component("cassandra")

// Session implements core.Session on top of a gocql session.
type Session struct {
	session *gocql.Session
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClusterConfig translates the cassandra config section into a gocql
// cluster configuration.
func NewClusterConfig(cfg config.InternalCassandraConfig) (*gocql.ClusterConfig, error) {
	consistency, err := gocql.ParseConsistencyWrapper(strings.ToUpper(cfg.Consistency))
	if err != nil {
		return nil, fmt.Errorf("consistency: %w", err)
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = consistency
	cluster.ProtoVersion = cfg.ProtocolVersion
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.ConnectTimeout

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	ssl, err := sslOptions(cfg.TLS)
	if err != nil {
		return nil, err
	}
	cluster.SslOpts = ssl
	return cluster, nil
}

// NewSession connects to the cluster described by cfg.
func NewSession(cfg config.InternalCassandraConfig) (*Session, error) {
	cluster, err := NewClusterConfig(cfg)
	if err != nil {
		return nil, err
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", strings.Join(cfg.Hosts, ","), err)
	}

	logger.Info().Strs("hosts", cfg.Hosts).Int("port", cfg.Port).Str("keyspace", cfg.Keyspace).Msg("connected")
	return newSession(session, cfg), nil
}

func newSession(session *gocql.Session, cfg config.InternalCassandraConfig) *Session {
	s := &Session{session: session, timeout: cfg.Timeout}
	if cfg.RateLimit > 0 {
		burst := int(math.Max(1, math.Ceil(cfg.RateLimit)))
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return s
}

// Execute runs one statement and returns a single page of rows. The page
// state is always set so the driver never fetches further pages on its own.
func (s *Session) Execute(ctx context.Context, stmt core.Statement) (*core.ResultPage, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	args, err := toDriverArgs(stmt.Args)
	if err != nil {
		return nil, err
	}

	q := s.session.Query(stmt.Text, args...).WithContext(ctx).PageState(stmt.PageState)
	if stmt.PageSize > 0 {
		q = q.PageSize(stmt.PageSize)
	}

	start := time.Now()
	iter := q.Iter()
	page := &core.ResultPage{}
	for {
		raw := make(map[string]interface{})
		if !iter.MapScan(raw) {
			break
		}
		page.Rows = append(page.Rows, normalizeRow(raw))
	}
	if next := iter.PageState(); len(next) > 0 {
		page.NextPageState = append([]byte(nil), next...)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("statement", stmt.Text).
		Int("rows", len(page.Rows)).
		Bool("more", page.HasMore()).
		Dur("took", time.Since(start)).
		Msg("executed")
	return page, nil
}

// Ping checks that the cluster answers a trivial query and returns its
// release version.
func (s *Session) Ping(ctx context.Context) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var version string
	if err := s.session.Query("SELECT release_version FROM system.local").WithContext(ctx).Scan(&version); err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}
	return version, nil
}

// Close releases the connection pool.
func (s *Session) Close() error {
	s.session.Close()
	return nil
}
