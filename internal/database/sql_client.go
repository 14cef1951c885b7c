package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

// Config holds the relational connection settings.
type Config struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLClient owns a *sql.DB for one dialect. It implements domain.RelationalStore.
type SQLClient struct {
	db      *sql.DB
	dialect Dialect
}

var _ domain.RelationalStore = (*SQLClient)(nil)

// NewSQLClient wraps an already opened database.
func NewSQLClient(db *sql.DB, dialect Dialect) *SQLClient {
	return &SQLClient{db: db, dialect: dialect}
}

// OpenSQL opens and pings the configured database. Failures wrap domain.ErrConnectivity.
func OpenSQL(ctx context.Context, cfg Config) (*SQLClient, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := BuildDSN(dialect, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s database: %w", domain.ErrConnectivity, dialect, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if dialect == DialectSQLite {
		// a single connection keeps PRAGMA state and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping %s database: %w", domain.ErrConnectivity, dialect, err)
	}
	return NewSQLClient(db, dialect), nil
}

// BuildDSN renders the driver-specific data source name.
func BuildDSN(dialect Dialect, cfg Config) (string, error) {
	switch dialect {
	case DialectMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		// affected rows count matched rows, so an unchanged UPDATE is not a miss
		mc.ClientFoundRows = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil
	case DialectPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode), nil
	case DialectSQLite:
		if strings.HasPrefix(cfg.DBName, "file:") {
			return cfg.DBName, nil
		}
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.DBName), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}

func (c *SQLClient) DB() *sql.DB { return c.db }

func (c *SQLClient) Dialect() Dialect { return c.dialect }

func (c *SQLClient) Close() error { return c.db.Close() }
