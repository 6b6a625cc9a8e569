// FilePath: internal/database/database.go
package database

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
	_ "modernc.org/sqlite"
)

// DB is the relational connection pool shared by every component
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	GetDB() *sqlx.DB
	Driver() string
}

// SQLDB wraps a sqlx pool for one of the supported drivers
type SQLDB struct {
	db     *sqlx.DB
	driver string
}

// New opens a connection pool for the configured driver and verifies it
func New(ctx context.Context, cfg config.DatabaseConfig) (DB, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		// every connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s: %w", cfg.Driver, err)
	}

	nuts.L.Infof("[Database] Connected to %s (%s)", cfg.Driver, describe(cfg))
	return &SQLDB{db: db, driver: cfg.Driver}, nil
}

// Wrap adapts an already opened pool
func Wrap(db *sqlx.DB) DB {
	return &SQLDB{db: db, driver: db.DriverName()}
}

func (s *SQLDB) Close() error {
	return s.db.Close()
}

func (s *SQLDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLDB) GetDB() *sqlx.DB {
	return s.db
}

func (s *SQLDB) Driver() string {
	return s.driver
}

// BuildDSN returns cfg.DSN when set, otherwise a driver-specific DSN from parts
func BuildDSN(cfg config.DatabaseConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	switch cfg.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(portOrDefault(cfg.Port, 3306)))
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case "postgres":
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password='%s' dbname=%s sslmode=%s",
			cfg.Host, portOrDefault(cfg.Port, 5432), cfg.User, cfg.Password, cfg.DBName, sslmode,
		), nil
	case "sqlite":
		if cfg.DBName == "" {
			return "", fmt.Errorf("sqlite requires a database file name")
		}
		if cfg.DBName == ":memory:" || strings.HasPrefix(cfg.DBName, "file:") {
			return cfg.DBName, nil
		}
		return "file:" + cfg.DBName, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func portOrDefault(port, fallback int) int {
	if port <= 0 {
		return fallback
	}
	return port
}

func describe(cfg config.DatabaseConfig) string {
	if cfg.Driver == "sqlite" || cfg.DSN != "" {
		return cfg.DBName
	}
	return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
}
