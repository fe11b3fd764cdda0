package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Supported driver names
const (
	DBSQLite3    = "sqlite3"
	DBPostgreSQL = "postgres"
)

var (
	// ErrDatabaseSupportDisabled is returned when a repository is used without a connection
	ErrDatabaseSupportDisabled = errors.New("database support disabled")
	// ErrNoDatabaseProvided is returned when the database name or path is empty
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrUnsupportedDriver is returned for driver names other than sqlite3 and postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	errNilInstance = errors.New("database instance is nil")
	errNilSQL      = errors.New("database SQL connection is nil")
)

// Config holds database connection settings
type Config struct {
	Enabled           bool   `json:"enabled" mapstructure:"enabled"`
	Verbose           bool   `json:"verbose" mapstructure:"verbose"`
	Driver            string `json:"driver" mapstructure:"driver"`
	ConnectionDetails `mapstructure:",squash"`
}

// ConnectionDetails holds DSN information
type ConnectionDetails struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     uint16 `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

// Instance holds a live connection along with the dialect it speaks
type Instance struct {
	SQL     *sql.DB
	Dialect string
	Verbose bool
	m       sync.RWMutex
}

// NewInstance wraps an open connection for the given dialect
func NewInstance(con *sql.DB, dialect string) (*Instance, error) {
	if con == nil {
		return nil, errNilSQL
	}
	switch dialect {
	case DBSQLite3:
		con.SetMaxOpenConns(1)
	case DBPostgreSQL:
		con.SetMaxOpenConns(2)
		con.SetMaxIdleConns(1)
		con.SetConnMaxLifetime(time.Hour)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDriver, dialect)
	}
	return &Instance{SQL: con, Dialect: dialect}, nil
}

// Ping pings the database
func (i *Instance) Ping() error {
	if i == nil {
		return errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return errNilSQL
	}
	return i.SQL.Ping()
}

// GetSQL returns the underlying connection or an error when unset
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, ErrDatabaseSupportDisabled
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return nil, ErrDatabaseSupportDisabled
	}
	return i.SQL, nil
}

// CloseConnection safely disconnects the instance
func (i *Instance) CloseConnection() error {
	if i == nil {
		return errNilInstance
	}
	i.m.Lock()
	defer i.m.Unlock()
	if i.SQL == nil {
		return errNilSQL
	}
	err := i.SQL.Close()
	i.SQL = nil
	return err
}

// Rebind converts a query written with ? placeholders into the instance dialect
func (i *Instance) Rebind(query string) string {
	if i == nil || i.Dialect != DBPostgreSQL {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
