package postgres

import (
	"database/sql"
	"fmt"

	// import postgres driver
	_ "github.com/lib/pq"
	"github.com/thrasher-corp/volatilitytrader/database"
)

// DSN builds the lib/pq connection string from the config
func DSN(cfg *database.Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		sslMode)
}

// Connect opens a postgres connection pool and verifies it with a ping
func Connect(cfg *database.Config) (*database.Instance, error) {
	if cfg == nil || cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	dbConn, err := sql.Open(database.DBPostgreSQL, DSN(cfg))
	if err != nil {
		return nil, err
	}
	if err = dbConn.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	inst, err := database.NewInstance(dbConn, database.DBPostgreSQL)
	if err != nil {
		return nil, err
	}
	inst.Verbose = cfg.Verbose
	return inst, nil
}
