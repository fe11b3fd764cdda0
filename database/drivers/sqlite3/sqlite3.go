package sqlite

import (
	"database/sql"
	"path/filepath"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/thrasher-corp/volatilitytrader/database"
)

// MemoryDatabase opens a private in-memory database when used as the database name
const MemoryDatabase = ":memory:"

// Connect opens a connection to sqlite database and returns a pointer to database.Instance
func Connect(dataPath string, cfg *database.Config) (*database.Instance, error) {
	if cfg == nil || cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	databaseFullLocation := cfg.Database
	if cfg.Database != MemoryDatabase && dataPath != "" {
		databaseFullLocation = filepath.Join(dataPath, cfg.Database)
	}
	dbConn, err := sql.Open(database.DBSQLite3, databaseFullLocation)
	if err != nil {
		return nil, err
	}
	inst, err := database.NewInstance(dbConn, database.DBSQLite3)
	if err != nil {
		return nil, err
	}
	inst.Verbose = cfg.Verbose
	return inst, nil
}
