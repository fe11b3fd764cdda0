package drivers

import (
	"fmt"
	"strings"

	"github.com/thrasher-corp/volatilitytrader/database"
	"github.com/thrasher-corp/volatilitytrader/database/drivers/postgres"
	sqlite "github.com/thrasher-corp/volatilitytrader/database/drivers/sqlite3"
	"github.com/thrasher-corp/volatilitytrader/log"
)

// Connect opens the configured driver. dataPath is only used by sqlite3 file databases
func Connect(dataPath string, cfg *database.Config) (*database.Instance, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, database.ErrDatabaseSupportDisabled
	}
	var (
		inst *database.Instance
		err  error
	)
	switch strings.ToLower(cfg.Driver) {
	case database.DBSQLite3, "sqlite":
		inst, err = sqlite.Connect(dataPath, cfg)
	case database.DBPostgreSQL, "postgresql":
		inst, err = postgres.Connect(cfg)
	default:
		return nil, fmt.Errorf("%w %q", database.ErrUnsupportedDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Debugf(log.DatabaseMgr, "connected to %s database %s", inst.Dialect, cfg.Database)
	return inst, nil
}
