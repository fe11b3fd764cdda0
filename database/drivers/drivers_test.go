package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/volatilitytrader/database"
	sqlite "github.com/thrasher-corp/volatilitytrader/database/drivers/sqlite3"
)

func TestConnect(t *testing.T) {
	t.Parallel()
	_, err := Connect("", nil)
	require.ErrorIs(t, err, database.ErrDatabaseSupportDisabled)
	_, err = Connect("", &database.Config{Enabled: true, Driver: "mongo"})
	require.ErrorIs(t, err, database.ErrUnsupportedDriver)

	inst, err := Connect(t.TempDir(), &database.Config{
		Enabled:           true,
		Driver:            "sqlite3",
		ConnectionDetails: database.ConnectionDetails{Database: sqlite.MemoryDatabase},
	})
	require.NoError(t, err)
	assert.Equal(t, database.DBSQLite3, inst.Dialect)
	require.NoError(t, inst.Ping())
	require.NoError(t, inst.CloseConnection())
}
