package config

import (
	"errors"
	"time"

	"github.com/thrasher-corp/volatilitytrader/database"
	"github.com/thrasher-corp/volatilitytrader/log"
)

// Constants declared here are filename strings and environment settings
const (
	File      = "config.json"
	EnvPrefix = "VT"

	defaultStartingEquity      = 100000
	defaultRiskFraction        = 0.01
	defaultPerSymbolMax        = 0.15
	defaultMaxGrossExposure    = 0.30
	defaultMaxPositions        = 3
	defaultDailyLossHalt       = -0.03
	defaultCooldown            = 4 * time.Hour
	defaultSlippageBps         = 5
	defaultSpreadBps           = 10
	defaultMinSpreadBps        = 3
	defaultMaxLimitSpreadBps   = 10
	defaultVolumeParticipation = 0.05
	defaultMinHistory          = 200
	defaultScanTolerance       = time.Minute
	defaultTimezone            = "America/New_York"
	defaultNoNewAfter          = "15:00"
	defaultCloseAllBy          = "15:45"

	// ClockFormat is the layout of schedule wall clock times
	ClockFormat = "15:04"
)

var defaultScanTimes = []string{"09:45", "11:00", "13:00", "14:30"}

var (
	// ErrInvalidConfig wraps every validation failure
	ErrInvalidConfig = errors.New("invalid config")

	errInvalidClock = errors.New("invalid wall clock time")
)

// Config is the immutable run configuration. Build it once with Default or
// Load and pass it by value
type Config struct {
	Account  AccountConfig   `json:"account" mapstructure:"account"`
	Risk     RiskConfig      `json:"risk" mapstructure:"risk"`
	Fill     FillConfig      `json:"fill" mapstructure:"fill"`
	Strategy StrategyConfig  `json:"strategy" mapstructure:"strategy"`
	Schedule ScheduleConfig  `json:"schedule" mapstructure:"schedule"`
	Logging  log.Config      `json:"logging" mapstructure:"logging"`
	Database database.Config `json:"database" mapstructure:"database"`
}

// AccountConfig holds the simulated account settings
type AccountConfig struct {
	StartingEquity float64 `json:"startingEquity" mapstructure:"startingEquity"`
}

// RiskConfig holds sizing and circuit breaker limits. Fractions are of equity
type RiskConfig struct {
	RiskFraction     float64       `json:"riskFraction" mapstructure:"riskFraction"`
	PerSymbolMax     float64       `json:"perSymbolMax" mapstructure:"perSymbolMax"`
	MaxGrossExposure float64       `json:"maxGrossExposure" mapstructure:"maxGrossExposure"`
	MaxPositions     int           `json:"maxPositions" mapstructure:"maxPositions"`
	DailyLossHalt    float64       `json:"dailyLossHalt" mapstructure:"dailyLossHalt"`
	Cooldown         time.Duration `json:"cooldown" mapstructure:"cooldown"`
}

// FillConfig holds the fill simulation parameters
type FillConfig struct {
	SlippageBps         float64 `json:"slippageBps" mapstructure:"slippageBps"`
	SpreadBps           float64 `json:"spreadBps" mapstructure:"spreadBps"`
	MinSpreadBps        float64 `json:"minSpreadBps" mapstructure:"minSpreadBps"`
	MaxLimitSpreadBps   float64 `json:"maxLimitSpreadBps" mapstructure:"maxLimitSpreadBps"`
	VolumeParticipation float64 `json:"volumeParticipation" mapstructure:"volumeParticipation"`
}

// StrategyConfig holds indicator periods and signal thresholds
type StrategyConfig struct {
	MinHistory      int     `json:"minHistory" mapstructure:"minHistory"`
	EMAFast         int     `json:"emaFast" mapstructure:"emaFast"`
	EMASlow         int     `json:"emaSlow" mapstructure:"emaSlow"`
	RSIPeriod       int     `json:"rsiPeriod" mapstructure:"rsiPeriod"`
	ATRPeriod       int     `json:"atrPeriod" mapstructure:"atrPeriod"`
	BollingerPeriod int     `json:"bollingerPeriod" mapstructure:"bollingerPeriod"`
	BollingerStdDev float64 `json:"bollingerStdDev" mapstructure:"bollingerStdDev"`
	RVOLLookback    int     `json:"rvolLookback" mapstructure:"rvolLookback"`
	WidthLookback   int     `json:"widthLookback" mapstructure:"widthLookback"`
	RVOLMin         float64 `json:"rvolMin" mapstructure:"rvolMin"`
	ATRPercentMin   float64 `json:"atrPercentMin" mapstructure:"atrPercentMin"`
	RSIMax          float64 `json:"rsiMax" mapstructure:"rsiMax"`
}

// ScheduleConfig holds trading hours expressed as wall clock times in Timezone
type ScheduleConfig struct {
	Enabled       bool          `json:"enabled" mapstructure:"enabled"`
	ScanTimes     []string      `json:"scanTimes" mapstructure:"scanTimes"`
	ScanTolerance time.Duration `json:"scanTolerance" mapstructure:"scanTolerance"`
	NoNewAfter    string        `json:"noNewAfter" mapstructure:"noNewAfter"`
	CloseAllBy    string        `json:"closeAllBy" mapstructure:"closeAllBy"`
	Timezone      string        `json:"timezone" mapstructure:"timezone"`
}
