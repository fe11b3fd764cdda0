package config

import (
	"fmt"
	"strings"
	"time"

	// embeds the zoneinfo database so the schedule timezone always resolves
	_ "time/tzdata"

	"github.com/kat-co/vala"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/thrasher-corp/volatilitytrader/database"
	"github.com/thrasher-corp/volatilitytrader/log"
)

// Default returns the configuration used when no file is supplied
func Default() Config {
	return Config{
		Account: AccountConfig{StartingEquity: defaultStartingEquity},
		Risk: RiskConfig{
			RiskFraction:     defaultRiskFraction,
			PerSymbolMax:     defaultPerSymbolMax,
			MaxGrossExposure: defaultMaxGrossExposure,
			MaxPositions:     defaultMaxPositions,
			DailyLossHalt:    defaultDailyLossHalt,
			Cooldown:         defaultCooldown,
		},
		Fill: FillConfig{
			SlippageBps:         defaultSlippageBps,
			SpreadBps:           defaultSpreadBps,
			MinSpreadBps:        defaultMinSpreadBps,
			MaxLimitSpreadBps:   defaultMaxLimitSpreadBps,
			VolumeParticipation: defaultVolumeParticipation,
		},
		Strategy: StrategyConfig{
			MinHistory:      defaultMinHistory,
			EMAFast:         50,
			EMASlow:         200,
			RSIPeriod:       14,
			ATRPeriod:       14,
			BollingerPeriod: 20,
			BollingerStdDev: 2,
			RVOLLookback:    20,
			WidthLookback:   20,
			RVOLMin:         1.8,
			ATRPercentMin:   4,
			RSIMax:          35,
		},
		Schedule: ScheduleConfig{
			ScanTimes:     append([]string(nil), defaultScanTimes...),
			ScanTolerance: defaultScanTolerance,
			NoNewAfter:    defaultNoNewAfter,
			CloseAllBy:    defaultCloseAllBy,
			Timezone:      defaultTimezone,
		},
		Logging: log.GenDefaultSettings(),
		Database: database.Config{
			Driver:            database.DBSQLite3,
			ConnectionDetails: database.ConnectionDetails{Database: "volatilitytrader.db"},
		},
	}
}

// Load reads a JSON, YAML or TOML file through viper on top of the defaults.
// An empty path only applies the defaults and VT_ prefixed environment
// overrides, for example VT_RISK_MAXPOSITIONS=5
func Load(path string) (Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, &cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Debugf(log.ConfigMgr, "loaded config file %s", v.ConfigFileUsed())
	}
	if err := v.Unmarshal(&cfg, zeroFields); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// zeroFields replaces slices such as schedule.scanTimes instead of
// overwriting the leading elements of the defaults
func zeroFields(dc *mapstructure.DecoderConfig) {
	dc.ZeroFields = true
}

// setDefaults registers every leaf key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("account.startingEquity", c.Account.StartingEquity)

	v.SetDefault("risk.riskFraction", c.Risk.RiskFraction)
	v.SetDefault("risk.perSymbolMax", c.Risk.PerSymbolMax)
	v.SetDefault("risk.maxGrossExposure", c.Risk.MaxGrossExposure)
	v.SetDefault("risk.maxPositions", c.Risk.MaxPositions)
	v.SetDefault("risk.dailyLossHalt", c.Risk.DailyLossHalt)
	v.SetDefault("risk.cooldown", c.Risk.Cooldown)

	v.SetDefault("fill.slippageBps", c.Fill.SlippageBps)
	v.SetDefault("fill.spreadBps", c.Fill.SpreadBps)
	v.SetDefault("fill.minSpreadBps", c.Fill.MinSpreadBps)
	v.SetDefault("fill.maxLimitSpreadBps", c.Fill.MaxLimitSpreadBps)
	v.SetDefault("fill.volumeParticipation", c.Fill.VolumeParticipation)

	v.SetDefault("strategy.minHistory", c.Strategy.MinHistory)
	v.SetDefault("strategy.emaFast", c.Strategy.EMAFast)
	v.SetDefault("strategy.emaSlow", c.Strategy.EMASlow)
	v.SetDefault("strategy.rsiPeriod", c.Strategy.RSIPeriod)
	v.SetDefault("strategy.atrPeriod", c.Strategy.ATRPeriod)
	v.SetDefault("strategy.bollingerPeriod", c.Strategy.BollingerPeriod)
	v.SetDefault("strategy.bollingerStdDev", c.Strategy.BollingerStdDev)
	v.SetDefault("strategy.rvolLookback", c.Strategy.RVOLLookback)
	v.SetDefault("strategy.widthLookback", c.Strategy.WidthLookback)
	v.SetDefault("strategy.rvolMin", c.Strategy.RVOLMin)
	v.SetDefault("strategy.atrPercentMin", c.Strategy.ATRPercentMin)
	v.SetDefault("strategy.rsiMax", c.Strategy.RSIMax)

	v.SetDefault("schedule.enabled", c.Schedule.Enabled)
	v.SetDefault("schedule.scanTimes", c.Schedule.ScanTimes)
	v.SetDefault("schedule.scanTolerance", c.Schedule.ScanTolerance)
	v.SetDefault("schedule.noNewAfter", c.Schedule.NoNewAfter)
	v.SetDefault("schedule.closeAllBy", c.Schedule.CloseAllBy)
	v.SetDefault("schedule.timezone", c.Schedule.Timezone)

	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.output", c.Logging.Output)
	v.SetDefault("logging.fileName", c.Logging.FileName)

	v.SetDefault("database.enabled", c.Database.Enabled)
	v.SetDefault("database.verbose", c.Database.Verbose)
	v.SetDefault("database.driver", c.Database.Driver)
	v.SetDefault("database.host", c.Database.Host)
	v.SetDefault("database.port", c.Database.Port)
	v.SetDefault("database.username", c.Database.Username)
	v.SetDefault("database.password", c.Database.Password)
	v.SetDefault("database.database", c.Database.Database)
	v.SetDefault("database.sslmode", c.Database.SSLMode)
}

// Validate checks every section and returns an error wrapping ErrInvalidConfig
func (c *Config) Validate() error {
	err := vala.BeginValidation().Validate(
		positive(c.Account.StartingEquity, "account.startingEquity"),
		fraction(c.Risk.RiskFraction, "risk.riskFraction"),
		fraction(c.Risk.PerSymbolMax, "risk.perSymbolMax"),
		fraction(c.Risk.MaxGrossExposure, "risk.maxGrossExposure"),
		vala.GreaterThan(c.Risk.MaxPositions, 0, "risk.maxPositions"),
		nonPositive(c.Risk.DailyLossHalt, "risk.dailyLossHalt"),
		nonNegative(c.Risk.Cooldown.Seconds(), "risk.cooldown"),
		nonNegative(c.Fill.SlippageBps, "fill.slippageBps"),
		nonNegative(c.Fill.SpreadBps, "fill.spreadBps"),
		nonNegative(c.Fill.MinSpreadBps, "fill.minSpreadBps"),
		nonNegative(c.Fill.MaxLimitSpreadBps, "fill.maxLimitSpreadBps"),
		fraction(c.Fill.VolumeParticipation, "fill.volumeParticipation"),
		vala.GreaterThan(c.Strategy.MinHistory, 0, "strategy.minHistory"),
		vala.GreaterThan(c.Strategy.EMAFast, 0, "strategy.emaFast"),
		vala.GreaterThan(c.Strategy.EMASlow, 0, "strategy.emaSlow"),
		vala.GreaterThan(c.Strategy.RSIPeriod, 0, "strategy.rsiPeriod"),
		vala.GreaterThan(c.Strategy.ATRPeriod, 0, "strategy.atrPeriod"),
		vala.GreaterThan(c.Strategy.BollingerPeriod, 1, "strategy.bollingerPeriod"),
		positive(c.Strategy.BollingerStdDev, "strategy.bollingerStdDev"),
		vala.GreaterThan(c.Strategy.RVOLLookback, 0, "strategy.rvolLookback"),
		vala.GreaterThan(c.Strategy.WidthLookback, 0, "strategy.widthLookback"),
		vala.StringNotEmpty(c.Schedule.Timezone, "schedule.timezone"),
	).Check()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err = time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("%w: schedule.timezone %v", ErrInvalidConfig, err)
	}
	clocks := append([]string{c.Schedule.NoNewAfter, c.Schedule.CloseAllBy}, c.Schedule.ScanTimes...)
	for i := range clocks {
		if _, err = time.Parse(ClockFormat, clocks[i]); err != nil {
			return fmt.Errorf("%w: %w %q", ErrInvalidConfig, errInvalidClock, clocks[i])
		}
	}
	return nil
}

func positive(v float64, name string) vala.Checker {
	return func() (bool, string) {
		return v > 0, fmt.Sprintf("parameter %s must be positive, got %v", name, v)
	}
}

func nonNegative(v float64, name string) vala.Checker {
	return func() (bool, string) {
		return v >= 0, fmt.Sprintf("parameter %s must not be negative, got %v", name, v)
	}
}

func nonPositive(v float64, name string) vala.Checker {
	return func() (bool, string) {
		return v <= 0, fmt.Sprintf("parameter %s must not be positive, got %v", name, v)
	}
}

func fraction(v float64, name string) vala.Checker {
	return func() (bool, string) {
		return v > 0 && v <= 1, fmt.Sprintf("parameter %s must be within (0, 1], got %v", name, v)
	}
}
