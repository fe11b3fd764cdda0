package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/thrasher-corp/volatilitytrader/backtest"
	"github.com/thrasher-corp/volatilitytrader/common"
	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/data/csv"
	"github.com/thrasher-corp/volatilitytrader/data/polygon"
	"github.com/thrasher-corp/volatilitytrader/data/synthetic"
	"github.com/thrasher-corp/volatilitytrader/database"
	"github.com/thrasher-corp/volatilitytrader/database/drivers"
	"github.com/thrasher-corp/volatilitytrader/database/repository/candle"
	"github.com/thrasher-corp/volatilitytrader/database/repository/result"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/log"
	"github.com/thrasher-corp/volatilitytrader/report"
	"github.com/urfave/cli/v2"
)

const apiKeyEnv = "POLYGON_API_KEY"

var (
	errMissingAPIKey = errors.New(apiKeyEnv + " is not set, add it to your environment before running")
	errNoDatabase    = errors.New("--save-results requires a database")
)

type options struct {
	symbols         []string
	start, end      time.Time
	timespan        string
	multiplier      int
	equity          float64
	polygon         bool
	polygonURL      string
	polygonRequests int
	respectSchedule bool
	configPath      string
	csvPath         string
	days            int
	seed            int64
	jsonPath        string
	saveResults     bool
	verbose         bool
	databasePath    string
	database        database.Config
	apiKey          string
}

func optionsFromContext(c *cli.Context) (*options, error) {
	symbols, err := common.SplitSymbols(c.String("symbols"))
	if err != nil {
		return nil, err
	}
	o := &options{
		symbols:         symbols,
		timespan:        c.String("timespan"),
		multiplier:      c.Int("multiplier"),
		equity:          c.Float64("equity"),
		polygon:         c.Bool("polygon"),
		polygonURL:      c.String("polygon-url"),
		polygonRequests: c.Int("polygon-requests"),
		respectSchedule: c.Bool("respect-schedule"),
		configPath:      c.String("config"),
		csvPath:         c.String("csv"),
		days:            c.Int("days"),
		seed:            c.Int64("seed"),
		jsonPath:        c.String("json"),
		saveResults:     c.Bool("save-results"),
		verbose:         c.Bool("verbose"),
		databasePath:    c.String("database-path"),
		apiKey:          os.Getenv(apiKeyEnv),
		database: database.Config{
			Driver: c.String("database-driver"),
			ConnectionDetails: database.ConnectionDetails{
				Host:     c.String("database-host"),
				Port:     uint16(c.Uint("database-port")),
				Username: c.String("database-user"),
				Password: c.String("database-password"),
				Database: c.String("database-name"),
				SSLMode:  c.String("database-sslmode"),
			},
		},
	}
	if o.start, err = time.Parse(common.DateFormat, c.String("start")); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if o.end, err = time.Parse(common.DateFormat, c.String("end")); err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	return o, nil
}

// buildConfig loads the file config, if any, then applies flag overrides
func buildConfig(o *options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.equity > 0 {
		cfg.Account.StartingEquity = o.equity
	}
	if o.polygon || o.respectSchedule {
		cfg.Schedule.Enabled = true
	}
	if o.database.Driver != "" {
		d := o.database
		d.Enabled = true
		d.Verbose = o.verbose
		cfg.Database = d
	}
	if o.verbose {
		cfg.Logging.Level = "DEBUG|INFO|WARN|ERROR"
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, o *options, out io.Writer) error {
	cfg, err := buildConfig(o)
	if err != nil {
		return err
	}
	if err = log.SetupGlobalLogger(cfg.Logging); err != nil {
		return err
	}
	defer func() {
		if err := log.CloseLogFile(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()
	if o.polygon && o.apiKey == "" {
		return errMissingAPIKey
	}
	if o.saveResults && !cfg.Database.Enabled {
		return errNoDatabase
	}

	var db *database.Instance
	if cfg.Database.Enabled {
		if db, err = drivers.Connect(o.databasePath, &cfg.Database); err != nil {
			return err
		}
		defer func() {
			if err := db.CloseConnection(); err != nil {
				log.Errorln(log.DatabaseMgr, err)
			}
		}()
		if err = candle.Migrate(ctx, db); err != nil {
			return err
		}
		if err = result.Migrate(ctx, db); err != nil {
			return err
		}
	}

	bars, err := loadBars(ctx, o, db)
	if err != nil {
		return err
	}
	bt, err := backtest.New(cfg)
	if err != nil {
		return err
	}
	res, err := bt.Run(bars)
	if err != nil {
		return err
	}

	symbols := kline.Symbols(bars)
	now := time.Now()
	data, err := report.New(res, symbols, now)
	if err != nil {
		return err
	}
	if err = data.Print(out); err != nil {
		return err
	}
	if o.jsonPath != "" {
		if err = data.Save(o.jsonPath); err != nil {
			return err
		}
		log.Infof(log.BackTester, "report written to %s", o.jsonPath)
	}
	if o.saveResults {
		saved, err := result.FromResult(res, symbols, now)
		if err != nil {
			return err
		}
		if err = result.Save(ctx, db, saved); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved run %s\n", saved.ID)
	}
	return nil
}

func loadBars(ctx context.Context, o *options, db *database.Instance) (map[string][]kline.Bar, error) {
	switch {
	case o.csvPath != "":
		return csv.Load(o.csvPath)
	case o.polygon:
		return polygonBars(ctx, o, db)
	default:
		return synthetic.New(o.seed).Universe(o.symbols, o.days, time.Now().UTC().Truncate(24*time.Hour))
	}
}

// polygonBars serves each symbol from the candle cache when it holds bars for
// the range, fetching and caching the rest
func polygonBars(ctx context.Context, o *options, db *database.Instance) (map[string][]kline.Bar, error) {
	if err := common.StartEndTimeCheck(o.start, o.end); err != nil {
		return nil, err
	}
	client, err := polygon.New(o.apiKey, polygon.DefaultInterval, o.polygonRequests)
	if err != nil {
		return nil, err
	}
	if o.polygonURL != "" {
		client.BaseURL = o.polygonURL
	}
	timeframe := fmt.Sprintf("%d%s", o.multiplier, strings.ToLower(o.timespan))
	// the range end date is inclusive
	until := o.end.Add(24*time.Hour - time.Millisecond)
	resp := make(map[string][]kline.Bar, len(o.symbols))
	for _, sym := range o.symbols {
		if db != nil {
			cached, err := candle.Series(ctx, db, sym, timeframe, o.start, until)
			if err == nil {
				log.Infof(log.DataHistory, "%s %d cached %s bars", sym, len(cached), timeframe)
				resp[sym] = cached
				continue
			}
			if !errors.Is(err, candle.ErrNoCandleDataFound) {
				return nil, err
			}
		}
		bars, err := client.FetchBars(ctx, polygon.Request{
			Symbol:     sym,
			Start:      o.start.Format(common.DateFormat),
			End:        o.end.Format(common.DateFormat),
			Multiplier: o.multiplier,
			Timespan:   o.timespan,
			Adjusted:   true,
		})
		if err != nil {
			return nil, err
		}
		if db != nil && len(bars) > 0 {
			if _, err = candle.Insert(ctx, db, timeframe, bars); err != nil {
				return nil, err
			}
		}
		resp[sym] = bars
	}
	return resp, nil
}
