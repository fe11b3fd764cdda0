package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/thrasher-corp/volatilitytrader/data/polygon"
	"github.com/thrasher-corp/volatilitytrader/log"
	"github.com/thrasher-corp/volatilitytrader/signaler"
	"github.com/urfave/cli/v2"
)

func main() {
	// a missing .env file is not an error
	_ = godotenv.Load()

	app := &cli.App{
		Name:                 "backtester",
		Usage:                "run the volatility swing strategy over historical or synthetic bars",
		EnableBashCompletion: true,
		Flags:                flags(),
		Action: func(c *cli.Context) error {
			opts, err := optionsFromContext(c)
			if err != nil {
				return err
			}
			return run(c.Context, opts, os.Stdout)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signaler.WaitForInterrupt()
		cancel()
		fmt.Println("backtest interrupted")
		os.Exit(1)
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Errorln(log.Global, err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "symbols", Value: "XYZ,ABC,DEF", Usage: "comma separated list of symbols"},
		&cli.StringFlag{Name: "start", Value: "2023-01-01", Usage: "polygon start date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "end", Value: "2023-06-30", Usage: "polygon end date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "timespan", Value: "minute", Usage: "polygon timespan (minute, hour, day)"},
		&cli.IntFlag{Name: "multiplier", Value: 1, Usage: "polygon timespan multiplier"},
		&cli.Float64Flag{Name: "equity", Usage: "starting account equity, overrides the config file"},
		&cli.BoolFlag{Name: "polygon", Usage: "fetch historical bars from polygon, requires POLYGON_API_KEY"},
		&cli.StringFlag{Name: "polygon-url", Value: polygon.DefaultBaseURL, Usage: "polygon REST base url"},
		&cli.IntFlag{Name: "polygon-requests", Value: polygon.DefaultRequests, Usage: "polygon requests per minute, 0 disables pacing"},
		&cli.BoolFlag{Name: "respect-schedule", Usage: "enforce scan times and the close out schedule, always on in polygon mode"},
		&cli.StringFlag{Name: "config", Usage: "config file (json, yaml or toml)", TakesFile: true},
		&cli.StringFlag{Name: "csv", Usage: "load bars from a csv file instead of generating them", TakesFile: true},
		&cli.IntFlag{Name: "days", Value: 220, Usage: "number of synthetic daily bars per symbol"},
		&cli.Int64Flag{Name: "seed", Value: 1, Usage: "synthetic bar seed"},
		&cli.StringFlag{Name: "json", Usage: "write the JSON report to this path", TakesFile: true},
		&cli.BoolFlag{Name: "save-results", Usage: "persist trades and daily records to the database"},
		&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
		&cli.StringFlag{Name: "database-driver", Usage: "sqlite3 or postgres, enables database support"},
		&cli.StringFlag{Name: "database-name", Usage: "database name or sqlite file"},
		&cli.StringFlag{Name: "database-host", Usage: "postgres host"},
		&cli.UintFlag{Name: "database-port", Usage: "postgres port"},
		&cli.StringFlag{Name: "database-user", Usage: "postgres username"},
		&cli.StringFlag{Name: "database-password", Usage: "postgres password"},
		&cli.StringFlag{Name: "database-sslmode", Usage: "postgres sslmode"},
		&cli.StringFlag{Name: "database-path", Usage: "directory holding sqlite files", TakesFile: true},
	}
}
