package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/thrasher-corp/volatilitytrader/backtest"
	"github.com/thrasher-corp/volatilitytrader/common"
	"github.com/thrasher-corp/volatilitytrader/common/file"
	gctmath "github.com/thrasher-corp/volatilitytrader/common/math"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const priceDecimals = 4

// New converts a run result into report data
func New(res *backtest.Result, symbols []string, generated time.Time) (*Data, error) {
	if res == nil {
		return nil, errNilResult
	}
	d := &Data{
		GeneratedAt:   generated.UTC(),
		Symbols:       symbols,
		Summary:       make(map[string]any),
		Trades:        make([]Trade, len(res.Trades)),
		Dailies:       make([]Daily, len(res.Dailies)),
		OpenPositions: make([]Position, len(res.OpenPositions)),
		LastTrade:     make(map[string]string, len(res.LastTrade)),
		FinalEquity:   res.FinalEquity.StringFixed(2),
		FinalCash:     res.FinalCash.StringFixed(2),
		Slippage:      slippageSummary(res.SlippageSamples),
	}
	if res.Metrics != nil {
		for k, v := range res.Metrics.Summary() {
			d.Summary[k] = finite(v)
		}
	}
	for i := range res.Trades {
		t := &res.Trades[i]
		d.Trades[i] = Trade{
			Symbol:        t.Symbol,
			Kind:          t.Kind.String(),
			Reason:        t.Reason.String(),
			Quantity:      t.Quantity,
			EntryPrice:    t.EntryPrice.StringFixed(priceDecimals),
			ExitPrice:     t.ExitPrice.StringFixed(priceDecimals),
			PnL:           t.PnL.StringFixed(2),
			AdheredToPlan: t.AdheredToPlan,
			EntryTime:     t.EntryTime,
			ExitTime:      t.ExitTime,
			DurationBars:  t.DurationBars,
		}
	}
	for i := range res.Dailies {
		day := &res.Dailies[i]
		date := ""
		if !day.Date.IsZero() {
			date = day.Date.Format(common.DateFormat)
		}
		d.Dailies[i] = Daily{
			Date:   date,
			PnL:    day.PnL.StringFixed(2),
			Trades: day.Trades,
			Equity: day.Equity.StringFixed(2),
		}
	}
	for i := range res.OpenPositions {
		p := &res.OpenPositions[i]
		d.OpenPositions[i] = Position{
			Symbol:    p.Symbol,
			Quantity:  p.Quantity,
			AvgEntry:  p.AvgEntry.StringFixed(priceDecimals),
			Stop:      p.Stop.StringFixed(priceDecimals),
			Target:    p.Target.StringFixed(priceDecimals),
			LastPrice: p.LastPrice.StringFixed(priceDecimals),
			EntryTime: p.EntryTime,
		}
	}
	for sym, t := range res.LastTrade {
		d.LastTrade[sym] = t.UTC().Format(time.RFC3339)
	}
	return d, nil
}

// finite keeps JSON encodable values, infinities become their string form
func finite(v float64) any {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return nil
	}
	return v
}

func slippageSummary(samples []float64) map[string]float64 {
	resp := map[string]float64{"samples": float64(len(samples))}
	if len(samples) == 0 {
		return resp
	}
	resp["mean_bps"] = gctmath.ArithmeticAverage(samples)
	resp["max_bps"] = samples[0]
	for _, s := range samples[1:] {
		resp["max_bps"] = math.Max(resp["max_bps"], s)
	}
	return resp
}

// JSON returns the indented JSON encoding of d
func (d *Data) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", " ")
}

// Save writes the JSON encoding of d to path, creating parent directories
func (d *Data) Save(path string) error {
	data, err := d.JSON()
	if err != nil {
		return err
	}
	return file.Write(path, data)
}

// Print writes the human readable run summary to w
func (d *Data) Print(w io.Writer) error {
	p := message.NewPrinter(language.English)
	if _, err := p.Fprintf(w, "Trades: %d\nDays: %d\nFinal equity: %s\n\n",
		len(d.Trades), len(d.Dailies), d.FinalEquity); err != nil {
		return err
	}

	keys := make([]string, 0, len(d.Summary))
	for k := range d.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		switch v := d.Summary[k].(type) {
		case float64:
			p.Fprintf(tw, "%s\t%.4f\n", k, v)
		default:
			p.Fprintf(tw, "%s\t%v\n", k, v)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(d.Trades) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tKIND\tEXIT\tQTY\tENTRY\tEXIT PRICE\tPNL")
	for i := range d.Trades {
		t := &d.Trades[i]
		p.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			t.Symbol, t.Kind, t.Reason, t.Quantity, t.EntryPrice, t.ExitPrice, t.PnL)
	}
	return tw.Flush()
}
