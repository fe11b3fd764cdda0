// Package polygon fetches historical aggregate bars from the Polygon REST API
package polygon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/thrasher-corp/volatilitytrader/common/convert"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/log"
	"golang.org/x/time/rate"
)

// New returns a client allowing requests page fetches per interval. A non
// positive interval or request count disables pacing
func New(apiKey string, interval time.Duration, requests int) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		limiter: NewRateLimit(interval, requests),
	}, nil
}

// NewRateLimit spreads actions evenly across interval with a burst of one
func NewRateLimit(interval time.Duration, actions int) *rate.Limiter {
	if actions <= 0 || interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	rps := float64(actions) / interval.Seconds()
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// FetchAll fetches every symbol with the template request, in order
func (c *Client) FetchAll(ctx context.Context, symbols []string, tmpl Request) (map[string][]kline.Bar, error) {
	resp := make(map[string][]kline.Bar, len(symbols))
	for _, sym := range symbols {
		req := tmpl
		req.Symbol = sym
		bars, err := c.FetchBars(ctx, req)
		if err != nil {
			return nil, err
		}
		resp[sym] = bars
	}
	return resp, nil
}

// FetchBars fetches every page of aggregates for one symbol, following
// next_url until the response omits it
func (c *Client) FetchBars(ctx context.Context, req Request) ([]kline.Bar, error) {
	target, err := c.aggregatesURL(&req)
	if err != nil {
		return nil, err
	}
	var bars []kline.Bar
	for pages := 0; target != ""; pages++ {
		body, err := c.get(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %w", req.Symbol, pages+1, err)
		}
		var next string
		bars, next, err = parseAggregates(body, req.Symbol, bars)
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %w", req.Symbol, pages+1, err)
		}
		target = withAPIKey(next, c.apiKey)
	}
	log.Infof(log.DataHistory, "polygon %s %d %s %s to %s: %d bars",
		req.Symbol, req.Multiplier, req.Timespan, req.Start, req.End, len(bars))
	return bars, nil
}

func (c *Client) aggregatesURL(req *Request) (string, error) {
	if req.Symbol == "" {
		return "", errNoSymbol
	}
	if req.Start == "" || req.End == "" {
		return "", errNoRange
	}
	if req.Multiplier <= 0 {
		req.Multiplier = DefaultMultiplier
	}
	if req.Timespan == "" {
		req.Timespan = DefaultTimespan
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	params := url.Values{}
	params.Set("adjusted", strconv.FormatBool(req.Adjusted))
	params.Set("sort", "asc")
	params.Set("limit", strconv.Itoa(req.Limit))
	params.Set(apiKeyParam, c.apiKey)
	path := fmt.Sprintf(aggregatesPath,
		url.PathEscape(req.Symbol), req.Multiplier, req.Timespan, req.Start, req.End)
	return strings.TrimSuffix(c.BaseURL, "/") + path + "?" + params.Encode(), nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: status %d %s", errUnexpectedReply, resp.StatusCode, body)
	}
	return body, nil
}

// parseAggregates appends every result row to bars and returns the
// continuation url, if any. Missing price fields read as zero
func parseAggregates(body []byte, symbol string, bars []kline.Bar) ([]kline.Bar, string, error) {
	if status, err := jsonparser.GetString(body, "status"); err == nil && status == "ERROR" {
		msg, _ := jsonparser.GetString(body, "error")
		return bars, "", fmt.Errorf("%w: %s", errUnexpectedReply, msg)
	}
	results, dataType, _, err := jsonparser.Get(body, "results")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError), dataType == jsonparser.Null:
	case err != nil:
		return bars, "", fmt.Errorf("%w: %w", errUnexpectedReply, err)
	case dataType != jsonparser.Array:
		return bars, "", fmt.Errorf("%w: results is %s", errUnexpectedReply, dataType)
	default:
		var rowErr error
		if _, err = jsonparser.ArrayEach(results, func(row []byte, _ jsonparser.ValueType, _ int, _ error) {
			if rowErr != nil {
				return
			}
			var b kline.Bar
			if b, rowErr = parseRow(row, symbol); rowErr == nil {
				bars = append(bars, b)
			}
		}); err != nil {
			return bars, "", fmt.Errorf("%w: %w", errUnexpectedReply, err)
		}
		if rowErr != nil {
			return bars, "", rowErr
		}
	}
	next, err := jsonparser.GetString(body, "next_url")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return bars, "", fmt.Errorf("%w: next_url %w", errUnexpectedReply, err)
	}
	return bars, next, nil
}

func parseRow(row []byte, symbol string) (kline.Bar, error) {
	b := kline.Bar{Symbol: symbol}
	ms, err := jsonparser.GetInt(row, "t")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return b, fmt.Errorf("%w: t %w", errUnexpectedReply, err)
	}
	b.Timestamp = convert.UnixMillisToTime(ms)
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"o", &b.Open},
		{"h", &b.High},
		{"l", &b.Low},
		{"c", &b.Close},
		{"v", &b.Volume},
	} {
		v, err := jsonparser.GetFloat(row, f.key)
		if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return b, fmt.Errorf("%w: %s %w", errUnexpectedReply, f.key, err)
		}
		*f.dst = v
	}
	return b, nil
}

// withAPIKey appends the api key to a continuation url that lacks it
func withAPIKey(next, apiKey string) string {
	if next == "" || strings.Contains(next, apiKeyParam+"=") {
		return next
	}
	sep := "?"
	if strings.Contains(next, "?") {
		sep = "&"
	}
	return next + sep + apiKeyParam + "=" + url.QueryEscape(apiKey)
}
