package polygon

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Constants for the aggregates endpoint
const (
	DefaultBaseURL    = "https://api.polygon.io"
	DefaultTimespan   = "minute"
	DefaultMultiplier = 1
	DefaultLimit      = 50000
	// DefaultInterval and DefaultRequests match the free plan allowance
	DefaultInterval = time.Minute
	DefaultRequests = 5

	aggregatesPath = "/v2/aggs/ticker/%s/range/%d/%s/%s/%s"
	apiKeyParam    = "apiKey"
	maxErrorBody   = 512
)

var (
	// ErrMissingAPIKey is returned when a client is built without credentials
	ErrMissingAPIKey = errors.New("polygon api key is required")

	errNoSymbol        = errors.New("symbol unset")
	errNoRange         = errors.New("start and end dates are required")
	errUnexpectedReply = errors.New("unexpected polygon response")
)

// Request describes one aggregate bars query. Start and End are YYYY-MM-DD
type Request struct {
	Symbol     string
	Start      string
	End        string
	Multiplier int
	Timespan   string
	Adjusted   bool
	Limit      int
}

// Client fetches aggregate bars, pacing every page request through a shared
// limiter
type Client struct {
	BaseURL string
	HTTP    *http.Client

	apiKey  string
	limiter *rate.Limiter
}
