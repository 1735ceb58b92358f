package kma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const defaultBaseURL = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"

var (
	// ErrUnavailable indicates the provider could not be reached or answered with a non-2xx status.
	ErrUnavailable = errors.New("kma provider unavailable")
	// ErrResult indicates the provider answered with a non-success result code.
	ErrResult = errors.New("kma provider returned an error result")
)

// Config configures the nowcast client. MaxRetries defaults to zero: each lookup
// is a single attempt and a failure is surfaced for the caller to retry.
type Config struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Logger         zerolog.Logger
}

// Nowcast holds the ultra-short-term observation values for one grid cell.
// Missing categories are left nil.
type Nowcast struct {
	Grid          Grid     `json:"grid"`
	BaseDate      string   `json:"baseDate"`
	BaseTime      string   `json:"baseTime"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty"`
	Precipitation *float64 `json:"precipitation,omitempty"`
	PrecipType    *int     `json:"precipType,omitempty"`
	WindSpeed     *float64 `json:"windSpeed,omitempty"`
	WindDirection *float64 `json:"windDirection,omitempty"`
	WindU         *float64 `json:"windU,omitempty"`
	WindV         *float64 `json:"windV,omitempty"`
}

// Client calls the getUltraSrtNcst endpoint behind a circuit breaker.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
	cfg     Config
	logger  zerolog.Logger
}

// NewClient builds a nowcast client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("kma api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 300 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 3 * time.Second
	}

	circuit := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kma",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
	})

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		circuit: circuit,
		cfg:     cfg,
		logger:  cfg.Logger.With().Str("component", "kma_client").Logger(),
	}, nil
}

type nowcastEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items struct {
				Item []struct {
					Category  string `json:"category"`
					ObsrValue string `json:"obsrValue"`
				} `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// Nowcast fetches current conditions for grid at base.
func (c *Client) Nowcast(ctx context.Context, grid Grid, base BaseTime) (Nowcast, error) {
	query := url.Values{
		"pageNo":    {"1"},
		"numOfRows": {"10"},
		"dataType":  {"JSON"},
		"base_date": {base.Date},
		"base_time": {base.Time},
		"nx":        {strconv.Itoa(grid.X)},
		"ny":        {strconv.Itoa(grid.Y)},
	}
	// data.go.kr issues service keys already URL-encoded.
	endpoint := fmt.Sprintf("%s/getUltraSrtNcst?serviceKey=%s&%s", c.baseURL, c.apiKey, query.Encode())

	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return Nowcast{}, err
	}

	var envelope nowcastEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Nowcast{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	header := envelope.Response.Header
	if header.ResultCode != "00" {
		return Nowcast{}, fmt.Errorf("%w: %s %s", ErrResult, header.ResultCode, header.ResultMsg)
	}

	nowcast := Nowcast{Grid: grid, BaseDate: base.Date, BaseTime: base.Time}
	for _, item := range envelope.Response.Body.Items.Item {
		value, err := strconv.ParseFloat(strings.TrimSpace(item.ObsrValue), 64)
		if err != nil {
			c.logger.Debug().Str("category", item.Category).Str("value", item.ObsrValue).Msg("skipping non-numeric observation")
			continue
		}
		switch item.Category {
		case "T1H":
			nowcast.Temperature = &value
		case "REH":
			nowcast.Humidity = &value
		case "RN1":
			nowcast.Precipitation = &value
		case "PTY":
			code := int(value)
			nowcast.PrecipType = &code
		case "WSD":
			nowcast.WindSpeed = &value
		case "VEC":
			nowcast.WindDirection = &value
		case "UUU":
			nowcast.WindU = &value
		case "VVV":
			nowcast.WindV = &value
		}
	}

	return nowcast, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
			}
			return io.ReadAll(resp.Body)
		})
		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected result type", ErrUnavailable)
			}
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if attempt >= c.cfg.MaxRetries {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		delay := c.cfg.InitialBackoff << attempt
		if delay > c.cfg.MaxBackoff {
			delay = c.cfg.MaxBackoff
		}
		c.logger.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", delay).Msg("kma request failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}
