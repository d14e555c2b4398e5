// Package nflverse downloads play-by-play data from the nflverse data
// releases. Each season is published as a single CSV asset; the client
// fetches one season and parses it into the raw table the transformation
// consumes.
package nflverse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nickblackbourn/nfl-process-mining/internal/logging"
	"github.com/nickblackbourn/nfl-process-mining/internal/pbp"
	"github.com/nickblackbourn/nfl-process-mining/internal/services"
)

const (
	defaultBaseURL     = "https://github.com/nflverse/nflverse-data/releases/download/pbp"
	defaultUserAgent   = "nflminer/dev"
	defaultHTTPTimeout = 120 * time.Second
)

// Config describes the feed client configuration.
type Config struct {
	BaseURL    string
	Season     int
	UserAgent  string
	HTTPClient *http.Client
}

// Client fetches season play-by-play assets.
type Client struct {
	baseURL   *url.URL
	season    int
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// New builds a feed client. Season is required; everything else falls back
// to the public nflverse release defaults.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Season <= 0 {
		return nil, errors.New("nflverse: season is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("nflverse: parse base url: %w", err)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:   baseURL,
		season:    cfg.Season,
		userAgent: userAgent,
		http:      client,
		logger:    logging.NewComponentLogger(logger, "nflverse"),
	}, nil
}

// AssetName returns the release asset file name for the configured season.
func (c *Client) AssetName() string {
	return fmt.Sprintf("play_by_play_%d.csv", c.season)
}

// FeedURL returns the full asset URL the client fetches.
func (c *Client) FeedURL() string {
	return c.baseURL.JoinPath(c.AssetName()).String()
}

// FetchPlayByPlay downloads and parses the season feed. Transport failures,
// non-2xx responses, and malformed payloads all carry the acquisition error
// marker.
func (c *Client) FetchPlayByPlay(ctx context.Context) (*pbp.Table, error) {
	if c == nil {
		return nil, services.Wrap(services.ErrAcquisition, "acquire", "fetch play-by-play feed", "client is nil", nil)
	}
	table, err := c.fetch(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrAcquisition, "acquire", "fetch play-by-play feed", c.FeedURL(), err)
	}
	return table, nil
}

func (c *Client) fetch(ctx context.Context) (*pbp.Table, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FeedURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("feed request failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	counter := &countingReader{r: resp.Body}
	table, err := pbp.ParseCSV(counter)
	if err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}

	c.logger.InfoContext(ctx, "play-by-play feed fetched",
		logging.String("asset", c.AssetName()),
		logging.Int("season", c.season),
		logging.Int("plays", table.NumRows()),
		logging.Int("columns", len(table.Columns)),
		logging.String("size", humanize.Bytes(uint64(counter.n))),
		logging.Duration("elapsed", time.Since(start)))
	return table, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
