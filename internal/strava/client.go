package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"runanalyzer/internal/analysis"
)

const BaseURL = "https://www.strava.com/api/v3"

const (
	recentRunsPerPage = 10
	requestTimeout    = 30 * time.Second
)

// StreamKeys are the streams the analysis needs
var StreamKeys = []string{
	analysis.StreamTime,
	analysis.StreamDistance,
	analysis.StreamVelocity,
	analysis.StreamHeartrate,
}

var (
	ErrUnauthorized     = errors.New("strava rejected the access token")
	ErrActivityNotFound = errors.New("activity not found")
)

// APIError is a non-200 response from the Strava API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava API error %d: %s", e.StatusCode, e.Body)
}

// Is maps well-known status codes onto the package sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrActivityNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Expirer is implemented by token sources that can drop a token the API
// rejected, so the next Token call refreshes it
type Expirer interface {
	Expire()
}

// Client is a Strava API client
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tokens      oauth2.TokenSource
	rateLimiter *RateLimiter
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root (used by tests)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimiter replaces the default Strava rate limiter
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) { c.rateLimiter = r }
}

// NewClient creates a new Strava API client. The token source is consulted
// on every request so a refreshed token is picked up immediately.
func NewClient(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:     BaseURL,
		tokens:      tokenSource,
		rateLimiter: NewRateLimiter(),
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{
		Transport: &oauth2.Transport{Source: tokenSource, Base: http.DefaultTransport},
		Timeout:   requestTimeout,
	}
	return c
}

// GetActivities fetches one page of the athlete's activities.
// A zero 'after' lists the most recent activities first.
func (c *Client) GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]Activity, error) {
	params := url.Values{}
	if !after.IsZero() {
		params.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	params.Set("per_page", strconv.Itoa(perPage))

	var activities []Activity
	if err := c.get(ctx, "/athlete/activities", params, &activities); err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

// GetRecentRuns returns runs from the last afterDays days, newest first.
// With latestOnly it asks for just the most recent activity, falling back to
// the afterDays window when that activity is not a run.
func (c *Client) GetRecentRuns(ctx context.Context, afterDays int, latestOnly bool) ([]Activity, error) {
	if latestOnly {
		activities, err := c.GetActivities(ctx, time.Time{}, 0, 1)
		if err != nil {
			return nil, err
		}
		if runs := filterRuns(activities); len(runs) > 0 {
			return runs, nil
		}
		c.logger.Debug("latest activity is not a run, widening search", zap.Int("after_days", afterDays))
	}

	after := c.now().Add(-time.Duration(afterDays) * 24 * time.Hour)
	activities, err := c.GetActivities(ctx, after, 0, recentRunsPerPage)
	if err != nil {
		return nil, err
	}

	runs := filterRuns(activities)
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartDate.After(runs[j].StartDate)
	})
	return runs, nil
}

// GetActivity fetches the summary of a single activity
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*Activity, error) {
	var activity Activity
	path := fmt.Sprintf("/activities/%d", activityID)
	if err := c.get(ctx, path, nil, &activity); err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", activityID, err)
	}
	return &activity, nil
}

// GetActivityStreams fetches the time, distance, velocity and heart rate
// streams for an activity, keyed by stream type
func (c *Client) GetActivityStreams(ctx context.Context, activityID int64) (analysis.StreamBundle, error) {
	params := url.Values{}
	params.Set("keys", strings.Join(StreamKeys, ","))
	params.Set("key_by_type", "true")

	bundle := analysis.StreamBundle{}
	path := fmt.Sprintf("/activities/%d/streams", activityID)
	if err := c.get(ctx, path, params, &bundle); err != nil {
		return nil, fmt.Errorf("fetching streams for activity %d: %w", activityID, err)
	}
	return bundle, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

// get performs an authenticated GET and decodes the JSON body into out.
// A 401 forces a token refresh and the request is retried once.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	err := c.do(ctx, path, params, out)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	expirer, ok := c.tokens.(Expirer)
	if !ok {
		return err
	}
	c.logger.Info("access token rejected, refreshing", zap.String("path", path))
	expirer.Expire()
	return c.do(ctx, path, params, out)
}

func (c *Client) do(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromHeaders(resp.Header)
	c.logger.Debug("strava request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func filterRuns(activities []Activity) []Activity {
	runs := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if a.IsRun() {
			runs = append(runs, a)
		}
	}
	return runs
}
