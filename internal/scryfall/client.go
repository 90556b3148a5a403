package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Options configures a Client. Values come from the run configuration; the
// client holds no process-wide state.
type Options struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	MinDelay      time.Duration // minimum spacing between requests
	MaxRetries    int
	BackoffBase   float64 // exponent base, seconds
	BackoffJitter float64 // extra random seconds per attempt
}

// Client is a sequential Scryfall API client. One request is in flight at a
// time; the limiter enforces the minimum inter-request delay and the retry
// loop handles 429s, 5xx and transient transport errors with exponential
// backoff.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func New(opts Options, log *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.scryfall.com"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MinDelay == 0 {
		opts.MinDelay = 200 * time.Millisecond
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 6
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = 1.2
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Every(opts.MinDelay), 1),
		log:     log,
	}
}

// get performs one paced, retried GET and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	reqURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}
	if params != nil {
		q := reqURL.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for %s: %w", reqURL, err)
		}
		if c.opts.UserAgent != "" {
			req.Header.Set("User-Agent", c.opts.UserAgent)
		}
		req.Header.Set("Accept", "application/json;q=0.9,*/*;q=0.8")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request to %s failed: %w", reqURL, err)
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK && readErr == nil:
				return body, nil
			case readErr != nil:
				lastErr = fmt.Errorf("reading response from %s: %w", reqURL, readErr)
			case resp.StatusCode == http.StatusNotFound:
				// Logical "no results"; retrying cannot change it.
				return nil, ErrNotFound
			case resp.StatusCode == http.StatusBadRequest:
				return nil, &StatusError{StatusCode: resp.StatusCode, URL: reqURL.String()}
			case retryable(resp.StatusCode):
				lastErr = &StatusError{StatusCode: resp.StatusCode, URL: reqURL.String()}
			default:
				return nil, &StatusError{StatusCode: resp.StatusCode, URL: reqURL.String()}
			}
		}

		if attempt == c.opts.MaxRetries {
			break
		}
		sleep := c.backoff(attempt)
		c.log.Warn("retrying request", "attempt", attempt, "max", c.opts.MaxRetries,
			"sleep", sleep.Round(100*time.Millisecond), "err", lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	secs := math.Pow(c.opts.BackoffBase, float64(attempt)) + rand.Float64()*c.opts.BackoffJitter
	return time.Duration(secs * float64(time.Second))
}

func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	body, err := c.get(ctx, rawURL, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return nil
}

// Search pages through /cards/search for the given query and returns every
// print. A 404 on the first page means the query has no results.
func (c *Client) Search(ctx context.Context, query string) ([]Card, error) {
	var cards []Card
	for page := 1; ; page++ {
		params := url.Values{
			"q":                  {query},
			"order":              {"set"},
			"dir":                {"asc"},
			"unique":             {"prints"},
			"include_extras":     {"true"},
			"include_variations": {"true"},
			"page":               {strconv.Itoa(page)},
		}
		var resp searchResponse
		err := c.getJSON(ctx, c.opts.BaseURL+"/cards/search", params, &resp)
		if err == ErrNotFound {
			if page == 1 {
				return nil, ErrNotFound
			}
			break
		}
		if err != nil {
			return nil, err
		}
		cards = append(cards, resp.Data...)
		if !resp.HasMore {
			break
		}
	}
	return cards, nil
}

// CardsBySet returns every print of a set in collector-number order.
func (c *Client) CardsBySet(ctx context.Context, setCode string) ([]Card, error) {
	return c.Search(ctx, "e:"+setCode)
}

// NonTokenCardsBySet is the audit variant of CardsBySet: token prints live in
// their own tSET sets and are excluded here.
func (c *Client) NonTokenCardsBySet(ctx context.Context, setCode string) ([]Card, error) {
	return c.Search(ctx, "(not:token) e:"+setCode)
}

// TokensForSet returns the token prints of a parent set's token set (tXXX).
func (c *Client) TokensForSet(ctx context.Context, tokenSetCode string) ([]Card, error) {
	return c.Search(ctx, fmt.Sprintf("set:%s is:token", tokenSetCode))
}

// SearchByName looks a card up globally by name, escalating from an exact
// name/printed-name query to looser forms until something matches.
func (c *Client) SearchByName(ctx context.Context, name string) ([]Card, error) {
	compact := removeSpaces(name)
	queries := []string{
		fmt.Sprintf(`(not:token) (name:"%s" OR printed:"%s")`, name, name),
		fmt.Sprintf(`(not:token) (name:%s OR printed:%s)`, name, name),
		fmt.Sprintf(`(not:token) (name:"%s" OR printed:"%s")`, compact, compact),
	}
	for _, q := range queries {
		cards, err := c.Search(ctx, q)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(cards) > 0 {
			return cards, nil
		}
	}
	return nil, ErrNotFound
}

// PrintsByName returns every print of a named card, exact match first.
func (c *Client) PrintsByName(ctx context.Context, name string) ([]Card, error) {
	queries := []string{
		fmt.Sprintf(`!"%s" unique:prints include:extras include:variations`, name),
		fmt.Sprintf(`%s unique:prints include:extras include:variations`, name),
	}
	for _, q := range queries {
		cards, err := c.Search(ctx, q)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(cards) > 0 {
			return cards, nil
		}
	}
	return nil, ErrNotFound
}

// Sets returns the full Scryfall set listing.
func (c *Client) Sets(ctx context.Context) ([]Set, error) {
	var resp setsResponse
	if err := c.getJSON(ctx, c.opts.BaseURL+"/sets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SetMeta returns the metadata of one set.
func (c *Client) SetMeta(ctx context.Context, code string) (Set, error) {
	var s Set
	err := c.getJSON(ctx, c.opts.BaseURL+"/sets/"+url.PathEscape(code), nil, &s)
	return s, err
}

// DownloadBytes fetches an image with the same pacing and retry policy as
// the JSON endpoints.
func (c *Client) DownloadBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, nil)
}

func removeSpaces(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r != ' ' {
			out = append(out, r)
		}
	}
	return string(out)
}
