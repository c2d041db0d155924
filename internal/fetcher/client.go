// Package fetcher retrieves the readable title and body of a web page from a
// full-text extraction endpoint that speaks the makefulltextfeed JSON format.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/readlater/internal/entities"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "readlater"
	maxResponse    = 16 << 20
)

var ErrFetchFailed = errors.New("content fetch failed")

// Content is what the extractor returned for a page.
type Content struct {
	Title string
	Body  string
}

// Credentials are HTTP basic-auth values passed through to the extractor.
type Credentials struct {
	Username string
	Password string
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client for endpoint. A ratePerSecond of 0 disables pacing.
func NewClient(endpoint string, timeout time.Duration, ratePerSecond float64, burst int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

type feedResponse struct {
	RSS struct {
		Channel struct {
			Item json.RawMessage `json:"item"`
		} `json:"channel"`
	} `json:"rss"`
}

type feedItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Fetch asks the extractor for pageURL. The returned title is never empty.
// Every failure, including timeouts, is reported as ErrFetchFailed.
func (c *Client) Fetch(ctx context.Context, pageURL string, creds *Credentials) (Content, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Content{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(pageURL), nil)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if creds != nil && creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Content{}, fmt.Errorf("%w: extractor returned status %d", ErrFetchFailed, resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponse)).Decode(&feed); err != nil {
		return Content{}, fmt.Errorf("%w: invalid extractor response: %v", ErrFetchFailed, err)
	}

	item, err := firstItem(feed.RSS.Channel.Item)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	body, err := Clean(item.Description)
	if err != nil {
		log.Printf("Failed to clean body of %s, storing it as returned: %v", pageURL, err)
		body = item.Description
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = entities.UntitledPlaceholder
	}

	return Content{Title: title, Body: body}, nil
}

func (c *Client) requestURL(pageURL string) string {
	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("max", "5")
	params.Set("links", "preserve")
	params.Set("exc", "")
	params.Set("format", "json")
	params.Set("submit", "Create Feed")

	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + params.Encode()
}

// firstItem accepts either a single item object or a list of items.
func firstItem(raw json.RawMessage) (feedItem, error) {
	var item feedItem
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return item, errors.New("extractor response has no item")
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []feedItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return item, err
		}
		if len(items) == 0 {
			return item, errors.New("extractor response has no item")
		}
		return items[0], nil
	}

	err := json.Unmarshal(raw, &item)
	return item, err
}
