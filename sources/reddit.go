package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/redditwatch/api/enums"
	"github.com/redditwatch/api/models"
)

// ErrUpstreamUnavailable marks any transport, HTTP status, or decode
// failure talking to the feed. Fatal for the current run only; the
// scheduler retries on its next tick.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

type RedditClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewRedditClient(httpClient *http.Client, baseURL, userAgent string) *RedditClient {
	return &RedditClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// Fetch performs a single listing request for the given kind, newest
// first. A non-empty before requests only items newer than that fullname.
func (c *RedditClient) Fetch(ctx context.Context, kind enums.Kind, before string, limit int) ([]models.RedditItem, error) {
	endpoint, err := c.listingURL(kind, before, limit)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var listing models.RedditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %v", ErrUpstreamUnavailable, err)
	}

	items := make([]models.RedditItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		items = append(items, child.Data)
	}

	return items, nil
}

func (c *RedditClient) listingURL(kind enums.Kind, before string, limit int) (string, error) {
	var path string
	switch kind {
	case enums.KindPosts:
		path = "/r/all/new.json"
	case enums.KindComments:
		path = "/r/all/comments.json"
	default:
		return "", fmt.Errorf("unknown feed kind %q", kind)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if before != "" {
		params.Set("before", before)
	}

	return c.baseURL + path + "?" + params.Encode(), nil
}
