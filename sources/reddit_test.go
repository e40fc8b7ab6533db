package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redditwatch/api/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingBody = `{
	"kind": "Listing",
	"data": {
		"modhash": "",
		"children": [
			{"kind": "t3", "data": {"name": "t3_c", "title": "Third post", "author": "alice", "subreddit": "golang", "score": 3, "created_utc": 1700000300, "unexpected_field": {"nested": true}}},
			{"kind": "t3", "data": {"name": "t3_b", "title": "Second post", "selftext": "body text", "created_utc": 1700000200}},
			{"kind": "t3", "data": {"name": "t3_a", "title": "First post", "created_utc": 1700000100}}
		],
		"after": null
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*RedditClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRedditClient(server.Client(), server.URL, "redditwatch:test"), server
}

func TestFetch_Posts(t *testing.T) {
	var gotPath, gotUA string
	var gotQuery map[string][]string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query()
		w.Write([]byte(listingBody))
	})

	items, err := client.Fetch(context.Background(), enums.KindPosts, "", 100)
	require.NoError(t, err)

	assert.Equal(t, "/r/all/new.json", gotPath)
	assert.Equal(t, "redditwatch:test", gotUA)
	assert.Equal(t, []string{"100"}, gotQuery["limit"])
	assert.NotContains(t, gotQuery, "before")

	require.Len(t, items, 3)
	assert.Equal(t, "t3_c", items[0].Name, "listing order is preserved, newest first")
	assert.Equal(t, "Third post", items[0].Title)
	assert.Equal(t, "alice", items[0].Author)
	assert.Equal(t, float64(1700000300), items[0].CreatedUTC)
	assert.Equal(t, "body text", items[1].Selftext)
}

func TestFetch_CommentsEndpointAndBefore(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data":{"children":[]}}`))
	})

	items, err := client.Fetch(context.Background(), enums.KindComments, "t1_xyz", 100)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.Equal(t, "/r/all/comments.json", gotPath)
	assert.Equal(t, []string{"t1_xyz"}, gotQuery["before"])
}

func TestFetch_HTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := client.Fetch(context.Background(), enums.KindPosts, "", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "429")
}

func TestFetch_MalformedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Fetch(context.Background(), enums.KindPosts, "", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewRedditClient(http.DefaultClient, server.URL, "redditwatch:test")
	_, err := client.Fetch(context.Background(), enums.KindPosts, "", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetch_UnknownKind(t *testing.T) {
	client := NewRedditClient(http.DefaultClient, "http://localhost", "redditwatch:test")
	_, err := client.Fetch(context.Background(), enums.Kind("videos"), "", 100)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
}
