package ingest

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/redditwatch/api/data"
	"github.com/redditwatch/api/enums"
	"github.com/redditwatch/api/models"
	"github.com/redditwatch/api/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	kind   enums.Kind
	before string
	limit  int
}

type fakeClient struct {
	items []models.RedditItem
	err   error
	calls []fetchCall
}

func (c *fakeClient) Fetch(_ context.Context, kind enums.Kind, before string, limit int) ([]models.RedditItem, error) {
	c.calls = append(c.calls, fetchCall{kind, before, limit})
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

// fakeCursors mirrors the single-row semantics of the Postgres cursor
// repo: RecordEmpty increments until threshold, then nulls and resets.
type fakeCursors struct {
	cursors map[enums.Kind]data.Cursor
}

func newFakeCursors() *fakeCursors {
	return &fakeCursors{cursors: map[enums.Kind]data.Cursor{
		enums.KindPosts:    {Kind: enums.KindPosts},
		enums.KindComments: {Kind: enums.KindComments},
	}}
}

func (f *fakeCursors) Get(_ context.Context, kind enums.Kind) (data.Cursor, error) {
	return f.cursors[kind], nil
}

func (f *fakeCursors) RecordFetch(_ context.Context, kind enums.Kind, newestID string) error {
	c := f.cursors[kind]
	c.LastSeenID = sql.NullString{String: newestID, Valid: true}
	c.EmptyFetchCount = 0
	f.cursors[kind] = c
	return nil
}

func (f *fakeCursors) RecordEmpty(_ context.Context, kind enums.Kind, threshold int) (bool, error) {
	c := f.cursors[kind]
	c.EmptyFetchCount++
	reset := false
	if c.EmptyFetchCount >= threshold {
		c.LastSeenID = sql.NullString{}
		c.EmptyFetchCount = 0
		reset = true
	}
	f.cursors[kind] = c
	return reset, nil
}

type fakeItems struct {
	posts    map[string]data.Post
	comments map[string]data.Comment
}

func newFakeItems() *fakeItems {
	return &fakeItems{posts: map[string]data.Post{}, comments: map[string]data.Comment{}}
}

func (f *fakeItems) InsertPosts(_ context.Context, posts []data.Post) (int, error) {
	inserted := 0
	for _, p := range posts {
		if _, ok := f.posts[p.RedditID]; ok {
			continue
		}
		f.posts[p.RedditID] = p
		inserted++
	}
	return inserted, nil
}

func (f *fakeItems) InsertComments(_ context.Context, comments []data.Comment) (int, error) {
	inserted := 0
	for _, c := range comments {
		if _, ok := f.comments[c.RedditID]; ok {
			continue
		}
		f.comments[c.RedditID] = c
		inserted++
	}
	return inserted, nil
}

func (f *fakeItems) CountPosts(_ context.Context) (int, error)    { return len(f.posts), nil }
func (f *fakeItems) CountComments(_ context.Context) (int, error) { return len(f.comments), nil }

type published struct {
	kind   enums.Kind
	report progress.Report
}

type fakeReporter struct {
	reports []published
}

func (f *fakeReporter) Publish(_ context.Context, kind enums.Kind, report progress.Report) error {
	f.reports = append(f.reports, published{kind, report})
	return nil
}

func (f *fakeReporter) last(t *testing.T) published {
	t.Helper()
	require.NotEmpty(t, f.reports)
	return f.reports[len(f.reports)-1]
}

func newTestIngestor(client *fakeClient, cursors *fakeCursors, items *fakeItems, reporter *fakeReporter) *Ingestor {
	return NewIngestor(slog.Default(), client, cursors, items, reporter, 100, 10)
}

func post(name, title string, createdUTC float64) models.RedditItem {
	return models.RedditItem{Name: name, Title: title, CreatedUTC: createdUTC}
}

func TestRun_FirstFetch(t *testing.T) {
	client := &fakeClient{items: []models.RedditItem{
		post("t3_p3", "Newest", 1700000300),
		post("t3_p2", "Middle", 1700000200),
		post("t3_p1", "Oldest", 1700000100),
	}}
	cursors := newFakeCursors()
	items := newFakeItems()
	reporter := &fakeReporter{}

	result, err := newTestIngestor(client, cursors, items, reporter).Run(context.Background(), enums.KindPosts)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 3, result.New)
	assert.Equal(t, "t3_p3", result.NewestID, "first element of the newest-first list")

	require.Len(t, client.calls, 1)
	assert.Equal(t, "", client.calls[0].before, "no cursor means fetch from the head")
	assert.Equal(t, 100, client.calls[0].limit)

	cursor := cursors.cursors[enums.KindPosts]
	assert.Equal(t, "t3_p3", cursor.LastSeenID.String)
	assert.Equal(t, 0, cursor.EmptyFetchCount)

	assert.Len(t, items.posts, 3)

	report := reporter.last(t)
	assert.Equal(t, enums.KindPosts, report.kind)
	assert.Equal(t, progress.StatusSuccess, report.report.Status)
	assert.Equal(t, 3, report.report.LastCount)
	assert.Equal(t, 3, report.report.NewCount)
	assert.Equal(t, 3, report.report.Total)
}

func TestRun_PassesCursorAsBefore(t *testing.T) {
	client := &fakeClient{items: []models.RedditItem{post("t3_p4", "Next", 1700000400)}}
	cursors := newFakeCursors()
	cursors.cursors[enums.KindPosts] = data.Cursor{
		Kind:       enums.KindPosts,
		LastSeenID: sql.NullString{String: "t3_p3", Valid: true},
	}

	_, err := newTestIngestor(client, cursors, newFakeItems(), &fakeReporter{}).Run(context.Background(), enums.KindPosts)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "t3_p3", client.calls[0].before)
}

func TestRun_ReingestIsIdempotent(t *testing.T) {
	client := &fakeClient{items: []models.RedditItem{
		post("t3_p2", "Two", 1700000200),
		post("t3_p1", "One", 1700000100),
	}}
	cursors := newFakeCursors()
	items := newFakeItems()
	ingestor := newTestIngestor(client, cursors, items, &fakeReporter{})

	first, err := ingestor.Run(context.Background(), enums.KindPosts)
	require.NoError(t, err)
	assert.Equal(t, 2, first.New)

	// Overlapping page: same items come back again.
	second, err := ingestor.Run(context.Background(), enums.KindPosts)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Fetched)
	assert.Equal(t, 0, second.New, "already-stored fullnames are silent no-ops")
	assert.Len(t, items.posts, 2)
}

func TestRun_EmptyFetchIncrementsCounter(t *testing.T) {
	client := &fakeClient{}
	cursors := newFakeCursors()
	cursors.cursors[enums.KindPosts] = data.Cursor{
		Kind:       enums.KindPosts,
		LastSeenID: sql.NullString{String: "t3_dead", Valid: true},
	}
	reporter := &fakeReporter{}

	result, err := newTestIngestor(client, cursors, newFakeItems(), reporter).Run(context.Background(), enums.KindPosts)
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)

	cursor := cursors.cursors[enums.KindPosts]
	assert.Equal(t, 1, cursor.EmptyFetchCount)
	assert.True(t, cursor.LastSeenID.Valid, "cursor survives below the threshold")

	report := reporter.last(t)
	assert.Equal(t, progress.StatusSuccess, report.report.Status)
	assert.Equal(t, 0, report.report.LastCount)
}

func TestRun_StaleCursorReset(t *testing.T) {
	client := &fakeClient{}
	cursors := newFakeCursors()
	cursors.cursors[enums.KindPosts] = data.Cursor{
		Kind:       enums.KindPosts,
		LastSeenID: sql.NullString{String: "t3_dead", Valid: true},
	}
	ingestor := newTestIngestor(client, cursors, newFakeItems(), &fakeReporter{})

	for i := 0; i < 10; i++ {
		_, err := ingestor.Run(context.Background(), enums.KindPosts)
		require.NoError(t, err)
	}

	cursor := cursors.cursors[enums.KindPosts]
	assert.False(t, cursor.LastSeenID.Valid, "10th consecutive empty fetch clears the cursor")
	assert.Equal(t, 0, cursor.EmptyFetchCount)

	// The 11th empty fetch starts a fresh count against the feed head.
	_, err := ingestor.Run(context.Background(), enums.KindPosts)
	require.NoError(t, err)
	cursor = cursors.cursors[enums.KindPosts]
	assert.Equal(t, 1, cursor.EmptyFetchCount)
	assert.False(t, cursor.LastSeenID.Valid)
}

func TestRun_UpstreamFailureLeavesCursorUntouched(t *testing.T) {
	client := &fakeClient{err: errors.New("status 503")}
	cursors := newFakeCursors()
	cursors.cursors[enums.KindPosts] = data.Cursor{
		Kind:            enums.KindPosts,
		LastSeenID:      sql.NullString{String: "t3_p3", Valid: true},
		EmptyFetchCount: 4,
	}
	reporter := &fakeReporter{}

	_, err := newTestIngestor(client, cursors, newFakeItems(), reporter).Run(context.Background(), enums.KindPosts)
	require.Error(t, err)

	cursor := cursors.cursors[enums.KindPosts]
	assert.Equal(t, "t3_p3", cursor.LastSeenID.String)
	assert.Equal(t, 4, cursor.EmptyFetchCount)

	report := reporter.last(t)
	assert.Equal(t, progress.StatusError, report.report.Status)
	require.NotNil(t, report.report.Error)
	assert.Contains(t, *report.report.Error, "503")
}

func TestRun_Comments(t *testing.T) {
	client := &fakeClient{items: []models.RedditItem{
		{Name: "t1_c2", Body: "second comment", LinkID: "t3_p1", CreatedUTC: 1700000200},
		{Name: "t1_c1", Body: "first comment", LinkID: "t3_p1", CreatedUTC: 1700000100},
	}}
	cursors := newFakeCursors()
	items := newFakeItems()

	result, err := newTestIngestor(client, cursors, items, &fakeReporter{}).Run(context.Background(), enums.KindComments)
	require.NoError(t, err)

	assert.Equal(t, 2, result.New)
	assert.Equal(t, "t1_c2", result.NewestID)
	assert.Equal(t, "t1_c2", cursors.cursors[enums.KindComments].LastSeenID.String)
	assert.Len(t, items.comments, 2)
	assert.Equal(t, "second comment", items.comments["t1_c2"].Body)
	assert.Equal(t, "unknown", items.comments["t1_c1"].Author, "missing author defaults")
}

func TestRun_SkipsItemsWithoutFullname(t *testing.T) {
	client := &fakeClient{items: []models.RedditItem{
		post("t3_ok", "Fine", 1700000200),
		post("", "Broken wrapper", 1700000100),
	}}
	items := newFakeItems()

	result, err := newTestIngestor(client, newFakeCursors(), items, &fakeReporter{}).Run(context.Background(), enums.KindPosts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.New)
	assert.Len(t, items.posts, 1)
}
