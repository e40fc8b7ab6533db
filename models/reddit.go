package models

// RedditListing is the envelope returned by the /r/all listing endpoints.
// Only the fields we extract are declared; anything else in the payload
// is ignored and every optional field decodes to its zero value.
type RedditListing struct {
	Data struct {
		Children []struct {
			Data RedditItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditItem carries the union of post and comment fields. Posts fill
// Title/Selftext/URL and the flag fields, comments fill Body/LinkID.
type RedditItem struct {
	Name        string  `json:"name"` // fullname, t3_xxx for posts, t1_xxx for comments
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	LinkID      string  `json:"link_id"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	IsVideo     bool    `json:"is_video"`
	Over18      bool    `json:"over_18"`
	Spoiler     bool    `json:"spoiler"`
	Stickied    bool    `json:"stickied"`
	CreatedUTC  float64 `json:"created_utc"`
}
