package models

import "time"

type Match struct {
	ID        int64     `json:"id"`
	Keyword   string    `json:"keyword"`
	IsComment bool      `json:"isComment"`
	Subreddit string    `json:"subreddit"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	MatchText string    `json:"matchText"`
	Language  string    `json:"language"`
	Permalink string    `json:"permalink"`
	CreatedAt time.Time `json:"createdAt"`
}

type GetMatchesResponse struct {
	Matches []Match `json:"matches"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
}
