package models

import "time"

type CreateKeywordRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateKeywordRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Keyword struct {
	ID          int       `json:"id"`
	CampaignID  int       `json:"campaignId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Tags        []Tag     `json:"tags,omitempty"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CreateTagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GetKeywordsResponse struct {
	Keywords []Keyword `json:"keywords"`
}
