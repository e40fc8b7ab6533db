package models

import "time"

type CreateCampaignRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	IsWatching           bool   `json:"isWatching"`
	MatchIntervalSeconds int    `json:"matchIntervalSeconds"`
}

type UpdateCampaignRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	IsWatching           bool   `json:"isWatching"`
	MatchIntervalSeconds int    `json:"matchIntervalSeconds"`
}

type Campaign struct {
	ID                   int        `json:"id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	IsWatching           bool       `json:"isWatching"`
	MatchIntervalSeconds int        `json:"matchIntervalSeconds"`
	LastMatchedAt        *time.Time `json:"lastMatchedAt"`
	CreatedAt            time.Time  `json:"createdAt"`
}

type GetCampaignsResponse struct {
	Campaigns []Campaign `json:"campaigns"`
}
