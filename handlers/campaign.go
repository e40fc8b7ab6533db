package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/redditwatch/api/data"
	"github.com/redditwatch/api/data/repos"
	"github.com/redditwatch/api/models"
)

// Match intervals shorter than this are clamped to keep a single
// campaign from monopolizing the scanner.
const minMatchIntervalSeconds = 30

type CampaignHandler struct {
	repo *repos.CampaignRepo
}

func NewCampaignHandler(repo *repos.CampaignRepo) *CampaignHandler {
	return &CampaignHandler{repo}
}

func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) Result {
	var req models.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return BadRequest("Name is required.")
	}

	id, err := h.repo.CreateCampaign(r.Context(), data.Campaign{
		Name:                 name,
		Description:          req.Description,
		IsWatching:           req.IsWatching,
		MatchIntervalSeconds: clampInterval(req.MatchIntervalSeconds),
	})
	if err != nil {
		return InternalError(err, "Failed to create campaign.")
	}

	return Created(id)
}

func (h *CampaignHandler) GetCampaigns(w http.ResponseWriter, r *http.Request) Result {
	campaigns, err := h.repo.GetCampaigns(r.Context())
	if err != nil {
		return InternalError(err, "Failed to get campaigns.")
	}

	resp := models.GetCampaignsResponse{Campaigns: make([]models.Campaign, 0, len(campaigns))}
	for _, c := range campaigns {
		resp.Campaigns = append(resp.Campaigns, toCampaignModel(c))
	}

	return Ok(resp)
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) Result {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid campaign id.")
	}

	campaign, err := h.repo.GetCampaign(r.Context(), id)
	if err != nil {
		return InternalError(err, "Failed to get campaign.")
	}
	if campaign == nil {
		return NotFound("Campaign not found.")
	}

	return Ok(toCampaignModel(*campaign))
}

func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) Result {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid campaign id.")
	}

	var req models.UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return BadRequest("Name is required.")
	}

	campaign, err := h.repo.GetCampaign(r.Context(), id)
	if err != nil {
		return InternalError(err, "Failed to get campaign.")
	}
	if campaign == nil {
		return NotFound("Campaign not found.")
	}

	campaign.Name = name
	campaign.Description = req.Description
	campaign.IsWatching = req.IsWatching
	campaign.MatchIntervalSeconds = clampInterval(req.MatchIntervalSeconds)

	if err := h.repo.UpdateCampaign(r.Context(), *campaign); err != nil {
		return InternalError(err, "Failed to update campaign.")
	}

	return Ok(toCampaignModel(*campaign))
}

func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) Result {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid campaign id.")
	}

	if err := h.repo.DeleteCampaign(r.Context(), id); err != nil {
		return InternalError(err, "Failed to delete campaign.")
	}

	return NoContent()
}

func clampInterval(seconds int) int {
	if seconds < minMatchIntervalSeconds {
		return minMatchIntervalSeconds
	}
	return seconds
}

func toCampaignModel(c data.Campaign) models.Campaign {
	m := models.Campaign{
		ID:                   c.ID,
		Name:                 c.Name,
		Description:          c.Description,
		IsWatching:           c.IsWatching,
		MatchIntervalSeconds: c.MatchIntervalSeconds,
		CreatedAt:            c.CreatedAt,
	}
	if c.LastMatchedAt.Valid {
		t := c.LastMatchedAt.Time
		m.LastMatchedAt = &t
	}
	return m
}
