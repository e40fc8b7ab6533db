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

type KeywordHandler struct {
	repo      *repos.KeywordRepo
	campaigns *repos.CampaignRepo
}

func NewKeywordHandler(repo *repos.KeywordRepo, campaigns *repos.CampaignRepo) *KeywordHandler {
	return &KeywordHandler{repo: repo, campaigns: campaigns}
}

func (h *KeywordHandler) CreateKeyword(w http.ResponseWriter, r *http.Request) Result {
	campaignID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid campaign id.")
	}

	var req models.CreateKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return BadRequest("Keyword is required.")
	}

	campaign, err := h.campaigns.GetCampaign(r.Context(), campaignID)
	if err != nil {
		return InternalError(err, "Failed to get campaign.")
	}
	if campaign == nil {
		return NotFound("Campaign not found.")
	}

	id, err := h.repo.CreateKeyword(r.Context(), data.Keyword{
		CampaignID:  campaignID,
		Name:        name,
		Description: req.Description,
	})
	if err != nil {
		return InternalError(err, "Failed to create keyword.")
	}

	return Created(id)
}

func (h *KeywordHandler) GetKeywords(w http.ResponseWriter, r *http.Request) Result {
	campaignID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid campaign id.")
	}

	keywords, err := h.repo.GetKeywordsByCampaign(r.Context(), campaignID)
	if err != nil {
		return InternalError(err, "Failed to get keywords.")
	}

	resp := models.GetKeywordsResponse{Keywords: make([]models.Keyword, 0, len(keywords))}
	for _, kw := range keywords {
		tags, err := h.repo.GetTagsByKeyword(r.Context(), kw.ID)
		if err != nil {
			return InternalError(err, "Failed to get tags.")
		}
		resp.Keywords = append(resp.Keywords, toKeywordModel(kw, tags))
	}

	return Ok(resp)
}

func (h *KeywordHandler) UpdateKeyword(w http.ResponseWriter, r *http.Request) Result {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid keyword id.")
	}

	var req models.UpdateKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return BadRequest("Keyword is required.")
	}

	keyword, err := h.repo.GetKeywordByID(r.Context(), id)
	if err != nil {
		return InternalError(err, "Failed to get keyword.")
	}
	if keyword == nil {
		return NotFound("Keyword not found.")
	}

	keyword.Name = name
	keyword.Description = req.Description

	if err := h.repo.UpdateKeyword(r.Context(), *keyword); err != nil {
		return InternalError(err, "Failed to update keyword.")
	}

	return Ok(toKeywordModel(*keyword, nil))
}

func (h *KeywordHandler) DeleteKeyword(w http.ResponseWriter, r *http.Request) Result {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid keyword id.")
	}

	if err := h.repo.DeleteKeyword(r.Context(), id); err != nil {
		return InternalError(err, "Failed to delete keyword.")
	}

	return NoContent()
}

func (h *KeywordHandler) CreateTag(w http.ResponseWriter, r *http.Request) Result {
	keywordID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid keyword id.")
	}

	var req models.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return BadRequest("Tag name is required.")
	}

	id, err := h.repo.CreateTag(r.Context(), data.Tag{
		KeywordID:   keywordID,
		Name:        name,
		Description: req.Description,
	})
	if err != nil {
		return InternalError(err, "Failed to create tag.")
	}

	return Created(id)
}

func (h *KeywordHandler) DeleteTag(w http.ResponseWriter, r *http.Request) Result {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid tag id.")
	}

	if err := h.repo.DeleteTag(r.Context(), id); err != nil {
		return InternalError(err, "Failed to delete tag.")
	}

	return NoContent()
}

func toKeywordModel(kw data.Keyword, tags []data.Tag) models.Keyword {
	m := models.Keyword{
		ID:          kw.ID,
		CampaignID:  kw.CampaignID,
		Name:        kw.Name,
		Description: kw.Description,
		CreatedAt:   kw.CreatedAt,
	}
	for _, tag := range tags {
		m.Tags = append(m.Tags, models.Tag{ID: tag.ID, Name: tag.Name})
	}
	return m
}
