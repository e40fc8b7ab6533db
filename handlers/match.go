package handlers

import (
	"net/http"
	"strconv"

	"github.com/redditwatch/api/data/repos"
	"github.com/redditwatch/api/models"
)

const matchesPerPage = 20

type MatchHandler struct {
	repo *repos.MatchRepo
}

func NewMatchHandler(repo *repos.MatchRepo) *MatchHandler {
	return &MatchHandler{repo}
}

// GetMatches lists a campaign's matches with optional keyword, type and
// subreddit filters, newest first, paginated.
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) Result {
	campaignID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return BadRequest("Invalid campaign id.")
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	filter := repos.MatchFilter{
		Type:      r.URL.Query().Get("type"),
		Subreddit: r.URL.Query().Get("subreddit"),
		Limit:     matchesPerPage,
		Offset:    (page - 1) * matchesPerPage,
	}
	if kw := r.URL.Query().Get("keyword"); kw != "" {
		filter.KeywordID, _ = strconv.Atoi(kw)
	}

	rows, total, err := h.repo.GetMatches(r.Context(), campaignID, filter)
	if err != nil {
		return InternalError(err, "Failed to get matches.")
	}

	resp := models.GetMatchesResponse{
		Matches: make([]models.Match, 0, len(rows)),
		Total:   total,
		Page:    page,
		PerPage: matchesPerPage,
	}
	for _, row := range rows {
		resp.Matches = append(resp.Matches, models.Match{
			ID:        row.ID,
			Keyword:   row.Keyword,
			IsComment: row.CommentID.Valid,
			Subreddit: row.Subreddit,
			Author:    row.Author,
			Title:     row.Title,
			MatchText: row.MatchText,
			Language:  row.Language,
			Permalink: row.Permalink,
			CreatedAt: row.CreatedAt,
		})
	}

	return Ok(resp)
}
