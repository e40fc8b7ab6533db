package handlers

import (
	"log/slog"
	"net/http"

	"github.com/redditwatch/api/data/repos"
)

type AdminHandler struct {
	items     *repos.ItemRepo
	cursors   *repos.CursorRepo
	campaigns *repos.CampaignRepo
}

func NewAdminHandler(items *repos.ItemRepo, cursors *repos.CursorRepo, campaigns *repos.CampaignRepo) *AdminHandler {
	return &AdminHandler{items: items, cursors: cursors, campaigns: campaigns}
}

// ResetIngestedData deletes every stored post and comment (matches go
// via cascade), nulls both feed cursors and zeroes every campaign's
// scan checkpoints. The next fetch starts from the feed head and the
// next scan from sequence zero.
func (h *AdminHandler) ResetIngestedData(w http.ResponseWriter, r *http.Request) Result {
	ctx := r.Context()

	if err := h.items.DeleteAll(ctx); err != nil {
		return InternalError(err, "Failed to delete ingested data.")
	}
	if err := h.cursors.Reset(ctx); err != nil {
		return InternalError(err, "Failed to reset cursors.")
	}
	if err := h.campaigns.ResetCheckpoints(ctx); err != nil {
		return InternalError(err, "Failed to reset campaign checkpoints.")
	}

	slog.Warn("all ingested data deleted, cursors and checkpoints reset")
	return NoContent()
}
