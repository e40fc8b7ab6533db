package handlers

import (
	"net/http"
	"strconv"

	"github.com/redditwatch/api/data/repos"
)

const itemsPerPage = 50

type ItemHandler struct {
	repo *repos.ItemRepo
}

func NewItemHandler(repo *repos.ItemRepo) *ItemHandler {
	return &ItemHandler{repo}
}

func (h *ItemHandler) GetPosts(w http.ResponseWriter, r *http.Request) Result {
	limit, offset := pagination(r)
	posts, err := h.repo.ListPosts(r.Context(), limit, offset)
	if err != nil {
		return InternalError(err, "Failed to list posts.")
	}
	return Ok(posts)
}

func (h *ItemHandler) GetComments(w http.ResponseWriter, r *http.Request) Result {
	limit, offset := pagination(r)
	comments, err := h.repo.ListComments(r.Context(), limit, offset)
	if err != nil {
		return InternalError(err, "Failed to list comments.")
	}
	return Ok(comments)
}

func pagination(r *http.Request) (limit, offset int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return itemsPerPage, (page - 1) * itemsPerPage
}
