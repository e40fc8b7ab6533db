package handlers

import (
	"net/http"

	"github.com/redditwatch/api/progress"
)

type ProgressHandler struct {
	reporter *progress.Reporter
}

func NewProgressHandler(reporter *progress.Reporter) *ProgressHandler {
	return &ProgressHandler{reporter}
}

// GetProgress exposes the shared ingestion progress record for the live
// status widget.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) Result {
	record, err := h.reporter.Read(r.Context())
	if err != nil {
		return InternalError(err, "Failed to read progress.")
	}
	return Ok(record)
}
