package events

import (
	"net/http"
	"slices"
	"strings"

	"github.com/noah-isme/barber-billing/internal/common"
)

// Handler exposes the event journal for operators.
type Handler struct {
	Journal *Journal
}

// Recent handles GET /api/v1/events?topic=&limit=.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "event journal not configured", nil)
		return
	}
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic != "" && !slices.Contains(DefaultTopics(), topic) {
		common.WriteError(w, common.BadRequest("unknown topic", map[string]any{"topic": topic, "allowed": DefaultTopics()}))
		return
	}
	items := h.Journal.Recent(topic)
	if limit := common.AtoiDefault(r.URL.Query().Get("limit"), 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}
