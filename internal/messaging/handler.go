package messaging

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coparently/coparently/internal/auth"
	"github.com/coparently/coparently/internal/transport"
	"github.com/coparently/coparently/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Bridge *Bridge
}

func NewHandler(bridge *Bridge) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Bridge:      bridge,
	}
}

// ListMessages returns the authenticated user's conversation with their
// co-parent.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	msgs, err := h.Bridge.ListConversation(r.Context(), userID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, msgs)
}
