package category

import (
	"log/slog"
	"net/http"

	"github.com/coparently/coparently/internal/expense"
	"github.com/coparently/coparently/internal/transport"
	"github.com/coparently/coparently/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{BaseHandler: transport.NewBaseHandler(lg)}
}

// ListCategories returns the suggested category names. Clients may still
// submit any free-text category.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string][]string{
		"categories": expense.KnownCategories,
	})
}
