package handlers

import (
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/utils/logger"
)

type HealthHandler struct {
	store StoreChecker
}

func NewHealthHandler(store StoreChecker) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.store.Count(ctx); err != nil {
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelError,
			"credential store is unavailable",
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
