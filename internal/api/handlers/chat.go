package handlers

import (
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-assist/internal/api/dto"
	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/utils/logger"
)

type ChatHandler struct {
	completer Completer
}

func NewChatHandler(completer Completer) *ChatHandler {
	return &ChatHandler{completer: completer}
}

// Chat never echoes provider detail to the client; the proxy has already
// logged it.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ChatRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest,
			dto.ErrorResponse{Error: dto.MsgBadRequest})
		return
	}
	if req.Message == "" {
		writeJSON(ctx, w, http.StatusBadRequest,
			dto.ErrorResponse{Error: dto.MsgMessageRequired})
		return
	}

	reply, err := h.completer.Complete(ctx, req.Message)
	if err != nil {
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelDebug,
			"chat request failed",
			slog.Any(model.KeyLoggerError, err),
		)
		writeJSON(ctx, w, http.StatusInternalServerError,
			dto.ErrorResponse{Error: dto.MsgChatFailed})
		return
	}

	writeJSON(ctx, w, http.StatusOK, dto.ChatResponse{Reply: reply})
}
