package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/model/user"
	"github.com/talx-hub/gopher-assist/internal/utils/logger"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (user.User, error)
	Login(ctx context.Context, username, password string) (user.User, error)
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type StoreChecker interface {
	Count(ctx context.Context) (int, error)
}

// AuthObserver counts register and login outcomes. It may be nil.
type AuthObserver interface {
	ObserveAuth(operation, outcome string)
}

// HTTPHandler serves every route of the API.
type HTTPHandler struct {
	*AuthHandler
	*ChatHandler
	*HealthHandler
}

func New(auth AuthService, completer Completer, store StoreChecker,
	observer AuthObserver,
) *HTTPHandler {
	return &HTTPHandler{
		AuthHandler:   NewAuthHandler(auth, observer),
		ChatHandler:   NewChatHandler(completer),
		HealthHandler: NewHealthHandler(store),
	}
}

// decode reads at most model.MaxRequestBodyBytes of JSON from the body.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	w.Header().Set(model.HeaderContentType, model.ContentTypeJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelError,
			"failed to write response",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}
