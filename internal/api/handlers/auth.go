package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-assist/internal/api/dto"
	"github.com/talx-hub/gopher-assist/internal/metrics"
	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
	"github.com/talx-hub/gopher-assist/internal/utils/logger"
)

const (
	operationRegister = "register"
	operationLogin    = "login"
)

type AuthHandler struct {
	service  AuthService
	observer AuthObserver
}

func NewAuthHandler(service AuthService, observer AuthObserver) *AuthHandler {
	return &AuthHandler{
		service:  service,
		observer: observer,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req dto.UserRequest
	if err := decode(w, r, &req); err != nil {
		log.LogAttrs(ctx,
			slog.LevelDebug,
			"failed to decode register request",
			slog.Any(model.KeyLoggerError, err),
		)
		h.observe(operationRegister, metrics.OutcomeInvalid)
		http.Error(w, dto.MsgBadRequest, http.StatusBadRequest)
		return
	}

	u, err := h.service.Register(ctx, req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, serviceerrs.ErrValidation):
		h.observe(operationRegister, metrics.OutcomeInvalid)
		msg := dto.MsgCredentialsRequired
		if req.Username != "" && req.Password != "" {
			msg = dto.MsgPasswordRejected
		}
		http.Error(w, msg, http.StatusBadRequest)
		return
	case errors.Is(err, serviceerrs.ErrConflict):
		h.observe(operationRegister, metrics.OutcomeConflict)
		http.Error(w, dto.MsgUsernameTaken, http.StatusBadRequest)
		return
	default:
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to register user",
			slog.Any(model.KeyLoggerError, err),
		)
		h.observe(operationRegister, metrics.OutcomeError)
		http.Error(w, dto.MsgRegisterFailed, http.StatusInternalServerError)
		return
	}

	h.observe(operationRegister, metrics.OutcomeSuccess)
	writeJSON(ctx, w, http.StatusCreated, dto.NewUserResponse(u))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req dto.UserRequest
	if err := decode(w, r, &req); err != nil {
		log.LogAttrs(ctx,
			slog.LevelDebug,
			"failed to decode login request",
			slog.Any(model.KeyLoggerError, err),
		)
		h.observe(operationLogin, metrics.OutcomeInvalid)
		http.Error(w, dto.MsgBadRequest, http.StatusBadRequest)
		return
	}

	u, err := h.service.Login(ctx, req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, serviceerrs.ErrNotFound):
		h.observe(operationLogin, metrics.OutcomeNotFound)
		http.Error(w, dto.MsgUserNotFound, http.StatusNotFound)
		return
	case errors.Is(err, serviceerrs.ErrUnauthorized):
		h.observe(operationLogin, metrics.OutcomeUnauthorized)
		http.Error(w, dto.MsgUnauthorized, http.StatusUnauthorized)
		return
	default:
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to log user in",
			slog.Any(model.KeyLoggerError, err),
		)
		h.observe(operationLogin, metrics.OutcomeError)
		http.Error(w, dto.MsgInternalError, http.StatusInternalServerError)
		return
	}

	h.observe(operationLogin, metrics.OutcomeSuccess)
	writeJSON(ctx, w, http.StatusOK, dto.LoginResponse{
		Message: dto.MsgLoginSuccessful,
		User:    dto.NewUserResponse(u),
	})
}

func (h *AuthHandler) observe(operation, outcome string) {
	if h.observer != nil {
		h.observer.ObserveAuth(operation, outcome)
	}
}
