package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-assist/internal/api/dto"
	"github.com/talx-hub/gopher-assist/internal/api/handlers/mocks"
	"github.com/talx-hub/gopher-assist/internal/metrics"
	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/model/user"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
)

type authCounter map[string]int

func (c authCounter) ObserveAuth(operation, outcome string) {
	c[operation+"/"+outcome]++
}

func doRequest(t *testing.T, handlerFunc http.HandlerFunc, endpoint, body string,
) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, endpoint, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handlerFunc(rr, req)

	res := rr.Result()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	return res.StatusCode, string(data)
}

func TestAuthHandler_Register(t *testing.T) {
	stored := user.User{ID: "id-1", Username: "alice", PasswordHash: "$2a$10$secret-hash"}

	tests := []struct {
		name     string
		body     string
		setup    func(s *mocks.MockAuthService)
		wantCode int
		wantBody string
		outcome  string
	}{
		{
			name: "happy path",
			body: `{"username":"alice","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Register(mock.Anything, "alice", "secret").Return(stored, nil)
			},
			wantCode: http.StatusCreated,
			wantBody: `{"id":"id-1","username":"alice"}`,
			outcome:  metrics.OutcomeSuccess,
		},
		{
			name: "empty username",
			body: `{"username":"","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Register(mock.Anything, "", "secret").
					Return(user.User{}, serviceerrs.ErrValidation)
			},
			wantCode: http.StatusBadRequest,
			wantBody: dto.MsgCredentialsRequired,
			outcome:  metrics.OutcomeInvalid,
		},
		{
			name: "missing password field",
			body: `{"username":"alice"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Register(mock.Anything, "alice", "").
					Return(user.User{}, serviceerrs.ErrValidation)
			},
			wantCode: http.StatusBadRequest,
			wantBody: dto.MsgCredentialsRequired,
			outcome:  metrics.OutcomeInvalid,
		},
		{
			name: "rejected password",
			body: `{"username":"alice","password":"1"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Register(mock.Anything, "alice", "1").
					Return(user.User{}, serviceerrs.ErrValidation)
			},
			wantCode: http.StatusBadRequest,
			wantBody: dto.MsgPasswordRejected,
			outcome:  metrics.OutcomeInvalid,
		},
		{
			name: "conflict",
			body: `{"username":"alice","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Register(mock.Anything, "alice", "secret").
					Return(user.User{}, serviceerrs.ErrConflict)
			},
			wantCode: http.StatusBadRequest,
			wantBody: dto.MsgUsernameTaken,
			outcome:  metrics.OutcomeConflict,
		},
		{
			name: "persistence failure",
			body: `{"username":"alice","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Register(mock.Anything, "alice", "secret").
					Return(user.User{}, serviceerrs.ErrPersistence)
			},
			wantCode: http.StatusInternalServerError,
			wantBody: dto.MsgRegisterFailed,
			outcome:  metrics.OutcomeError,
		},
		{
			name: "hashing failure",
			body: `{"username":"alice","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Register(mock.Anything, "alice", "secret").
					Return(user.User{}, serviceerrs.ErrHashing)
			},
			wantCode: http.StatusInternalServerError,
			wantBody: dto.MsgRegisterFailed,
			outcome:  metrics.OutcomeError,
		},
		{
			name:     "decoding error #1",
			body:     `{"username":42,"password":"secret"}`,
			setup:    func(*mocks.MockAuthService) {},
			wantCode: http.StatusBadRequest,
			wantBody: dto.MsgBadRequest,
			outcome:  metrics.OutcomeInvalid,
		},
		{
			name:     "decoding error #2",
			body:     `{"username":`,
			setup:    func(*mocks.MockAuthService) {},
			wantCode: http.StatusBadRequest,
			wantBody: dto.MsgBadRequest,
			outcome:  metrics.OutcomeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := mocks.NewMockAuthService(t)
			tt.setup(service)
			counter := authCounter{}
			h := NewAuthHandler(service, counter)

			code, body := doRequest(t, h.Register, "/register", tt.body)
			assert.Equal(t, tt.wantCode, code)
			if code == http.StatusCreated {
				assert.JSONEq(t, tt.wantBody, body)
				assert.NotContains(t, body, "password")
				assert.NotContains(t, body, stored.PasswordHash)
			} else {
				assert.Equal(t, tt.wantBody, strings.TrimSpace(body))
			}
			assert.Equal(t, 1, counter["register/"+tt.outcome])
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stored := user.User{ID: "id-1", Username: "alice", PasswordHash: "$2a$10$secret-hash"}

	tests := []struct {
		name     string
		body     string
		setup    func(s *mocks.MockAuthService)
		wantCode int
		wantBody string
	}{
		{
			name: "happy path",
			body: `{"username":"alice","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Login(mock.Anything, "alice", "secret").Return(stored, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"message":"Login successful.","user":{"id":"id-1","username":"alice"}}`,
		},
		{
			name: "not existing user",
			body: `{"username":"bob","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Login(mock.Anything, "bob", "secret").
					Return(user.User{}, serviceerrs.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
			wantBody: dto.MsgUserNotFound,
		},
		{
			name: "wrong password",
			body: `{"username":"alice","password":"wrong"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Login(mock.Anything, "alice", "wrong").
					Return(user.User{}, serviceerrs.ErrUnauthorized)
			},
			wantCode: http.StatusUnauthorized,
			wantBody: dto.MsgUnauthorized,
		},
		{
			name: "empty body fields",
			body: `{}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Login(mock.Anything, "", "").
					Return(user.User{}, serviceerrs.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
			wantBody: dto.MsgUserNotFound,
		},
		{
			name: "store failure",
			body: `{"username":"alice","password":"secret"}`,
			setup: func(s *mocks.MockAuthService) {
				s.EXPECT().Login(mock.Anything, "alice", "secret").
					Return(user.User{}, errors.New("connection reset"))
			},
			wantCode: http.StatusInternalServerError,
			wantBody: dto.MsgInternalError,
		},
		{
			name:     "decoding error",
			body:     `login4`,
			setup:    func(*mocks.MockAuthService) {},
			wantCode: http.StatusBadRequest,
			wantBody: dto.MsgBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := mocks.NewMockAuthService(t)
			tt.setup(service)
			h := NewAuthHandler(service, nil)

			code, body := doRequest(t, h.Login, "/login", tt.body)
			assert.Equal(t, tt.wantCode, code)
			if code == http.StatusOK {
				assert.JSONEq(t, tt.wantBody, body)
				assert.NotContains(t, body, stored.PasswordHash)
			} else {
				assert.Equal(t, tt.wantBody, strings.TrimSpace(body))
			}
		})
	}
}

func TestChatHandler_Chat(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(c *mocks.MockCompleter)
		wantCode int
		wantBody string
	}{
		{
			name: "reply",
			body: `{"message":"Hello"}`,
			setup: func(c *mocks.MockCompleter) {
				c.EXPECT().Complete(mock.Anything, "Hello").Return("world", nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"reply":"world"}`,
		},
		{
			name: "empty reply",
			body: `{"message":"Hello"}`,
			setup: func(c *mocks.MockCompleter) {
				c.EXPECT().Complete(mock.Anything, "Hello").Return("", nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"reply":""}`,
		},
		{
			name: "upstream failure",
			body: `{"message":"Hello"}`,
			setup: func(c *mocks.MockCompleter) {
				c.EXPECT().Complete(mock.Anything, "Hello").
					Return("", &serviceerrs.UpstreamError{Err: errors.New("invalid api key sk-123")})
			},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Error processing request."}`,
		},
		{
			name: "timeout",
			body: `{"message":"Hello"}`,
			setup: func(c *mocks.MockCompleter) {
				c.EXPECT().Complete(mock.Anything, "Hello").
					Return("", &serviceerrs.UpstreamError{Err: context.DeadlineExceeded})
			},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Error processing request."}`,
		},
		{
			name:     "empty message",
			body:     `{"message":""}`,
			setup:    func(*mocks.MockCompleter) {},
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Message is required."}`,
		},
		{
			name:     "missing message",
			body:     `{}`,
			setup:    func(*mocks.MockCompleter) {},
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Message is required."}`,
		},
		{
			name:     "decoding error",
			body:     `{"message":42}`,
			setup:    func(*mocks.MockCompleter) {},
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Invalid request body."}`,
		},
		{
			name:     "body too large",
			body:     `{"message":"` + strings.Repeat("a", model.MaxRequestBodyBytes) + `"}`,
			setup:    func(*mocks.MockCompleter) {},
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Invalid request body."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := mocks.NewMockCompleter(t)
			tt.setup(completer)
			h := NewChatHandler(completer)

			code, body := doRequest(t, h.Chat, "/chat", tt.body)
			assert.Equal(t, tt.wantCode, code)
			assert.JSONEq(t, tt.wantBody, body)
			assert.NotContains(t, body, "sk-123")
		})
	}
}

func TestAuthHandler_body_too_large(t *testing.T) {
	body := `{"username":"alice","password":"` +
		strings.Repeat("a", model.MaxRequestBodyBytes) + `"}`
	service := mocks.NewMockAuthService(t)
	h := NewAuthHandler(service, nil)

	for endpoint, handlerFunc := range map[string]http.HandlerFunc{
		"/register": h.Register,
		"/login":    h.Login,
	} {
		code, resp := doRequest(t, handlerFunc, endpoint, body)
		assert.Equal(t, http.StatusBadRequest, code, endpoint)
		assert.Equal(t, dto.MsgBadRequest, strings.TrimSpace(resp), endpoint)
	}
}

func TestHealthHandler_Ping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"store answers", nil, http.StatusOK},
		{"store is down", serviceerrs.ErrPersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockStoreChecker(t)
			store.EXPECT().Count(mock.Anything).Return(3, tt.err)
			h := NewHealthHandler(store)

			req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
			rr := httptest.NewRecorder()
			h.Ping(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestNew_serves_every_route(t *testing.T) {
	service := mocks.NewMockAuthService(t)
	service.EXPECT().Register(mock.Anything, "alice", "secret").
		Return(user.User{ID: "1", Username: "alice"}, nil)
	completer := mocks.NewMockCompleter(t)
	completer.EXPECT().Complete(mock.Anything, "hi").Return("there", nil)
	store := mocks.NewMockStoreChecker(t)
	store.EXPECT().Count(mock.Anything).Return(1, nil)

	h := New(service, completer, store, nil)

	code, _ := doRequest(t, h.Register, "/register", `{"username":"alice","password":"secret"}`)
	assert.Equal(t, http.StatusCreated, code)

	code, body := doRequest(t, h.Chat, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusOK, code)
	var resp dto.ChatResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "there", resp.Reply)

	rr := httptest.NewRecorder()
	h.Ping(rr, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
}
