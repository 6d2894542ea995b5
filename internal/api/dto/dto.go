package dto

import (
	"github.com/talx-hub/gopher-assist/internal/model/user"
)

const (
	MsgCredentialsRequired = "Username and password are required."
	MsgUsernameTaken       = "Username already exists."
	MsgPasswordRejected    = "Password does not meet the requirements."
	MsgRegisterFailed      = "Error registering user."
	MsgUserNotFound        = "User not found."
	MsgUnauthorized        = "Unauthorized."
	MsgInternalError       = "Internal server error."
	MsgLoginSuccessful     = "Login successful."
	MsgMessageRequired     = "Message is required."
	MsgChatFailed          = "Error processing request."
	MsgBadRequest          = "Invalid request body."
)

type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user. It has no field for the hash.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
	}
}

type LoginResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
