package user

import "context"

// User is a registered principal. PasswordHash is excluded from JSON so the
// record cannot be written to a client by accident.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type Repository interface {
	Load(ctx context.Context) error
	FindByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, u *User) error
	Count(ctx context.Context) (int, error)
}
