package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/model/user"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
)

// fileRecord is the on-disk shape of a user. The hash lives under
// "password" so files written by earlier deployments stay readable.
type fileRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// FileUserRepository is a write-through credential store backed by a single
// JSON document. Every Create rewrites the whole file before the new user
// becomes visible.
type FileUserRepository struct {
	log   *slog.Logger
	path  string
	users []user.User
	mu    sync.RWMutex
}

func NewFileUserRepository(path string, log *slog.Logger) *FileUserRepository {
	return &FileUserRepository{
		log:   log,
		path:  path,
		users: []user.User{},
	}
}

// Load never fails on bad data: a missing, empty or malformed file leaves
// the store empty and usable.
func (r *FileUserRepository) Load(ctx context.Context) error {
	users := r.read(ctx)

	r.mu.Lock()
	r.users = users
	r.mu.Unlock()

	r.log.LogAttrs(ctx,
		slog.LevelInfo,
		"credential store loaded",
		slog.String("backend", "file"),
		slog.String("path", r.path),
		slog.Int("users", len(users)),
	)
	return nil
}

func (r *FileUserRepository) read(ctx context.Context) []user.User {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []user.User{}
	}
	if err != nil {
		r.log.LogAttrs(ctx,
			slog.LevelError,
			"failed to read users file, starting with an empty store",
			slog.String("path", r.path),
			slog.Any(model.KeyLoggerError, err),
		)
		return []user.User{}
	}
	if strings.TrimSpace(string(data)) == "" {
		return []user.User{}
	}

	var records []fileRecord
	if err = json.Unmarshal(data, &records); err != nil {
		r.log.LogAttrs(ctx,
			slog.LevelError,
			"failed to parse users file, starting with an empty store",
			slog.String("path", r.path),
			slog.Any(model.KeyLoggerError, err),
		)
		return []user.User{}
	}

	users := make([]user.User, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.Username == "" || rec.Password == "" {
			r.log.LogAttrs(ctx,
				slog.LevelWarn,
				"skipping incomplete user record",
				slog.String("id", rec.ID),
			)
			continue
		}
		if _, dup := seen[rec.Username]; dup {
			r.log.LogAttrs(ctx,
				slog.LevelWarn,
				"skipping duplicate user record",
				slog.String("username", rec.Username),
			)
			continue
		}
		seen[rec.Username] = struct{}{}
		users = append(users, user.User{
			ID:           rec.ID,
			Username:     rec.Username,
			PasswordHash: rec.Password,
		})
	}
	return users
}

func (r *FileUserRepository) FindByUsername(_ context.Context, username string,
) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, serviceerrs.ErrNotFound
}

// Create checks uniqueness, persists and commits under one write lock, so
// two registrations of the same username cannot both succeed.
func (r *FileUserRepository) Create(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", serviceerrs.ErrPersistence, err)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return serviceerrs.ErrConflict
		}
	}

	next := make([]user.User, len(r.users), len(r.users)+1)
	copy(next, r.users)
	next = append(next, *u)

	if err := r.persist(next); err != nil {
		return fmt.Errorf("%w: %w", serviceerrs.ErrPersistence, err)
	}
	r.users = next
	return nil
}

func (r *FileUserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func (r *FileUserRepository) persist(users []user.User) error {
	records := make([]fileRecord, 0, len(users))
	for _, u := range users {
		records = append(records, fileRecord{
			ID:       u.ID,
			Username: u.Username,
			Password: u.PasswordHash,
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp users file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write users file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync users file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close users file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to set users file mode: %w", err)
	}
	if err = os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace users file: %w", err)
	}
	committed = true
	return nil
}
