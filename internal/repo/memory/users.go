package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/bookhub/internal/domain/user"
)

// UsersRepo is an in-memory stand-in for the postgres users repo. It keeps
// the same contract: unique emails, first-user-is-admin, atomic create.
type UsersRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]user.User
	byID    map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID:  1,
		byEmail: make(map[string]user.User),
		byID:    make(map[int64]user.User),
	}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byEmail[email]

	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, fullname, email, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return user.User{}, user.ErrEmailTaken
	}

	role := user.RoleUser

	if len(r.byID) == 0 {
		role = user.RoleAdmin
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           r.nextID,
		FullName:     fullname,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.nextID++
	r.byEmail[email] = u
	r.byID[u.ID] = u

	return u, nil
}

// SetActive flips the active flag; used by tests to model disabled accounts.
func (r *UsersRepo) SetActive(id int64, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]

	if !ok {
		return
	}

	u.Active = active
	r.byID[id] = u
	r.byEmail[u.Email] = u
}
