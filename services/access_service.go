package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/camden-git/photocatalog/repository"
)

// AccessService checks credentials against the user collection.
type AccessService struct {
	store   repository.Store
	timeout time.Duration
}

// NewAccessService creates a new access service. A zero timeout leaves the caller's deadline alone.
func NewAccessService(store repository.Store, timeout time.Duration) *AccessService {
	return &AccessService{store: store, timeout: timeout}
}

// Authenticate returns the id of the first user whose username and password both match,
// or ErrDenied when none does.
func (s *AccessService) Authenticate(ctx context.Context, username, password string) (int, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load users: %w", err)
	}

	for i := range users {
		u := &users[i]
		if u.Username != username {
			continue
		}
		if !u.CheckPassword(password) {
			continue
		}
		if u.HasLegacyPassword() {
			log.Printf("Warning: user %d (%s) still has a plaintext password, run the seed command to hash it", u.ID, u.Username)
		}
		return u.ID, nil
	}

	return 0, ErrDenied
}

func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
