package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/internal/store"
	"github.com/jjudge-oj/contacts/types"
	"golang.org/x/crypto/bcrypt"
)

const tokenAttempts = 3

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByToken(ctx context.Context, token string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetToken(ctx context.Context, id int64, token *string) error
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username string
	Password string
	Name     string
}

// UpdateUserInput carries a partial profile update. Nil or empty fields are
// left unchanged.
type UpdateUserInput struct {
	Name     *string
	Password *string
}

// UserService encapsulates the credential lifecycle: registration, login,
// logout, profile updates and bearer token resolution.
type UserService struct {
	repo       UserRepository
	events     *Events
	bcryptCost int
	newToken   func() string

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(repo UserRepository, bcryptCost int, events *Events) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		repo:       repo,
		events:     events,
		bcryptCost: bcryptCost,
		newToken:   uuid.NewString,
	}
}

func (s *UserService) Get(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates an account. The password is stored as a bcrypt hash and
// no token is issued.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return types.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hashed, err := s.hashPassword(in.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrUsernameTaken
		}
		return types.User{}, err
	}

	logging.FromContext(ctx).WithField("user_id", user.ID).Info("user registered")
	s.events.emit(ctx, types.Event{Type: types.EventUserRegistered, UserID: user.ID})
	return user, nil
}

// Login verifies credentials and stores a fresh opaque token on the user.
// Unknown usernames and wrong passwords both cost one bcrypt comparison and
// both return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		_ = bcrypt.CompareHashAndPassword(s.placeholderHash(), []byte(password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token := s.newToken()
		err := s.repo.SetToken(ctx, user.ID, &token)
		if err == nil {
			logging.FromContext(ctx).WithField("user_id", user.ID).Info("user logged in")
			return token, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return "", err
		}
	}
	return "", fmt.Errorf("issue token: %w", store.ErrConflict)
}

// Logout clears the caller's token. Clearing an already empty token is not
// an error.
func (s *UserService) Logout(ctx context.Context, user types.User) error {
	if err := s.repo.SetToken(ctx, user.ID, nil); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthenticated
		}
		return err
	}
	logging.FromContext(ctx).WithField("user_id", user.ID).Info("user logged out")
	return nil
}

// Update applies a partial profile update to user.
func (s *UserService) Update(ctx context.Context, user types.User, in UpdateUserInput) (types.User, error) {
	if in.Name != nil && *in.Name != "" {
		user.Name = *in.Name
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := s.hashPassword(*in.Password)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = string(hashed)
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}

	logging.FromContext(ctx).WithField("user_id", updated.ID).Info("user updated")
	s.events.emit(ctx, types.Event{Type: types.EventUserUpdated, UserID: updated.ID})
	return updated, nil
}

// Authenticate resolves a bearer token to the user currently holding it.
func (s *UserService) Authenticate(ctx context.Context, token string) (types.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.User{}, ErrUnauthenticated
	}
	user, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthenticated
		}
		return types.User{}, err
	}
	return user, nil
}

func (s *UserService) hashPassword(password string) ([]byte, error) {
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hashed, nil
}

// placeholderHash is compared against when the username is unknown so the
// response time matches a wrong password.
func (s *UserService) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("placeholder-password"), s.bcryptCost)
		if err == nil {
			s.dummyHash = hashed
		}
	})
	return s.dummyHash
}
