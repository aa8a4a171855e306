package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/hash"
	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/models"
	"github.com/Skotchmaster/eshop/internal/transport"
)

type UserService struct {
	Store  UserStore
	Tokens TokenIssuer
	Events events.Publisher
}

func (s *UserService) publish(ctx context.Context, key string, ev events.Event) {
	events.PublishBestEffort(ctx, s.Events, logging.FromContext(ctx), events.TopicUsers, key, ev)
}

// Login returns the user's email and a fresh token.
func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*transport.LoginResponse, error) {
	u, err := s.Store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrWrongPassword
	}

	token, err := s.Tokens.Issue(u.ID.String(), u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &transport.LoginResponse{User: u.Email, Token: token}, nil
}

// Register creates an account from the public endpoint. The admin flag is
// honoured as sent.
func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	if req.IsAdmin {
		logging.FromContext(ctx).Warn("register_with_admin_flag", "email", req.Email)
	}
	return s.create(ctx, req, "user_registered")
}

func (s *UserService) CreateUser(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	return s.create(ctx, req, "user_created")
}

func (s *UserService) create(ctx context.Context, req transport.RegisterRequest, eventType string) (*models.User, error) {
	pwHash, err := hash.HashPassword(req.Password)
	if errors.Is(err, hash.ErrEmptyPassword) {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Phone:        req.Phone,
		IsAdmin:      req.IsAdmin,
		Street:       req.Street,
		Apartment:    req.Apartment,
		Zip:          req.Zip,
		City:         req.City,
		Country:      req.Country,
	}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, u.ID.String(), events.Event{
		"type":    eventType,
		"userID":  u.ID,
		"email":   u.Email,
		"isAdmin": u.IsAdmin,
	})
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Store.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.Store.GetUser(ctx, id)
}

// PatchUser re-hashes a non-empty password; otherwise the stored hash stays.
func (s *UserService) PatchUser(ctx context.Context, id uuid.UUID, req transport.PatchUserRequest) (*models.User, error) {
	var pwHash string
	if req.Password != nil && *req.Password != "" {
		h, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwHash = h
	}

	u, err := s.Store.PatchUser(ctx, id, req, pwHash)
	if err != nil {
		return nil, fmt.Errorf("patch user: %w", err)
	}
	s.publish(ctx, u.ID.String(), events.Event{
		"type":            "user_updated",
		"userID":          u.ID,
		"passwordChanged": pwHash != "",
	})
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.publish(ctx, id.String(), events.Event{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.Store.CountUsers(ctx)
}
