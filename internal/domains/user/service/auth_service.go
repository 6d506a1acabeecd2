package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"booknook-backend/internal/domains/user/model"
	"booknook-backend/internal/domains/user/repository"
	"booknook-backend/internal/shared"
	"booknook-backend/internal/shared/apperror"
	"booknook-backend/pkg/logger"
)

type authService struct {
	repo     repository.UserRepository
	tokens   TokenIssuer
	hashCost int

	// compared against on unknown emails so both failure paths cost a bcrypt run
	dummyHash []byte
}

func NewAuthService(repo repository.UserRepository, tokens TokenIssuer) AuthService {
	return newAuthService(repo, tokens, bcrypt.DefaultCost)
}

func newAuthService(repo repository.UserRepository, tokens TokenIssuer, cost int) *authService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("booknook-dummy-password"), cost)
	return &authService{
		repo:      repo,
		tokens:    tokens,
		hashCost:  cost,
		dummyHash: dummy,
	}
}

// ========================================
// REGISTER / LOGIN
// ========================================

func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	taken, err := s.repo.UsernameExists(ctx, req.Username, uuid.Nil)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("check username: %w", err))
	}
	if taken {
		return nil, model.NewUsernameTakenError()
	}

	taken, err = s.repo.EmailExists(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("check email: %w", err))
	}
	if taken {
		return nil, model.NewEmailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}

	// unknown roles fall back to the default
	role := shared.RoleUser
	if shared.IsRole(req.Role) {
		role = req.Role
	}

	u := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
		Preferences:  json.RawMessage(`{}`),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, mapUserWriteError(err)
	}

	logger.Info("user registered", map[string]interface{}{"user_id": u.ID.String(), "role": u.Role})
	return s.authResponse(u)
}

func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, model.NewMissingCredentialsError()
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, model.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("find user by email: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	return s.authResponse(u)
}

// authResponse issues the token pair. Both tokens carry the same claims.
func (s *authService) authResponse(u *model.User) (*model.AuthResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(u.ID.String(), u.Role)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sign token: %w", err))
	}

	return &model.AuthResponse{
		UserID:       u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// ========================================
// CURRENT USER
// ========================================

func (s *authService) Me(ctx context.Context, identity shared.Identity) (*model.Profile, error) {
	id, err := uuid.Parse(identity.ID)
	if err != nil {
		return nil, model.NewUserNotFoundError(identity.ID)
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapUserLookupError(err, identity.ID)
	}

	list, err := s.repo.ReadingList(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return model.NewProfile(u, list), nil
}

func (s *authService) LoadIdentity(ctx context.Context, userID string) (*shared.Identity, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapUserLookupError(err, userID)
	}

	identity := u.Identity()
	return &identity, nil
}

// ========================================
// ERROR MAPPING
// ========================================

func mapUserLookupError(err error, id string) error {
	if errors.Is(err, model.ErrUserNotFound) {
		return model.NewUserNotFoundError(id)
	}
	return apperror.Internal(err)
}

func mapUserWriteError(err error) error {
	switch {
	case errors.Is(err, model.ErrUsernameTaken):
		return model.NewUsernameTakenError()
	case errors.Is(err, model.ErrEmailTaken):
		return model.NewEmailTakenError()
	case errors.Is(err, model.ErrUserNotFound):
		return apperror.NotFound("User not found")
	default:
		return apperror.Internal(err)
	}
}
