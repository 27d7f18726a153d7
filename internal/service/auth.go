package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fichaje/internal/model"
	"fichaje/internal/model/dto"
	"fichaje/internal/store"
	"fichaje/pkg/errors"
	"fichaje/pkg/logger"
	"fichaje/pkg/snowflake"
	"fichaje/pkg/token"
)

// ProfileRepository subconjunto del almacén de perfiles que usa el servicio.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetByPublicID(ctx context.Context, publicID int64) (*model.Profile, error)
}

type AuthService struct {
	profiles ProfileRepository
}

var (
	authService *AuthService
	authOnce    sync.Once

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = NewAuthService(store.Profiles())
	})
	return authService
}

func NewAuthService(profiles ProfileRepository) *AuthService {
	return &AuthService{profiles: profiles}
}

// Login valida credenciales y emite el par de tokens. El mensaje de error
// no distingue entre email inexistente y contraseña incorrecta.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenPairResponse, *dto.ProfileData, error) {
	profile, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query profile: %w", err)
	}
	if profile == nil {
		return nil, nil, errors.InvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(profile.PasswordHash, []byte(req.Password)); err != nil {
		return nil, nil, errors.InvalidCredentials
	}

	pair, err := s.issueTokens(profile)
	if err != nil {
		return nil, nil, err
	}

	logger.Logger.Info("User logged in",
		zap.Int64("public_id", profile.PublicID),
		zap.String("role", string(profile.Role)),
	)

	data := toProfileData(profile)
	return pair, &data, nil
}

// Refresh emite un par nuevo a partir de un refresh token válido.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error) {
	uid, _, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized
	}

	publicID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return nil, errors.InvalidUserID
	}

	profile, err := s.profiles.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	if profile == nil {
		// el rol vigente sale siempre de la base de datos, no del token
		return nil, errors.UserNotFound
	}

	return s.issueTokens(profile)
}

// CreateUser da de alta un empleado. Solo lo invocan administradores; el
// middleware garantiza el rol antes de llegar aquí.
func (s *AuthService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.ProfileData, error) {
	if !emailPattern.MatchString(req.Email) {
		return nil, errors.InvalidEmail
	}
	if len(req.Password) < 6 {
		return nil, errors.WeakPassword
	}

	role := model.RoleEmployee
	if req.Role == string(model.RoleAdmin) {
		role = model.RoleAdmin
	}

	existing, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	if existing != nil {
		return nil, errors.EmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	profile := &model.Profile{
		PublicID:     publicID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	logger.Logger.Info("User created",
		zap.Int64("public_id", publicID),
		zap.String("role", string(role)),
	)

	data := toProfileData(profile)
	return &data, nil
}

// GetProfile busca el perfil por su id público.
func (s *AuthService) GetProfile(ctx context.Context, publicID int64) (*dto.ProfileData, error) {
	profile, err := s.profiles.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	if profile == nil {
		return nil, errors.UserNotFound
	}

	data := toProfileData(profile)
	return &data, nil
}

// ResolveInternalID traduce el id público del token al id interno con el
// que se almacenan los fichajes.
func (s *AuthService) ResolveInternalID(ctx context.Context, publicID int64) (int64, *model.Profile, error) {
	profile, err := s.profiles.GetByPublicID(ctx, publicID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query profile: %w", err)
	}
	if profile == nil {
		return 0, nil, errors.UserNotFound
	}
	return profile.ID, profile, nil
}

func (s *AuthService) issueTokens(profile *model.Profile) (*dto.TokenPairResponse, error) {
	uid := strconv.FormatInt(profile.PublicID, 10)
	access, refresh, expiresIn, err := token.GenerateTokenPair(uid, string(profile.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	return &dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, nil
}

func toProfileData(profile *model.Profile) dto.ProfileData {
	return dto.ProfileData{
		UserID:   strconv.FormatInt(profile.PublicID, 10),
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     string(profile.Role),
	}
}
