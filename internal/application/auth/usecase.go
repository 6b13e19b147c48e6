package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
	"github.com/jhoicas/cashdesk-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// PrincipalResolver resuelve membresía y capacidades; session.Resolver lo implementa.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID, companyID string, tokenExpiry time.Time) (*session.Principal, error)
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	resolver PrincipalResolver
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, resolver PrincipalResolver, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, resolver: resolver, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario sin empresa: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, resuelve la membresía en la empresa pedida,
// genera el JWT y devuelve las capacidades de la sesión.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}

	// Sin empresa: token solo de identidad (sirve para crear la primera empresa).
	if in.CompanyID == "" {
		token, exp, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, "", "", uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
		if err != nil {
			return nil, err
		}
		return &dto.LoginResponse{Token: token, ExpiresAt: exp, User: *toUserResponse(user)}, nil
	}

	exp := time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute)
	p, err := uc.resolver.Resolve(ctx, user.ID, in.CompanyID, exp)
	if err != nil {
		return nil, err
	}
	token, exp, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, in.CompanyID, p.RawRole, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:        token,
		ExpiresAt:    exp,
		User:         *toUserResponse(user),
		Role:         p.Role.String(),
		Capabilities: CapabilitiesOf(p),
	}, nil
}

// CapabilitiesOf arma la respuesta de GET /api/me/capabilities.
func CapabilitiesOf(p *session.Principal) dto.CapabilityResponse {
	return dto.CapabilityResponse{
		Role:         p.Role.String(),
		Capabilities: p.Caps,
		Permissions:  p.Caps.Permissions(),
	}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
