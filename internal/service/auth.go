package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const tokenIssuer = "beautypro"

// AuthService signs staff into the admin panel.
type AuthService struct {
	users     port.UserStore
	jwtSecret []byte
	accessTTL time.Duration
	now       Clock
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users port.UserStore, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		now:       time.Now,
		logger:    logger,
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ============================================================
// Login: POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if err := validateInput(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			s.logger.Warn("login: unknown e-mail", zap.String("email", req.Email))
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: wrong password", zap.String("user_id", user.ID))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("staff signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		User:        *user,
		Areas:       user.Role.Areas(),
	}, nil
}

// ============================================================
// Me: GET /v1/auth/me
// ============================================================

func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.MeResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Me")
	defer span.End()

	user, err := s.users.GetUser(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, &domain.ErrUnauthorized{Message: "user no longer exists"}
		}
		return nil, err
	}
	return &domain.MeResponse{User: *user, Areas: user.Role.Areas()}, nil
}

// ============================================================
// Tokens, used by the middleware
// ============================================================

// StaffClaims are the custom claims of access tokens.
type StaffClaims struct {
	Role           domain.Role `json:"role"`
	ProfessionalID string      `json:"professional_id,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken validates an access token and returns its principal.
func (s *AuthService) ParseToken(tokenString string) (*domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	return &domain.Principal{
		UserID:         claims.Subject,
		Role:           claims.Role,
		ProfessionalID: claims.ProfessionalID,
	}, nil
}

func (s *AuthService) signAccessToken(u *domain.User) (string, error) {
	now := s.now()
	claims := StaffClaims{
		Role:           u.Role,
		ProfessionalID: u.ProfessionalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
