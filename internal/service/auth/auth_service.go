// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"groupgate-service/internal/domain/admin"
	xerrors "groupgate-service/internal/pkg/errors"
	"groupgate-service/internal/repository/postgres"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the JWT payload for an authenticated admin.
type Claims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	adminRepo *postgres.AdminRepository
	secret    []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthService(adminRepo *postgres.AdminRepository, secret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		adminRepo: adminRepo,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login verifies credentials and issues a signed access token.
func (s *AuthService) Login(ctx context.Context, req *admin.LoginRequest) (*admin.LoginResponse, error) {
	a, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	token, err := s.sign(a, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("admin logged in", zap.Int64("admin_id", a.ID), zap.String("email", a.Email))

	return &admin.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Admin:       a,
	}, nil
}

// VerifyToken parses and validates an access token.
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, xerrors.ErrUnauthorized
	}
	return claims, nil
}

// ChangePassword rotates an admin's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, req *admin.ChangePasswordRequest) error {
	a, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.adminRepo.UpdatePassword(ctx, adminID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("admin password changed", zap.Int64("admin_id", adminID))
	return nil
}

// EnsureAdminExists bootstraps the first admin account from configuration.
// No-op when the email is already registered.
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, fullName, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.adminRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	a := &admin.Admin{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
	}
	if err := s.adminRepo.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

func (s *AuthService) sign(a *admin.Admin, expiresAt time.Time) (string, error) {
	claims := &Claims{
		AdminID: a.ID,
		Email:   a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", a.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
