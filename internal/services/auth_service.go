package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pollstream/internal/domain/user"
	"pollstream/internal/repository"
	pollstream_errors "pollstream/pkg/errors"
	"pollstream/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService owns registration, login and token handling. Tokens are HS256
// bearer tokens whose subject is the user's public UUID.
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	expiry    time.Duration
	logger    *logger.Logger
}

func NewAuthService(db *gorm.DB, jwtSecret string, expiryMin int, l *logger.Logger) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		expiry:    time.Duration(expiryMin) * time.Minute,
		logger:    l,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AccessClaims struct {
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user.User, string, error) {
	if err := validateRegisterInput(in); err != nil {
		return user.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u := user.User{
		UUID:         uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
	}

	users := repository.NewUserRepository(s.db)
	if err := users.Create(ctx, &u); err != nil {
		return user.User{}, "", err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return user.User{}, "", err
	}

	if s.logger != nil {
		s.logger.Infof("user registered: %s", u.UUID)
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (user.User, string, error) {
	users := repository.NewUserRepository(s.db)
	u, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		// Do not reveal whether the account exists.
		return user.User{}, "", pollstream_errors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, "", pollstream_errors.ErrUnauthorized
	}

	token, err := s.issueToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// GetUserByUUID resolves a token subject to its account.
func (s *AuthService) GetUserByUUID(ctx context.Context, id uuid.UUID) (user.User, error) {
	users := repository.NewUserRepository(s.db)
	return users.GetByUUID(ctx, id)
}

func (s *AuthService) issueToken(u user.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UUID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, pollstream_errors.ErrUnauthorized
	}
	return claims, nil
}

func validateRegisterInput(in RegisterInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 50 {
		return fmt.Errorf("%w: name must be 1-50 characters", pollstream_errors.ErrInvalidInput)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || len(email) > 50 || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", pollstream_errors.ErrInvalidInput)
	}
	if len(in.Password) < 6 || len(in.Password) > 72 {
		return fmt.Errorf("%w: password must be 6-72 characters", pollstream_errors.ErrInvalidInput)
	}
	return nil
}
