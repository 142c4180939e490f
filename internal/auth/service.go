package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/refermarket/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the identity asserted by a verified bearer token. Tokens are
// minted by the identity provider; this service only verifies them.
type Claims struct {
	UID   string
	Email string
	Name  string
}

// Service verifies bearer tokens and bridges provider identities into
// local user rows.
type Service struct {
	db        *gorm.DB
	jwtSecret []byte
}

// NewService creates a new authentication service
func NewService(db *gorm.DB, jwtSecret []byte) *Service {
	return &Service{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

// ValidateToken verifies an HS256 token and extracts its identity claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	uid, ok := mapClaims["uid"].(string)
	if !ok || uid == "" {
		return nil, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}

	claims := &Claims{UID: uid}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}

	return claims, nil
}

// IssueToken signs an HS256 token for the given identity. Used by the
// seed tooling and tests; production tokens come from the identity
// provider with the same shared secret.
func (s *Service) IssueToken(uid, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":   uid,
		"email": email,
		"name":  name,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// EnsureUser resolves the local user row for verified claims, creating
// it on first sight and refreshing profile fields on subsequent logins.
func (s *Service) EnsureUser(claims *Claims) (*models.User, error) {
	var user models.User
	err := s.db.Where("uid = ?", claims.UID).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		user = models.User{
			UID:         claims.UID,
			Email:       claims.Email,
			DisplayName: claims.Name,
			LastLoginAt: &now,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Keep profile fields in sync with the identity provider
	updates := map[string]interface{}{"last_login_at": time.Now()}
	if claims.Email != "" && claims.Email != user.Email {
		updates["email"] = claims.Email
	}
	if claims.Name != "" && claims.Name != user.DisplayName {
		updates["display_name"] = claims.Name
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

// FindUserByUID finds a user by their identity-provider UID
func (s *Service) FindUserByUID(uid string) (*models.User, error) {
	var user models.User
	err := s.db.Where("uid = ?", uid).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

// FindUserByEmail finds a user by email (case-insensitive)
func (s *Service) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}
