package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kelas/internal/models"
	"kelas/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the authenticated caller carried by a request.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin reports whether the caller may manage the catalog.
func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService. Tokens are valid for tokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
	}
}

// RegisterUser hashes the password and stores a new student account.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	if existing, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken: %w", user.Username, ErrUserExists)
	}
	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrUserExists)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.Role = models.RoleStudent

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("user '%s': %w", user.Username, ErrUserExists)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser checks the credentials and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Same answer for unknown users and bad passwords
		return "", ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredential
	}
	return s.IssueToken(user)
}

// IssueToken signs a token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	role := user.Role
	if role == "" {
		role = models.RoleStudent
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     role,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses a token and returns the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Identity{}, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	return Identity{UserID: userID, Username: username, Role: role}, nil
}
