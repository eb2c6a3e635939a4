package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"bhelpuri/internal/models"
	"bhelpuri/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration // Duration for which JWT is valid
	resetTTL  time.Duration // Duration for which a password reset token is valid

	// revoked maps logged-out tokens to their expiry time so they can
	// be rejected until they would have expired anyway.
	revoked   map[string]time.Time
	revokedMu sync.Mutex
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour, // Token valid for 24 hours
		resetTTL:  1 * time.Hour,
		revoked:   make(map[string]time.Time),
	}
}

// RegisterUser registers a new account with the customer role, hashing
// the password before it is stored.
func (s *AuthService) RegisterUser(user *models.User) error {
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s': %w", user.Email, ErrEmailTaken)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password
	user.Role = models.RoleCustomer

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
// Unknown email and wrong password both come back as
// ErrInvalidCredentials so callers cannot probe which accounts exist.
func (s *AuthService) LoginUser(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(), // Token expiration time
		"iat":     time.Now().Unix(),                 // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// Logout revokes the given token. The token keeps failing validation
// until it would have expired on its own.
func (s *AuthService) Logout(tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return fmt.Errorf("cannot log out: %w", err)
	}

	expiry := time.Now().Add(s.tokenTTL)
	if exp, ok := claims["exp"].(float64); ok {
		expiry = time.Unix(int64(exp), 0)
	}

	s.revokedMu.Lock()
	defer s.revokedMu.Unlock()

	// Sweep entries that have expired anyway to keep the set small.
	now := time.Now()
	for tok, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, tok)
		}
	}
	s.revoked[tokenString] = expiry
	return nil
}

// ValidateToken parses and validates a JWT token, returning the claims
// if valid and not revoked.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	s.revokedMu.Lock()
	_, isRevoked := s.revoked[tokenString]
	s.revokedMu.Unlock()
	if isRevoked {
		return nil, fmt.Errorf("token has been revoked")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// RequestPasswordReset issues a single-use reset token for the account,
// if one exists. It deliberately succeeds either way: callers present
// the same outcome for known and unknown emails so the endpoint cannot
// be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Unknown email. Do nothing, report nothing.
		return nil
	}

	token := uuid.New().String()
	expires := time.Now().Add(s.resetTTL)
	user.ResetToken = token
	user.ResetTokenExpires = &expires

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	// No mailer is wired up; the delivery channel would pick this up.
	log.Printf("Password reset token issued for %s (expires %s)", user.Email, expires.Format(time.RFC3339))
	return nil
}

// ResetPassword consumes a reset token and replaces the account
// password with a hash of the new one.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	user, err := s.userRepo.GetByResetToken(token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		return ErrResetTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.ResetToken = ""
	user.ResetTokenExpires = nil

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// PromoteToAdmin grants the admin role to the account with the given
// email. Used at startup to bootstrap the first administrator; all
// authorization checks go against the stored role, never the email.
func (s *AuthService) PromoteToAdmin(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("cannot promote %s: %w", email, err)
	}
	if user.IsAdmin() {
		return nil
	}

	user.Role = models.RoleAdmin
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to promote %s to admin: %w", email, err)
	}
	log.Printf("Granted admin role to %s", email)
	return nil
}
