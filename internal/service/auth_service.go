package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/propuestas-api/internal/config"
	"github.com/propuestas-api/internal/models"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/validation"
	"github.com/propuestas-api/pkg/crypto"
)

var (
	// ErrInvalidCredentials deliberately does not distinguish an
	// unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService handles registration, login and token verification
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtConfig  config.JWTConfig
	bcryptCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, jwtConfig config.JWTConfig, bcryptCost int) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtConfig:  jwtConfig,
		bcryptCost: bcryptCost,
	}
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Register validates and creates a new user, returning a signed token
// for the fresh session. The unique indexes on username/email back up
// the existence pre-checks under concurrent registrations.
func (s *AuthService) Register(req *RegisterRequest) (string, *models.User, error) {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := validation.Registration(req.Username, req.Email, req.Password).ErrorsOrNil(); err != nil {
		return "", nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(req.Username, 0)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", nil, ErrUsernameTaken
	}

	exists, err = s.userRepo.ExistsByEmail(req.Email, 0)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", nil, ErrEmailTaken
	}

	passwordHash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return "", nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}

	// A racing registration can slip past both pre-checks; the unique
	// indexes reject the loser and the conflict is reported the same way.
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return "", nil, s.conflictFor(user, 0)
		}
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login authenticates a user by email and password and returns a
// signed token
func (s *AuthService) Login(req *LoginRequest) (string, *models.User, error) {
	email := validation.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// conflictFor resolves which unique index rejected a user write by
// re-checking the pre-conditions, excluding the user's own row
func (s *AuthService) conflictFor(user *models.User, excludeID uint) error {
	if taken, err := s.userRepo.ExistsByUsername(user.Username, excludeID); err == nil && taken {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// generateToken signs a JWT for a user
func (s *AuthService) generateToken(user *models.User) (string, error) {
	expiresIn := time.Duration(s.jwtConfig.ExpireHours) * time.Hour

	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "propuestas-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}
