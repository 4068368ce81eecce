package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/internal/validation"
	"github.com/propuestas-api/pkg/response"
)

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "please provide username, email and password")
		return
	}

	token, user, err := h.authService.Register(&req)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			response.ValidationFailed(c, verrs.Error(), verrs)
		case errors.Is(err, service.ErrUsernameTaken):
			response.BadRequest(c, "username already in use")
		case errors.Is(err, service.ErrEmailTaken):
			response.BadRequest(c, "email already registered")
		default:
			response.InternalError(c, "failed to register user")
		}
		return
	}

	response.Created(c, gin.H{
		"message": "user registered successfully",
		"token":   token,
		"user":    user.Public(),
	})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "please provide email and password")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.BadRequest(c, "please provide email and password")
		return
	}

	token, user, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid credentials")
			return
		}
		response.InternalError(c, "failed to login")
		return
	}

	response.OK(c, gin.H{
		"message": "login successful",
		"token":   token,
		"user":    user.Public(),
	})
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	auth := rg.Group("/auth", mw...)
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}
