package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mpdirectory/internal/config"
)

// AuthController serves the /api/auth endpoints.
type AuthController struct {
	service  *Service
	sessions *SessionManager
	limiter  *LoginLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessions *SessionManager, cfg config.Auth) *AuthController {
	return &AuthController{
		service:  service,
		sessions: sessions,
		limiter:  NewLoginLimiter(cfg.MaxLoginAttempts, cfg.LockoutDuration),
	}
}

// RegisterRoutes registers the endpoints usable without a session.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/setup", ac.Setup)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/csrf", ac.CSRFToken)
}

// RegisterProtectedRoutes registers the endpoints that need a signed-in user.
func (ac *AuthController) RegisterProtectedRoutes(group *gin.RouterGroup) {
	group.GET("/me", ac.Me)
	group.POST("/tokens", ac.GenerateToken)
	group.DELETE("/tokens", ac.RevokeToken)
}

type setupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Setup creates the first admin and signs it in.
func (ac *AuthController) Setup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required", "code": "invalid_request"})
		return
	}

	user, err := ac.service.Setup(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrSetupComplete):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "setup_complete"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_request"})
		default:
			log.Printf("Auth: setup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user", "code": "internal_error"})
		}
		return
	}

	if ac.sessions != nil {
		if err := ac.sessions.CreateSession(c.Request.Context(), user); err != nil {
			log.Printf("Auth: failed to create session for %s: %v", user.Username, err)
		}
	}
	log.Printf("Auth: created admin user %s", user.Username)
	c.JSON(http.StatusCreated, user)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired, ErrUsernameInvalid, ErrEmailRequired, ErrEmailInvalid,
		ErrPasswordRequired, ErrPasswordTooShort, ErrPasswordTooLong, ErrUserExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Login checks credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required", "code": "invalid_request"})
		return
	}

	key := c.ClientIP() + "|" + req.Username
	if !ac.limiter.Allow(key) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later", "code": "rate_limited"})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrAccountLocked) {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is locked, try again later", "code": "account_locked"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password", "code": "invalid_credentials"})
		return
	}
	ac.limiter.Reset(key)

	if ac.sessions == nil {
		c.JSON(http.StatusOK, user)
		return
	}
	if err := ac.sessions.CreateSession(c.Request.Context(), user); err != nil {
		log.Printf("Auth: failed to create session for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session", "code": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout ends the session.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessions != nil {
		_ = ac.sessions.DestroySession(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// CSRFToken returns the token session callers send in X-CSRF-Token.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"token": GetCSRFToken(c), "header": CSRFTokenHeader})
}

// Me describes the authenticated caller.
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":   GetUserID(c),
		"username":  GetUsername(c),
		"role":      GetUserRole(c),
		"auth_type": GetAuthType(c),
	})
}

// GenerateToken replaces the caller's API token.
func (ac *AuthController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API tokens require AUTH_MODE=local", "code": "auth_disabled"})
		return
	}

	token, err := ac.service.GenerateToken(userID)
	if err != nil {
		log.Printf("Auth: failed to generate token for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token", "code": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken removes the caller's API token.
func (ac *AuthController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API tokens require AUTH_MODE=local", "code": "auth_disabled"})
		return
	}

	if err := ac.service.RevokeToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token", "code": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
