package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/middleware"
	"budgetapp/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService  services.AuthServicer
	tokens       *middleware.Authenticator
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer, tokens *middleware.Authenticator, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens, auditService: auditService}
}

// SignUpRequest represents the sign-up request payload
type SignUpRequest struct {
	Username        string `json:"username" binding:"required,notblank,max=64"`
	Password        string `json:"password" binding:"required,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

// SignUp handles user registration
// @Summary     Sign up
// @Description Register a new user. The user must log in afterwards.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignUpRequest true "Sign-up data"
// @Success     201 {object} MessageResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input, password mismatch or too short"
// @Failure     409 {object} ErrorResponse "User already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.authService.SignUp(req.Username, req.Password, req.ConfirmPassword); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(req.Username, "SIGNUP", "user", 0, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, gin.H{"message": "Signup successful! Please login."})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user, open their session and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	username, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(username)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	h.auditService.Log(username, "LOGIN", "user", 0, c.ClientIP(), nil)

	c.JSON(http.StatusOK, AuthResponse{Token: token, ExpiresAt: expiresAt, Username: username})
}

// Logout handles user logout
// @Summary     Logout user
// @Description Close the session and revoke the presented token
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if claims, ok := c.Get(middleware.ClaimsKey); ok {
		h.tokens.Revoke(claims.(*middleware.JWTClaims))
	}
	if err := h.authService.Logout(username); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(username, "LOGOUT", "user", 0, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "You've been logged out."})
}
