package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiliiie/newport-bank-backend/internal/auth"
	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
	"github.com/kiliiie/newport-bank-backend/internal/dto"
	"github.com/kiliiie/newport-bank-backend/internal/service"
)

const sessionCookieName = "session_id"

// AuthHandler handles register, login and logout.
type AuthHandler struct {
	sessions   *auth.Store
	accountSvc *service.AccountService
	cookieAge  int
}

// NewAuthHandler returns a new AuthHandler. cookieAge is the session cookie
// max-age in seconds.
func NewAuthHandler(sessions *auth.Store, accountSvc *service.AccountService, cookieAge int) *AuthHandler {
	return &AuthHandler{sessions: sessions, accountSvc: accountSvc, cookieAge: cookieAge}
}

// Register godoc
// @Summary      Register a new account (awaits admin approval)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Account details"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := h.accountSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, dom.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password required"})
			return
		}
		if errors.Is(err, dom.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	// No session yet: the account must be approved before it can log in.
	c.JSON(http.StatusCreated, gin.H{"message": "registration submitted, await admin approval"})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := h.accountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, dom.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if errors.Is(err, dom.ErrAwaitingApproval) {
			c.JSON(http.StatusForbidden, gin.H{"error": "awaiting approval"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	sessionID, err := h.sessions.Issue(c.Request.Context(), auth.Claims{
		AccountID: account.ID,
		Role:      account.Role,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.SetCookie(sessionCookieName, sessionID, h.cookieAge, "/", "", false, true) // httpOnly
	c.JSON(http.StatusOK, dto.LoginResponse{
		OK:      true,
		Name:    account.Name,
		Email:   account.Email,
		Balance: account.Balance,
	})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Revoke(c.Request.Context(), sessionID)
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
