// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/bizdir-backend/internal/i18n"
	"github.com/javajoker/bizdir-backend/internal/middleware"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	broker      *session.Broker
}

func NewAuthHandler(authService *services.AuthService, broker *session.Broker) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		broker:      broker,
	}
}

func authPayload(message string, resp *services.AuthResponse) gin.H {
	return gin.H{
		"message":       message,
		"user":          resp.User,
		"profile":       resp.Profile,
		"business":      resp.Business,
		"session":       resp.Session,
		"token":         resp.AccessToken,
		"refresh_token": resp.RefreshToken,
		"token_type":    resp.TokenType,
		"expires_in":    resp.ExpiresIn,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		// The account exists even though its listing does not; hand the
		// tokens back so the owner can retry from the dashboard.
		var partial *services.PartialSignUpError
		if errors.As(err, &partial) {
			utils.PartialSuccessResponse(c, "BUSINESS_REGISTRATION_FAILED",
				i18n.T(lang, i18n.KeyAuthBusinessSignUpFail),
				authPayload(i18n.T(lang, i18n.KeyAuthRegisterSuccess), partial.Auth))
			return
		}
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, authPayload(i18n.T(lang, i18n.KeyAuthRegisterSuccess), authResponse))
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, authPayload(i18n.T(lang, i18n.KeyAuthLoginSuccess), authResponse))
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	current := middleware.CurrentSession(c)
	if err := h.authService.Logout(c.Request.Context(), current.UserID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthLogoutSuccess),
	})
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	authResponse, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, authPayload(i18n.T(lang, i18n.KeyAuthTokenRefreshed), authResponse))
}

// GET /auth/session
// Omits data for anonymous or revoked callers.
func (h *AuthHandler) Session(c *gin.Context) {
	resp := utils.APIResponse{Success: true}
	// A typed nil would still serialize as "data":null.
	if current := middleware.CurrentSession(c); current != nil {
		resp.Data = current
	}
	c.JSON(http.StatusOK, resp)
}

// GET /auth/session/events
// Streams the caller's session as server-sent events until it ends.
func (h *AuthHandler) SessionEvents(c *gin.Context) {
	current := middleware.CurrentSession(c)

	events, cancel := h.broker.Subscribe(current.UserID)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sendSession(c, current)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			sendSession(c, event.Session)
			if event.Session == nil {
				return
			}
		}
	}
}

// sendSession writes one event whose data is the session JSON, or null
// once the session has ended.
func sendSession(c *gin.Context, current *session.Session) {
	raw, _ := json.Marshal(current)
	c.SSEvent("session", string(raw))
	c.Writer.Flush()
}
