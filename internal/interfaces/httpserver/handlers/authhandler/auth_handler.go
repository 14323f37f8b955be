// Package authhandler exposes login and registration endpoints.
package authhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Phicks-debug/daisii/internal/domain/auth"
	"github.com/Phicks-debug/daisii/internal/domain/user"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/requests/authreq"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/responses"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

type AuthHandler struct {
	users    *user.Service
	sessions *auth.SessionService
	tokenTTL time.Duration
	logger   zerolog.Logger
}

func NewAuthHandler(users *user.Service, sessions *auth.SessionService, tokenTTL time.Duration, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Token exchanges form-encoded credentials for a bearer session token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req authreq.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "malformed login request")
		return
	}
	if req.Username == "" || req.Password == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "username and password are required")
		return
	}

	account, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		responses.HandleError(c, err, "login failed")
		return
	}

	token, err := h.sessions.Issue(account.Email, h.tokenTTL)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue session token")
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "failed to issue session token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req authreq.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "malformed registration request")
		return
	}

	account, err := h.users.Register(c.Request.Context(), user.Registration{
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		VerifyPassword: req.VerifyPassword,
	})
	if err != nil {
		responses.HandleError(c, err, "registration failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       account.ID,
		"email":    account.Email,
		"username": account.Username,
	})
}
