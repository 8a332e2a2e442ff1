package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sophia-kim26/koreanschool-attendance/internal/usecase"
)

// AuthHandler exposes the sign-in endpoint.
type AuthHandler struct {
	credentials *usecase.CredentialService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(credentials *usecase.CredentialService) *AuthHandler {
	return &AuthHandler{credentials: credentials}
}

// Signin verifies an email/PIN pair and issues a bearer token for clock
// operations. Wrong email and wrong PIN produce the same answer.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and pin are required"))
		return
	}
	if !validEmail(req.Email) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email must look like local@domain.tld"))
		return
	}
	if !validPIN(req.PIN) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "pin must be exactly six digits"))
		return
	}

	worker, token, expiresAt, err := h.credentials.Authenticate(c.Request.Context(), req.Email, req.PIN)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredential, Status: http.StatusUnauthorized, Message: "invalid email or pin"},
		}, http.StatusInternalServerError, "sign-in failed")
		return
	}

	c.JSON(http.StatusOK, SigninResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
		Worker:      newWorkerSummary(worker),
	})
}
