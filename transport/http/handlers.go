package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/service"
	"go.uber.org/zap"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

// VerifyRequest is the body of POST /auth/verify
type VerifyRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"` // Raw address when chainType is eip155
	Signer    string `json:"signer"`
	ChainType string `json:"chainType,omitempty"`
}

// VerifyResponse is the body of every /auth/verify response
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	challenge, err := h.authService.CreateChallenge()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication message"})
		return
	}

	recordChallengeIssued()
	c.JSON(http.StatusOK, challenge)
}

// Verify handles the signature verification request
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, VerifyResponse{Message: "Invalid request body"})
		return
	}

	chainType := core.ParseChainType(req.ChainType)
	result := h.authService.Verify(c.Request.Context(), core.VerificationRequest{
		Message:   req.Message,
		Signature: req.Signature,
		PublicKey: req.PublicKey,
		Signer:    req.Signer,
		ChainType: chainType,
	})
	recordVerification(chainType, result)

	c.JSON(statusFor(result), VerifyResponse{
		Success: result.Success,
		Message: result.Message,
	})
}

// MethodNotAllowed answers requests whose path exists under another method
func (h *AuthHandlers) MethodNotAllowed(c *gin.Context) {
	switch c.Request.URL.Path {
	case "/auth/verify":
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, VerifyResponse{
			Message: fmt.Sprintf("Method %s Not Allowed", c.Request.Method),
		})
	case "/auth/challenge":
		c.Header("Allow", http.MethodGet)
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

// statusFor maps a verification outcome to an HTTP status code
func statusFor(result core.VerificationResult) int {
	if result.Success {
		return http.StatusOK
	}

	switch result.Reason {
	case core.ReasonChallengeExpired, core.ReasonNonceReused:
		return http.StatusUnauthorized
	case core.ReasonInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
