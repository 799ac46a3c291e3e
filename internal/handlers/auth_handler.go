package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

// --- SIGN UP ---
func (h *Handler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, result)
}

// --- LOGIN ---
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, result)
}

// --- LOGOUT ---
func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), callerClaims(c)); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Signed out"})
}

// --- PASSWORD RESET ---
// The response is the same whether or not the email has an account.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !h.bind(c, &req) {
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "If an account exists for this email, a reset link has been sent"})
}

func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if !h.bind(c, &req) {
		return
	}

	if err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Password updated"})
}

// --- DELETE ACCOUNT ---
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.auth.DeleteAccount(c.Request.Context(), callerClaims(c)); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Account deleted"})
}

// --- CURRENT USER ---
// GetMe resolves the caller's profile, creating a default one when none exists.
func (h *Handler) GetMe(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		h.respondError(c, Unauthorized("Authorization header required", nil))
		return
	}

	resolved, err := h.svc.Users.ResolveProfile(c.Request.Context(), services.Identity{UID: claims.UserID, Email: claims.Email})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"profile": resolved.Profile, "source": resolved.Source})
}
