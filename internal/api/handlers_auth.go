package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dndsim/internal/auth"
)

type signupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new user account
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
		"token":   token,
	})
}

// Login authenticates by email or username plus password. The email field
// accepts either.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}

	user, token, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Me returns the authenticated user's account.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.store.UserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	if user == nil {
		fail(c, http.StatusNotFound, "not_found", "user account no longer exists")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Refresh re-issues a token for the authenticated caller.
func (h *Handler) Refresh(c *gin.Context) {
	token, err := h.auth.Refresh(currentUserID(c))
	if err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed",
		"token":   token,
	})
}

// Logout exists for API symmetry. Tokens are not revocable server-side;
// the client discards its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
		"note":    "Please remove the token from client storage",
	})
}
