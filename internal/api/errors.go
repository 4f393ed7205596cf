package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dndsim/internal/auth"
	"dndsim/internal/store"
)

// fail writes the standard error envelope.
func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}

// failValidation is the 400 shorthand used by most handlers.
func failValidation(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, "validation_failed", message)
}

// failErr maps a service or store error onto the taxonomy. Anything
// unrecognized becomes a 500 with the detail redacted in production.
func (h *Handler) failErr(c *gin.Context, err error) {
	var vErr *auth.ValidationError
	switch {
	case errors.As(err, &vErr):
		failValidation(c, vErr.Message)
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrUsernameTaken):
		fail(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, store.ErrNotFound):
		fail(c, http.StatusNotFound, "not_found", "resource does not exist")
	case errors.Is(err, store.ErrDuplicate):
		fail(c, http.StatusConflict, "conflict", "a record with these details already exists")
	default:
		h.log.Error("unexpected error", zap.Error(err), zap.String("path", c.FullPath()))
		message := "something went wrong"
		if !h.isProd {
			message = err.Error()
		}
		fail(c, http.StatusInternalServerError, "internal", message)
	}
}
