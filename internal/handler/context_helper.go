package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innouni-api/internal/middleware"
	"github.com/noah-isme/innouni-api/internal/models"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
	"github.com/noah-isme/innouni-api/pkg/response"
)

// currentClaims returns the caller's claims or writes 401.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "access token required"))
		return nil, false
	}
	return claims, true
}

// pathID parses a positive integer path parameter or writes 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

// queryInt returns the integer query value, or zero when absent or malformed so the service default applies.
func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return value
}

// queryID parses an optional positive integer query value.
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return nil, false
	}
	return &id, true
}

func bindError(err error, message string) error {
	return appErrors.ErrValidation.Wrap(err, message)
}
