package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/draft"
	"github.com/inkwell/internal/locale"
	"github.com/inkwell/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// fail responds with msg in the request language and aborts the chain.
func fail(c *gin.Context, status int, msg locale.Message) {
	respondError(c, status, msg.In(requestLanguage(c)))
	c.Abort()
}

func bindJSON(c *gin.Context, dst interface{}, msg locale.Message) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parseUintQuery returns zero for a missing value and an error for a malformed one.
func parseUintQuery(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

type errorMapping struct {
	target error
	status int
	msg    locale.Message
}

var knownErrors = []errorMapping{
	{draft.ErrTitleRequired, http.StatusBadRequest, msgTitleRequired},
	{draft.ErrContentRequired, http.StatusBadRequest, msgContentRequired},
	{draft.ErrUnsupportedFormat, http.StatusBadRequest, msgUnsupportedFormat},
	{draft.ErrForbidden, http.StatusForbidden, msgWriterRequired},
	{draft.ErrPostNotFound, http.StatusNotFound, msgPostNotFound},
	{draft.ErrSessionNotFound, http.StatusNotFound, msgSessionNotFound},
	{draft.ErrSessionClosed, http.StatusGone, msgSessionClosed},
	{draft.ErrSubmitInProgress, http.StatusConflict, msgSubmitInProgress},
	{draft.ErrTagNotFound, http.StatusNotFound, msgTagNotFound},
	{draft.ErrCategoryNotFound, http.StatusNotFound, msgCategoryNotFound},
	{service.ErrTagExists, http.StatusConflict, msgTagExists},
	{service.ErrTagInUse, http.StatusConflict, msgTagInUse},
	{service.ErrCategoryExists, http.StatusConflict, msgCategoryExists},
	{service.ErrCategoryInUse, http.StatusConflict, msgCategoryInUse},
	{service.ErrNameInvalid, http.StatusBadRequest, msgNameRequired},
	{service.ErrUserNotFound, http.StatusNotFound, msgUserNotFound},
	{service.ErrInvalidRole, http.StatusBadRequest, msgInvalidRole},
}

func isKnownError(err error) bool {
	for _, m := range knownErrors {
		if errors.Is(err, m.target) {
			return true
		}
	}
	return false
}

// respondServiceError maps a sentinel error to its status and message.
// Anything unknown is logged and reported as fallback with status 500.
func (a *API) respondServiceError(c *gin.Context, err error, fallback locale.Message) {
	for _, m := range knownErrors {
		if errors.Is(err, m.target) {
			fail(c, m.status, m.msg)
			return
		}
	}
	_ = c.Error(err)
	a.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	fail(c, http.StatusInternalServerError, fallback)
}
