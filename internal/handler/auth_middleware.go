package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inkwell/internal/draft"
)

const (
	authorContextKey   = "__author"
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

var errNoCredentials = errors.New("no credentials")

// AuthRequired 解析当前用户：优先使用 Bearer JWT，其次是 cookie 会话。
// 角色每次请求都从数据库读取，撤销角色后立即生效。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := a.authenticatedUserID(c)
		if err != nil {
			fail(c, http.StatusUnauthorized, msgLoginRequired)
			return
		}

		roles, err := a.users.Roles(c.Request.Context(), userID)
		if err != nil {
			a.respondServiceError(c, err, msgInternal)
			return
		}
		if len(roles) == 0 {
			// account removed after the credential was issued
			fail(c, http.StatusUnauthorized, msgLoginRequired)
			return
		}

		c.Set(authorContextKey, draft.Author{UserID: userID, Roles: roles})
		c.Next()
	}
}

// RequireWriter lets writers and admins through.
func RequireWriter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentAuthor(c).CanWrite() {
			fail(c, http.StatusForbidden, msgWriterRequired)
			return
		}
		c.Next()
	}
}

// RequireAdmin lets admins through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentAuthor(c).IsAdmin() {
			fail(c, http.StatusForbidden, msgAdminRequired)
			return
		}
		c.Next()
	}
}

func currentAuthor(c *gin.Context) draft.Author {
	if value, ok := c.Get(authorContextKey); ok {
		if author, ok := value.(draft.Author); ok {
			return author
		}
	}
	return draft.Author{}
}

func (a *API) authenticatedUserID(c *gin.Context) (uint, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || len(a.jwtSecret) == 0 {
			return 0, errors.New("unsupported authorization header")
		}
		return a.parseToken(strings.TrimSpace(token))
	}

	session := sessions.Default(c)
	switch v := session.Get(sessionUserIDKey).(type) {
	case uint:
		if v != 0 {
			return v, nil
		}
	case int:
		if v > 0 {
			return uint(v), nil
		}
	}
	return 0, errNoCredentials
}

// parseToken validates an HS256 token and returns the user id in its sub claim.
func (a *API) parseToken(raw string) (uint, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errors.New("token has no subject")
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid user id in token")
	}
	return uint(id), nil
}

// IssueToken signs an HS256 token for userID valid for ttl.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
