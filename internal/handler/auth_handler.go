package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/service"
)

const tokenTTL = 24 * time.Hour

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验用户名密码并写入会话；配置了 JWT 密钥时同时签发访问令牌。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, msgBadCredentials) {
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		a.respondServiceError(c, err, msgInternal)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		a.respondServiceError(c, err, msgSessionSaveFailed)
		return
	}

	roles, err := a.users.Roles(c.Request.Context(), user.ID)
	if err != nil {
		a.respondServiceError(c, err, msgInternal)
		return
	}

	resp := gin.H{
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"roles":     roles,
		},
	}
	if len(a.jwtSecret) > 0 {
		token, err := IssueToken(string(a.jwtSecret), user.ID, tokenTTL)
		if err != nil {
			a.respondServiceError(c, err, msgInternal)
			return
		}
		resp["token"] = token
	}
	a.log.Info().Uint("user_id", user.ID).Msg("user signed in")
	c.JSON(http.StatusOK, resp)
}

// Logout clears the cookie session and closes the user's edit sessions.
func (a *API) Logout(c *gin.Context) {
	if userID, err := a.authenticatedUserID(c); err == nil {
		closed := a.manager.CloseForUser(userID)
		a.log.Info().Uint("user_id", userID).Int("closed_sessions", closed).Msg("user signed out")
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user and the role flags the UI needs.
func (a *API) Me(c *gin.Context) {
	author := currentAuthor(c)
	c.JSON(http.StatusOK, gin.H{
		"id":        author.UserID,
		"roles":     author.Roles,
		"is_writer": author.CanWrite(),
		"is_admin":  author.IsAdmin(),
		"language":  requestLanguage(c),
	})
}
