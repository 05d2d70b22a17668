package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
)

// ListUsers 返回全部用户及其角色
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.ListWithRoles(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err, msgUsersLoadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GrantWriter 授予作者权限
func (a *API) GrantWriter(c *gin.Context) {
	a.changeWriterRole(c, true)
}

// RevokeWriter 撤销作者权限，并关闭该用户正在进行的编辑会话
func (a *API) RevokeWriter(c *gin.Context) {
	a.changeWriterRole(c, false)
}

func (a *API) changeWriterRole(c *gin.Context, grant bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}

	ctx := c.Request.Context()
	if grant {
		err = a.users.Grant(ctx, id, db.RoleWriter)
	} else {
		err = a.users.Revoke(ctx, id, db.RoleWriter)
	}
	if err != nil {
		a.respondServiceError(c, err, msgRoleSaveFailed)
		return
	}

	roles, err := a.users.Roles(ctx, id)
	if err != nil {
		a.respondServiceError(c, err, msgRoleSaveFailed)
		return
	}

	// an admin keeps writing rights without the writer role
	closed := 0
	if author := (draft.Author{UserID: id, Roles: roles}); !author.CanWrite() {
		closed = a.manager.CloseForUser(id)
	}
	a.log.Info().
		Uint("admin_id", currentAuthor(c).UserID).
		Uint("user_id", id).
		Bool("writer", grant).
		Int("closed_sessions", closed).
		Msg("writer role changed")

	c.JSON(http.StatusOK, gin.H{"id": id, "roles": roles})
}

// ListAllPosts 返回所有作者的文章
func (a *API) ListAllPosts(c *gin.Context) {
	posts, err := a.posts.ListAll(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err, msgPostsLoadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// TogglePublish 切换发布状态：发布时记录当前时间，取消发布时清空发布时间
func (a *API) TogglePublish(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}

	post, err := a.posts.TogglePublish(c.Request.Context(), id)
	if err != nil {
		a.respondServiceError(c, err, msgPostToggleFailed)
		return
	}
	message := msgPostUnpublished
	if post.Published {
		message = msgPostPublished
	}
	c.JSON(http.StatusOK, gin.H{"message": message.In(requestLanguage(c)), "post": post})
}

// DeletePost 删除任意文章
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := a.posts.Delete(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err, msgPostDeleteFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgPostDeleted.In(requestLanguage(c))})
}
