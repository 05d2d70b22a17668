package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListMyPosts 返回当前作者的全部文章（含草稿），按创建时间倒序。
func (a *API) ListMyPosts(c *gin.Context) {
	posts, err := a.posts.ListByAuthor(c.Request.Context(), currentAuthor(c).UserID)
	if err != nil {
		a.respondServiceError(c, err, msgPostsLoadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// DeleteMyPost 删除作者本人的文章，其他人的文章按不存在处理。
func (a *API) DeleteMyPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := a.posts.DeleteOwn(c.Request.Context(), id, currentAuthor(c).UserID); err != nil {
		a.respondServiceError(c, err, msgPostDeleteFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgPostDeleted.In(requestLanguage(c))})
}
