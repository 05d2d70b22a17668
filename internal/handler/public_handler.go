package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/locale"
	"github.com/inkwell/internal/service"
)

// ListPosts 返回已发布文章，可按分类、标签和语言筛选。
// lang 只在查询参数中显式给出时才作为筛选条件。
func (a *API) ListPosts(c *gin.Context) {
	categoryID, err := parseUintQuery(c, "category")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidFilter)
		return
	}
	tagID, err := parseUintQuery(c, "tag")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidFilter)
		return
	}

	filter := service.PublicFilter{CategoryID: categoryID, TagID: tagID}
	if raw := c.Query("lang"); raw != "" {
		filter.Language = locale.NormalizeLanguage(raw)
		if filter.Language == "" {
			fail(c, http.StatusBadRequest, msgUnsupportedLang)
			return
		}
	}

	posts, err := a.posts.ListPublished(c.Request.Context(), filter)
	if err != nil {
		a.respondServiceError(c, err, msgPostsLoadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost 按 slug 返回单篇已发布文章及渲染后的 HTML。
func (a *API) GetPost(c *gin.Context) {
	post, err := a.posts.GetPublishedBySlug(c.Request.Context(), c.Param("slug"), requestLanguage(c))
	if err != nil {
		a.respondServiceError(c, err, msgPostsLoadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}
