package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func tagResponse(tag db.Tag) gin.H {
	return gin.H{
		"id":         tag.ID,
		"name":       tag.Name,
		"slug":       tag.Slug,
		"post_count": tag.PostCount,
	}
}

func categoryResponse(category db.Category) gin.H {
	return gin.H{
		"id":         category.ID,
		"name":       category.Name,
		"slug":       category.Slug,
		"post_count": category.PostCount,
	}
}

// GetTags 获取标签列表
func (a *API) GetTags(c *gin.Context) {
	tags, err := a.tags.List(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err, msgTagsLoadFailed)
		return
	}

	response := make([]gin.H, 0, len(tags))
	for _, tag := range tags {
		response = append(response, tagResponse(tag))
	}
	c.JSON(http.StatusOK, gin.H{"tags": response})
}

// CreateTag 创建新标签
func (a *API) CreateTag(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req, msgNameRequired) {
		return
	}

	tag, err := a.tags.Create(c.Request.Context(), req.Name)
	if err != nil {
		a.respondServiceError(c, err, msgTagSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tagResponse(*tag)})
}

// UpdateTag 重命名标签，slug 随名称重新生成
func (a *API) UpdateTag(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}

	var req nameRequest
	if !bindJSON(c, &req, msgNameRequired) {
		return
	}

	tag, err := a.tags.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		a.respondServiceError(c, err, msgTagSaveFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tagResponse(*tag)})
}

// DeleteTag 删除标签，仍被文章使用时拒绝
func (a *API) DeleteTag(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := a.tags.Delete(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err, msgTagSaveFailed)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCategories 获取分类列表
func (a *API) GetCategories(c *gin.Context) {
	categories, err := a.categories.List(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err, msgCategoriesFailed)
		return
	}

	response := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		response = append(response, categoryResponse(category))
	}
	c.JSON(http.StatusOK, gin.H{"categories": response})
}

func (a *API) CreateCategory(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req, msgNameRequired) {
		return
	}

	category, err := a.categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		a.respondServiceError(c, err, msgCategorySaveFailed)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": categoryResponse(*category)})
}

func (a *API) UpdateCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}

	var req nameRequest
	if !bindJSON(c, &req, msgNameRequired) {
		return
	}

	category, err := a.categories.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		a.respondServiceError(c, err, msgCategorySaveFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": categoryResponse(*category)})
}

func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := a.categories.Delete(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err, msgCategorySaveFailed)
		return
	}
	c.Status(http.StatusNoContent)
}
