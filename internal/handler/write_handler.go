package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/draft"
	"github.com/inkwell/internal/locale"
)

type openSessionRequest struct {
	PostID   uint   `json:"post_id"`
	Language string `json:"language"`
}

// nullableID distinguishes an absent field from an explicit null.
type nullableID struct {
	Set bool
	ID  *uint
}

func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.ID = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == 0 {
		n.ID = nil
		return nil
	}
	n.ID = &id
	return nil
}

type patchDraftRequest struct {
	Title         *string    `json:"title"`
	Content       *string    `json:"content"`
	ContentFormat *string    `json:"content_format"`
	Excerpt       *string    `json:"excerpt"`
	FeaturedImage *string    `json:"featured_image"`
	CategoryID    nullableID `json:"category_id"`
	TagIDs        []uint     `json:"tag_ids"`
	Published     *bool      `json:"published"`
	Language      *string    `json:"language"`
}

func (r patchDraftRequest) patch() (draft.Patch, bool) {
	p := draft.Patch{
		Title:         r.Title,
		Content:       r.Content,
		ContentFormat: r.ContentFormat,
		Excerpt:       r.Excerpt,
		FeaturedImage: r.FeaturedImage,
		TagIDs:        r.TagIDs,
		Published:     r.Published,
	}
	if r.CategoryID.Set {
		p.Category = &draft.CategoryChoice{ID: r.CategoryID.ID}
	}
	if r.Language != nil {
		lang := locale.NormalizeLanguage(*r.Language)
		if lang == "" {
			return draft.Patch{}, false
		}
		p.Language = &lang
	}
	return p, true
}

// OpenSession 打开编辑会话：post_id 为空时新建草稿，否则加载作者本人的文章。
func (a *API) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req, msgInvalidRequest) {
			return
		}
	}

	author := currentAuthor(c)
	sess, err := a.manager.Open(c.Request.Context(), author, req.PostID)
	if err != nil {
		a.respondServiceError(c, err, msgOpenFailed)
		return
	}

	view := sess.View()
	if req.PostID == 0 {
		lang := locale.NormalizeLanguage(req.Language)
		if lang == "" {
			lang = requestLanguage(c)
		}
		if view, err = sess.Apply(draft.Patch{Language: &lang}); err != nil {
			a.respondServiceError(c, err, msgOpenFailed)
			return
		}
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession returns the draft with its autosave status.
func (a *API) GetSession(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// UpdateSession applies a partial edit to the draft. The next autosave tick
// persists it.
func (a *API) UpdateSession(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}

	var req patchDraftRequest
	if !bindJSON(c, &req, msgInvalidRequest) {
		return
	}
	p, ok := req.patch()
	if !ok {
		fail(c, http.StatusBadRequest, msgUnsupportedLang)
		return
	}

	view, err := sess.Apply(p)
	if err != nil {
		a.respondServiceError(c, err, msgInternal)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AutosaveSession runs one autosave tick right away.
func (a *API) AutosaveSession(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	outcome := sess.Autosave(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"outcome": outcome,
		"session": sess.View(),
	})
}

// SubmitSession saves (and optionally publishes) the post, then closes the
// session. The client navigates to the returned redirect.
func (a *API) SubmitSession(c *gin.Context) {
	author := currentAuthor(c)
	res, err := a.manager.Submit(c.Request.Context(), c.Param("sid"), author.UserID)
	if err != nil {
		switch {
		case errors.Is(err, draft.ErrTagNotFound):
			fail(c, http.StatusUnprocessableEntity, msgTagNotFound)
		case errors.Is(err, draft.ErrCategoryNotFound):
			fail(c, http.StatusUnprocessableEntity, msgCategoryNotFound)
		case isKnownError(err):
			a.respondServiceError(c, err, msgSubmitFailed)
		default:
			_ = c.Error(err)
			a.log.Warn().Err(err).Uint("user_id", author.UserID).Msg("submit failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  msgSubmitFailed.In(requestLanguage(c)),
				"detail": err.Error(),
			})
		}
		return
	}

	message := msgPostSaved
	if res.Published {
		message = msgPostPublished
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message.In(requestLanguage(c)),
		"result":  res,
	})
}

// CloseSession stops the autosave timer and forgets the session.
func (a *API) CloseSession(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	a.manager.Close(sess.ID())
	c.Status(http.StatusNoContent)
}

func (a *API) session(c *gin.Context) (*draft.Session, bool) {
	sess, err := a.manager.Get(c.Param("sid"), currentAuthor(c).UserID)
	if err != nil {
		a.respondServiceError(c, err, msgSessionNotFound)
		return nil, false
	}
	return sess, true
}
