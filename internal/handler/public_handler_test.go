package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/inkwell/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPostsFilters(t *testing.T) {
	env := setupTestAPI(t)
	writer := env.createUser(t, "writer1", db.RoleWriter)

	category := db.Category{Name: "Notes", Slug: "notes"}
	require.NoError(t, env.db.Create(&category).Error)
	tag := db.Tag{Name: "Go", Slug: "go"}
	require.NoError(t, env.db.Create(&tag).Error)

	tagged := env.seedPost(t, writer.UserID, "Tagged", true)
	require.NoError(t, env.db.Create(&db.PostTag{PostID: tagged.ID, TagID: tag.ID}).Error)
	inCategory := env.seedPost(t, writer.UserID, "Categorised", true)
	require.NoError(t, env.db.Model(&db.Post{}).Where("id = ?", inCategory.ID).Update("category_id", category.ID).Error)
	env.seedPost(t, writer.UserID, "Unpublished", false)

	list := func(query string) []any {
		w := env.serve(t, request{method: http.MethodGet, pattern: "/api/posts", path: "/api/posts" + query}, env.api.ListPosts)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)["posts"].([]any)
	}

	assert.Len(t, list(""), 2)

	byTag := list("?tag=" + strconv.Itoa(int(tag.ID)))
	require.Len(t, byTag, 1)
	assert.Equal(t, "Tagged", byTag[0].(map[string]any)["title"])

	byCategory := list("?category=" + strconv.Itoa(int(category.ID)))
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Categorised", byCategory[0].(map[string]any)["title"])

	assert.Len(t, list("?lang=en"), 0)
	assert.Len(t, list("?lang=zh"), 2)

	for _, bad := range []string{"?tag=abc", "?category=-1", "?lang=fr"} {
		w := env.serve(t, request{method: http.MethodGet, pattern: "/api/posts", path: "/api/posts" + bad}, env.api.ListPosts)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestGetPostBySlug(t *testing.T) {
	env := setupTestAPI(t)
	writer := env.createUser(t, "writer1", db.RoleWriter)
	env.seedPost(t, writer.UserID, "Hello World", true)
	env.seedPost(t, writer.UserID, "Hidden Draft", false)

	w := env.serve(t, request{method: http.MethodGet, pattern: "/api/posts/:slug", path: "/api/posts/hello-world"}, env.api.GetPost)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	post := decode(t, w)["post"].(map[string]any)
	assert.Equal(t, "Hello World", post["title"])
	assert.Equal(t, "<p>Hello World</p>", post["html"])
	assert.Equal(t, "writer1", post["author_name"])

	w = env.serve(t, request{
		method:  http.MethodGet,
		pattern: "/api/posts/:slug",
		path:    "/api/posts/hidden-draft",
		headers: map[string]string{"Accept-Language": "en"},
	}, env.api.GetPost)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decode(t, w)["error"])
}

func TestPublicTaxonomyLists(t *testing.T) {
	env := setupTestAPI(t)
	require.NoError(t, env.db.Create(&db.Tag{Name: "Zeta", Slug: "zeta"}).Error)
	require.NoError(t, env.db.Create(&db.Tag{Name: "Alpha", Slug: "alpha"}).Error)
	require.NoError(t, env.db.Create(&db.Category{Name: "Life", Slug: "life"}).Error)

	w := env.serve(t, request{method: http.MethodGet, path: "/api/tags"}, env.api.GetTags)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode(t, w)["tags"].([]any)
	require.Len(t, tags, 2)
	assert.Equal(t, "Alpha", tags[0].(map[string]any)["name"])
	assert.Equal(t, float64(0), tags[0].(map[string]any)["post_count"])

	w = env.serve(t, request{method: http.MethodGet, path: "/api/categories"}, env.api.GetCategories)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["categories"].([]any), 1)
}

func TestLocaleMiddlewareRemembersExplicitLanguage(t *testing.T) {
	env := setupTestAPI(t)

	w := env.serve(t, request{method: http.MethodGet, pattern: "/api/me", path: "/api/me?lang=en"}, env.api.Me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "en-US", w.Header().Get("Content-Language"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), languageCookieName+"=en")
	assert.Contains(t, w.Header().Get("Vary"), "Accept-Language")
	assert.Equal(t, "en", decode(t, w)["language"])

	w = env.serve(t, request{
		method:  http.MethodGet,
		path:    "/api/me",
		headers: map[string]string{"Cookie": languageCookieName + "=en", "Accept-Language": "zh-CN"},
	}, env.api.Me)
	assert.Equal(t, "en", decode(t, w)["language"])
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	w = env.serve(t, request{method: http.MethodGet, path: "/api/me"}, env.api.Me)
	assert.Equal(t, "zh-CN", w.Header().Get("Content-Language"))
}
