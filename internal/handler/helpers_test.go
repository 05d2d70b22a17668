package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"github.com/inkwell/internal/service"
	"github.com/inkwell/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "handler-test-secret"

type testEnv struct {
	api     *API
	db      *gorm.DB
	manager *draft.Manager
	users   *service.UserService
}

func setupTestAPI(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	manager := draft.NewManager(store.NewPostStore(gdb, nil), draft.Options{Interval: time.Hour})
	users := service.NewUserService(gdb)
	api := NewAPI(Deps{
		Manager:    manager,
		Posts:      service.NewPostService(gdb, nil, nil),
		Tags:       service.NewTagService(gdb, nil),
		Categories: service.NewCategoryService(gdb, nil),
		Users:      users,
		Logger:     zerolog.Nop(),
		JWTSecret:  testJWTSecret,
	})

	t.Cleanup(func() {
		manager.CloseAll()
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testEnv{api: api, db: gdb, manager: manager, users: users}
}

// createUser registers username with password "secret1" and the extra roles.
func (e *testEnv) createUser(t *testing.T, username string, roles ...string) draft.Author {
	t.Helper()
	ctx := context.Background()
	user, err := e.users.Create(ctx, username, "secret1", "")
	require.NoError(t, err)
	for _, role := range roles {
		require.NoError(t, e.users.Grant(ctx, user.ID, role))
	}
	granted, err := e.users.Roles(ctx, user.ID)
	require.NoError(t, err)
	return draft.Author{UserID: user.ID, Roles: granted}
}

type request struct {
	method  string
	pattern string
	path    string
	body    any
	author  *draft.Author
	headers map[string]string
}

// serve runs handlers for one request behind the session and locale
// middleware. When author is set it is placed in the context as if
// AuthRequired had run.
func (e *testEnv) serve(t *testing.T, req request, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(sessions.Sessions("inkwell_test", cookie.NewStore([]byte("cookie-secret"))))
	r.Use(e.api.LocaleMiddleware())
	if req.author != nil {
		author := *req.author
		r.Use(func(c *gin.Context) {
			c.Set(authorContextKey, author)
			c.Next()
		})
	}
	pattern := req.pattern
	if pattern == "" {
		pattern = req.path
	}
	r.Handle(req.method, pattern, handlers...)

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	httpReq := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func (e *testEnv) seedPost(t *testing.T, authorID uint, title string, published bool) db.Post {
	t.Helper()
	post := db.Post{
		Title:         title,
		Slug:          draft.Slugify(title),
		Content:       "<p>" + title + "</p>",
		ContentFormat: db.ContentFormatHTML,
		Language:      "zh",
		AuthorID:      authorID,
		Published:     published,
	}
	if published {
		now := time.Now()
		post.PublishedAt = &now
	}
	require.NoError(t, e.db.Create(&post).Error)
	return post
}
