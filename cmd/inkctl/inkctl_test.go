package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	dsn := fmt.Sprintf("file:inkctl-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &app{db: gdb}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUserCreateAndList(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "user", "create", "alice", "secret1", "--full-name", "Alice", "--role", "writer")
	require.NoError(t, err)
	assert.Contains(t, out, "created user alice")
	assert.Contains(t, out, "reader,writer")

	_, err = run(t, a, "user", "create", "alice", "secret1")
	assert.ErrorIs(t, err, service.ErrUserExists)

	_, err = run(t, a, "user", "create", "bob", "123")
	assert.ErrorIs(t, err, service.ErrPasswordTooShort)

	_, err = run(t, a, "user", "create", "only-name")
	assert.Error(t, err)

	out, err = run(t, a, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Alice")
	assert.NotContains(t, out, "bob")
}

func TestRoleGrantAndRevoke(t *testing.T) {
	a := newTestApp(t)
	_, err := run(t, a, "user", "create", "alice", "secret1")
	require.NoError(t, err)

	out, err := run(t, a, "role", "grant", "alice", "Admin")
	require.NoError(t, err)
	assert.Contains(t, out, "alice now has roles admin,reader")

	out, err = run(t, a, "role", "revoke", "alice", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "alice now has roles reader")

	_, err = run(t, a, "role", "grant", "alice", "owner")
	assert.ErrorIs(t, err, service.ErrInvalidRole)

	_, err = run(t, a, "role", "grant", "nobody", "writer")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestSeedCommand(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "seed", "--posts", "5", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "posts: 5 new")

	var posts int64
	require.NoError(t, a.db.Model(&db.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(5), posts)

	_, err = run(t, a, "seed", "--posts=-2")
	assert.Error(t, err)
}

func TestBackfillSlugsCommand(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	user, err := service.NewUserService(a.db).Create(ctx, "alice", "secret1", "")
	require.NoError(t, err)
	require.NoError(t, a.db.Create(&db.Post{Title: "Hello World", AuthorID: user.ID}).Error)

	out, err := run(t, a, "backfill-slugs")
	require.NoError(t, err)
	assert.Contains(t, out, "updated 1 slugs")

	var post db.Post
	require.NoError(t, a.db.First(&post).Error)
	assert.Equal(t, "hello-world", post.Slug)

	out, err = run(t, a, "backfill-slugs")
	require.NoError(t, err)
	assert.Contains(t, out, "updated 0 slugs")
}
