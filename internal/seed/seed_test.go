package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func TestRunCreatesAuthorTaxonomyAndPosts(t *testing.T) {
	gdb := openTestDB(t)

	res, err := Run(context.Background(), gdb, Options{Posts: 12, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, len(categoryNames), res.Categories)
	assert.Equal(t, len(tagNames), res.Tags)
	assert.Equal(t, 12, res.Posts)

	var author db.User
	require.NoError(t, gdb.Preload("Roles").Where("username = ?", DefaultAuthor).First(&author).Error)
	assert.Equal(t, res.AuthorID, author.ID)
	roles := make([]string, 0, len(author.Roles))
	for _, r := range author.Roles {
		roles = append(roles, r.Role)
	}
	assert.ElementsMatch(t, []string{db.RoleReader, db.RoleWriter}, roles)

	var posts []db.Post
	require.NoError(t, gdb.Order("id").Find(&posts).Error)
	require.Len(t, posts, 12)
	for i, post := range posts {
		assert.NotEmpty(t, post.Title)
		assert.NotEmpty(t, post.Slug)
		assert.Equal(t, author.ID, post.AuthorID)
		assert.Equal(t, db.ContentFormatMarkdown, post.ContentFormat)
		assert.Equal(t, post.Published, post.PublishedAt != nil, "post %d", post.ID)
		if i < len(chineseSamples) {
			assert.Equal(t, "zh", post.Language)
		} else {
			assert.Equal(t, "en", post.Language)
		}
	}

	var orphanLinks int64
	require.NoError(t, gdb.Model(&db.PostTag{}).
		Where("tag_id NOT IN (?)", gdb.Model(&db.Tag{}).Select("id")).
		Count(&orphanLinks).Error)
	assert.Zero(t, orphanLinks)
}

func TestRunIsIdempotentForTaxonomy(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	_, err := Run(ctx, gdb, Options{Posts: 2, Seed: 1})
	require.NoError(t, err)
	res, err := Run(ctx, gdb, Options{Posts: 3, Seed: 2})
	require.NoError(t, err)
	assert.Zero(t, res.Categories)
	assert.Zero(t, res.Tags)
	assert.Equal(t, 3, res.Posts)

	var tags, categories, posts, users int64
	gdb.Model(&db.Tag{}).Count(&tags)
	gdb.Model(&db.Category{}).Count(&categories)
	gdb.Model(&db.Post{}).Count(&posts)
	gdb.Model(&db.User{}).Count(&users)
	assert.Equal(t, int64(len(tagNames)), tags)
	assert.Equal(t, int64(len(categoryNames)), categories)
	assert.Equal(t, int64(5), posts)
	assert.Equal(t, int64(1), users)
}

func TestRunCustomAuthorAndValidation(t *testing.T) {
	gdb := openTestDB(t)

	res, err := Run(context.Background(), gdb, Options{Posts: 0, Author: "  alice  "})
	require.NoError(t, err)
	assert.Zero(t, res.Posts)

	var user db.User
	require.NoError(t, gdb.Where("username = ?", "alice").First(&user).Error)

	_, err = Run(context.Background(), gdb, Options{Posts: -1})
	assert.Error(t, err)

	_, err = Run(context.Background(), nil, Options{})
	assert.Error(t, err)
}
