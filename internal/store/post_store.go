// Package store 提供 draft.Store 的 GORM 实现。
package store

import (
	"context"
	"errors"

	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"gorm.io/gorm"
)

// PostStore persists drafts into the posts and post_tags tables.
type PostStore struct {
	db       *gorm.DB
	onChange func(ctx context.Context)
}

var (
	_ draft.Store       = (*PostStore)(nil)
	_ draft.TagReplacer = (*PostStore)(nil)
)

// NewPostStore creates a PostStore. onChange, if set, runs after a
// successful write that readers can see, i.e. one touching a post that is or
// was published. Autosaves of unpublished drafts do not trigger it.
func NewPostStore(gdb *gorm.DB, onChange func(ctx context.Context)) *PostStore {
	return &PostStore{db: gdb, onChange: onChange}
}

func (s *PostStore) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx)
	}
}

// changedIfPublished calls onChange when postID is currently published.
func (s *PostStore) changedIfPublished(ctx context.Context, postID uint) {
	if s.onChange == nil {
		return
	}
	var published []bool
	if err := s.db.WithContext(ctx).Model(&db.Post{}).
		Where("id = ?", postID).
		Pluck("published", &published).Error; err != nil || len(published) == 0 {
		// 状态未知时按已发布处理
		s.onChange(ctx)
		return
	}
	if published[0] {
		s.onChange(ctx)
	}
}

// FindPost loads a post of authorID together with its tag ids.
func (s *PostStore) FindPost(ctx context.Context, id, authorID uint) (*draft.Snapshot, error) {
	var post db.Post
	err := s.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, draft.ErrPostNotFound
		}
		return nil, err
	}

	var tagIDs []uint
	if err := s.db.WithContext(ctx).Model(&db.PostTag{}).
		Where("post_id = ?", post.ID).
		Order("tag_id").
		Pluck("tag_id", &tagIDs).Error; err != nil {
		return nil, err
	}

	d := draft.Draft{
		ID:            post.ID,
		Title:         post.Title,
		Content:       post.Content,
		ContentFormat: post.ContentFormat,
		CategoryID:    post.CategoryID,
		TagIDs:        tagIDs,
		Published:     post.Published,
		Language:      post.Language,
	}
	if post.Excerpt != nil {
		d.Excerpt = *post.Excerpt
	}
	if post.FeaturedImage != nil {
		d.FeaturedImage = *post.FeaturedImage
	}
	return &draft.Snapshot{Draft: d, PublishedAt: post.PublishedAt}, nil
}

// InsertPost creates the post row. A record without publish state is
// inserted unpublished.
func (s *PostStore) InsertPost(ctx context.Context, rec draft.Record) (uint, error) {
	gdb := s.db.WithContext(ctx)
	if err := checkCategory(gdb, rec.CategoryID); err != nil {
		return 0, err
	}

	post := db.Post{
		Title:         rec.Title,
		Slug:          rec.Slug,
		Content:       rec.Content,
		ContentFormat: rec.ContentFormat,
		Excerpt:       rec.Excerpt,
		FeaturedImage: rec.FeaturedImage,
		Language:      rec.Language,
		AuthorID:      rec.AuthorID,
		CategoryID:    rec.CategoryID,
	}
	if rec.Publish != nil {
		post.Published = rec.Publish.Published
		post.PublishedAt = rec.Publish.PublishedAt
	}
	if err := gdb.Create(&post).Error; err != nil {
		return 0, err
	}
	if post.Published {
		s.changed(ctx)
	}
	return post.ID, nil
}

// UpdatePost overwrites the post row of rec.AuthorID. Publish state is only
// written when rec carries it.
func (s *PostStore) UpdatePost(ctx context.Context, id uint, rec draft.Record) error {
	gdb := s.db.WithContext(ctx)
	if err := checkCategory(gdb, rec.CategoryID); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"title":          rec.Title,
		"slug":           rec.Slug,
		"content":        rec.Content,
		"content_format": rec.ContentFormat,
		"excerpt":        nullable(rec.Excerpt),
		"featured_image": nullable(rec.FeaturedImage),
		"category_id":    nullable(rec.CategoryID),
	}
	if rec.Language != "" {
		updates["language"] = rec.Language
	}
	if rec.Publish != nil {
		updates["published"] = rec.Publish.Published
		updates["published_at"] = nullable(rec.Publish.PublishedAt)
	}

	var before db.Post
	if err := gdb.Select("id", "published").
		Where("id = ? AND author_id = ?", id, rec.AuthorID).
		First(&before).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return draft.ErrPostNotFound
		}
		return err
	}

	result := gdb.Model(&db.Post{}).
		Where("id = ? AND author_id = ?", id, rec.AuthorID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return draft.ErrPostNotFound
	}
	if before.Published || (rec.Publish != nil && rec.Publish.Published) {
		s.changed(ctx)
	}
	return nil
}

// DeletePostTags removes every tag association of postID.
func (s *PostStore) DeletePostTags(ctx context.Context, postID uint) error {
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&db.PostTag{}).Error; err != nil {
		return err
	}
	s.changedIfPublished(ctx, postID)
	return nil
}

// InsertPostTags links postID with every tag in tagIDs.
func (s *PostStore) InsertPostTags(ctx context.Context, postID uint, tagIDs []uint) error {
	if err := insertTags(s.db.WithContext(ctx), postID, tagIDs); err != nil {
		return err
	}
	s.changedIfPublished(ctx, postID)
	return nil
}

// ReplacePostTags 在同一事务内删除旧关联并写入新关联，读者不会看到中间状态。
func (s *PostStore) ReplacePostTags(ctx context.Context, postID uint, tagIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&db.PostTag{}).Error; err != nil {
			return err
		}
		return insertTags(tx, postID, tagIDs)
	})
	if err != nil {
		return err
	}
	s.changedIfPublished(ctx, postID)
	return nil
}

func insertTags(tx *gorm.DB, postID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}

	var found int64
	if err := tx.Model(&db.Tag{}).Where("id IN ?", tagIDs).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(tagIDs)) {
		return draft.ErrTagNotFound
	}

	links := make([]db.PostTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, db.PostTag{PostID: postID, TagID: tagID})
	}
	return tx.Create(&links).Error
}

func checkCategory(gdb *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := gdb.Model(&db.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return draft.ErrCategoryNotFound
	}
	return nil
}

func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
