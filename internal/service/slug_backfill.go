package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"gorm.io/gorm"
)

// BackfillSlugs 为 slug 为空的文章、标签和分类按标题/名称补写 slug。
// 可以重复执行，已有 slug 的记录不会被改动。
func BackfillSlugs(ctx context.Context, gdb *gorm.DB) (int, error) {
	if gdb == nil {
		return 0, errors.New("database not initialized")
	}

	updated := 0
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts []db.Post
		if err := tx.Select("id, title").Where("slug = '' OR slug IS NULL").Find(&posts).Error; err != nil {
			return fmt.Errorf("list posts without slug: %w", err)
		}
		for _, post := range posts {
			slug := draft.Slugify(post.Title)
			if slug == "" {
				continue
			}
			if err := tx.Model(&db.Post{}).Where("id = ?", post.ID).Update("slug", slug).Error; err != nil {
				return fmt.Errorf("update slug of post %d: %w", post.ID, err)
			}
			updated++
		}

		for _, model := range []interface{}{&db.Tag{}, &db.Category{}} {
			var rows []struct {
				ID   uint
				Name string
			}
			if err := tx.Model(model).Select("id, name").Where("slug = '' OR slug IS NULL").Scan(&rows).Error; err != nil {
				return fmt.Errorf("list %T without slug: %w", model, err)
			}
			for _, row := range rows {
				slug := draft.Slugify(strings.TrimSpace(row.Name))
				if slug == "" {
					continue
				}
				if err := tx.Model(model).Where("id = ?", row.ID).Update("slug", slug).Error; err != nil {
					return fmt.Errorf("update slug of %T %d: %w", model, row.ID, err)
				}
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
