package service

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell/internal/cache"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"gorm.io/gorm"
)

var (
	ErrTagExists   = errors.New("tag already exists")
	ErrTagInUse    = errors.New("tag is associated with posts")
	ErrTagNotFound = draft.ErrTagNotFound
	ErrNameInvalid = errors.New("name is required")
)

// TagService wraps tag related operations.
type TagService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB, c *cache.Cache) *TagService {
	return &TagService{db: gdb, cache: c}
}

// List returns tags ordered by name, each with the number of published
// posts using it. Drafts are not counted; the list is public.
func (s *TagService) List(ctx context.Context) ([]db.Tag, error) {
	var tags []db.Tag
	err := s.cache.Aside(ctx, cache.TaxonomyKey("tags"), &tags, func() error {
		return s.db.WithContext(ctx).
			Model(&db.Tag{}).
			Select("tags.*, COUNT(posts.id) AS post_count").
			Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
			Joins("LEFT JOIN posts ON posts.id = post_tags.post_id AND posts.published = ? AND posts.deleted_at IS NULL", true).
			Group("tags.id").
			Order("tags.name asc").
			Order("tags.id asc").
			Find(&tags).Error
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Create inserts a new tag; its slug is derived from the name.
func (s *TagService) Create(ctx context.Context, name string) (*db.Tag, error) {
	name, slug, err := nameAndSlug(name)
	if err != nil {
		return nil, err
	}
	if taken, err := s.taken(ctx, name, slug, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrTagExists
	}

	tag := db.Tag{Name: name, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, err
	}
	s.cache.InvalidateTaxonomy(ctx)
	return &tag, nil
}

// Update renames the tag while keeping name and slug unique.
func (s *TagService) Update(ctx context.Context, id uint, name string) (*db.Tag, error) {
	name, slug, err := nameAndSlug(name)
	if err != nil {
		return nil, err
	}

	var tag db.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	if taken, err := s.taken(ctx, name, slug, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrTagExists
	}

	tag.Name = name
	tag.Slug = slug
	if err := s.db.WithContext(ctx).Save(&tag).Error; err != nil {
		return nil, err
	}
	s.cache.InvalidateTaxonomy(ctx)
	return &tag, nil
}

// Delete removes a tag if it is not associated with posts.
func (s *TagService) Delete(ctx context.Context, id uint) error {
	var tag db.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.PostTag{}).Where("tag_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrTagInUse
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(&tag).Error; err != nil {
		return err
	}
	s.cache.InvalidateTaxonomy(ctx)
	return nil
}

func (s *TagService) taken(ctx context.Context, name, slug string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&db.Tag{}).
		Where("(name = ? OR slug = ?) AND id <> ?", name, slug, exceptID).
		Count(&count).Error
	return count > 0, err
}

func nameAndSlug(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", "", ErrNameInvalid
	}
	return name, draft.Slugify(name), nil
}
