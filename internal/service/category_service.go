package service

import (
	"context"
	"errors"

	"github.com/inkwell/internal/cache"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"gorm.io/gorm"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category is assigned to posts")
	ErrCategoryNotFound = draft.ErrCategoryNotFound
)

// CategoryService 管理文章分类。
type CategoryService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewCategoryService(gdb *gorm.DB, c *cache.Cache) *CategoryService {
	return &CategoryService{db: gdb, cache: c}
}

// List returns categories ordered by name with their published post counts.
func (s *CategoryService) List(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	err := s.cache.Aside(ctx, cache.TaxonomyKey("categories"), &categories, func() error {
		return s.db.WithContext(ctx).
			Model(&db.Category{}).
			Select("categories.*, COUNT(posts.id) AS post_count").
			Joins("LEFT JOIN posts ON posts.category_id = categories.id AND posts.published = ? AND posts.deleted_at IS NULL", true).
			Group("categories.id").
			Order("categories.name asc").
			Order("categories.id asc").
			Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*db.Category, error) {
	name, slug, err := nameAndSlug(name)
	if err != nil {
		return nil, err
	}
	if taken, err := s.taken(ctx, name, slug, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrCategoryExists
	}

	category := db.Category{Name: name, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	s.cache.InvalidateTaxonomy(ctx)
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, name string) (*db.Category, error) {
	name, slug, err := nameAndSlug(name)
	if err != nil {
		return nil, err
	}

	var category db.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if taken, err := s.taken(ctx, name, slug, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrCategoryExists
	}

	category.Name = name
	category.Slug = slug
	if err := s.db.WithContext(ctx).Save(&category).Error; err != nil {
		return nil, err
	}
	s.cache.InvalidateTaxonomy(ctx)
	return &category, nil
}

// Delete removes a category that no post refers to.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	var category db.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&db.Post{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(&category).Error; err != nil {
		return err
	}
	s.cache.InvalidateTaxonomy(ctx)
	return nil
}

func (s *CategoryService) taken(ctx context.Context, name, slug string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&db.Category{}).
		Where("(name = ? OR slug = ?) AND id <> ?", name, slug, exceptID).
		Count(&count).Error
	return count > 0, err
}
