package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell/internal/cache"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"github.com/inkwell/internal/render"
	"gorm.io/gorm"
)

// ErrPostNotFound is shared with the authoring core so handlers map both the same way.
var ErrPostNotFound = draft.ErrPostNotFound

// PostService wraps the read side of posts and the dashboard/admin operations.
type PostService struct {
	db       *gorm.DB
	cache    *cache.Cache
	renderer *render.Renderer
	now      func() time.Time
}

// NewPostService creates a PostService. c may be nil.
func NewPostService(gdb *gorm.DB, c *cache.Cache, r *render.Renderer) *PostService {
	if r == nil {
		r = render.New()
	}
	return &PostService{db: gdb, cache: c, renderer: r, now: time.Now}
}

// Ref is a category or tag attached to a listed post.
type Ref struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostSummary is one entry of the public listing.
type PostSummary struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage *string    `json:"featured_image"`
	Language      string     `json:"language"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	AuthorName    string     `json:"author_name"`
	Category      *Ref       `json:"category"`
	Tags          []Ref      `json:"tags"`
}

// PostDetail is a single published post with rendered content.
type PostDetail struct {
	PostSummary
	HTML string `json:"html"`
}

// PostRow is a post in the author dashboard or admin table.
type PostRow struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Language    string     `json:"language"`
	AuthorID    uint       `json:"author_id"`
	AuthorName  string     `json:"author_name,omitempty"`
}

// PublicFilter narrows the public listing. Zero values mean no filter.
type PublicFilter struct {
	CategoryID uint
	TagID      uint
	Language   string
}

// ListPublished returns published posts, newest publication first.
func (s *PostService) ListPublished(ctx context.Context, filter PublicFilter) ([]PostSummary, error) {
	key := cache.PostListKey(idKey(filter.CategoryID), idKey(filter.TagID), filter.Language)
	var out []PostSummary
	err := s.cache.Aside(ctx, key, &out, func() error {
		query := s.db.WithContext(ctx).Model(&db.Post{}).
			Preload("Author").
			Preload("Category").
			Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.name asc") }).
			Where("posts.published = ?", true)
		if filter.CategoryID != 0 {
			query = query.Where("posts.category_id = ?", filter.CategoryID)
		}
		if filter.TagID != 0 {
			query = query.Where("posts.id IN (?)",
				s.db.Model(&db.PostTag{}).Select("post_id").Where("tag_id = ?", filter.TagID))
		}
		if filter.Language != "" {
			query = query.Where("posts.language = ?", filter.Language)
		}

		var posts []db.Post
		if err := query.Order("posts.published_at desc").Order("posts.id desc").Find(&posts).Error; err != nil {
			return err
		}
		out = make([]PostSummary, 0, len(posts))
		for i := range posts {
			out = append(out, s.summary(&posts[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetPublishedBySlug returns the published post with slug. When several
// posts share a slug, one in lang is preferred, then the latest.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug, lang string) (*PostDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPostNotFound
	}

	var detail PostDetail
	err := s.cache.Aside(ctx, cache.PostKey(slug, lang), &detail, func() error {
		query := s.db.WithContext(ctx).
			Preload("Author").
			Preload("Category").
			Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.name asc") }).
			Where("slug = ? AND published = ?", slug, true)
		if lang != "" {
			query = query.Order(gorm.Expr("CASE WHEN language = ? THEN 0 ELSE 1 END", lang))
		}

		var post db.Post
		if err := query.Order("published_at desc").Order("id desc").First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		html, err := s.renderer.HTML(post.Content, post.ContentFormat)
		if err != nil {
			return fmt.Errorf("render post %d: %w", post.ID, err)
		}
		detail = PostDetail{PostSummary: s.summary(&post), HTML: html}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByAuthor returns the posts of one author, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint) ([]PostRow, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").Order("id desc").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return rows(posts), nil
}

// ListAll returns every post with its author's name, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]PostRow, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc").Order("id desc").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return rows(posts), nil
}

// TogglePublish flips the published flag: publishing stamps now,
// unpublishing clears published_at.
func (s *PostService) TogglePublish(ctx context.Context, id uint) (*PostRow, error) {
	var post db.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		post.Published = !post.Published
		post.PublishedAt = nil
		if post.Published {
			now := s.now()
			post.PublishedAt = &now
		}
		return tx.Model(&db.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
			"published":    post.Published,
			"published_at": post.PublishedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTaxonomy(ctx)
	row := rows([]db.Post{post})[0]
	return &row, nil
}

// Delete removes a post and its tag associations.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	return s.delete(ctx, s.db.WithContext(ctx).Where("id = ?", id))
}

// DeleteOwn removes a post only if authorID wrote it.
func (s *PostService) DeleteOwn(ctx context.Context, id, authorID uint) error {
	return s.delete(ctx, s.db.WithContext(ctx).Where("id = ? AND author_id = ?", id, authorID))
}

func (s *PostService) delete(ctx context.Context, scope *gorm.DB) error {
	var post db.Post
	if err := scope.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&db.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&db.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}
	if post.Published {
		s.cache.InvalidateTaxonomy(ctx)
	}
	return nil
}

func (s *PostService) summary(post *db.Post) PostSummary {
	sum := PostSummary{
		ID:            post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		FeaturedImage: post.FeaturedImage,
		Language:      post.Language,
		PublishedAt:   post.PublishedAt,
		CreatedAt:     post.CreatedAt,
		AuthorName:    displayName(post.Author),
		Tags:          make([]Ref, 0, len(post.Tags)),
	}
	if post.Excerpt != nil && strings.TrimSpace(*post.Excerpt) != "" {
		sum.Excerpt = *post.Excerpt
	} else {
		sum.Excerpt = s.renderer.Excerpt(post.Content, post.ContentFormat, render.DefaultExcerptRunes)
	}
	if post.Category != nil {
		sum.Category = &Ref{ID: post.Category.ID, Name: post.Category.Name, Slug: post.Category.Slug}
	}
	for _, tag := range post.Tags {
		sum.Tags = append(sum.Tags, Ref{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}
	return sum
}

func rows(posts []db.Post) []PostRow {
	out := make([]PostRow, 0, len(posts))
	for _, post := range posts {
		out = append(out, PostRow{
			ID:          post.ID,
			Title:       post.Title,
			Slug:        post.Slug,
			Published:   post.Published,
			PublishedAt: post.PublishedAt,
			CreatedAt:   post.CreatedAt,
			Language:    post.Language,
			AuthorID:    post.AuthorID,
			AuthorName:  displayName(post.Author),
		})
	}
	return out
}

func displayName(u db.User) string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

func idKey(id uint) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprint(id)
}
