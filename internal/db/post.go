package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	ContentFormatHTML     = "html"
	ContentFormatMarkdown = "markdown"
)

// Post 定义了文章模型。Excerpt、FeaturedImage、CategoryID 允许为 NULL。
type Post struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Slug          string `gorm:"index"`
	Content       string `gorm:"type:text"`
	ContentFormat string `gorm:"size:16;default:html"`
	Excerpt       *string
	FeaturedImage *string
	Published     bool       `gorm:"index;default:false"`
	PublishedAt   *time.Time `gorm:"index"`
	Language      string     `gorm:"size:8;default:zh"`
	AuthorID      uint       `gorm:"index;not null"`
	Author        User
	CategoryID    *uint `gorm:"index"`
	Category      *Category
	Tags          []Tag `gorm:"many2many:post_tags;"`
}

// PostTag 是文章与标签的关联记录。
type PostTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey;index"`
}

// TableName 与 Post.Tags 的 many2many 表保持一致。
func (PostTag) TableName() string {
	return "post_tags"
}
