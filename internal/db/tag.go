package db

import "gorm.io/gorm"

// Tag 定义了标签模型
type Tag struct {
	gorm.Model
	Name      string `gorm:"unique;not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Posts     []Post `gorm:"many2many:post_tags;"`
	PostCount int64  `gorm:"->;-:migration"`
}

// Category 定义了分类模型，一篇文章至多属于一个分类。
type Category struct {
	gorm.Model
	Name      string `gorm:"unique;not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	PostCount int64  `gorm:"->;-:migration"`
}
