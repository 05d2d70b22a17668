// Package seed 生成开发和演示用的数据：作者、分类、标签与文章。
// 分类和标签按名称去重，可以重复执行；文章每次追加。
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"gorm.io/gorm"
)

const (
	DefaultAuthor   = "demo-writer"
	defaultPassword = "demo1234"
	publishedRatio  = 70
	maxDaysBack     = 90
)

var (
	categoryNames = []string{"Engineering", "Life", "Notes"}
	tagNames      = []string{"Go", "Web", "Databases", "Travel", "Reading", "Tools"}
)

// 中文示例文章，其余由 gofakeit 生成英文内容。
var chineseSamples = []struct {
	title   string
	content string
	excerpt string
}{
	{
		title:   "用 Go 构建高并发 Web 服务",
		content: "Go 的 goroutine 和 channel 让并发编程变得直接。\n\n本文记录一次从单体服务拆分到多进程部署的过程，包括连接池、超时控制和优雅停机。",
		excerpt: "从连接池到优雅停机，记录一次 Go 服务的并发改造。",
	},
	{
		title:   "SQLite 优化实践",
		content: "SQLite 在单机场景下表现出色。\n\n合理的索引、WAL 模式以及批量事务可以让写入吞吐提升一个数量级。",
		excerpt: "索引、WAL 与批量事务：让 SQLite 跑得更快。",
	},
	{
		title:   "个人知识管理的一点思考",
		content: "记录是为了更好地思考。\n\n- 每天写一点\n- 每周回顾一次\n- 每月整理成文",
	},
}

// Options controls how much data Run creates.
type Options struct {
	Posts  int
	Author string
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
}

// Result counts the rows Run created.
type Result struct {
	AuthorID   uint
	Categories int
	Tags       int
	Posts      int
}

// Run creates the demo author, the fixed categories and tags, and
// opts.Posts posts spread over the last three months.
func Run(ctx context.Context, gdb *gorm.DB, opts Options) (Result, error) {
	if gdb == nil {
		return Result{}, errors.New("database not initialized")
	}
	if opts.Posts < 0 {
		return Result{}, fmt.Errorf("posts must not be negative, got %d", opts.Posts)
	}
	author := strings.TrimSpace(opts.Author)
	if author == "" {
		author = DefaultAuthor
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)

	var res Result
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := db.EnsureUser(tx, author, defaultPassword, db.RoleWriter); err != nil {
			return fmt.Errorf("ensure author %s: %w", author, err)
		}
		var user db.User
		if err := tx.Where("username = ?", author).First(&user).Error; err != nil {
			return fmt.Errorf("load author %s: %w", author, err)
		}
		res.AuthorID = user.ID

		categories := make([]db.Category, 0, len(categoryNames))
		for _, name := range categoryNames {
			category := db.Category{Name: name, Slug: draft.Slugify(name)}
			created, err := firstOrCreate(tx, &category, name)
			if err != nil {
				return err
			}
			if created {
				res.Categories++
			}
			categories = append(categories, category)
		}

		tags := make([]db.Tag, 0, len(tagNames))
		for _, name := range tagNames {
			tag := db.Tag{Name: name, Slug: draft.Slugify(name)}
			created, err := firstOrCreate(tx, &tag, name)
			if err != nil {
				return err
			}
			if created {
				res.Tags++
			}
			tags = append(tags, tag)
		}

		now := time.Now()
		for i := 0; i < opts.Posts; i++ {
			post := buildPost(faker, i, user.ID, now)
			if faker.Number(1, 4) > 1 {
				category := categories[faker.Number(0, len(categories)-1)]
				post.CategoryID = &category.ID
			}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("create post %q: %w", post.Title, err)
			}

			picked := make(map[uint]struct{})
			for n := faker.Number(0, 3); n > 0; n-- {
				picked[tags[faker.Number(0, len(tags)-1)].ID] = struct{}{}
			}
			for tagID := range picked {
				if err := tx.Create(&db.PostTag{PostID: post.ID, TagID: tagID}).Error; err != nil {
					return fmt.Errorf("link tag %d to post %d: %w", tagID, post.ID, err)
				}
			}
			res.Posts++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func firstOrCreate[T any](tx *gorm.DB, row *T, name string) (bool, error) {
	result := tx.Where("name = ?", name).FirstOrCreate(row)
	if result.Error != nil {
		return false, fmt.Errorf("ensure %T %q: %w", row, name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func buildPost(faker *gofakeit.Faker, i int, authorID uint, now time.Time) db.Post {
	created := faker.DateRange(now.AddDate(0, 0, -maxDaysBack), now)
	post := db.Post{
		ContentFormat: db.ContentFormatMarkdown,
		AuthorID:      authorID,
		Language:      "en",
	}
	post.CreatedAt = created
	post.UpdatedAt = created

	if i < len(chineseSamples) {
		sample := chineseSamples[i]
		post.Title = sample.title
		post.Content = sample.content
		post.Language = "zh"
		if sample.excerpt != "" {
			excerpt := sample.excerpt
			post.Excerpt = &excerpt
		}
	} else {
		post.Title = strings.TrimSuffix(faker.Sentence(faker.Number(3, 7)), ".")
		post.Content = faker.Paragraph(faker.Number(2, 5), 4, 12, "\n\n")
		if faker.Bool() {
			excerpt := faker.Sentence(12)
			post.Excerpt = &excerpt
		}
	}
	post.Slug = draft.Slugify(post.Title)

	if faker.Number(1, 3) == 1 {
		image := fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", faker.UUID())
		post.FeaturedImage = &image
	}
	if faker.Number(1, 100) <= publishedRatio {
		published := created.Add(time.Duration(faker.Number(0, 48)) * time.Hour)
		if published.After(now) {
			published = now
		}
		post.Published = true
		post.PublishedAt = &published
	}
	return post
}
