// Package draft implements the authoring core: the in-memory draft of a post,
// its edit session with a timer-driven autosave, and the persistence protocol
// shared by autosave and manual submit.
package draft

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/inkwell/internal/db"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrForbidden         = errors.New("writer role required")
	ErrSessionNotFound   = errors.New("edit session not found")
	ErrSessionClosed     = errors.New("edit session closed")
	ErrSubmitInProgress  = errors.New("submit already in progress")
	ErrTitleRequired     = errors.New("title is required")
	ErrContentRequired   = errors.New("content is required")
	ErrTagNotFound       = errors.New("tag not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrUnsupportedFormat = errors.New("unsupported content format")
)

// Status is the autosave indicator shown next to the editor.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Author is the already-authenticated user an edit session acts for.
type Author struct {
	UserID uint
	Roles  []string
}

// HasRole reports whether the author holds role.
func (a Author) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanWrite reports whether the author may create and edit posts.
func (a Author) CanWrite() bool {
	return a.UserID != 0 && (a.HasRole(db.RoleWriter) || a.HasRole(db.RoleAdmin))
}

// IsAdmin reports whether the author holds the admin role.
func (a Author) IsAdmin() bool {
	return a.UserID != 0 && a.HasRole(db.RoleAdmin)
}

// Draft is the editing state of a post. ID is zero until the first successful insert.
type Draft struct {
	ID            uint   `json:"id,omitempty"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	ContentFormat string `json:"content_format"`
	Excerpt       string `json:"excerpt"`
	FeaturedImage string `json:"featured_image"`
	CategoryID    *uint  `json:"category_id"`
	TagIDs        []uint `json:"tag_ids"`
	Published     bool   `json:"published"`
	Language      string `json:"language"`
}

// Ready reports whether both title and content hold more than whitespace.
func (d Draft) Ready() bool {
	return strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.Content) != ""
}

func (d Draft) clone() Draft {
	out := d
	out.TagIDs = append([]uint(nil), d.TagIDs...)
	if d.CategoryID != nil {
		id := *d.CategoryID
		out.CategoryID = &id
	}
	return out
}

// Patch is a partial mutation of a draft. Nil fields are left unchanged; a
// non-nil empty TagIDs clears the tag set and Category with a nil ID clears
// the category.
type Patch struct {
	Title         *string
	Content       *string
	ContentFormat *string
	Excerpt       *string
	FeaturedImage *string
	Category      *CategoryChoice
	TagIDs        []uint
	Published     *bool
	Language      *string
}

// CategoryChoice wraps the optional category so a patch can clear it.
type CategoryChoice struct {
	ID *uint
}

// Publication is the publish state written by a manual submit.
type Publication struct {
	Published   bool
	PublishedAt *time.Time
}

// Record is the post row written by one save.
type Record struct {
	Title         string
	Slug          string
	Content       string
	ContentFormat string
	Excerpt       *string
	FeaturedImage *string
	CategoryID    *uint
	AuthorID      uint
	Language      string
	// Publish is nil for autosave, which never touches the publish state.
	Publish *Publication
}

// BuildRecord turns a draft into the row written by a save. Empty optional
// text fields become NULL and the slug is recomputed from the title.
func BuildRecord(d Draft, author Author, publish *Publication) Record {
	format := d.ContentFormat
	if format == "" {
		format = db.ContentFormatHTML
	}
	return Record{
		Title:         d.Title,
		Slug:          Slugify(d.Title),
		Content:       d.Content,
		ContentFormat: format,
		Excerpt:       optionalText(d.Excerpt),
		FeaturedImage: optionalText(d.FeaturedImage),
		CategoryID:    d.CategoryID,
		AuthorID:      author.UserID,
		Language:      d.Language,
		Publish:       publish,
	}
}

func optionalText(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

// NormalizeTagIDs drops zero ids and duplicates and sorts the rest.
func NormalizeTagIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func validFormat(format string) bool {
	return format == db.ContentFormatHTML || format == db.ContentFormatMarkdown
}

func sameTags(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameCategory(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
