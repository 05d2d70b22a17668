// Package render 把文章正文转换为可以直接输出到公开页面的安全 HTML。
package render

import (
	"bytes"
	htmlstd "html"
	"strings"
	"unicode/utf8"

	"github.com/inkwell/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultExcerptRunes is the excerpt length used when a post has none.
const DefaultExcerptRunes = 160

// Renderer converts stored post content into sanitised HTML.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	strict   *bluemonday.Policy
}

// New builds a Renderer with GFM markdown and a UGC sanitiser that also
// admits video embeds.
func New() *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
		),
		policy: contentPolicy(),
		strict: bluemonday.StrictPolicy(),
	}
}

func contentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-video-platform").OnElements("div")
	policy.AllowAttrs("src").Matching(embedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading").OnElements("iframe")
	return policy
}

// HTML renders content stored in format. Markdown goes through goldmark
// first; both formats are sanitised.
func (r *Renderer) HTML(content, format string) (string, error) {
	if format != db.ContentFormatMarkdown {
		return r.policy.Sanitize(content), nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(expandEmbeds(content)), &buf); err != nil {
		return "", err
	}
	return string(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Excerpt returns the first limit runes of the post text with markup removed.
func (r *Renderer) Excerpt(content, format string, limit int) string {
	if limit <= 0 {
		limit = DefaultExcerptRunes
	}
	rendered, err := r.HTML(content, format)
	if err != nil {
		rendered = content
	}
	text := strings.Join(strings.Fields(htmlstd.UnescapeString(r.strict.Sanitize(rendered))), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
