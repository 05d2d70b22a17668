package render

import (
	"fmt"
	htmlstd "html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	embedSrcPattern = regexp.MustCompile(`^https://(?:www\.youtube\.com/embed/|player\.bilibili\.com/player\.html\?)`)
	bareURLPattern  = regexp.MustCompile(`^<?(https?://\S+?)>?$`)
)

type embed struct {
	platform string
	src      string
}

// expandEmbeds replaces a markdown line holding nothing but a YouTube or
// Bilibili link with an iframe player. Lines inside fenced code are left
// alone.
func expandEmbeds(markdown string) string {
	if !strings.Contains(markdown, "http") {
		return markdown
	}
	lines := strings.Split(markdown, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			switch {
			case fence == "":
				fence = trimmed[:3]
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}
		m := bareURLPattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		if e, ok := parseEmbed(m[1]); ok {
			lines[i] = e.html()
		}
	}
	return strings.Join(lines, "\n")
}

func parseEmbed(raw string) (embed, bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return embed{}, false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")

	switch host {
	case "youtu.be", "youtube.com", "m.youtube.com":
		id := ""
		switch {
		case host == "youtu.be":
			id = path
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"), strings.HasPrefix(path, "embed/"):
			id = path[strings.Index(path, "/")+1:]
		}
		id, _, _ = strings.Cut(id, "/")
		if id == "" {
			return embed{}, false
		}
		src := "https://www.youtube.com/embed/" + url.PathEscape(id) + "?rel=0"
		if start := startSeconds(u.Query().Get("t")); start > 0 {
			src += "&start=" + strconv.Itoa(start)
		}
		return embed{platform: "youtube", src: src}, true

	case "bilibili.com", "m.bilibili.com":
		segments := strings.Split(path, "/")
		if len(segments) < 2 || segments[0] != "video" || segments[1] == "" {
			return embed{}, false
		}
		values := url.Values{}
		id := segments[1]
		switch lower := strings.ToLower(id); {
		case strings.HasPrefix(lower, "bv"):
			values.Set("bvid", id)
		case strings.HasPrefix(lower, "av"):
			values.Set("aid", lower[2:])
		default:
			return embed{}, false
		}
		page := 1
		if p, err := strconv.Atoi(u.Query().Get("p")); err == nil && p > 0 {
			page = p
		}
		values.Set("page", strconv.Itoa(page))
		values.Set("autoplay", "0")
		return embed{platform: "bilibili", src: "https://player.bilibili.com/player.html?" + values.Encode()}, true
	}
	return embed{}, false
}

// startSeconds accepts "90", "90s" or "1h2m3s".
func startSeconds(value string) int {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	total, num := 0, 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 'h':
			total, num = total+num*3600, 0
		case r == 'm':
			total, num = total+num*60, 0
		case r == 's':
			total, num = total+num, 0
		default:
			return 0
		}
	}
	return total
}

func (e embed) html() string {
	return fmt.Sprintf(
		`<div class="video-embed" data-video-platform="%s"><iframe src="%s" title="%s video" loading="lazy" allow="encrypted-media; picture-in-picture" allowfullscreen frameborder="0"></iframe></div>`,
		e.platform, htmlstd.EscapeString(e.src), e.platform,
	)
}
