// Package locale 负责请求语言协商：博客只区分中文和英文两种语言。
package locale

import (
	"sort"
	"strconv"
	"strings"
)

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"

	// DefaultLanguage is used when nothing in the request names a language.
	DefaultLanguage = LanguageChinese
)

// Preference carries the forms of a language used in responses.
type Preference struct {
	Language string
	HTMLLang string
}

// NormalizeLanguage maps a tag such as "zh-Hans" or "en_US" to a supported
// language, or "" when it is neither.
func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// IsSupported reports whether raw is exactly one of the stored language codes.
func IsSupported(raw string) bool {
	return raw == LanguageChinese || raw == LanguageEnglish
}

func LanguageFromCountryCode(code string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return ""
	}
	if trimmed == "CN" || trimmed == "TW" || trimmed == "HK" || trimmed == "MO" {
		return LanguageChinese
	}
	return LanguageEnglish
}

type weightedTag struct {
	tag    string
	weight float64
	order  int
}

// LanguageFromAcceptLanguage picks the supported language with the highest
// q-value; ties go to the one listed first.
func LanguageFromAcceptLanguage(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}

	var tags []weightedTag
	for i, part := range strings.Split(trimmed, ",") {
		fields := strings.Split(part, ";")
		tag := strings.TrimSpace(fields[0])
		if tag == "" {
			continue
		}
		weight := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if !strings.HasPrefix(param, "q=") {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimPrefix(param, "q="), 64); err == nil {
				weight = q
			}
		}
		if weight <= 0 {
			continue
		}
		tags = append(tags, weightedTag{tag: tag, weight: weight, order: i})
	}

	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].weight != tags[j].weight {
			return tags[i].weight > tags[j].weight
		}
		return tags[i].order < tags[j].order
	})
	for _, t := range tags {
		if lang := NormalizeLanguage(t.tag); lang != "" {
			return lang
		}
	}
	return ""
}

// Negotiate resolves the request language. Sources are tried in order:
// explicit query value, saved cookie, CDN country header, Accept-Language.
func Negotiate(query, cookie, country, acceptLanguage string) string {
	for _, candidate := range []string{
		NormalizeLanguage(query),
		NormalizeLanguage(cookie),
		LanguageFromCountryCode(country),
		LanguageFromAcceptLanguage(acceptLanguage),
	} {
		if candidate != "" {
			return candidate
		}
	}
	return DefaultLanguage
}

func PreferenceForLanguage(language string) Preference {
	if NormalizeLanguage(language) == LanguageEnglish {
		return Preference{Language: LanguageEnglish, HTMLLang: "en-US"}
	}
	return Preference{Language: LanguageChinese, HTMLLang: "zh-CN"}
}
