package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/locale"
)

const (
	localeContextKey     = "__request_locale"
	languageCookieName   = "ink_lang"
	languageCookieMaxAge = 365 * 24 * 60 * 60
)

var countryHeaderCandidates = []string{
	"CF-IPCountry",
	"X-Geo-Country",
	"X-Forwarded-Country",
	"X-Country-Code",
}

// LocaleMiddleware resolves request language and sets headers for downstream caching.
// An explicit ?lang= is remembered in a cookie.
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := locale.NormalizeLanguage(c.Query("lang"))
		cookie := readLanguageCookie(c)
		language := locale.Negotiate(query, cookie, readCountryHeader(c), c.GetHeader("Accept-Language"))
		c.Set(localeContextKey, language)

		if query != "" && query != cookie {
			a.persistLanguage(c, query)
		}
		c.Header("Content-Language", locale.PreferenceForLanguage(language).HTMLLang)
		varyHeaders := append([]string{"Accept-Language"}, countryHeaderCandidates...)
		if cookie != "" || query != "" {
			varyHeaders = append(varyHeaders, "Cookie")
		}
		appendVaryHeader(c, varyHeaders...)
		c.Next()
	}
}

// requestLanguage returns the language resolved by LocaleMiddleware, or
// negotiates it from the request when the middleware did not run.
func requestLanguage(c *gin.Context) string {
	if cached, exists := c.Get(localeContextKey); exists {
		if language, ok := cached.(string); ok {
			return language
		}
	}
	if c.Request == nil {
		return locale.DefaultLanguage
	}
	return locale.Negotiate(c.Query("lang"), readLanguageCookie(c), readCountryHeader(c), c.GetHeader("Accept-Language"))
}

func readLanguageCookie(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	value, err := c.Cookie(languageCookieName)
	if err != nil {
		return ""
	}
	return locale.NormalizeLanguage(value)
}

func (a *API) persistLanguage(c *gin.Context, language string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     languageCookieName,
		Value:    language,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookies,
		MaxAge:   languageCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

func readCountryHeader(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	for _, header := range countryHeaderCandidates {
		value := strings.TrimSpace(c.GetHeader(header))
		if value == "" {
			continue
		}
		candidate := strings.TrimSpace(strings.Split(value, ",")[0])
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func appendVaryHeader(c *gin.Context, headers ...string) {
	existing := c.Writer.Header().Get("Vary")
	seen := make(map[string]struct{})
	order := make([]string, 0, len(headers))
	for _, token := range append(strings.Split(existing, ","), headers...) {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		order = append(order, trimmed)
	}
	if len(order) > 0 {
		c.Header("Vary", strings.Join(order, ", "))
	}
}
