// internal/middleware/i18n.go
package middleware

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/bizdir-backend/internal/i18n"
)

// I18nMiddleware stores the response language under "lang". A supported
// ?lang= override wins, then the best Accept-Language match.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supported := i18n.GetSupportedLanguages()
		lang := defaultLang

		if override := strings.ToLower(c.Query("lang")); override != "" && slices.Contains(supported, override) {
			lang = override
		} else if match, ok := negotiate(c.GetHeader("Accept-Language"), supported); ok {
			lang = match
		}

		c.Set("lang", lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// negotiate returns the supported base language with the highest q-value.
// Ties go to the earlier entry; q=0 means not acceptable.
func negotiate(header string, supported []string) (string, bool) {
	best, bestQ := "", 0.0
	// Handle cases like "hi-IN,hi;q=0.9,en;q=0.8"
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		tag := strings.TrimSpace(fields[0])
		if tag == "" {
			continue
		}

		q := 1.0
		for _, param := range fields[1:] {
			if v, ok := strings.CutPrefix(strings.TrimSpace(param), "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}

		base := strings.ToLower(strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0])
		if q > bestQ && slices.Contains(supported, base) {
			best, bestQ = base, q
		}
	}
	return best, best != ""
}
