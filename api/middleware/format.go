package middleware

import (
	"mime"
	"net/http"
	"strings"
)

const (
	formatParam = "_format"
	formatJSON  = "json"
	jsonSuffix  = ".json"
)

// Format negotiates the request format: the _format query parameter wins,
// then a .json path suffix (stripped before routing), then the Accept
// header. Anything else is html.
func Format() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(formatParam)))

			if strings.HasSuffix(r.URL.Path, jsonSuffix) && len(r.URL.Path) > len(jsonSuffix) {
				u := *r.URL
				u.Path = strings.TrimSuffix(u.Path, jsonSuffix)
				u.RawPath = ""
				r = r.WithContext(r.Context())
				r.URL = &u
				if format == "" {
					format = formatJSON
				}
			}

			if format == "" {
				format = formatFromAccept(r.Header.Get("Accept"))
			}

			next.ServeHTTP(w, r.WithContext(WithFormat(r.Context(), format)))
		})
	}
}

func formatFromAccept(header string) string {
	for _, part := range strings.Split(header, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch {
		case mediaType == "text/html" || mediaType == "application/xhtml+xml":
			return FormatHTML
		case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
			return formatJSON
		}
	}
	return FormatHTML
}
