package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// PlatformRecorder receives the coarse client platform of each request.
type PlatformRecorder interface {
	RecordPlatform(platform string)
}

// ClientPlatform classifies the caller's User-Agent into a coarse platform
// bucket and feeds it to the recorder. Only the bucket is recorded; the raw
// User-Agent never reaches a metric label.
func ClientPlatform(recorder PlatformRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder.RecordPlatform(classify(r.Header.Get("User-Agent")))
			next.ServeHTTP(w, r)
		})
	}
}

func classify(rawUserAgent string) string {
	if rawUserAgent == "" {
		return "unknown"
	}
	ua := useragent.New(rawUserAgent)
	switch {
	case ua.Bot():
		return "bot"
	case ua.Mobile():
		return "mobile"
	case strings.Contains(strings.ToLower(rawUserAgent), "okhttp"):
		return "mobile"
	default:
		return "desktop"
	}
}
