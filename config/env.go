package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxUploadSizeMB  = 20
	defaultSessionTTLMinute = 60
)

// MaxUploadSizeBytes caps the size of each uploaded source file.
//
// Set via env:
// - MAX_UPLOAD_SIZE_MB=20
func MaxUploadSizeBytes() int64 {
	mb := int64(defaultMaxUploadSizeMB)
	if v := strings.TrimSpace(os.Getenv("MAX_UPLOAD_SIZE_MB")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			mb = n
		}
	}
	return mb * 1024 * 1024
}

// SessionTTL is how long an analysis session survives without being touched.
//
// Set via env:
// - SESSION_TTL_MINUTES=60
func SessionTTL() time.Duration {
	minutes := int64(defaultSessionTTLMinute)
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL_MINUTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			minutes = n
		}
	}
	return time.Duration(minutes) * time.Minute
}

// IsProduction gates developer conveniences such as permissive CORS.
//
// Set via env:
// - GO_ENV=production
func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

// CORSAllowedOrigins is the explicit origin allowlist used in production.
//
// Set via env:
// - CORS_ALLOWED_ORIGINS="https://a.example,https://b.example"
func CORSAllowedOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
