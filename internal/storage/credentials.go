package storage

import (
	"net/url"
	"strings"
)

// IsPostgresConnString reports whether config names a PostgreSQL database
// rather than a SQLite file path.
func IsPostgresConnString(config string) bool {
	c := strings.TrimSpace(config)
	if strings.HasPrefix(c, "postgres://") || strings.HasPrefix(c, "postgresql://") {
		return true
	}
	// key=value DSN
	for _, part := range strings.Fields(c) {
		key, _, ok := strings.Cut(part, "=")
		if ok && (strings.EqualFold(key, "host") || strings.EqualFold(key, "dbname")) {
			return true
		}
	}
	return false
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			// Unparseable URLs are treated as unsafe.
			return true
		}
		if _, ok := u.User.Password(); ok {
			return true
		}
		return u.Query().Get("password") != ""
	}

	for _, part := range strings.Fields(connStr) {
		key, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "password") {
			return true
		}
	}
	return false
}
