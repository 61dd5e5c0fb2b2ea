package db

import (
	"net/url"
	"strings"

	"github.com/diewo77/go-billing/internal/config"
)

var dsnKeys = map[string]bool{
	"host": true, "port": true, "user": true, "password": true, "dbname": true, "sslmode": true,
}

func isURLDSN(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// parseKeyValueDSN splits "host=h user=u" into its pairs. ok is false when no
// field is a recognized connection key.
func parseKeyValueDSN(s string) (pairs [][2]string, ok bool) {
	for _, f := range strings.Fields(s) {
		k, v, found := strings.Cut(f, "=")
		if !found {
			continue
		}
		k = strings.ToLower(k)
		if dsnKeys[k] {
			ok = true
		}
		pairs = append(pairs, [2]string{k, v})
	}
	return pairs, ok
}

// NormalizeDSN cleans a DSN typed into an env file: surrounding quotes and
// whitespace are dropped, and a key=value list without sslmode gets
// sslmode=disable. URL DSNs are returned as they are.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), `"'`)
	if s == "" || isURLDSN(s) {
		return s
	}
	pairs, ok := parseKeyValueDSN(s)
	if !ok {
		return s
	}
	parts := make([]string, 0, len(pairs)+1)
	hasSSL := false
	for _, p := range pairs {
		if p[0] == "sslmode" {
			hasSSL = true
		}
		parts = append(parts, p[0]+"="+p[1])
	}
	if !hasSSL {
		parts = append(parts, "sslmode=disable")
	}
	return strings.Join(parts, " ")
}

// PostgresDSN returns DATABASE_DSN when it is set, otherwise the DSN built
// from the individual DB_* settings.
func PostgresDSN(cfg config.DatabaseConfig) string {
	if raw := NormalizeDSN(cfg.RawDSN); raw != "" {
		return raw
	}
	return cfg.DSN()
}

// MigrationURL returns the URL form golang-migrate expects. A key=value
// DATABASE_DSN is converted.
func MigrationURL(cfg config.DatabaseConfig) string {
	raw := NormalizeDSN(cfg.RawDSN)
	if raw == "" {
		return cfg.URL()
	}
	if isURLDSN(raw) {
		return raw
	}
	pairs, ok := parseKeyValueDSN(raw)
	if !ok {
		return cfg.URL()
	}
	u := url.URL{Scheme: "postgres"}
	var user, password, host, port string
	q := url.Values{}
	for _, p := range pairs {
		switch p[0] {
		case "host":
			host = p[1]
		case "port":
			port = p[1]
		case "user":
			user = p[1]
		case "password":
			password = p[1]
		case "dbname":
			u.Path = "/" + p[1]
		default:
			q.Set(p[0], p[1])
		}
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else if user != "" {
		u.User = url.User(user)
	}
	u.Host = host
	if port != "" {
		u.Host += ":" + port
	}
	u.RawQuery = q.Encode()
	return u.String()
}
