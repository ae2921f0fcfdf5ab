package config

import (
	"net/url"
	"strings"
)

// DatabaseURL returns DB_URL with the connection parameters the importer relies on.
// application_name makes the holder of the import lock visible in pg_stat_activity.
// Values already present in DB_URL win. Both URL and key=value forms are accepted.
func (c Config) DatabaseURL(applicationName string) string {
	raw := strings.TrimSpace(c.DBURL)
	params := make([][2]string, 0, 2)
	if applicationName != "" {
		params = append(params, [2]string{"application_name", applicationName})
	}
	if c.DBDisablePreparedBinary {
		params = append(params, [2]string{"disable_prepared_binary_result", "yes"})
	}
	if raw == "" || len(params) == 0 {
		return raw
	}

	if !isURLForm(raw) {
		for _, p := range params {
			if keywordValue(raw, p[0]) == "" {
				raw += " " + p[0] + "=" + p[1]
			}
		}
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	for _, p := range params {
		if query.Get(p[0]) == "" {
			query.Set(p[0], p[1])
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// DatabaseName is the database DB_URL points at, used to label traced queries.
func (c Config) DatabaseName() string {
	raw := strings.TrimSpace(c.DBURL)
	if isURLForm(raw) {
		if parsed, err := url.Parse(raw); err == nil {
			return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		}
		return ""
	}
	return keywordValue(raw, "dbname")
}

func isURLForm(raw string) bool {
	return strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://")
}

func keywordValue(dsn, key string) string {
	for _, token := range strings.Fields(dsn) {
		name, value, ok := strings.Cut(token, "=")
		if ok && name == key {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}
