package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses a human-readable size string (e.g. "1MB", "512KB", "64")
// into bytes.
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	mult := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			mult = u.mult
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * mult, nil
}

// SizeOr is ParseSize falling back to def when s does not parse.
func SizeOr(s string, def int64) int64 {
	n, err := ParseSize(s)
	if err != nil {
		return def
	}
	return n
}

var dsnPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// MaskDSN hides the password in a database connection string so it can be
// logged. URL forms ("postgres://u:p@h/db") get "xxxxx" and key=value forms "***";
// file paths pass through unchanged.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Redacted()
	}
	return dsnPassword.ReplaceAllString(dsn, "${1}***")
}
