// Package naming expands naming series such as "DONOR-.YYYY.-" into
// document names backed by a per-prefix counter.
package naming

import (
	"context"
	"fmt"
	"strings"
	"time"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

const defaultDigits = 5

// Expand resolves the date and field parts of series. It returns the name
// prefix and the number of counter digits. Parts are separated by '.';
// YYYY, YY, MM, DD are date tokens, a run of '#' sets the digit count and
// {field} is replaced from vars.
func Expand(series string, now time.Time, vars map[string]string) (string, int, error) {
	series = strings.TrimSpace(series)
	if series == "" {
		return "", 0, domain.Invalid("naming_series", "naming series is required")
	}
	var b strings.Builder
	digits := 0
	for _, part := range strings.Split(series, ".") {
		switch {
		case part == "":
		case part == "YYYY":
			b.WriteString(now.Format("2006"))
		case part == "YY":
			b.WriteString(now.Format("06"))
		case part == "MM":
			b.WriteString(now.Format("01"))
		case part == "DD":
			b.WriteString(now.Format("02"))
		case strings.Trim(part, "#") == "":
			digits = len(part)
		default:
			expanded, err := substitute(part, vars)
			if err != nil {
				return "", 0, err
			}
			b.WriteString(expanded)
		}
	}
	if digits == 0 {
		digits = defaultDigits
	}
	return b.String(), digits, nil
}

func substitute(part string, vars map[string]string) (string, error) {
	for {
		start := strings.Index(part, "{")
		if start < 0 {
			return part, nil
		}
		end := strings.Index(part[start:], "}")
		if end < 0 {
			return part, nil
		}
		key := part[start+1 : start+end]
		value := strings.TrimSpace(vars[key])
		if value == "" {
			return "", domain.Invalid("naming_series", "%s is required by the naming series", key)
		}
		part = part[:start] + value + part[start+end+1:]
	}
}

// Format joins a prefix and counter value.
func Format(prefix string, digits int, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, digits, n)
}

// Generator hands out names from the naming_series counters.
type Generator struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewGenerator(sql infra.SQLExecutor) *Generator {
	return &Generator{sql: sql, now: time.Now}
}

// Next increments the counter of the expanded prefix and returns the name.
func (g *Generator) Next(ctx context.Context, series string, vars map[string]string) (string, error) {
	prefix, digits, err := Expand(series, g.now(), vars)
	if err != nil {
		return "", err
	}
	var current int64
	if err := g.sql.QueryRow(ctx, sqlinline.QNextNamingSeries, prefix).Scan(&current); err != nil {
		return "", fmt.Errorf("naming series %s: %w", prefix, err)
	}
	return Format(prefix, digits, current), nil
}
