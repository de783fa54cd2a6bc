package search

import (
	"regexp"
	"strings"
	"time"

	"github.com/engramdb/engram/core"
)

var (
	typePattern   = regexp.MustCompile(`(?i)type:(\w+)`)
	afterPattern  = regexp.MustCompile(`(?i)after:(\d{4}-\d{2}-\d{2})`)
	beforePattern = regexp.MustCompile(`(?i)before:(\d{4}-\d{2}-\d{2})`)
	lastWeekRe    = regexp.MustCompile(`(?i)last week`)
	yesterdayRe   = regexp.MustCompile(`(?i)yesterday`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// ParseQuery turns a raw query string with inline filter syntax into a
// Query. Supported syntax:
//
//	type:person        restrict to an entity type (repeatable)
//	after:2024-01-01   lower timestamp bound
//	before:2024-12-31  upper timestamp bound
//	last week          thoughts from the last seven days
//	yesterday          thoughts from the last day
//
// Unknown entity types are ignored. The filter syntax is stripped from
// the query text; what remains becomes QueryText.
func ParseQuery(raw, userID string, pagination Pagination) *Query {
	query := &Query{
		UserId:     userID,
		Pagination: pagination,
	}

	var types []core.EntityType
	for _, m := range typePattern.FindAllStringSubmatch(raw, -1) {
		t, ok := core.ParseEntityType(strings.ToLower(m[1]))
		if !ok {
			continue
		}
		known := false
		for _, existing := range types {
			if existing == t {
				known = true
				break
			}
		}
		if !known {
			types = append(types, t)
		}
	}
	if len(types) > 0 {
		query.EntityFilter = &EntityFilter{Types: types}
	}

	var dateRange DateRange
	hasRange := false
	if m := afterPattern.FindStringSubmatch(raw); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			dateRange.Start = t
			hasRange = true
		}
	}
	if m := beforePattern.FindStringSubmatch(raw); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			dateRange.End = t
			hasRange = true
		}
	}

	now := time.Now().UTC()
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "last week") {
		dateRange.Start = now.AddDate(0, 0, -7)
		if dateRange.End.IsZero() {
			dateRange.End = now
		}
		hasRange = true
	} else if strings.Contains(lower, "yesterday") {
		dateRange.Start = now.AddDate(0, 0, -1)
		dateRange.End = now
		hasRange = true
	}

	if hasRange {
		if dateRange.End.IsZero() {
			dateRange.End = now
		}
		query.DateRange = &dateRange
	}

	cleaned := typePattern.ReplaceAllString(raw, "")
	cleaned = afterPattern.ReplaceAllString(cleaned, "")
	cleaned = beforePattern.ReplaceAllString(cleaned, "")
	cleaned = lastWeekRe.ReplaceAllString(cleaned, "")
	cleaned = yesterdayRe.ReplaceAllString(cleaned, "")
	query.QueryText = strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))

	return query
}
