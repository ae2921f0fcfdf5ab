package app

import (
	"regexp"
	"strconv"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// valuesTupleRegex matches one placeholder tuple of a batch insert.
	valuesTupleRegex = regexp.MustCompile(`\(\$\d+(?:, ?\$\d+)*\)`)
)

// formatDBQueryForTrace keeps span attributes readable for the statements a cycle issues.
// Batch inserts keep their first VALUES tuple and a row count; anything longer than
// maxTracedQueryLength is cut.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if idx := strings.Index(strings.ToUpper(normalized), " VALUES "); idx >= 0 {
		head, tail := normalized[:idx+len(" VALUES ")], normalized[idx+len(" VALUES "):]
		if tuples := valuesTupleRegex.FindAllStringIndex(tail, -1); len(tuples) > 1 {
			last := tuples[len(tuples)-1][1]
			normalized = head + tail[tuples[0][0]:tuples[0][1]] + tail[last:] +
				" /* " + strconv.Itoa(len(tuples)) + " rows */"
		}
	}

	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
