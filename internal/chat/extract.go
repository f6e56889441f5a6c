package chat

import (
	"regexp"
	"strings"
)

// A fence is three backticks, an optional language tag on the opening line,
// the inner content, and a closing triple backtick.
var fencedBlockRE = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]+\n)?(.*?)```")

// ExtractQuery recovers the candidate query from raw generator output. The
// first fenced block wins; without a fence the trimmed raw text is returned
// unchanged. An empty result is a normal outcome, not an error.
func ExtractQuery(raw string) string {
	if match := fencedBlockRE.FindStringSubmatch(raw); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(raw)
}
