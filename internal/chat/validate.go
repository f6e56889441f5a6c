package chat

import (
	"fmt"
	"strings"
)

// Validate enforces the allow-list a candidate must pass before execution:
// the query must read (leading keyword SELECT, case-insensitive) and must
// contain the literal company or user identifier the prompt told the
// generator to scope by. This is a syntactic check, not a semantic
// authorizer: it does not parse the query or verify the scoping predicate
// is correctly bound.
func Validate(sqlText, companyID, userID string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return fmt.Errorf("%w: empty query text", ErrUnsafeQuery)
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Errorf("%w: query does not start with SELECT", ErrUnsafeQuery)
	}
	if !containsScopeLiteral(trimmed, companyID, userID) {
		return fmt.Errorf("%w: query is not scoped by the caller's company or user identifier", ErrUnsafeQuery)
	}
	return nil
}

func containsScopeLiteral(sqlText, companyID, userID string) bool {
	if companyID != "" && strings.Contains(sqlText, companyID) {
		return true
	}
	if userID != "" && strings.Contains(sqlText, userID) {
		return true
	}
	return false
}
