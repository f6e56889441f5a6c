package chat

import (
	"fmt"
	"strings"

	"github.com/datachat/datachat/internal/query"
)

// BuildQueryPrompt assembles the SQL-generation prompt. Pure string
// construction: same inputs, same prompt. The security rule asks the
// generator to scope rows by tenant; the validator re-checks the scoping
// literal afterwards because an instruction alone is not an invariant.
func BuildQueryPrompt(schema, companyID, userID, question string, history []Turn) string {
	var b strings.Builder
	b.WriteString("You are an expert PostgreSQL database assistant.\n")
	b.WriteString("Your task is to generate a SQL query from the user's question.\n")
	b.WriteString("Generate ONLY the SQL query, with no other words, explanation or markdown fences.\n\n")
	b.WriteString("Context:\n")
	b.WriteString("- The database schema is the following:\n")
	b.WriteString(schema)
	b.WriteString("\n")
	fmt.Fprintf(&b, "- The question was asked by the user with ID '%s', linked to the company with ID '%s'.\n", userID, companyID)
	fmt.Fprintf(&b, "- CRITICAL SECURITY RULE: every query MUST contain the clause `WHERE \"userId\" = '%s'` or `WHERE \"companyId\" = '%s'` so the user only sees their own data or data belonging to their company.\n", userID, companyID)
	b.WriteString("- Identifiers containing mixed-case characters MUST be double-quoted, PostgreSQL's case-sensitive quoting form.\n")
	b.WriteString("- If the question asks \"how many\", use COUNT(*).\n\n")
	b.WriteString("Conversation so far:\n")
	b.WriteString(Transcript(history))
	b.WriteString("\n")
	fmt.Fprintf(&b, "User question: %q\n\n", question)
	b.WriteString("Generated SQL query:\n")
	return b.String()
}

// BuildAnswerPrompt assembles the answer-synthesis prompt. The rows are
// already tenant-scoped by construction, so no security rules appear here.
func BuildAnswerPrompt(question string, result query.Result) string {
	var b strings.Builder
	b.WriteString("You are a friendly assistant. Your task is to turn a database result into a complete, natural sentence for the user.\n")
	fmt.Fprintf(&b, "Original user question: %q\n", question)
	b.WriteString("Database result:\n")
	b.WriteString(RenderResult(result))
	b.WriteString("\n\nAnswer for the user:\n")
	return b.String()
}

// Transcript linearizes history oldest first, each turn labeled by sender.
// Empty history yields an empty block and the template stays well-formed.
func Transcript(history []Turn) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, turn.Sender+": "+turn.Text)
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderResult writes rows as "column=value" pairs in engine column order.
func RenderResult(result query.Result) string {
	if len(result.Rows) == 0 {
		return "(no rows)"
	}
	lines := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		pairs := make([]string, 0, len(row))
		for i, cell := range row {
			column := ""
			if i < len(result.Columns) {
				column = result.Columns[i]
			}
			pairs = append(pairs, column+"="+cell.String())
		}
		lines = append(lines, strings.Join(pairs, ", "))
	}
	return strings.Join(lines, "\n")
}
