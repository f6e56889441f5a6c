package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Introspector builds the textual schema catalogue from live database
// metadata. Output is grouped by table with columns in physical ordinal
// order, the shape the query-generation prompt is grounded on.
type Introspector struct {
	db *sql.DB
}

func NewIntrospector(db *sql.DB) *Introspector {
	return &Introspector{db: db}
}

func (i *Introspector) Describe(ctx context.Context) (string, error) {
	rows, err := i.db.QueryContext(ctx, `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`)
	if err != nil {
		return "", fmt.Errorf("introspect schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var builder strings.Builder
	currentTable := ""
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return "", fmt.Errorf("scan schema row: %w", err)
		}
		if tableName != currentTable {
			if currentTable != "" {
				builder.WriteString("\n")
			}
			builder.WriteString("Table " + tableName + ":")
			currentTable = tableName
		}
		builder.WriteString(fmt.Sprintf("\n  - %s (%s)", columnName, dataType))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate schema rows: %w", err)
	}
	return builder.String(), nil
}
