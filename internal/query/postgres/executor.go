package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/datachat/datachat/internal/query"
)

// Executor runs validated queries against the tenant database. Engine
// failures are wrapped and surfaced as-is to the orchestrator; nothing here
// is retried.
type Executor struct {
	db *sql.DB
}

func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

func (e *Executor) HealthCheck(ctx context.Context) error {
	var one int
	if err := e.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping tenant db: %w", err)
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, sqlText string) (query.Result, error) {
	if strings.TrimSpace(sqlText) == "" {
		return query.Result{}, fmt.Errorf("sql is required")
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("read result columns: %w", err)
	}

	result := query.Result{Columns: columns, Rows: make([][]query.Scalar, 0)}
	for rows.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return query.Result{}, fmt.Errorf("scan result row: %w", err)
		}
		row := make([]query.Scalar, len(columns))
		for i, value := range raw {
			row[i] = coerceScalar(value)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate result rows: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func coerceScalar(value any) query.Scalar {
	switch v := value.(type) {
	case nil:
		return query.Null()
	case bool:
		return query.Bool(v)
	case int64:
		return query.Number(float64(v))
	case float64:
		return query.Number(v)
	case time.Time:
		return query.Time(v)
	case []byte:
		return query.Text(string(v))
	case string:
		return query.Text(v)
	default:
		return query.Text(fmt.Sprintf("%v", v))
	}
}
