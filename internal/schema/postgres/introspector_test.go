package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

const introspectionQuery = `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`

func TestDescribeGroupsColumnsByTableInOrdinalOrder(t *testing.T) {
	db, mock := newSQLMock(t)
	introspector := NewIntrospector(db)

	mock.ExpectQuery(regexp.QuoteMeta(introspectionQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("buildings", "id", "text").
			AddRow("buildings", "companyId", "text").
			AddRow("buildings", "deliveryDate", "timestamp without time zone").
			AddRow("users", "id", "text").
			AddRow("users", "isBlocked", "boolean"))

	description, err := introspector.Describe(context.Background())
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	want := "Table buildings:" +
		"\n  - id (text)" +
		"\n  - companyId (text)" +
		"\n  - deliveryDate (timestamp without time zone)" +
		"\nTable users:" +
		"\n  - id (text)" +
		"\n  - isBlocked (boolean)"
	if description != want {
		t.Fatalf("Describe() = %q, want %q", description, want)
	}
	assertSQLMock(t, mock)
}

func TestDescribeEmptyCatalogue(t *testing.T) {
	db, mock := newSQLMock(t)
	introspector := NewIntrospector(db)

	mock.ExpectQuery(regexp.QuoteMeta(introspectionQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}))

	description, err := introspector.Describe(context.Background())
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if description != "" {
		t.Fatalf("Describe() = %q, want empty", description)
	}
	assertSQLMock(t, mock)
}

func TestDescribePropagatesMetadataFailure(t *testing.T) {
	db, mock := newSQLMock(t)
	introspector := NewIntrospector(db)

	mock.ExpectQuery(regexp.QuoteMeta(introspectionQuery)).
		WillReturnError(errors.New("connection refused"))

	if _, err := introspector.Describe(context.Background()); err == nil {
		t.Fatal("expected introspection error")
	}
	assertSQLMock(t, mock)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
