package frag

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

// TestCompiledFragmentExecutesAgainstMockedDriver proves a compiled
// (text, values) pair is usable as-is against a *sql.DB, without pulling
// query execution into this package: the database/sql surface is only
// exercised from the test, via go-sqlmock.
func TestCompiledFragmentExecutesAgainstMockedDriver(t *testing.T) {
	must := mustFactory(t)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	f := must(Template(
		[]string{"select ", " from ", " where ", " = ", ""},
		must(Identifier("users", "id")),
		must(Identifier("users")),
		must(Identifier("users", "id")),
		must(Value(42)),
	))
	query, args, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	rows := sqlmock.NewRows([]string{"id"}).AddRow(42)
	mock.ExpectQuery(`^select "users"\."id" from "users" where "users"\."id" = \$1$`).
		WithArgs(args...).
		WillReturnRows(rows)

	var got int
	row := db.QueryRow(query, args...)
	if err := row.Scan(&got); err != nil {
		t.Fatalf("QueryRow/Scan: %v", err)
	}
	if got != 42 {
		t.Errorf("scanned id = %d, want 42", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestCompiledFragmentExecDoesNotRequireRows(t *testing.T) {
	must := mustFactory(t)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	f := must(Template(
		[]string{"delete from ", " where ", " = ", ""},
		must(Identifier("users")),
		must(Identifier("users", "id")),
		must(Value(42)),
	))
	query, args, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	mock.ExpectExec(`^delete from "users" where "users"\."id" = \$1$`).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		t.Fatalf("RowsAffected: %v", err)
	}
	if affected != 1 {
		t.Errorf("RowsAffected = %d, want 1", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
