package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpPgxError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users", Message: "duplicate key"}
	err := Wrap(CodeConflict, fmt.Errorf("insert user: %w", pgErr), "email already registered")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.DBDriver != "pgx" || d.DBCode != "23505" || d.DBConstraint != "users_email_key" {
		t.Fatalf("unexpected db fields: %+v", d)
	}
	if d.DBDetail != "duplicate key" {
		t.Fatalf("expected message fallback for detail, got %q", d.DBDetail)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}
	if d.Fields()["db_constraint"] != "users_email_key" {
		t.Fatalf("expected db fields in log fields")
	}
}

func TestDumpPqError(t *testing.T) {
	d := Dump(fmt.Errorf("wrap: %w", &pq.Error{Code: "23503", Table: "wishlist_items", Detail: "fk"}))
	if d.DBDriver != "pq" || d.DBCode != "23503" || d.DBTable != "wishlist_items" || d.DBDetail != "fk" {
		t.Fatalf("unexpected dump: %+v", d)
	}
}

func TestDumpPlainError(t *testing.T) {
	d := Dump(fmt.Errorf("boom"))
	if d.DBDriver != "" || d.Code != "" {
		t.Fatalf("unexpected dump: %+v", d)
	}
	if _, ok := d.Fields()["db_driver"]; ok {
		t.Fatalf("db fields should be omitted")
	}
	if empty := Dump(nil); empty.TopMessage != "" || empty.Chain != nil {
		t.Fatalf("nil error should dump empty")
	}
}
