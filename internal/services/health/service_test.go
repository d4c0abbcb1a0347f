package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusWithoutDatabase(t *testing.T) {
	got := NewService(nil).Status(context.Background())
	if got.Status != "ok" || got.Database != "memory" {
		t.Fatalf("unexpected status: %+v", got)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()
	got := NewService(db).Status(context.Background())
	if got.Status != "ok" || got.Database != "up" {
		t.Fatalf("unexpected status: %+v", got)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	got = NewService(db).Status(context.Background())
	if got.Status != "ok" || got.Database != "down" {
		t.Fatalf("unexpected status: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
