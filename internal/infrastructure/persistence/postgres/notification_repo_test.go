package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestNotificationRepo_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewNotificationRepo(db)
	sentAt := time.Now()

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(int64(7), int64(10), sentAt, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Record(context.Background(), 7, 10, sentAt, true)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !inserted {
		t.Error("expected inserted=true")
	}
}

func TestNotificationRepo_Record_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewNotificationRepo(db)

	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Record(context.Background(), 7, 10, time.Now(), true)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if inserted {
		t.Error("conflict must report inserted=false")
	}
}

func TestNotificationRepo_RecordExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewNotificationRepo(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(7), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.RecordExists(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("RecordExists failed: %v", err)
	}
	if ok {
		t.Error("expected false")
	}
}
