package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okosten/hallbook/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}
	return db, mock
}

func TestMarkBooked_ConsumesAvailableSeat(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatRepoGorm(db)

	mock.ExpectExec(`UPDATE "seats" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkBooked(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected the conditional update to hit")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkBooked_SeatAlreadyTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatRepoGorm(db)

	mock.ExpectExec(`UPDATE "seats" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkBooked(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("a taken seat must not be consumed twice")
	}
}

func TestMarkAvailable_DoubleReleaseMisses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatRepoGorm(db)

	mock.ExpectExec(`UPDATE "seats" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkAvailable(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("releasing an already-available seat must not report success")
	}
}

func TestListAvailableNumbers_Ordered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatRepoGorm(db)

	rows := sqlmock.NewRows([]string{"id", "seat_row_id", "number", "status"}).
		AddRow(10, 1, 1, string(model.SeatAvailable)).
		AddRow(12, 1, 3, string(model.SeatAvailable)).
		AddRow(15, 1, 8, string(model.SeatAvailable))
	mock.ExpectQuery(`SELECT \* FROM "seats"`).WillReturnRows(rows)

	numbers, err := repo.ListAvailableNumbers(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint{1, 3, 8}
	if len(numbers) != len(want) {
		t.Fatalf("got %v, want %v", numbers, want)
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("got %v, want %v", numbers, want)
		}
	}
}
