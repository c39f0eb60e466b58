package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

func TestGeocodeRepositoryGetReturnsMissWithoutError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewGeocodeRepository(db)
	mock.ExpectQuery("FROM geocode_cache").
		WithArgs("Douala 9").
		WillReturnRows(sqlmock.NewRows([]string{"latitude", "longitude"}))

	_, ok, err := repo.Get(context.Background(), "Douala 9")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGeocodeRepositoryGetReturnsCoordinates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewGeocodeRepository(db)
	rows := sqlmock.NewRows([]string{"latitude", "longitude"}).AddRow(4.0511, 9.7679)
	mock.ExpectQuery("FROM geocode_cache").
		WithArgs("Douala 1").
		WillReturnRows(rows)

	coords, ok, err := repo.Get(context.Background(), "Douala 1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit")
	}
	want := domain.Coordinates{Latitude: 4.0511, Longitude: 9.7679}
	if coords != want {
		t.Fatalf("Get() = %+v, want %+v", coords, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGeocodeRepositoryPutUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewGeocodeRepository(db)
	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs("Douala 3", 4.05, 9.75, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Put(context.Background(), "Douala 3", domain.Coordinates{Latitude: 4.05, Longitude: 9.75})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGeocodeRepositoryAllCollectsEveryRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewGeocodeRepository(db)
	rows := sqlmock.NewRows([]string{"district", "latitude", "longitude"}).
		AddRow("Douala 1", 4.0511, 9.7679).
		AddRow("Yaoundé", 3.8480, 11.5021)
	mock.ExpectQuery("FROM geocode_cache").WillReturnRows(rows)

	all, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
