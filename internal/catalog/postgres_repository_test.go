package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

var treatmentRowColumns = []string{"id", "name", "description", "price", "min_price", "max_price", "price_label", "features", "image"}

func strptr(s string) *string { return &s }

func TestPostgresRepository_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, description, price::text, .* FROM treatments ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(treatmentRowColumns).
			AddRow(1, "LIMPIEZA", "PROFILAXIS", "750.00", strptr("600.00"), strptr("900.00"), "", []string{"Profilaxis"}, "").
			AddRow(2, "CONSULTA", "", "500.00", (*string)(nil), (*string)(nil), "", []string{}, ""))

	repo := NewPostgresRepositoryWithDB(mock)
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].PriceLabel != "$600 - $900 MXN" {
		t.Errorf("label = %q", got[0].PriceLabel)
	}
	if got[1].PriceLabel != "$500 MXN" {
		t.Errorf("label = %q", got[1].PriceLabel)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_LoadErrorIsDataLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM treatments ORDER BY id`).WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresRepositoryWithDB(mock).Load(context.Background())
	if !errors.Is(err, ErrDataLoad) {
		t.Fatalf("err = %v, want ErrDataLoad", err)
	}
}

func TestPostgresRepository_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM treatments WHERE id = \$1`).WithArgs(99).WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresRepositoryWithDB(mock).Get(context.Background(), 99)
	if !errors.Is(err, ErrTreatmentNotFound) {
		t.Fatalf("err = %v, want ErrTreatmentNotFound", err)
	}
}

func TestPostgresRepository_CreateUppercases(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO treatments`).
		WithArgs("BLANQUEAMIENTO", "CON LUZ LED", "2300.00", pgxmock.AnyArg(), pgxmock.AnyArg(), "$1,800 - $2,800 MXN", pgxmock.AnyArg(), "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(15))

	got, err := NewPostgresRepositoryWithDB(mock).Create(context.Background(), &TreatmentInput{
		Name:        "Blanqueamiento",
		Description: "con luz LED",
		Price:       "2300",
		MinPrice:    "1800",
		MaxPrice:    "2800",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got.ID != 15 || got.Name != "BLANQUEAMIENTO" {
		t.Errorf("got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_CreateRequiresNameAndPrice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	_, err = NewPostgresRepositoryWithDB(mock).Create(context.Background(), &TreatmentInput{Name: "  "})
	if !errors.Is(err, ErrNameAndPriceRequired) {
		t.Fatalf("err = %v, want ErrNameAndPriceRequired", err)
	}
}

func TestPostgresRepository_UpdateAndDeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE treatments`).WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM treatments WHERE id = \$1`).WithArgs(42).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepositoryWithDB(mock)
	if _, err := repo.Update(context.Background(), 42, &TreatmentInput{Name: "x", Price: "1"}); !errors.Is(err, ErrTreatmentNotFound) {
		t.Errorf("update err = %v", err)
	}
	if err := repo.Delete(context.Background(), 42); !errors.Is(err, ErrTreatmentNotFound) {
		t.Errorf("delete err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Seed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	seed, err := NewStaticSource().Load(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	for range seed {
		mock.ExpectExec(`INSERT INTO treatments`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec(`SELECT setval`).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	n, err := NewPostgresRepositoryWithDB(mock).Seed(context.Background(), seed)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if n != len(seed) {
		t.Errorf("seeded %d, want %d", n, len(seed))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
