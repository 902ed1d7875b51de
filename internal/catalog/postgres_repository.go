package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitaldent/clinic-site/internal/money"
)

// treatmentsDB is the subset of pgxpool.Pool used by PostgresRepository.
type treatmentsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores treatments in the relational database.
type PostgresRepository struct {
	db treatmentsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db treatmentsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const treatmentColumns = `id, name, description, price::text, min_price::text, max_price::text, price_label, features, image`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTreatment(row rowScanner) (Treatment, error) {
	var (
		rec                Record
		price              string
		minPrice, maxPrice *string
		label, image       string
		features           []string
	)
	if err := row.Scan(&rec.ID, &rec.Nombre, &rec.Descripcion, &price, &minPrice, &maxPrice, &label, &features, &image); err != nil {
		return Treatment{}, err
	}
	p, err := money.Parse(price)
	if err != nil {
		return Treatment{}, fmt.Errorf("catalog: treatment %d price: %w", rec.ID, err)
	}
	rec.Precio = &p
	if minPrice != nil {
		if m, err := money.Parse(*minPrice); err == nil {
			rec.PrecioMin = &m
		}
	}
	if maxPrice != nil {
		if m, err := money.Parse(*maxPrice); err == nil {
			rec.PrecioMax = &m
		}
	}
	rec.PrecioTexto = label
	rec.Caracteristicas = features
	rec.Imagen = image
	return Normalize(rec), nil
}

// Load lists all treatments ordered by id.
func (r *PostgresRepository) Load(ctx context.Context) ([]Treatment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+treatmentColumns+` FROM treatments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: select treatments: %v", ErrDataLoad, err)
	}
	defer rows.Close()

	var out []Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan treatment: %v", ErrDataLoad, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate treatments: %v", ErrDataLoad, err)
	}
	return out, nil
}

// Get fetches one treatment.
func (r *PostgresRepository) Get(ctx context.Context, id int) (*Treatment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+treatmentColumns+` FROM treatments WHERE id = $1`, id)
	t, err := scanTreatment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTreatmentNotFound
		}
		return nil, fmt.Errorf("catalog: select failed: %w", err)
	}
	return &t, nil
}

// Create inserts a treatment and returns it with its assigned id.
func (r *PostgresRepository) Create(ctx context.Context, in *TreatmentInput) (*Treatment, error) {
	t, err := in.Treatment(0)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO treatments (name, description, price, min_price, max_price, price_label, features, image)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6, $7, $8)
		RETURNING id
	`
	lo, hi := rangeArgs(t)
	if err := r.db.QueryRow(ctx, query,
		t.Name,
		t.Description,
		t.BasePrice.String(),
		lo,
		hi,
		t.PriceLabel,
		t.Features,
		t.Image,
	).Scan(&t.ID); err != nil {
		return nil, fmt.Errorf("catalog: insert failed: %w", err)
	}
	return &t, nil
}

// Update overwrites an existing treatment.
func (r *PostgresRepository) Update(ctx context.Context, id int, in *TreatmentInput) (*Treatment, error) {
	t, err := in.Treatment(id)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE treatments
		SET name = $2, description = $3, price = $4::numeric, min_price = $5::numeric,
			max_price = $6::numeric, price_label = $7, features = $8, image = $9, updated_at = NOW()
		WHERE id = $1
	`
	lo, hi := rangeArgs(t)
	tag, err := r.db.Exec(ctx, query, id, t.Name, t.Description, t.BasePrice.String(), lo, hi, t.PriceLabel, t.Features, t.Image)
	if err != nil {
		return nil, fmt.Errorf("catalog: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTreatmentNotFound
	}
	return &t, nil
}

// Delete removes a treatment.
func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM treatments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTreatmentNotFound
	}
	return nil
}

// Seed upserts the given treatments keeping their identifiers.
func (r *PostgresRepository) Seed(ctx context.Context, treatments []Treatment) (int, error) {
	query := `
		INSERT INTO treatments (id, name, description, price, min_price, max_price, price_label, features, image)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			min_price = EXCLUDED.min_price, max_price = EXCLUDED.max_price,
			price_label = EXCLUDED.price_label, features = EXCLUDED.features, image = EXCLUDED.image,
			updated_at = NOW()
	`
	for i, t := range treatments {
		lo, hi := rangeArgs(t)
		if _, err := r.db.Exec(ctx, query, t.ID, t.Name, t.Description, t.BasePrice.String(), lo, hi, t.PriceLabel, t.Features, t.Image); err != nil {
			return i, fmt.Errorf("catalog: seed treatment %d: %w", t.ID, err)
		}
	}
	if _, err := r.db.Exec(ctx, `SELECT setval(pg_get_serial_sequence('treatments', 'id'), COALESCE((SELECT MAX(id) FROM treatments), 1))`); err != nil {
		return len(treatments), fmt.Errorf("catalog: reset id sequence: %w", err)
	}
	return len(treatments), nil
}

func rangeArgs(t Treatment) (*string, *string) {
	if t.MinPrice.Equal(t.MaxPrice) {
		return nil, nil
	}
	lo, hi := t.MinPrice.String(), t.MaxPrice.String()
	return &lo, &hi
}
