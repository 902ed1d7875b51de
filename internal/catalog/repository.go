package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vitaldent/clinic-site/internal/money"
)

// TreatmentInput is the staff form payload for creating or editing a treatment.
type TreatmentInput struct {
	Name        string   `json:"nombre"`
	Description string   `json:"descripcion"`
	Price       string   `json:"precio"`
	MinPrice    string   `json:"precioMin,omitempty"`
	MaxPrice    string   `json:"precioMax,omitempty"`
	PriceLabel  string   `json:"precioTexto,omitempty"`
	Features    []string `json:"caracteristicas,omitempty"`
	Image       string   `json:"imagen,omitempty"`
}

// Treatment validates the input and returns the normalized treatment it
// describes. Name and description are stored upper-cased.
func (in *TreatmentInput) Treatment(id int) (Treatment, error) {
	name := strings.ToUpper(strings.TrimSpace(in.Name))
	price := strings.TrimSpace(in.Price)
	if name == "" || price == "" {
		return Treatment{}, ErrNameAndPriceRequired
	}

	rec := Record{
		ID:              id,
		Nombre:          name,
		Descripcion:     strings.ToUpper(strings.TrimSpace(in.Description)),
		PrecioTexto:     in.PriceLabel,
		Caracteristicas: in.Features,
		Imagen:          in.Image,
	}
	for _, p := range []struct {
		raw string
		dst **money.Money
	}{
		{price, &rec.Precio},
		{in.MinPrice, &rec.PrecioMin},
		{in.MaxPrice, &rec.PrecioMax},
	} {
		raw := strings.TrimSpace(p.raw)
		if raw == "" {
			continue
		}
		m, err := money.Parse(raw)
		if err != nil || m.IsNegative() {
			return Treatment{}, ErrInvalidPrice
		}
		*p.dst = &m
	}
	return Normalize(rec), nil
}

// Repository stores the staff-managed catalog. It is also a Source.
type Repository interface {
	Source
	Get(ctx context.Context, id int) (*Treatment, error)
	Create(ctx context.Context, in *TreatmentInput) (*Treatment, error)
	Update(ctx context.Context, id int, in *TreatmentInput) (*Treatment, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository keeps treatments in process memory.
type InMemoryRepository struct {
	mu         sync.RWMutex
	treatments map[int]Treatment
	nextID     int
}

// NewInMemoryRepository creates a repository seeded with the given treatments.
func NewInMemoryRepository(seed ...Treatment) *InMemoryRepository {
	r := &InMemoryRepository{treatments: make(map[int]Treatment), nextID: 1}
	for _, t := range seed {
		r.treatments[t.ID] = t
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
	return r
}

// Load returns all treatments ordered by identifier.
func (r *InMemoryRepository) Load(ctx context.Context) ([]Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Treatment, 0, len(r.treatments))
	for _, t := range r.treatments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns one treatment.
func (r *InMemoryRepository) Get(ctx context.Context, id int) (*Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.treatments[id]
	if !ok {
		return nil, ErrTreatmentNotFound
	}
	return &t, nil
}

// Create stores a new treatment with the next identifier.
func (r *InMemoryRepository) Create(ctx context.Context, in *TreatmentInput) (*Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := in.Treatment(r.nextID)
	if err != nil {
		return nil, err
	}
	r.treatments[t.ID] = t
	r.nextID++
	return &t, nil
}

// Update replaces an existing treatment.
func (r *InMemoryRepository) Update(ctx context.Context, id int, in *TreatmentInput) (*Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.treatments[id]; !ok {
		return nil, ErrTreatmentNotFound
	}
	t, err := in.Treatment(id)
	if err != nil {
		return nil, err
	}
	r.treatments[id] = t
	return &t, nil
}

// Delete removes a treatment.
func (r *InMemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.treatments[id]; !ok {
		return ErrTreatmentNotFound
	}
	delete(r.treatments, id)
	return nil
}
