package catalog

import (
	"fmt"
	"strings"

	"github.com/vitaldent/clinic-site/internal/money"
)

// Treatment is one catalog entry as the site presents it.
type Treatment struct {
	ID          int
	Name        string
	Description string
	MinPrice    money.Money
	MaxPrice    money.Money
	// BasePrice is the supplied price, or the mean of MinPrice and MaxPrice.
	BasePrice  money.Money
	PriceLabel string
	Features   []string
	Image      string
}

// Record is the wire shape served by the treatments endpoint.
type Record struct {
	ID              int          `json:"id"`
	Nombre          string       `json:"nombre"`
	Descripcion     string       `json:"descripcion"`
	Precio          *money.Money `json:"precio,omitempty"`
	PrecioMin       *money.Money `json:"precioMin,omitempty"`
	PrecioMax       *money.Money `json:"precioMax,omitempty"`
	PrecioTexto     string       `json:"precioTexto,omitempty"`
	Caracteristicas []string     `json:"caracteristicas,omitempty"`
	Imagen          string       `json:"imagen,omitempty"`
}

// Normalize fills derived fields of a wire record. Missing optional fields
// become blanks or derived defaults.
func Normalize(rec Record) Treatment {
	t := Treatment{
		ID:          rec.ID,
		Name:        strings.TrimSpace(rec.Nombre),
		Description: strings.TrimSpace(rec.Descripcion),
		Image:       strings.TrimSpace(rec.Imagen),
		Features:    []string{},
	}
	for _, f := range rec.Caracteristicas {
		if f = strings.TrimSpace(f); f != "" {
			t.Features = append(t.Features, f)
		}
	}

	switch {
	case rec.Precio != nil:
		t.BasePrice = *rec.Precio
	case rec.PrecioMin != nil && rec.PrecioMax != nil:
		t.BasePrice = money.Mean(*rec.PrecioMin, *rec.PrecioMax)
	case rec.PrecioMin != nil:
		t.BasePrice = *rec.PrecioMin
	case rec.PrecioMax != nil:
		t.BasePrice = *rec.PrecioMax
	default:
		t.BasePrice = money.Zero()
	}

	t.MinPrice = t.BasePrice
	if rec.PrecioMin != nil {
		t.MinPrice = *rec.PrecioMin
	}
	t.MaxPrice = t.BasePrice
	if rec.PrecioMax != nil {
		t.MaxPrice = *rec.PrecioMax
	}

	t.PriceLabel = strings.TrimSpace(rec.PrecioTexto)
	if t.PriceLabel == "" {
		t.PriceLabel = DerivePriceLabel(t.MinPrice, t.MaxPrice, t.BasePrice)
	}
	return t
}

// DerivePriceLabel formats a range label, or a single value when the range
// collapses.
func DerivePriceLabel(minPrice, maxPrice, base money.Money) string {
	if !minPrice.Equal(maxPrice) {
		return fmt.Sprintf("$%s - $%s MXN", minPrice.Display(), maxPrice.Display())
	}
	return fmt.Sprintf("$%s MXN", base.Display())
}

// Record converts the treatment back to its wire shape.
func (t Treatment) Record() Record {
	base, lo, hi := t.BasePrice, t.MinPrice, t.MaxPrice
	rec := Record{
		ID:          t.ID,
		Nombre:      t.Name,
		Descripcion: t.Description,
		Precio:      &base,
		PrecioTexto: t.PriceLabel,
		Imagen:      t.Image,
	}
	if !lo.Equal(hi) {
		rec.PrecioMin = &lo
		rec.PrecioMax = &hi
	}
	if len(t.Features) > 0 {
		rec.Caracteristicas = append([]string(nil), t.Features...)
	}
	return rec
}

// Records converts a slice of treatments to wire records.
func Records(treatments []Treatment) []Record {
	out := make([]Record, 0, len(treatments))
	for _, t := range treatments {
		out = append(out, t.Record())
	}
	return out
}

// FindByID returns the treatment with the given identifier.
func FindByID(treatments []Treatment, id int) (Treatment, bool) {
	for _, t := range treatments {
		if t.ID == id {
			return t, true
		}
	}
	return Treatment{}, false
}

// Dedupe drops records whose identifier was already seen. The first
// occurrence wins and order is preserved.
func Dedupe(treatments []Treatment) ([]Treatment, int) {
	seen := make(map[int]struct{}, len(treatments))
	out := make([]Treatment, 0, len(treatments))
	dropped := 0
	for _, t := range treatments {
		if _, ok := seen[t.ID]; ok {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out, dropped
}
