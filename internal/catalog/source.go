package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/vitaldent/clinic-site/internal/money"
	"gopkg.in/yaml.v3"
)

// Source supplies the ordered treatment sequence for one page view.
type Source interface {
	Load(ctx context.Context) ([]Treatment, error)
}

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Treatments []seedEntry `yaml:"treatments"`
}

type seedEntry struct {
	ID              int      `yaml:"id"`
	Nombre          string   `yaml:"nombre"`
	Descripcion     string   `yaml:"descripcion,omitempty"`
	Precio          string   `yaml:"precio,omitempty"`
	PrecioMin       string   `yaml:"precioMin,omitempty"`
	PrecioMax       string   `yaml:"precioMax,omitempty"`
	PrecioTexto     string   `yaml:"precioTexto,omitempty"`
	Caracteristicas []string `yaml:"caracteristicas,omitempty,flow"`
	Imagen          string   `yaml:"imagen,omitempty"`
}

func (e seedEntry) record() (Record, error) {
	rec := Record{
		ID:              e.ID,
		Nombre:          e.Nombre,
		Descripcion:     e.Descripcion,
		PrecioTexto:     e.PrecioTexto,
		Caracteristicas: e.Caracteristicas,
		Imagen:          e.Imagen,
	}
	for _, p := range []struct {
		raw string
		dst **money.Money
	}{
		{e.Precio, &rec.Precio},
		{e.PrecioMin, &rec.PrecioMin},
		{e.PrecioMax, &rec.PrecioMax},
	} {
		if p.raw == "" {
			continue
		}
		m, err := money.Parse(p.raw)
		if err != nil {
			return Record{}, fmt.Errorf("catalog: seed id %d: %w", e.ID, err)
		}
		*p.dst = &m
	}
	return rec, nil
}

// ParseSeed decodes a YAML catalog document.
func ParseSeed(data []byte) ([]Treatment, error) {
	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode seed: %w", err)
	}
	out := make([]Treatment, 0, len(doc.Treatments))
	for _, entry := range doc.Treatments {
		rec, err := entry.record()
		if err != nil {
			return nil, err
		}
		out = append(out, Normalize(rec))
	}
	return out, nil
}

// MarshalSeed encodes treatments as a YAML catalog document that ParseSeed
// reads back unchanged.
func MarshalSeed(treatments []Treatment) ([]byte, error) {
	doc := seedFile{Treatments: make([]seedEntry, 0, len(treatments))}
	for _, t := range treatments {
		rec := t.Record()
		entry := seedEntry{
			ID:              rec.ID,
			Nombre:          rec.Nombre,
			Descripcion:     rec.Descripcion,
			PrecioTexto:     rec.PrecioTexto,
			Caracteristicas: rec.Caracteristicas,
			Imagen:          rec.Imagen,
		}
		if rec.Precio != nil {
			entry.Precio = rec.Precio.String()
		}
		if rec.PrecioMin != nil {
			entry.PrecioMin = rec.PrecioMin.String()
		}
		if rec.PrecioMax != nil {
			entry.PrecioMax = rec.PrecioMax.String()
		}
		doc.Treatments = append(doc.Treatments, entry)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode seed: %w", err)
	}
	return out, nil
}

// StaticSource serves the catalog embedded in the binary, or an override
// document supplied at construction.
type StaticSource struct {
	data []byte
}

// NewStaticSource returns a source over the embedded seed catalog.
func NewStaticSource() *StaticSource {
	return &StaticSource{data: seedYAML}
}

// NewStaticSourceFromYAML returns a source over a caller-supplied document.
func NewStaticSourceFromYAML(data []byte) *StaticSource {
	return &StaticSource{data: data}
}

// Load parses the document on every call so callers never share slices.
func (s *StaticSource) Load(ctx context.Context) ([]Treatment, error) {
	treatments, err := ParseSeed(s.data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	return treatments, nil
}

// SliceSource serves a fixed in-memory sequence.
type SliceSource []Treatment

// Load returns a copy of the slice.
func (s SliceSource) Load(ctx context.Context) ([]Treatment, error) {
	return append([]Treatment(nil), s...), nil
}
