package appointments

import "slices"

// Selection is the set of checked treatment boxes on the appointment form.
// It never holds more than MaxTreatments ids.
type Selection struct {
	ids []int
}

// NewSelection returns a selection pre-filled with ids, keeping the first
// MaxTreatments distinct values.
func NewSelection(ids ...int) *Selection {
	s := &Selection{}
	for _, id := range ids {
		if len(s.ids) == MaxTreatments {
			break
		}
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle checks or unchecks id. Checking beyond the limit is reverted and
// reported as ErrSelectionLimit; the selection is left unchanged.
func (s *Selection) Toggle(id int) error {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return nil
	}
	if len(s.ids) >= MaxTreatments {
		return ErrSelectionLimit
	}
	s.ids = append(s.ids, id)
	return nil
}

// Contains reports whether id is checked.
func (s *Selection) Contains(id int) bool {
	return slices.Contains(s.ids, id)
}

// Len returns the number of checked ids.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the checked ids in the order they were checked.
func (s *Selection) IDs() []int { return slices.Clone(s.ids) }
