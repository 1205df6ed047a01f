package resident

// Store exposes resident lookup for handlers and services.
type Store interface {
	List() []Resident
	FindByID(id string) (Resident, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Resident
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied residents.
func NewMemoryStore(items []Resident) *MemoryStore {
	return &MemoryStore{items: append([]Resident(nil), items...)}
}

// List returns a copy of the known residents.
func (s *MemoryStore) List() []Resident {
	return append([]Resident(nil), s.items...)
}

// FindByID looks up a resident by identifier.
func (s *MemoryStore) FindByID(id string) (Resident, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Resident{}, false
}
