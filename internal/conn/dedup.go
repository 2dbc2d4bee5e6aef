package conn

// seenSet is a bounded recently-seen-id set used for at-most-once action
// execution. The controller may carry the same logical event in both the
// chat-style and the legacy wire shape; whichever arrives first wins, and
// the repeat is dropped regardless of shape. Oldest entries are evicted
// FIFO once the window is full.
type seenSet struct {
	limit int
	order []string
	ids   map[string]struct{}
}

func newSeenSet(limit int) *seenSet {
	if limit <= 0 {
		limit = 128
	}
	return &seenSet{
		limit: limit,
		ids:   make(map[string]struct{}, limit),
	}
}

// SeenOrAdd records id and reports whether it was already present.
// Empty ids are never deduplicated.
func (s *seenSet) SeenOrAdd(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.ids[id]; ok {
		return true
	}
	if len(s.order) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	s.order = append(s.order, id)
	s.ids[id] = struct{}{}
	return false
}

// Len reports the current window occupancy.
func (s *seenSet) Len() int {
	return len(s.ids)
}
