package notification

import (
	"slices"
	"sync"

	"backoffice/models"
)

// Store holds the notification list and its unread counter. Every method
// updates both under one lock, so readers never see one without the other.
type Store struct {
	mu     sync.Mutex
	items  []models.Notification
	unread int
}

// Replace swaps in a freshly loaded list. The counter always follows the
// unread records in items; unread is the backend's total, and Replace
// returns how many of those fell outside the loaded list.
func (s *Store) Replace(items []models.Notification, unread int) (hidden int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	s.unread = 0
	for _, n := range s.items {
		if !n.Read {
			s.unread++
		}
	}
	return max(unread-s.unread, 0)
}

// Add prepends n and counts it if unread. A notification whose id is
// already listed is ignored and Add reports false.
func (s *Store) Add(n models.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.items, func(x models.Notification) bool { return x.ID == n.ID }) {
		return false
	}
	s.items = slices.Insert(s.items, 0, n)
	if !n.Read {
		s.unread++
	}
	return true
}

// MarkRead marks the notification read and reports whether it was unread.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			if s.items[i].Read {
				return false
			}
			s.items[i].Read = true
			s.unread = max(s.unread-1, 0)
			return true
		}
	}
	return false
}

// MarkAllRead marks everything read and zeroes the counter.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
}

// Delete removes the notification and reports whether it was listed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(x models.Notification) bool { return x.ID == id })
	if i < 0 {
		return false
	}
	if !s.items[i].Read {
		s.unread = max(s.unread-1, 0)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Snapshot returns a copy of the list and the counter.
func (s *Store) Snapshot() ([]models.Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), s.unread
}
