package domain

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewItemID returns a lexically sortable identifier for section items.
// ulid.Make draws from a process-wide monotonic source, so ids minted within the
// same millisecond still differ.
func NewItemID() string {
	return strings.ToLower(ulid.Make().String())
}

// EnsureItemIDs assigns ids to items that lack one and replaces duplicates so
// that ids are unique within each array. It reports whether anything changed.
func EnsureItemIDs(data *PageData, newID func() string) bool {
	if data == nil {
		return false
	}
	if newID == nil {
		newID = NewItemID
	}

	changed := false
	seen := make(map[string]struct{}, len(data.Services))
	for i := range data.Services {
		if id, ok := uniqueID(data.Services[i].ID, seen, newID); ok {
			data.Services[i].ID = id
			changed = true
		}
	}

	seen = make(map[string]struct{}, len(data.Gallery.Images))
	for i := range data.Gallery.Images {
		if id, ok := uniqueID(data.Gallery.Images[i].ID, seen, newID); ok {
			data.Gallery.Images[i].ID = id
			changed = true
		}
	}

	seen = make(map[string]struct{}, len(data.Testimonials))
	for i := range data.Testimonials {
		if id, ok := uniqueID(data.Testimonials[i].ID, seen, newID); ok {
			data.Testimonials[i].ID = id
			changed = true
		}
	}
	return changed
}

func uniqueID(current string, seen map[string]struct{}, newID func() string) (string, bool) {
	current = strings.TrimSpace(current)
	if current != "" {
		if _, dup := seen[current]; !dup {
			seen[current] = struct{}{}
			return current, false
		}
	}
	for {
		candidate := newID()
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		return candidate, true
	}
}
