package filter

import "strings"

// Selection is a single-choice filter: either no restriction or one specific id.
type Selection struct {
	id       string
	specific bool
}

// All returns the unrestricted selection
func All() Selection {
	return Selection{}
}

// Only restricts matching to one id. An empty id means All.
func Only(id string) Selection {
	id = strings.TrimSpace(id)
	if id == "" {
		return All()
	}
	return Selection{id: id, specific: true}
}

// allSentinels are the values UI controls send for "no restriction"
var allSentinels = map[string]struct{}{
	"":      {},
	"all":   {},
	"semua": {},
}

// ParseSelection converts a raw query value into a Selection.
// Sentinel values are only interpreted here, never inside the pipeline.
func ParseSelection(raw string) Selection {
	if _, ok := allSentinels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return All()
	}
	return Only(raw)
}

// IsAll reports whether the selection is unrestricted
func (s Selection) IsAll() bool {
	return !s.specific
}

// ID returns the selected id, "" for All
func (s Selection) ID() string {
	return s.id
}

// Matches reports whether a record reference passes the selection.
// A missing reference never matches a specific selection.
func (s Selection) Matches(ref string) bool {
	if !s.specific {
		return true
	}
	return ref != "" && ref == s.id
}

func (s Selection) String() string {
	if !s.specific {
		return "All"
	}
	return s.id
}
