package listing

import (
	"fmt"
	"strings"
)

const (
	SortID        = "id"
	SortName      = "name"
	SortState     = "state"
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortDistance  = "distance"
)

var sortFields = []string{SortID, SortName, SortState, SortCreatedAt, SortUpdatedAt}

type SortKey struct {
	Field string
	Desc  bool
}

func (k SortKey) String() string {
	if k.Desc {
		return "-" + k.Field
	}
	return k.Field
}

func allowedSortField(field string) bool {
	for _, f := range sortFields {
		if f == field {
			return true
		}
	}
	return false
}

// parseSort splits "-created_at,name" into keys. Repeated fields keep the first occurrence.
func parseSort(raw string) ([]SortKey, error) {
	var keys []SortKey
	seen := make(map[string]struct{})
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key := SortKey{Field: token}
		if strings.HasPrefix(token, "-") {
			key = SortKey{Field: token[1:], Desc: true}
		}
		if !allowedSortField(key.Field) {
			return nil, fmt.Errorf("unknown sort key %q, allowed: %s", key.Field, strings.Join(sortFields, ", "))
		}
		if _, dup := seen[key.Field]; dup {
			continue
		}
		seen[key.Field] = struct{}{}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("sort must name at least one key")
	}
	return keys, nil
}

// Sorting is the sort metadata echoed to clients.
type Sorting struct {
	Allowed []string `json:"allowed"`
	Default string   `json:"default"`
	Current string   `json:"current"`
}
